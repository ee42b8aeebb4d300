package reminder

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/carereminder/internal/model"
	"github.com/nhle/carereminder/internal/storage"
)

// Medications returns a snapshot of the medications in the current view.
func (s *Store) Medications() []model.Medication {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Medication(nil), s.medications...)
}

// AddMedication stores m under a fresh id. The name is required; an
// empty elderly id becomes the user's default dependent.
func (s *Store) AddMedication(ctx context.Context, m model.Medication) (model.Medication, error) {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return model.Medication{}, invalid("name", "name is required")
	}
	elderlyID, err := s.ownerFor(m.ElderlyID)
	if err != nil {
		return model.Medication{}, err
	}
	m.ElderlyID = elderlyID
	m.ID = uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user.CanSee(m.ElderlyID) {
		s.medications = append(s.medications, m)
	}
	err = mutateCollection(ctx, s.storage, storage.KeyMedications, func(items []model.Medication) []model.Medication {
		return append(items, m)
	})
	return m, err
}

// UpdateMedication merges upd into the medication with the given id.
func (s *Store) UpdateMedication(ctx context.Context, id string, upd model.MedicationUpdate) error {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return invalid("name", "name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.medications, id, medicationID)
	if i < 0 {
		return ErrNotFound
	}
	m := upd.Apply(s.medications[i])
	s.medications[i] = m

	return mutateCollection(ctx, s.storage, storage.KeyMedications, func(items []model.Medication) []model.Medication {
		return upsert(items, m, medicationID)
	})
}

// DeleteMedication removes the medication with the given id.
func (s *Store) DeleteMedication(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.medications, id, medicationID) < 0 {
		return ErrNotFound
	}
	s.medications = remove(s.medications, id, medicationID)

	return mutateCollection(ctx, s.storage, storage.KeyMedications, func(items []model.Medication) []model.Medication {
		return remove(items, id, medicationID)
	})
}

// Appointments returns a snapshot of the appointments in the current view.
func (s *Store) Appointments() []model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Appointment(nil), s.appointments...)
}

// AddAppointment stores a under a fresh id. Title, date and time are
// required.
func (s *Store) AddAppointment(ctx context.Context, a model.Appointment) (model.Appointment, error) {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return model.Appointment{}, invalid("title", "title is required")
	}
	if _, err := model.CombineDateTime(a.Date, a.Time, s.loc); err != nil {
		return model.Appointment{}, invalid("date", "date must be YYYY-MM-DD and time HH:MM")
	}
	elderlyID, err := s.ownerFor(a.ElderlyID)
	if err != nil {
		return model.Appointment{}, err
	}
	a.ElderlyID = elderlyID
	a.ID = uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user.CanSee(a.ElderlyID) {
		s.appointments = append(s.appointments, a)
	}
	err = mutateCollection(ctx, s.storage, storage.KeyAppointments, func(items []model.Appointment) []model.Appointment {
		return append(items, a)
	})
	return a, err
}

// UpdateAppointment merges upd into the appointment with the given id.
func (s *Store) UpdateAppointment(ctx context.Context, id string, upd model.AppointmentUpdate) error {
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return invalid("title", "title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.appointments, id, appointmentID)
	if i < 0 {
		return ErrNotFound
	}
	a := upd.Apply(s.appointments[i])
	s.appointments[i] = a

	return mutateCollection(ctx, s.storage, storage.KeyAppointments, func(items []model.Appointment) []model.Appointment {
		return upsert(items, a, appointmentID)
	})
}

// DeleteAppointment removes the appointment with the given id.
func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.appointments, id, appointmentID) < 0 {
		return ErrNotFound
	}
	s.appointments = remove(s.appointments, id, appointmentID)

	return mutateCollection(ctx, s.storage, storage.KeyAppointments, func(items []model.Appointment) []model.Appointment {
		return remove(items, id, appointmentID)
	})
}

func (s *Store) ownerFor(elderlyID string) (string, error) {
	if elderlyID == "" {
		elderlyID = s.User().DefaultElderlyID()
	}
	if elderlyID == "" {
		return "", invalid("elderlyId", "no elderly person is associated with this account")
	}
	return elderlyID, nil
}
