package reminder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/carereminder/internal/model"
	"github.com/nhle/carereminder/internal/storage"
)

func TestMedicationCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.store.AddMedication(ctx, model.Medication{
		Name:      "Metformin",
		Dosage:    "500mg",
		Frequency: "twice daily",
		Schedule: []model.ScheduleEntry{
			{Time: "08:00", Days: []string{"monday", "friday"}},
			{Time: "20:00", Days: []string{"friday"}},
		},
		StartDate: "2025-03-01",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "e1", m.ElderlyID)
	assert.Equal(t, []string{"08:00", "20:00"}, m.TakesOn(testNow.Weekday()))

	dosage := "850mg"
	require.NoError(t, f.store.UpdateMedication(ctx, m.ID, model.MedicationUpdate{Dosage: &dosage}))
	assert.Equal(t, "850mg", f.store.Medications()[0].Dosage)

	persisted, err := loadCollection[model.Medication](ctx, f.storage, storage.KeyMedications)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, "850mg", persisted[0].Dosage)

	assert.ErrorIs(t, f.store.UpdateMedication(ctx, "missing", model.MedicationUpdate{Dosage: &dosage}), ErrNotFound)

	require.NoError(t, f.store.DeleteMedication(ctx, m.ID))
	assert.Empty(t, f.store.Medications())
	assert.ErrorIs(t, f.store.DeleteMedication(ctx, m.ID), ErrNotFound)
}

func TestMedicationValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.AddMedication(ctx, model.Medication{Name: " "})
	assert.True(t, IsValidation(err))

	m, err := f.store.AddMedication(ctx, model.Medication{Name: "Aspirin"})
	require.NoError(t, err)
	blank := ""
	assert.True(t, IsValidation(f.store.UpdateMedication(ctx, m.ID, model.MedicationUpdate{Name: &blank})))
}

func TestAppointmentCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.AddAppointment(ctx, model.Appointment{Title: "Cardiology", Date: "next week"})
	assert.True(t, IsValidation(err))

	a, err := f.store.AddAppointment(ctx, model.Appointment{
		Title:      "Cardiology",
		Date:       tomorrow,
		Time:       "14:30",
		Location:   "St. Mary's",
		DoctorName: "Dr. Osei",
		ElderlyID:  "e2",
	})
	require.NoError(t, err)
	assert.Equal(t, "e2", a.ElderlyID)

	notes := "Bring blood test results"
	require.NoError(t, f.store.UpdateAppointment(ctx, a.ID, model.AppointmentUpdate{Notes: &notes}))

	f.store.Reload(ctx)
	require.Len(t, f.store.Appointments(), 1)
	assert.Equal(t, notes, f.store.Appointments()[0].Notes)

	require.NoError(t, f.store.DeleteAppointment(ctx, a.ID))
	f.store.Reload(ctx)
	assert.Empty(t, f.store.Appointments())
}

func TestCatalogWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.storage.FailWrites(true)

	m, err := f.store.AddMedication(context.Background(), model.Medication{Name: "Aspirin"})
	assert.True(t, IsPersistence(err))
	assert.Equal(t, []model.Medication{m}, f.store.Medications())
}
