package api

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/nhle/carereminder/internal/model"
)

func (s *Server) listMedications(w http.ResponseWriter, _ *http.Request) {
	list := s.store.Medications()
	if list == nil {
		list = []model.Medication{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createMedication(w http.ResponseWriter, r *http.Request) {
	var m model.Medication
	if err := decode(r, &m); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.store.AddMedication(r.Context(), m)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateMedication(w http.ResponseWriter, r *http.Request) {
	var upd model.MedicationUpdate
	if err := decode(r, &upd); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.UpdateMedication(r.Context(), chi.URLParam(r, "id"), upd); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteMedication(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteMedication(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listAppointments(w http.ResponseWriter, _ *http.Request) {
	list := s.store.Appointments()
	if list == nil {
		list = []model.Appointment{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createAppointment(w http.ResponseWriter, r *http.Request) {
	var a model.Appointment
	if err := decode(r, &a); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.store.AddAppointment(r.Context(), a)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateAppointment(w http.ResponseWriter, r *http.Request) {
	var upd model.AppointmentUpdate
	if err := decode(r, &upd); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.UpdateAppointment(r.Context(), chi.URLParam(r, "id"), upd); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAppointment(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
