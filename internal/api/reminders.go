package api

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/nhle/carereminder/internal/model"
)

func (s *Server) listReminders(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.View(r.URL.Query().Get("view"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []model.Reminder{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createReminder(w http.ResponseWriter, r *http.Request) {
	var in model.ReminderInput
	if err := decode(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.store.AddReminder(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getReminder(w http.ResponseWriter, r *http.Request) {
	found, ok := s.store.Reminder(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, r, errUnknownID)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) updateReminder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.store.Reminder(id); !ok {
		s.writeError(w, r, errUnknownID)
		return
	}

	var upd model.ReminderUpdate
	if err := decode(r, &upd); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.UpdateReminder(r.Context(), id, upd); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, _ := s.store.Reminder(id)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) completeReminder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.store.Reminder(id); !ok {
		s.writeError(w, r, errUnknownID)
		return
	}
	if err := s.store.MarkReminderComplete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, _ := s.store.Reminder(id)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteReminder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.store.Reminder(id); !ok {
		s.writeError(w, r, errUnknownID)
		return
	}
	if err := s.store.DeleteReminder(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
