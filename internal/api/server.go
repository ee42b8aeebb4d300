// Package api exposes the reminder store as a JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/sirupsen/logrus"

	"github.com/nhle/carereminder/internal/model"
	"github.com/nhle/carereminder/internal/reminder"
)

var errUnknownID = fmt.Errorf("unknown id: %w", reminder.ErrNotFound)

// Server routes HTTP requests to a reminder store.
type Server struct {
	store  *reminder.Store
	log    logrus.FieldLogger
	router chi.Router
}

// New builds the router for store.
func New(store *reminder.Store, log logrus.FieldLogger) *Server {
	s := &Server{
		store: store,
		log:   log.WithField("component", "api"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.log, NoColor: true}))
	r.Use(middleware.Recoverer)

	r.Route("/reminders", func(r chi.Router) {
		r.Get("/", s.listReminders)
		r.Post("/", s.createReminder)
		r.Get("/{id}", s.getReminder)
		r.Patch("/{id}", s.updateReminder)
		r.Delete("/{id}", s.deleteReminder)
		r.Post("/{id}/complete", s.completeReminder)
	})

	r.Route("/medications", func(r chi.Router) {
		r.Get("/", s.listMedications)
		r.Post("/", s.createMedication)
		r.Patch("/{id}", s.updateMedication)
		r.Delete("/{id}", s.deleteMedication)
	})

	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", s.listAppointments)
		r.Post("/", s.createAppointment)
		r.Patch("/{id}", s.updateAppointment)
		r.Delete("/{id}", s.deleteAppointment)
	})

	r.Get("/session", s.getSession)
	r.Put("/session", s.putSession)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Server listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps store errors to status codes: validation 400, unknown
// id 404, anything else 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{Error: err.Error()}

	var ve *reminder.ValidationError
	switch {
	case errors.As(err, &ve):
		body.Field = ve.Field
		writeJSON(w, http.StatusBadRequest, body)
	case errors.Is(err, reminder.ErrNotFound):
		writeJSON(w, http.StatusNotFound, body)
	default:
		s.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, body)
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &reminder.ValidationError{Message: "invalid request body: " + err.Error()}
	}
	return nil
}

func (s *Server) getSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.User())
}

// putSession switches the signed-in user and reloads the collections.
func (s *Server) putSession(w http.ResponseWriter, r *http.Request) {
	var u model.User
	if err := decode(r, &u); err != nil {
		s.writeError(w, r, err)
		return
	}
	if u.Role != model.RoleElderly && u.Role != model.RoleCaregiver {
		s.writeError(w, r, &reminder.ValidationError{Field: "role", Message: "role must be elderly or caregiver"})
		return
	}
	s.store.OnUserChanged(r.Context(), &u)
	w.WriteHeader(http.StatusNoContent)
}
