package server

import (
	"io"
	"net/http"

	"task-manager/internal/auth"
	"task-manager/internal/errors"
	"task-manager/internal/validation"

	"github.com/gorilla/mux"
)

// listTasks serves GET /tasks, or a single task when ?id= is present.
// An id that cannot name a task is simply not found.
func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	query := r.URL.Query()
	if query.Has("id") {
		s.writeTask(w, r, identity.UserID, query.Get("id"))
		return
	}

	tasks, err := s.api.ListTasks(storeContext(r), identity.UserID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tasks)
}

// getTask serves GET /tasks/{id}
func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())
	s.writeTask(w, r, identity.UserID, mux.Vars(r)["id"])
}

func (s *Server) writeTask(w http.ResponseWriter, r *http.Request, ownerID int64, rawID string) {
	id, err := validation.ParseTaskID(rawID)
	if err != nil {
		s.respondError(w, r, errors.NewNotFoundError("task", rawID))
		return
	}

	task, err := s.api.GetTask(storeContext(r), ownerID, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, task)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	input, err := s.tasks.ValidateCreateTask(s.limitBody(w, r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	task, err := s.api.CreateTask(storeContext(r), identity.UserID, input.Title)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	input, err := s.tasks.ValidateUpdateTask(s.limitBody(w, r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	task, err := s.api.UpdateTask(storeContext(r), identity.UserID, input.ID, input.Title, input.Completed)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, task)
}

// deleteTask serves DELETE /tasks?id= and DELETE /todos?id=
func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	raw := r.URL.Query().Get("id")
	if raw == "" {
		s.respondError(w, r, errors.NewInvalidInputError("id", raw, "is required"))
		return
	}
	id, err := validation.ParseTaskID(raw)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.api.DeleteTask(storeContext(r), identity.UserID, id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// limitBody caps how much of the request body a handler may read
func (s *Server) limitBody(w http.ResponseWriter, r *http.Request) io.Reader {
	return http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes)
}
