package server

import (
	"net/http"

	"task-manager/internal/auth"
	"task-manager/internal/errors"
)

// dashboardPath is where the server-rendered UI lists tasks
const dashboardPath = "/dashboard"

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return errors.NewInvalidInputError("form", nil, err.Error())
	}
	return nil
}

// createTodo serves POST /todos from the task form
func (s *Server) createTodo(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	if err := s.parseForm(w, r); err != nil {
		s.respondError(w, r, err)
		return
	}
	input, err := s.tasks.ValidateCreateForm(r.PostForm)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if _, err := s.api.CreateTask(storeContext(r), identity.UserID, input.Title); err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

// updateTodo serves POST /todos/update from the edit form
func (s *Server) updateTodo(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	if err := s.parseForm(w, r); err != nil {
		s.respondError(w, r, err)
		return
	}
	input, err := s.tasks.ValidateUpdateForm(r.PostForm)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if _, err := s.api.UpdateTask(storeContext(r), identity.UserID, input.ID, input.Title, input.Completed); err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}
