package server

import (
	"net/http"

	"task-manager/internal/errors"
)

func (s *Server) routes() {
	r := s.router
	r.Use(s.requestID, s.logRequests, s.recoverPanics)

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	r.HandleFunc("/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.logout).Methods(http.MethodPost)

	r.HandleFunc("/tasks", s.requireSession(s.listTasks)).Methods(http.MethodGet)
	r.HandleFunc("/tasks", s.requireSession(s.createTask)).Methods(http.MethodPost)
	r.HandleFunc("/tasks", s.requireSession(s.updateTask)).Methods(http.MethodPut)
	r.HandleFunc("/tasks", s.requireSession(s.deleteTask)).Methods(http.MethodDelete)
	r.HandleFunc("/tasks/{id}", s.requireSession(s.getTask)).Methods(http.MethodGet)

	r.HandleFunc("/todos", s.requireSession(s.createTodo)).Methods(http.MethodPost)
	r.HandleFunc("/todos", s.requireSession(s.deleteTask)).Methods(http.MethodDelete)
	r.HandleFunc("/todos/update", s.requireSession(s.updateTodo)).Methods(http.MethodPost)

	r.NotFoundHandler = s.requestID(s.logRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, errors.NewNotFoundError("route", r.URL.Path))
	})))
	r.MethodNotAllowedHandler = s.requestID(s.logRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error: "method not allowed",
			Code:  "METHOD_NOT_ALLOWED",
		})
	})))
}
