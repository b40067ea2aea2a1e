package server

import (
	"encoding/json"
	"net/http"

	"task-manager/internal/errors"
	"task-manager/internal/validation"
)

type errorResponse struct {
	Error   string                  `json:"error"`
	Code    string                  `json:"code"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
	Details string                  `json:"details,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("encode response", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// respondError maps err onto a status code and error body. Internal
// details are only included in development.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	resp := errorResponse{
		Error: errors.GetUserMessage(err),
		Code:  errors.GetErrorCode(err),
	}

	if ve, ok := validation.AsValidationError(err); ok {
		resp.Errors = ve.Errors
	}

	if status >= http.StatusInternalServerError {
		if !errors.IsAppError(err) {
			resp.Error = "An unexpected error occurred. Please try again."
			resp.Code = "INTERNAL_ERROR"
		}
		if s.config.IsDevelopment() {
			resp.Details = err.Error()
		}
	}

	fields := []interface{}{"err", err, "status", status, "request_id", requestIDFrom(r.Context())}
	if errors.ShouldLogError(err) {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Debug("request rejected", fields...)
	}

	s.respondJSON(w, status, resp)
}
