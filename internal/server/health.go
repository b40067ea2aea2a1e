package server

import (
	"net/http"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.api.Ping(storeContext(r)); err != nil {
		s.logger.Error("health check failed", "err", err, "request_id", requestIDFrom(r.Context()))
		s.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
