package api

import (
	"net/http"

	"github.com/snaptagapp/snaptag-server/internal/http/response"
)

// rateLimit rejects clients that exceed the per-IP request rate.
// Runs after RealIP so RemoteAddr reflects the true client.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(r.RemoteAddr) {
			s.logger.Warn("rate limit exceeded", "client", r.RemoteAddr, "path", r.URL.Path)
			response.Error(w, http.StatusTooManyRequests, "Too many requests", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}
