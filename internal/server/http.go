package server

import (
	"encoding/json"
	"net/http"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *Server) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.HandleFunc("GET /v1/modes", s.handleModes)

	var h http.Handler = mux
	h = AuthMiddleware(authToken, h)
	h = LoggingMiddleware(s.logger, h)
	h = RecoveryMiddleware(s.logger, h)
	return h
}

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"uptime_secs": int64(s.now().Sub(s.started).Seconds()),
	})
}

// handleModes handles GET /v1/modes.
// Returns the users currently in insert mode, most recent first.
func (s *Server) handleModes(w http.ResponseWriter, _ *http.Request) {
	if s.modes == nil {
		writeJSON(w, http.StatusOK, map[string]any{"count": 0, "owners": []any{}})
		return
	}
	entries := s.modes.Active()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(entries),
		"owners": entries,
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
