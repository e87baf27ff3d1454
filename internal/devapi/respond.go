package devapi

import (
	"encoding/json"
	"net/http"
)

// apiEnvelope is the uniform response wrapper every endpoint uses.
type apiEnvelope struct {
	StatusCode int    `json:"status_code"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message,omitempty"`
}

func (s *Server) writeData(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	env := apiEnvelope{StatusCode: status, Data: data, Message: message}
	if err := json.NewEncoder(w).Encode(env); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response envelope")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeData(w, status, nil, message)
}
