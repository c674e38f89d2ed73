package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/lexiqai/speech-gateway/internal/speech"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Status: status})
}

// writeError renders err with the status its kind maps to. Errors outside
// the gateway taxonomy are reported as 500 without leaking their text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	gwErr, ok := speech.AsError(err)
	if !ok {
		hlog.FromRequest(r).Error().Err(err).Msg("Unclassified error serving request")
		writeErrorMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := gwErr.HTTPStatus()
	event := hlog.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		event = hlog.FromRequest(r).Error()
	}
	event.Err(err).
		Str("kind", gwErr.Kind.String()).
		Str("provider", gwErr.Provider).
		Int("upstream_status", gwErr.Status).
		Int("status", status).
		Msg("Speech request failed")

	writeErrorMessage(w, status, gwErr.Message)
}
