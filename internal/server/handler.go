package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/schema"
	"github.com/rs/zerolog/hlog"

	"github.com/lexiqai/speech-gateway/internal/observability"
	"github.com/lexiqai/speech-gateway/internal/speech"
)

// SpeechHandler serves the /v1 synthesis and catalogue routes.
type SpeechHandler struct {
	registry        *speech.Registry
	client          speech.HTTPClient
	maxRequestBytes int64
}

// NewSpeechHandler creates a handler dispatching through registry with the
// shared upstream client.
func NewSpeechHandler(registry *speech.Registry, client speech.HTTPClient, maxRequestBytes int64) *SpeechHandler {
	return &SpeechHandler{
		registry:        registry,
		client:          client,
		maxRequestBytes: maxRequestBytes,
	}
}

// Speech decodes the canonical request, resolves its provider and relays it.
func (h *SpeechHandler) Speech(w http.ResponseWriter, r *http.Request) {
	metrics := observability.NewRequestMetrics()
	defer metrics.Done()
	fail := func(err error) {
		kind := "internal"
		if gwErr, ok := speech.AsError(err); ok {
			kind = gwErr.Kind.String()
		}
		metrics.RecordError(kind)
		writeError(w, r, err)
	}

	raw, err := h.decode(w, r)
	if err != nil {
		fail(err)
		return
	}

	req, err := speech.Resolve(raw)
	if err != nil {
		fail(err)
		return
	}

	// Only registered keys become metric labels
	if _, ok := h.registry.Lookup(req.Provider); ok {
		metrics.SetProvider(req.Provider)
	}

	logger := hlog.FromRequest(r).With().
		Str("provider", req.Provider).
		Str("model", req.Model).
		Logger()
	ctx := logger.WithContext(r.Context())

	metrics.RecordUpstreamStart()
	result, err := h.registry.Dispatch(ctx, h.client, req, TokenFromContext(r.Context()))
	metrics.RecordUpstreamEnd()
	if err != nil {
		fail(err)
		return
	}

	metrics.RecordSuccess(len(result.Audio))
	logger.Info().
		Int("audio_bytes", len(result.Audio)).
		Str("content_type", result.ContentType).
		Msg("Speech synthesized")

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Audio)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Audio); err != nil {
		logger.Warn().Err(err).Msg("Failed to write audio to caller")
	}
}

func (h *SpeechHandler) decode(w http.ResponseWriter, r *http.Request) (speech.RawSpeechRequest, error) {
	var raw speech.RawSpeechRequest
	body := http.MaxBytesReader(w, r.Body, h.maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return raw, speech.NewValidationError("request body exceeds %d bytes", tooLarge.Limit)
		}
		return raw, speech.NewValidationError("invalid request body: %v", err)
	}
	return raw, nil
}

// ProvidersResponse lists the provider keys accepted in model identifiers.
type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

// Providers serves GET /v1/providers.
func (h *SpeechHandler) Providers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ProvidersResponse{Providers: h.registry.Names()})
}

// voicesQuery is the query string of GET /v1/voices.
type voicesQuery struct {
	Provider string `schema:"provider"`
}

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// VoicesResponse is the catalogue of one provider.
type VoicesResponse struct {
	Voices []speech.Voice `json:"voices"`
}

// Voices serves GET /v1/voices?provider=<key>.
func (h *SpeechHandler) Voices(w http.ResponseWriter, r *http.Request) {
	var query voicesQuery
	if err := queryDecoder.Decode(&query, r.URL.Query()); err != nil {
		writeError(w, r, speech.NewValidationError("invalid query: %v", err))
		return
	}
	if query.Provider == "" {
		writeError(w, r, speech.NewValidationError("provider is required"))
		return
	}

	logger := hlog.FromRequest(r).With().Str("provider", query.Provider).Logger()
	ctx := logger.WithContext(r.Context())

	voices, err := h.registry.ListVoices(ctx, h.client, query.Provider, TokenFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Debug().Int("voices", len(voices)).Msg("Voices listed")
	writeJSON(w, http.StatusOK, VoicesResponse{Voices: voices})
}
