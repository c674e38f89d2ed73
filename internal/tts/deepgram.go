package tts

import (
	"context"
	"strings"

	"github.com/lexiqai/speech-gateway/internal/speech"
)

const (
	// DeepgramName is the provider key in "deepgram/<model>"
	DeepgramName = "deepgram"

	deepgramBaseURL = "https://api.deepgram.com/v1"
)

// Deepgram answers with a container matching the requested encoding;
// linear16 defaults to a wav container.
var deepgramContentTypes = map[string]string{
	"mp3":      ContentTypeMPEG,
	"linear16": ContentTypeWAV,
	"mulaw":    ContentTypeBasic,
	"alaw":     ContentTypeBasic,
	"opus":     ContentTypeOgg,
	"flac":     ContentTypeFLAC,
	"aac":      ContentTypeAAC,
}

// Deepgram adapts canonical requests to Deepgram's Aura /speak endpoint.
type Deepgram struct {
	baseURL string
}

// DeepgramOption configures the Deepgram adapter.
type DeepgramOption func(*Deepgram)

// WithDeepgramBaseURL sets a custom base URL.
func WithDeepgramBaseURL(url string) DeepgramOption {
	return func(d *Deepgram) {
		if url != "" {
			d.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// NewDeepgram creates the Deepgram adapter.
func NewDeepgram(opts ...DeepgramOption) *Deepgram {
	d := &Deepgram{baseURL: deepgramBaseURL}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the provider key.
func (d *Deepgram) Name() string { return DeepgramName }

type deepgramRequest struct {
	Text string `json:"text"`
}

// deepgramQuery carries every synthesis option; the body only holds text.
type deepgramQuery struct {
	Model      string  `schema:"model"`
	Encoding   *string `schema:"encoding,omitempty"`
	Container  *string `schema:"container,omitempty"`
	SampleRate *int    `schema:"sample_rate,omitempty"`
	BitRate    *int    `schema:"bit_rate,omitempty"`
}

// deepgramModel joins model and voice the way Deepgram names its voices,
// e.g. "aura-2" + "thalia-en" = "aura-2-thalia-en".
func deepgramModel(req *speech.ProcessedSpeechRequest) string {
	if req.Voice == "" {
		return req.Model
	}
	return req.Model + "-" + req.Voice
}

func (d *Deepgram) buildQuery(req *speech.ProcessedSpeechRequest) deepgramQuery {
	query := deepgramQuery{
		Model:      deepgramModel(req),
		Encoding:   speech.LookupPtr[string](req.Extra, "encoding"),
		Container:  speech.LookupPtr[string](req.Extra, "container"),
		SampleRate: speech.LookupPtr[int](req.Extra, "sample_rate"),
		BitRate:    speech.LookupPtr[int](req.Extra, "bit_rate"),
	}
	if query.Encoding == nil && req.ResponseFormat != nil {
		encoding := *req.ResponseFormat
		query.Encoding = &encoding
	}
	return query
}

// Synthesize calls Deepgram with the caller's token using the Token auth scheme.
func (d *Deepgram) Synthesize(ctx context.Context, client speech.HTTPClient, req *speech.ProcessedSpeechRequest, token string) (*speech.SynthesisResult, error) {
	dropUnsupported(ctx, DeepgramName, req, "instructions", "speed")

	query := d.buildQuery(req)
	endpoint, err := encodeQuery(d.baseURL+"/speak", query)
	if err != nil {
		return nil, err
	}

	contentType := ContentTypeMPEG
	if query.Encoding != nil {
		contentType = contentTypeFor(deepgramContentTypes, *query.Encoding, ContentTypeMPEG)
	}
	if query.Container != nil && strings.EqualFold(*query.Container, "none") && contentType == ContentTypeWAV {
		contentType = ContentTypePCM
	}

	return send(ctx, client, upstreamCall{
		provider: DeepgramName,
		url:      endpoint,
		body:     deepgramRequest{Text: req.Input},
		headers: map[string]string{
			"Authorization": "Token " + token,
		},
		contentType: contentType,
	})
}
