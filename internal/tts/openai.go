package tts

import (
	"context"
	"strings"

	"github.com/lexiqai/speech-gateway/internal/speech"
)

const (
	// OpenAIName is the provider key in "openai/<model>"
	OpenAIName = "openai"

	openAIBaseURL = "https://api.openai.com/v1"
)

var openAIContentTypes = map[string]string{
	"mp3":  ContentTypeMPEG,
	"opus": ContentTypeOpus,
	"aac":  ContentTypeAAC,
	"flac": ContentTypeFLAC,
	"wav":  ContentTypeWAV,
	"pcm":  ContentTypePCM,
}

// OpenAI adapts canonical requests to OpenAI's /audio/speech endpoint.
// The canonical schema is OpenAI's own, so translation is a straight copy.
type OpenAI struct {
	baseURL string
}

// OpenAIOption configures the OpenAI adapter.
type OpenAIOption func(*OpenAI)

// WithOpenAIBaseURL points the adapter at a compatible endpoint.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(o *OpenAI) {
		if url != "" {
			o.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// NewOpenAI creates the OpenAI adapter.
func NewOpenAI(opts ...OpenAIOption) *OpenAI {
	o := &OpenAI{baseURL: openAIBaseURL}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name returns the provider key.
func (o *OpenAI) Name() string { return OpenAIName }

// openAIRequest is the body of POST /audio/speech.
// https://platform.openai.com/docs/api-reference/audio/createSpeech
type openAIRequest struct {
	Input          string   `json:"input"`
	Model          string   `json:"model"`
	Voice          string   `json:"voice"`
	Instructions   *string  `json:"instructions,omitempty"`
	ResponseFormat *string  `json:"response_format,omitempty"`
	Speed          *float64 `json:"speed,omitempty"`
}

func (o *OpenAI) buildRequest(req *speech.ProcessedSpeechRequest) openAIRequest {
	return openAIRequest{
		Input:          req.Input,
		Model:          req.Model,
		Voice:          req.Voice,
		Instructions:   req.Instructions,
		ResponseFormat: req.ResponseFormat,
		Speed:          req.Speed,
	}
}

// Synthesize calls OpenAI with the caller's token as a bearer credential.
func (o *OpenAI) Synthesize(ctx context.Context, client speech.HTTPClient, req *speech.ProcessedSpeechRequest, token string) (*speech.SynthesisResult, error) {
	format := ""
	if req.ResponseFormat != nil {
		format = *req.ResponseFormat
	}

	return send(ctx, client, upstreamCall{
		provider: OpenAIName,
		url:      o.baseURL + "/audio/speech",
		body:     o.buildRequest(req),
		headers: map[string]string{
			"Authorization": "Bearer " + token,
		},
		contentType: contentTypeFor(openAIContentTypes, format, ContentTypeMPEG),
	})
}
