package tts

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lexiqai/speech-gateway/internal/speech"
)

const (
	// ElevenLabsName is the provider key in "elevenlabs/<model>"
	ElevenLabsName = "elevenlabs"

	elevenLabsBaseURL = "https://api.elevenlabs.io/v1"

	// elevenLabsAPIKeyHeader carries the credential; ElevenLabs does not accept bearer auth
	elevenLabsAPIKeyHeader = "xi-api-key"
)

// output_format values look like "mp3_44100_128" or "pcm_16000".
var elevenLabsContentTypes = map[string]string{
	"mp3_":  ContentTypeMPEG,
	"pcm_":  ContentTypePCM,
	"ulaw_": ContentTypeBasic,
	"alaw_": ContentTypeBasic,
	"opus_": ContentTypeOpus,
}

// ElevenLabs adapts canonical requests to ElevenLabs' text-to-speech convert endpoint.
type ElevenLabs struct {
	baseURL string
}

// ElevenLabsOption configures the ElevenLabs adapter.
type ElevenLabsOption func(*ElevenLabs)

// WithElevenLabsBaseURL sets a custom base URL.
func WithElevenLabsBaseURL(url string) ElevenLabsOption {
	return func(e *ElevenLabs) {
		if url != "" {
			e.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// NewElevenLabs creates the ElevenLabs adapter.
func NewElevenLabs(opts ...ElevenLabsOption) *ElevenLabs {
	e := &ElevenLabs{baseURL: elevenLabsBaseURL}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the provider key.
func (e *ElevenLabs) Name() string { return ElevenLabsName }

// elevenLabsRequest is the body of POST /text-to-speech/{voice_id}.
// https://elevenlabs.io/docs/api-reference/text-to-speech/convert
type elevenLabsRequest struct {
	Text                            string                    `json:"text"`
	ModelID                         string                    `json:"model_id"`
	LanguageCode                    *string                   `json:"language_code,omitempty"`
	VoiceSettings                   elevenLabsVoiceSettings   `json:"voice_settings"`
	PronunciationDictionaryLocators []pronunciationDictionary `json:"pronunciation_dictionary_locators,omitempty"`
	Seed                            *int64                    `json:"seed,omitempty"`
	PreviousText                    *string                   `json:"previous_text,omitempty"`
	NextText                        *string                   `json:"next_text,omitempty"`
	PreviousRequestIDs              []string                  `json:"previous_request_ids,omitempty"`
	NextRequestIDs                  []string                  `json:"next_request_ids,omitempty"`
	ApplyTextNormalization          *string                   `json:"apply_text_normalization,omitempty"`
	ApplyLanguageTextNormalization  *bool                     `json:"apply_language_text_normalization,omitempty"`
}

// elevenLabsVoiceSettings overrides the stored settings of a voice for one request.
type elevenLabsVoiceSettings struct {
	Stability       *float64 `json:"stability,omitempty"`
	SimilarityBoost *float64 `json:"similarity_boost,omitempty"`
	Style           *float64 `json:"style,omitempty"`
	UseSpeakerBoost *bool    `json:"use_speaker_boost,omitempty"`
	Speed           *float64 `json:"speed,omitempty"`
}

type pronunciationDictionary struct {
	PronunciationDictionaryID string  `json:"pronunciation_dictionary_id"`
	VersionID                 *string `json:"version_id,omitempty"`
}

// elevenLabsQuery is encoded into the request URL.
type elevenLabsQuery struct {
	EnableLogging *bool   `schema:"enable_logging,omitempty"`
	OutputFormat  *string `schema:"output_format,omitempty"`
}

func (e *ElevenLabs) buildRequest(ctx context.Context, req *speech.ProcessedSpeechRequest) elevenLabsRequest {
	settings := lookupObject[elevenLabsVoiceSettings](ctx, req.Extra, "voice_settings")
	if req.Speed != nil {
		speed := *req.Speed
		settings.Speed = &speed
	}

	return elevenLabsRequest{
		Text:                            req.Input,
		ModelID:                         req.Model,
		LanguageCode:                    speech.LookupPtr[string](req.Extra, "language_code"),
		VoiceSettings:                   settings,
		PronunciationDictionaryLocators: lookupObject[[]pronunciationDictionary](ctx, req.Extra, "pronunciation_dictionary_locators"),
		Seed:                            elevenLabsSeed(ctx, req.Extra),
		PreviousText:                    speech.LookupPtr[string](req.Extra, "previous_text"),
		NextText:                        speech.LookupPtr[string](req.Extra, "next_text"),
		PreviousRequestIDs:              lookupObject[[]string](ctx, req.Extra, "previous_request_ids"),
		NextRequestIDs:                  lookupObject[[]string](ctx, req.Extra, "next_request_ids"),
		ApplyTextNormalization:          speech.LookupPtr[string](req.Extra, "apply_text_normalization"),
		ApplyLanguageTextNormalization:  speech.LookupPtr[bool](req.Extra, "apply_language_text_normalization"),
	}
}

// elevenLabsSeed accepts any JSON number with an integral value, so 42 and
// 42.0 both reach ElevenLabs as 42. Fractional or out-of-range seeds are dropped.
func elevenLabsSeed(ctx context.Context, extra speech.Extra) *int64 {
	value, ok := speech.Lookup[float64](extra, "seed")
	if !ok {
		if extra.Has("seed") {
			zerolog.Ctx(ctx).Debug().Msg("Ignoring non-numeric seed")
		}
		return nil
	}
	if value != math.Trunc(value) || math.Abs(value) >= 1<<63 {
		zerolog.Ctx(ctx).Debug().Float64("seed", value).Msg("Ignoring non-integral seed")
		return nil
	}
	seed := int64(value)
	return &seed
}

func (e *ElevenLabs) buildQuery(req *speech.ProcessedSpeechRequest) elevenLabsQuery {
	query := elevenLabsQuery{
		EnableLogging: speech.LookupPtr[bool](req.Extra, "enable_logging"),
		OutputFormat:  speech.LookupPtr[string](req.Extra, "output_format"),
	}
	if query.OutputFormat == nil && req.ResponseFormat != nil {
		format := *req.ResponseFormat
		query.OutputFormat = &format
	}
	return query
}

// Synthesize calls ElevenLabs with the caller's token in the xi-api-key header.
func (e *ElevenLabs) Synthesize(ctx context.Context, client speech.HTTPClient, req *speech.ProcessedSpeechRequest, token string) (*speech.SynthesisResult, error) {
	dropUnsupported(ctx, ElevenLabsName, req, "instructions")

	query := e.buildQuery(req)
	endpoint, err := encodeQuery(fmt.Sprintf("%s/text-to-speech/%s", e.baseURL, url.PathEscape(req.Voice)), query)
	if err != nil {
		return nil, err
	}

	contentType := ContentTypeMPEG
	if query.OutputFormat != nil {
		contentType = contentTypeForPrefix(elevenLabsContentTypes, *query.OutputFormat, ContentTypeMPEG)
	}

	return send(ctx, client, upstreamCall{
		provider: ElevenLabsName,
		url:      endpoint,
		body:     e.buildRequest(ctx, req),
		headers: map[string]string{
			elevenLabsAPIKeyHeader: token,
		},
		contentType: contentType,
	})
}
