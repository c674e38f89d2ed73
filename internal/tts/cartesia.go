package tts

import (
	"context"
	"strings"

	"github.com/lexiqai/speech-gateway/internal/speech"
)

const (
	// CartesiaName is the provider key in "cartesia/<model>"
	CartesiaName = "cartesia"

	cartesiaBaseURL = "https://api.cartesia.ai"

	// DefaultCartesiaVersion is the API version sent when none is configured
	DefaultCartesiaVersion = "2024-06-10"

	cartesiaDefaultContainer  = "mp3"
	cartesiaDefaultSampleRate = 44100
	cartesiaDefaultBitRate    = 128000
)

var cartesiaContentTypes = map[string]string{
	"mp3": ContentTypeMPEG,
	"wav": ContentTypeWAV,
	"raw": ContentTypePCM,
}

// Cartesia adapts canonical requests to Cartesia's /tts/bytes endpoint.
type Cartesia struct {
	baseURL string
	version string
}

// CartesiaOption configures the Cartesia adapter.
type CartesiaOption func(*Cartesia)

// WithCartesiaBaseURL sets a custom base URL.
func WithCartesiaBaseURL(url string) CartesiaOption {
	return func(c *Cartesia) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithCartesiaVersion sets the Cartesia-Version header.
func WithCartesiaVersion(version string) CartesiaOption {
	return func(c *Cartesia) {
		if version != "" {
			c.version = version
		}
	}
}

// NewCartesia creates the Cartesia adapter.
func NewCartesia(opts ...CartesiaOption) *Cartesia {
	c := &Cartesia{
		baseURL: cartesiaBaseURL,
		version: DefaultCartesiaVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the provider key.
func (c *Cartesia) Name() string { return CartesiaName }

// cartesiaRequest represents the request payload for Cartesia TTS API
type cartesiaRequest struct {
	ModelID          string                   `json:"model_id"`
	Transcript       string                   `json:"transcript"`
	Voice            cartesiaVoice            `json:"voice"`
	OutputFormat     cartesiaOutputFormat     `json:"output_format"`
	Language         *string                  `json:"language,omitempty"`
	GenerationConfig cartesiaGenerationConfig `json:"generation_config"`
}

type cartesiaVoice struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type cartesiaOutputFormat struct {
	Container  string `json:"container"`
	Encoding   string `json:"encoding,omitempty"` // required for wav and raw, e.g. pcm_s16le
	SampleRate int    `json:"sample_rate,omitempty"`
	BitRate    int    `json:"bit_rate,omitempty"` // mp3 only
}

type cartesiaGenerationConfig struct {
	Speed  *float64 `json:"speed,omitempty"`
	Volume *float64 `json:"volume,omitempty"`
}

// outputFormat takes extra.output_format as-is when it names a container,
// otherwise builds one from response_format or the mp3 default.
func (c *Cartesia) outputFormat(ctx context.Context, req *speech.ProcessedSpeechRequest) cartesiaOutputFormat {
	format := lookupObject[cartesiaOutputFormat](ctx, req.Extra, "output_format")
	if format.Container != "" {
		return format
	}

	container := cartesiaDefaultContainer
	if req.ResponseFormat != nil && *req.ResponseFormat != "" {
		container = strings.ToLower(*req.ResponseFormat)
	}

	format = cartesiaOutputFormat{
		Container:  container,
		SampleRate: cartesiaDefaultSampleRate,
	}
	switch container {
	case "mp3":
		format.BitRate = cartesiaDefaultBitRate
	case "wav", "raw":
		format.Encoding = "pcm_s16le"
	}
	return format
}

func (c *Cartesia) buildRequest(ctx context.Context, req *speech.ProcessedSpeechRequest) cartesiaRequest {
	generation := lookupObject[cartesiaGenerationConfig](ctx, req.Extra, "generation_config")
	if req.Speed != nil {
		speed := *req.Speed
		generation.Speed = &speed
	}

	return cartesiaRequest{
		ModelID:    req.Model,
		Transcript: req.Input,
		Voice: cartesiaVoice{
			Mode: "id",
			ID:   req.Voice,
		},
		OutputFormat:     c.outputFormat(ctx, req),
		Language:         speech.LookupPtr[string](req.Extra, "language"),
		GenerationConfig: generation,
	}
}

// Synthesize calls Cartesia with the caller's token in the X-API-Key header.
func (c *Cartesia) Synthesize(ctx context.Context, client speech.HTTPClient, req *speech.ProcessedSpeechRequest, token string) (*speech.SynthesisResult, error) {
	dropUnsupported(ctx, CartesiaName, req, "instructions")

	body := c.buildRequest(ctx, req)

	return send(ctx, client, upstreamCall{
		provider: CartesiaName,
		url:      c.baseURL + "/tts/bytes",
		body:     body,
		headers: map[string]string{
			"X-API-Key":        token,
			"Cartesia-Version": c.version,
		},
		contentType: contentTypeFor(cartesiaContentTypes, body.OutputFormat.Container, ContentTypeMPEG),
	})
}
