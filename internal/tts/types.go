package tts

import (
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Content types the gateway answers with.
const (
	ContentTypeMPEG  = "audio/mpeg"
	ContentTypeOpus  = "audio/opus"
	ContentTypeOgg   = "audio/ogg"
	ContentTypeAAC   = "audio/aac"
	ContentTypeFLAC  = "audio/flac"
	ContentTypeWAV   = "audio/wav"
	ContentTypePCM   = "audio/pcm"
	ContentTypeBasic = "audio/basic" // G.711 mu-law / a-law
)

// contentTypeFor looks up format in table, returning fallback for unknown or
// empty formats.
func contentTypeFor(table map[string]string, format string, fallback string) string {
	if ct, ok := table[strings.ToLower(format)]; ok {
		return ct
	}
	return fallback
}

// contentTypeForPrefix matches format against prefix keys such as "pcm_"
// (ElevenLabs encodes sample rate and bitrate after the codec name).
func contentTypeForPrefix(table map[string]string, format string, fallback string) string {
	format = strings.ToLower(format)
	for prefix, ct := range table {
		if strings.HasPrefix(format, prefix) {
			return ct
		}
	}
	return fallback
}

// NewHTTPClient returns the shared upstream client. Every adapter call goes
// through it; timeout bounds each call end to end.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
