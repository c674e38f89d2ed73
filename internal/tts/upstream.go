package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gorilla/schema"
	"github.com/rs/zerolog"

	"github.com/lexiqai/speech-gateway/internal/speech"
)

// maxErrorBodyBytes caps how much of a rejected reply is relayed to the caller.
const maxErrorBodyBytes = 64 << 10

// upstreamCall describes one authenticated request to a provider. A nil body
// sends a GET, anything else is POSTed as JSON.
type upstreamCall struct {
	provider    string
	url         string
	body        any
	headers     map[string]string
	contentType string
}

// queryEncoder turns typed query structs into url.Values, skipping nil fields.
var queryEncoder = schema.NewEncoder()

// encodeQuery appends the encoded query struct to base.
func encodeQuery(base string, query any) (string, error) {
	values := url.Values{}
	if err := queryEncoder.Encode(query, values); err != nil {
		return "", fmt.Errorf("failed to encode query: %w", err)
	}
	if len(values) == 0 {
		return base, nil
	}
	return base + "?" + values.Encode(), nil
}

// send performs a synthesis call and wraps the reply as audio of the call's
// content type. It never retries.
func send(ctx context.Context, client speech.HTTPClient, call upstreamCall) (*speech.SynthesisResult, error) {
	audio, err := exchange(ctx, client, call)
	if err != nil {
		return nil, err
	}

	return &speech.SynthesisResult{
		Audio:       audio,
		ContentType: call.contentType,
	}, nil
}

// exchange is the upstream round trip shared by every adapter: encode the
// native body, send it with the provider credential, and translate the reply.
func exchange(ctx context.Context, client speech.HTTPClient, call upstreamCall) ([]byte, error) {
	method := http.MethodGet
	var body io.Reader
	var payloadBytes int
	if call.body != nil {
		payload, err := json.Marshal(call.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", call.provider, err)
		}
		method = http.MethodPost
		body = bytes.NewReader(payload)
		payloadBytes = len(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, call.url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", call.provider, err)
	}
	if call.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, value := range call.headers {
		req.Header.Set(name, value)
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Str("provider", call.provider).
		Str("method", method).
		Str("url", call.url).
		Int("body_bytes", payloadBytes).
		Msg("Sending upstream request")

	resp, err := client.Do(req)
	if err != nil {
		return nil, speech.NewUpstreamTransportError(call.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		text := string(body)
		if readErr != nil {
			text = fmt.Sprintf("could not read error body: %v", readErr)
		}
		logger.Warn().
			Str("provider", call.provider).
			Int("status", resp.StatusCode).
			Msg("Upstream rejected request")
		return nil, speech.NewUpstreamRejectedError(call.provider, resp.StatusCode, text)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, speech.NewUpstreamTransportError(call.provider, fmt.Errorf("failed to read response: %w", err))
	}
	return data, nil
}

// dropUnsupported logs canonical fields a provider has no place for.
func dropUnsupported(ctx context.Context, provider string, req *speech.ProcessedSpeechRequest, fields ...string) {
	logger := zerolog.Ctx(ctx)
	for _, field := range fields {
		switch field {
		case "instructions":
			if req.Instructions == nil {
				continue
			}
		case "speed":
			if req.Speed == nil {
				continue
			}
		case "response_format":
			if req.ResponseFormat == nil {
				continue
			}
		}
		logger.Debug().
			Str("provider", provider).
			Str("field", field).
			Msg("Field not supported by provider, dropping")
	}
}

// lookupObject decodes extra[key] into a fresh T, falling back to the zero
// value when the key is absent or malformed.
func lookupObject[T any](ctx context.Context, extra speech.Extra, key string) T {
	value, ok := speech.Lookup[T](extra, key)
	if !ok && extra.Has(key) {
		zerolog.Ctx(ctx).Debug().
			Str("field", key).
			Msg("Ignoring malformed extra field")
	}
	return value
}
