package tts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexiqai/speech-gateway/internal/config"
	"github.com/lexiqai/speech-gateway/internal/speech"
)

// captured is one request observed by the fake upstream.
type captured struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   map[string]any
}

// fakeUpstream records every request and answers with status and body.
type fakeUpstream struct {
	*httptest.Server

	mu       sync.Mutex
	requests []captured
}

func newFakeUpstream(t *testing.T, status int, body []byte) *fakeUpstream {
	t.Helper()

	f := &fakeUpstream{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		if len(raw) > 0 {
			assert.NoError(t, json.Unmarshal(raw, &decoded))
		}

		f.mu.Lock()
		f.requests = append(f.requests, captured{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   decoded,
		})
		f.mu.Unlock()

		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeUpstream) only(t *testing.T) captured {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.requests, 1)
	return f.requests[0]
}

// processed decodes a gateway request body and resolves its model.
func processed(t *testing.T, body string) *speech.ProcessedSpeechRequest {
	t.Helper()
	var raw speech.RawSpeechRequest
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	req, err := speech.Resolve(raw)
	require.NoError(t, err)
	return req
}

func TestOpenAI_Synthesize(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, []byte{1, 2, 3})
	adapter := NewOpenAI(WithOpenAIBaseURL(upstream.URL + "/"))

	req := processed(t, `{
		"model": "openai/gpt-4o-mini-tts",
		"input": "Hello world",
		"voice": "alloy",
		"instructions": "cheerful",
		"response_format": "opus",
		"speed": 1.25,
		"stream_format": "audio"
	}`)

	result, err := adapter.Synthesize(context.Background(), upstream.Client(), req, "sk-test")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, result.Audio)
	assert.Equal(t, ContentTypeOpus, result.ContentType)

	got := upstream.only(t)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/audio/speech", got.Path)
	assert.Equal(t, "Bearer sk-test", got.Header.Get("Authorization"))
	assert.Empty(t, got.Header.Get("xi-api-key"))
	assert.Equal(t, map[string]any{
		"input":           "Hello world",
		"model":           "gpt-4o-mini-tts",
		"voice":           "alloy",
		"instructions":    "cheerful",
		"response_format": "opus",
		"speed":           1.25,
	}, got.Body)
}

func TestOpenAI_OmitsUnsetOptionals(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, []byte("mp3"))
	adapter := NewOpenAI(WithOpenAIBaseURL(upstream.URL))

	req := processed(t, `{"model":"openai/tts-1","input":"hi","voice":"nova"}`)
	result, err := adapter.Synthesize(context.Background(), upstream.Client(), req, "sk-test")
	require.NoError(t, err)
	assert.Equal(t, ContentTypeMPEG, result.ContentType)

	got := upstream.only(t)
	assert.Equal(t, map[string]any{"input": "hi", "model": "tts-1", "voice": "nova"}, got.Body)
}

func TestOpenAI_Rejected(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusTooManyRequests, []byte("rate limited"))
	adapter := NewOpenAI(WithOpenAIBaseURL(upstream.URL))

	req := processed(t, `{"model":"openai/tts-1","input":"hi","voice":"nova"}`)
	_, err := adapter.Synthesize(context.Background(), upstream.Client(), req, "sk-test")

	gwErr, ok := speech.AsError(err)
	require.True(t, ok)
	assert.Equal(t, speech.KindUpstreamRejected, gwErr.Kind)
	assert.Equal(t, OpenAIName, gwErr.Provider)
	assert.Equal(t, http.StatusTooManyRequests, gwErr.Status)
	assert.Equal(t, "rate limited", gwErr.Body)
}

func TestElevenLabs_Synthesize(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, []byte{1, 2, 3})
	adapter := NewElevenLabs(WithElevenLabsBaseURL(upstream.URL))

	req := processed(t, `{
		"model": "elevenlabs/eleven_multilingual_v2",
		"input": "Bonjour",
		"voice": "21m00Tcm4TlvDq8ikWAM",
		"instructions": "ignored",
		"speed": 1.1,
		"language_code": "fr",
		"seed": 42,
		"previous_text": "Salut.",
		"apply_text_normalization": "auto",
		"apply_language_text_normalization": true,
		"previous_request_ids": ["a", "b"],
		"pronunciation_dictionary_locators": [{"pronunciation_dictionary_id": "dict", "version_id": "v1"}],
		"voice_settings": {"stability": 0.4, "similarity_boost": 0.8},
		"enable_logging": false,
		"output_format": "pcm_16000"
	}`)

	result, err := adapter.Synthesize(context.Background(), upstream.Client(), req, "xi-secret")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, result.Audio)
	assert.Equal(t, ContentTypePCM, result.ContentType)

	got := upstream.only(t)
	assert.Equal(t, "/text-to-speech/21m00Tcm4TlvDq8ikWAM", got.Path)
	assert.Equal(t, "xi-secret", got.Header.Get("xi-api-key"))
	assert.Empty(t, got.Header.Get("Authorization"), "credential must travel in exactly one header")
	assert.Equal(t, []string{"false"}, got.Query["enable_logging"])
	assert.Equal(t, []string{"pcm_16000"}, got.Query["output_format"])

	assert.Equal(t, "Bonjour", got.Body["text"])
	assert.Equal(t, "eleven_multilingual_v2", got.Body["model_id"])
	assert.Equal(t, "fr", got.Body["language_code"])
	assert.Equal(t, float64(42), got.Body["seed"])
	assert.Equal(t, "Salut.", got.Body["previous_text"])
	assert.Equal(t, "auto", got.Body["apply_text_normalization"])
	assert.Equal(t, true, got.Body["apply_language_text_normalization"])
	assert.Equal(t, []any{"a", "b"}, got.Body["previous_request_ids"])
	assert.Equal(t, []any{
		map[string]any{"pronunciation_dictionary_id": "dict", "version_id": "v1"},
	}, got.Body["pronunciation_dictionary_locators"])
	assert.Equal(t, map[string]any{
		"stability":        0.4,
		"similarity_boost": 0.8,
		"speed":            1.1,
	}, got.Body["voice_settings"])
	assert.NotContains(t, got.Body, "instructions")
	assert.NotContains(t, got.Body, "enable_logging")
	assert.NotContains(t, got.Body, "output_format")
}

func TestElevenLabs_CanonicalSpeedOverridesVoiceSettings(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, []byte{1})
	adapter := NewElevenLabs(WithElevenLabsBaseURL(upstream.URL))

	req := processed(t, `{
		"model": "elevenlabs/eleven_turbo_v2",
		"input": "hi",
		"voice": "v",
		"speed": 5,
		"voice_settings": {"speed": 9, "style": 0.5}
	}`)

	_, err := adapter.Synthesize(context.Background(), upstream.Client(), req, "k")
	require.NoError(t, err)

	settings := upstream.only(t).Body["voice_settings"].(map[string]any)
	assert.Equal(t, float64(5), settings["speed"])
	assert.Equal(t, 0.5, settings["style"])
}

func TestElevenLabs_VoiceSettingsSpeedKeptWithoutCanonicalSpeed(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, []byte{1})
	adapter := NewElevenLabs(WithElevenLabsBaseURL(upstream.URL))

	req := processed(t, `{
		"model": "elevenlabs/eleven_turbo_v2",
		"input": "hi",
		"voice": "v",
		"voice_settings": {"speed": 0.9}
	}`)

	_, err := adapter.Synthesize(context.Background(), upstream.Client(), req, "k")
	require.NoError(t, err)

	settings := upstream.only(t).Body["voice_settings"].(map[string]any)
	assert.Equal(t, 0.9, settings["speed"])
}

func TestElevenLabs_MalformedExtrasOmitted(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, []byte{1})
	adapter := NewElevenLabs(WithElevenLabsBaseURL(upstream.URL))

	req := processed(t, `{
		"model": "elevenlabs/eleven_turbo_v2",
		"input": "hi",
		"voice": "v",
		"seed": "not-a-number",
		"language_code": 7,
		"voice_settings": "loud",
		"previous_request_ids": "abc"
	}`)

	_, err := adapter.Synthesize(context.Background(), upstream.Client(), req, "k")
	require.NoError(t, err)

	got := upstream.only(t)
	assert.NotContains(t, got.Body, "seed")
	assert.NotContains(t, got.Body, "language_code")
	assert.NotContains(t, got.Body, "previous_request_ids")
	assert.Equal(t, map[string]any{}, got.Body["voice_settings"])
	assert.Empty(t, got.Query)
}

func TestElevenLabs_Seed(t *testing.T) {
	tests := []struct {
		name string
		seed string
		want any
	}{
		{name: "integer", seed: `42`, want: float64(42)},
		{name: "integral float", seed: `42.0`, want: float64(42)},
		{name: "exponent", seed: `1e3`, want: float64(1000)},
		{name: "fractional", seed: `42.5`, want: nil},
		{name: "string", seed: `"42"`, want: nil},
		{name: "null", seed: `null`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := newFakeUpstream(t, http.StatusOK, []byte{1})
			adapter := NewElevenLabs(WithElevenLabsBaseURL(upstream.URL))

			req := processed(t, `{"model":"elevenlabs/m","input":"hi","voice":"v","seed":`+tt.seed+`}`)
			_, err := adapter.Synthesize(context.Background(), upstream.Client(), req, "k")
			require.NoError(t, err)

			got := upstream.only(t)
			if tt.want == nil {
				assert.NotContains(t, got.Body, "seed")
				return
			}
			assert.Equal(t, tt.want, got.Body["seed"])
		})
	}
}

func TestElevenLabs_CaseVariantVoiceIgnored(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, []byte{1})
	adapter := NewElevenLabs(WithElevenLabsBaseURL(upstream.URL))

	req := processed(t, `{"model":"elevenlabs/m","input":"hi","voice":"v","Voice":"X"}`)
	_, err := adapter.Synthesize(context.Background(), upstream.Client(), req, "k")
	require.NoError(t, err)
	assert.Equal(t, "/text-to-speech/v", upstream.only(t).Path)
}

func TestElevenLabs_ResponseFormatFallsBackToOutputFormat(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, []byte{1})
	adapter := NewElevenLabs(WithElevenLabsBaseURL(upstream.URL))

	req := processed(t, `{"model":"elevenlabs/m","input":"hi","voice":"v","response_format":"ulaw_8000"}`)
	result, err := adapter.Synthesize(context.Background(), upstream.Client(), req, "k")
	require.NoError(t, err)
	assert.Equal(t, ContentTypeBasic, result.ContentType)
	assert.Equal(t, []string{"ulaw_8000"}, upstream.only(t).Query["output_format"])
}

func TestElevenLabs_VoiceIsPathEscaped(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, []byte{1})
	adapter := NewElevenLabs(WithElevenLabsBaseURL(upstream.URL))

	req := processed(t, `{"model":"elevenlabs/m","input":"hi","voice":"a/b c"}`)
	_, err := adapter.Synthesize(context.Background(), upstream.Client(), req, "k")
	require.NoError(t, err)
	assert.Equal(t, "/text-to-speech/a%2Fb%20c", upstream.only(t).Path)
}

func TestCartesia_Synthesize(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, []byte{1, 2, 3})
	adapter := NewCartesia(WithCartesiaBaseURL(upstream.URL), WithCartesiaVersion("2025-04-16"))

	req := processed(t, `{
		"model": "cartesia/sonic-2",
		"input": "Hello",
		"voice": "a0e99841-438c-4a64-b679-ae501e7d6091",
		"speed": 1.2,
		"language": "en",
		"generation_config": {"volume": 0.8, "speed": 0.7}
	}`)

	result, err := adapter.Synthesize(context.Background(), upstream.Client(), req, "ck-test")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, result.Audio)
	assert.Equal(t, ContentTypeMPEG, result.ContentType)

	got := upstream.only(t)
	assert.Equal(t, "/tts/bytes", got.Path)
	assert.Equal(t, "ck-test", got.Header.Get("X-API-Key"))
	assert.Equal(t, "2025-04-16", got.Header.Get("Cartesia-Version"))
	assert.Empty(t, got.Header.Get("Authorization"))

	assert.Equal(t, "sonic-2", got.Body["model_id"])
	assert.Equal(t, "Hello", got.Body["transcript"])
	assert.Equal(t, "en", got.Body["language"])
	assert.Equal(t, map[string]any{"mode": "id", "id": "a0e99841-438c-4a64-b679-ae501e7d6091"}, got.Body["voice"])
	assert.Equal(t, map[string]any{
		"container":   "mp3",
		"sample_rate": float64(44100),
		"bit_rate":    float64(128000),
	}, got.Body["output_format"])
	assert.Equal(t, map[string]any{"speed": 1.2, "volume": 0.8}, got.Body["generation_config"])
}

func TestCartesia_OutputFormat(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		want        map[string]any
		contentType string
	}{
		{
			name: "wav response format",
			body: `{"model":"cartesia/sonic","input":"x","voice":"v","response_format":"WAV"}`,
			want: map[string]any{
				"container":   "wav",
				"encoding":    "pcm_s16le",
				"sample_rate": float64(44100),
			},
			contentType: ContentTypeWAV,
		},
		{
			name: "explicit output format",
			body: `{"model":"cartesia/sonic","input":"x","voice":"v","response_format":"mp3","output_format":{"container":"raw","encoding":"pcm_f32le","sample_rate":16000}}`,
			want: map[string]any{
				"container":   "raw",
				"encoding":    "pcm_f32le",
				"sample_rate": float64(16000),
			},
			contentType: ContentTypePCM,
		},
		{
			name: "output format without container ignored",
			body: `{"model":"cartesia/sonic","input":"x","voice":"v","output_format":{"sample_rate":8000}}`,
			want: map[string]any{
				"container":   "mp3",
				"sample_rate": float64(44100),
				"bit_rate":    float64(128000),
			},
			contentType: ContentTypeMPEG,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := newFakeUpstream(t, http.StatusOK, []byte{1})
			adapter := NewCartesia(WithCartesiaBaseURL(upstream.URL))

			result, err := adapter.Synthesize(context.Background(), upstream.Client(), processed(t, tt.body), "k")
			require.NoError(t, err)
			assert.Equal(t, tt.contentType, result.ContentType)

			got := upstream.only(t)
			assert.Equal(t, tt.want, got.Body["output_format"])
			assert.Equal(t, DefaultCartesiaVersion, got.Header.Get("Cartesia-Version"))
		})
	}
}

func TestDeepgram_Synthesize(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, []byte{1, 2, 3})
	adapter := NewDeepgram(WithDeepgramBaseURL(upstream.URL))

	req := processed(t, `{
		"model": "deepgram/aura-2",
		"input": "Hello there",
		"voice": "thalia-en",
		"speed": 2,
		"encoding": "linear16",
		"sample_rate": 24000,
		"container": "none"
	}`)

	result, err := adapter.Synthesize(context.Background(), upstream.Client(), req, "dg-test")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, result.Audio)
	assert.Equal(t, ContentTypePCM, result.ContentType)

	got := upstream.only(t)
	assert.Equal(t, "/speak", got.Path)
	assert.Equal(t, "Token dg-test", got.Header.Get("Authorization"))
	assert.Equal(t, map[string]any{"text": "Hello there"}, got.Body)
	assert.Equal(t, map[string][]string{
		"model":       {"aura-2-thalia-en"},
		"encoding":    {"linear16"},
		"container":   {"none"},
		"sample_rate": {"24000"},
	}, got.Query)
}

func TestDeepgram_ModelOnlyWithoutVoice(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, []byte{1})
	adapter := NewDeepgram(WithDeepgramBaseURL(upstream.URL))

	req := processed(t, `{"model":"deepgram/aura-asteria-en","input":"hi","voice":"","response_format":"opus"}`)
	result, err := adapter.Synthesize(context.Background(), upstream.Client(), req, "dg")
	require.NoError(t, err)
	assert.Equal(t, ContentTypeOgg, result.ContentType)

	got := upstream.only(t)
	assert.Equal(t, map[string][]string{
		"model":    {"aura-asteria-en"},
		"encoding": {"opus"},
	}, got.Query)
}

func TestDeepgram_Rejected(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusUnauthorized, []byte(`{"err_code":"INVALID_AUTH"}`))
	adapter := NewDeepgram(WithDeepgramBaseURL(upstream.URL))

	req := processed(t, `{"model":"deepgram/aura-2","input":"hi","voice":"thalia-en"}`)
	_, err := adapter.Synthesize(context.Background(), upstream.Client(), req, "bad")

	gwErr, ok := speech.AsError(err)
	require.True(t, ok)
	assert.Equal(t, speech.KindUpstreamRejected, gwErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, gwErr.Status)
	assert.Equal(t, `{"err_code":"INVALID_AUTH"}`, gwErr.Body)
}

func TestOpenAI_Voices(t *testing.T) {
	client := &countingClient{next: http.DefaultClient}

	voices, err := NewOpenAI().Voices(context.Background(), client, "sk-test")
	require.NoError(t, err)
	assert.Equal(t, 0, client.calls, "catalogue is static")
	require.Len(t, voices, len(openAIVoiceIDs))

	alloy := voices[0]
	assert.Equal(t, "alloy", alloy.ID)
	assert.Equal(t, "Alloy", alloy.Name)
	assert.Equal(t, "https://cdn.openai.com/API/docs/audio/alloy.wav", alloy.PreviewAudioURL)
	assert.Contains(t, alloy.CompatibleModels, "tts-1")
	assert.Contains(t, alloy.Languages, speech.VoiceLanguage{Code: "en-US", Title: "English"})
	assert.Contains(t, alloy.Formats, speech.VoiceFormat{Name: "MP3", Extension: ".mp3", MimeType: ContentTypeMPEG})
	assert.NotNil(t, alloy.Tags)
}

const deepgramModelsBody = `{
	"stt": [{"name": "nova-2", "canonical_name": "nova-2-general"}],
	"tts": [
		{
			"name": "asteria",
			"canonical_name": "aura-asteria-en",
			"architecture": "aura",
			"languages": ["en", "en-US"],
			"version": "2023-11-14.3290",
			"uuid": "ecb1e7a5-d2d5-4d5e-8a5b-6a1b2c3d4e5f"
		}
	]
}`

func TestDeepgram_Voices(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, []byte(deepgramModelsBody))
	adapter := NewDeepgram(WithDeepgramBaseURL(upstream.URL))

	voices, err := adapter.Voices(context.Background(), upstream.Client(), "dg-test")
	require.NoError(t, err)

	got := upstream.only(t)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/models", got.Path)
	assert.Equal(t, "Token dg-test", got.Header.Get("Authorization"))
	assert.Empty(t, got.Header.Get("Content-Type"))
	assert.Nil(t, got.Body)

	require.Len(t, voices, 1)
	voice := voices[0]
	assert.Equal(t, "aura-asteria-en", voice.ID)
	assert.Equal(t, "asteria", voice.Name)
	assert.Equal(t, "Deepgram aura voice", voice.Description)
	assert.Equal(t, []string{"aura"}, voice.CompatibleModels)
	assert.Equal(t, []speech.VoiceLanguage{{Code: "en", Title: "en"}, {Code: "en-US", Title: "en-US"}}, voice.Languages)
	assert.Equal(t, "2023-11-14.3290", voice.Labels["version"])
}

func TestDeepgram_VoicesRejected(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusUnauthorized, []byte(`{"err_code":"INVALID_AUTH"}`))
	adapter := NewDeepgram(WithDeepgramBaseURL(upstream.URL))

	_, err := adapter.Voices(context.Background(), upstream.Client(), "bad")

	gwErr, ok := speech.AsError(err)
	require.True(t, ok)
	assert.Equal(t, speech.KindUpstreamRejected, gwErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, gwErr.Status)
	assert.Equal(t, `{"err_code":"INVALID_AUTH"}`, gwErr.Body)
	upstream.only(t)
}

func TestDeepgram_VoicesMalformedReply(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, []byte(`not json`))
	adapter := NewDeepgram(WithDeepgramBaseURL(upstream.URL))

	_, err := adapter.Voices(context.Background(), upstream.Client(), "dg")
	require.Error(t, err)
	_, ok := speech.AsError(err)
	assert.False(t, ok, "a malformed catalogue is an internal failure")
}

func TestAdapters_DefaultBaseURLs(t *testing.T) {
	assert.Equal(t, "https://api.openai.com/v1", NewOpenAI(WithOpenAIBaseURL("")).baseURL)
	assert.Equal(t, "https://api.elevenlabs.io/v1", NewElevenLabs().baseURL)
	assert.Equal(t, "https://api.cartesia.ai", NewCartesia(WithCartesiaVersion("")).baseURL)
	assert.Equal(t, DefaultCartesiaVersion, NewCartesia().version)
	assert.Equal(t, "https://api.deepgram.com/v1", NewDeepgram().baseURL)
}

func TestNewRegistry(t *testing.T) {
	cfg := &config.Config{
		OpenAIBaseURL:   "http://openai.local",
		CartesiaVersion: "2024-11-13",
	}

	registry := NewRegistry(cfg)
	assert.Equal(t, []string{"cartesia", "deepgram", "elevenlabs", "openai"}, registry.Names())

	provider, ok := registry.Lookup(OpenAIName)
	require.True(t, ok)
	assert.Equal(t, "http://openai.local", provider.(*OpenAI).baseURL)

	provider, ok = registry.Lookup(CartesiaName)
	require.True(t, ok)
	assert.Equal(t, "2024-11-13", provider.(*Cartesia).version)
}
