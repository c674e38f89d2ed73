package speech

import "context"

// Voice describes one selectable voice of a provider.
type Voice struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Labels            map[string]any  `json:"labels"`
	Tags              []string        `json:"tags"`
	Languages         []VoiceLanguage `json:"languages"`
	Formats           []VoiceFormat   `json:"formats"`
	CompatibleModels  []string        `json:"compatible_models"`
	PredefinedOptions map[string]any  `json:"predefined_options,omitempty"`
	PreviewAudioURL   string          `json:"preview_audio_url,omitempty"`
}

// VoiceLanguage is a language a voice can speak.
type VoiceLanguage struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// VoiceFormat is an audio encoding a voice can be rendered in.
type VoiceFormat struct {
	Name      string `json:"name"`
	Extension string `json:"extension"`
	MimeType  string `json:"mime_type"`
}

// VoiceLister is implemented by providers that can enumerate their voices.
// Listing may call the provider with the relayed token, at most once.
type VoiceLister interface {
	Voices(ctx context.Context, client HTTPClient, token string) ([]Voice, error)
}

// ListVoices returns the voices of the named provider. Unknown providers are
// an UnsupportedProvider error; providers without a catalogue are a
// Validation error.
func (r *Registry) ListVoices(ctx context.Context, client HTTPClient, provider, token string) ([]Voice, error) {
	p, ok := r.Lookup(provider)
	if !ok {
		return nil, NewUnsupportedProviderError(provider)
	}
	lister, ok := p.(VoiceLister)
	if !ok {
		return nil, NewValidationError("voice listing is not supported for provider: %s", provider)
	}
	return lister.Voices(ctx, client, token)
}
