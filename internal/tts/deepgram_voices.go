package tts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lexiqai/speech-gateway/internal/speech"
)

var deepgramVoiceFormats = []speech.VoiceFormat{
	{Name: "MP3", Extension: ".mp3", MimeType: ContentTypeMPEG},
	{Name: "WAV", Extension: ".wav", MimeType: ContentTypeWAV},
	{Name: "FLAC", Extension: ".flac", MimeType: ContentTypeFLAC},
	{Name: "AAC", Extension: ".aac", MimeType: ContentTypeAAC},
	{Name: "Opus", Extension: ".opus", MimeType: ContentTypeOgg},
}

// deepgramModelEntry is one entry of GET /v1/models.
type deepgramModelEntry struct {
	Name          string   `json:"name"`
	CanonicalName string   `json:"canonical_name"`
	Architecture  string   `json:"architecture"`
	Languages     []string `json:"languages"`
	Version       string   `json:"version"`
	UUID          string   `json:"uuid"`
}

type deepgramModelsResponse struct {
	TTS []deepgramModelEntry `json:"tts"`
}

// Voices lists Deepgram's TTS models, each of which is a voice.
func (d *Deepgram) Voices(ctx context.Context, client speech.HTTPClient, token string) ([]speech.Voice, error) {
	data, err := exchange(ctx, client, upstreamCall{
		provider: DeepgramName,
		url:      d.baseURL + "/models",
		headers: map[string]string{
			"Authorization": "Token " + token,
			"Accept":        "application/json",
		},
	})
	if err != nil {
		return nil, err
	}

	var models deepgramModelsResponse
	if err := json.Unmarshal(data, &models); err != nil {
		return nil, fmt.Errorf("failed to decode deepgram models: %w", err)
	}

	voices := make([]speech.Voice, 0, len(models.TTS))
	for _, model := range models.TTS {
		languages := make([]speech.VoiceLanguage, 0, len(model.Languages))
		for _, code := range model.Languages {
			// the API returns codes only
			languages = append(languages, speech.VoiceLanguage{Code: code, Title: code})
		}

		voices = append(voices, speech.Voice{
			ID:               model.CanonicalName,
			Name:             model.Name,
			Description:      "Deepgram " + model.Architecture + " voice",
			Labels:           map[string]any{"version": model.Version, "uuid": model.UUID},
			Tags:             []string{},
			Languages:        languages,
			Formats:          deepgramVoiceFormats,
			CompatibleModels: []string{model.Architecture},
		})
	}
	return voices, nil
}
