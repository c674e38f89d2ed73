package tts

import (
	"context"
	"strings"

	"github.com/lexiqai/speech-gateway/internal/speech"
)

// OpenAI publishes no voice listing endpoint; the catalogue is fixed.
// https://platform.openai.com/docs/guides/text-to-speech
var (
	openAIVoiceIDs = []string{"alloy", "ash", "coral", "echo", "fable", "onyx", "nova", "sage", "shimmer"}

	openAIVoiceModels = []string{"tts-1", "tts-1-hd", "gpt-4o-mini-tts"}

	openAIVoiceLanguages = []speech.VoiceLanguage{
		{Code: "af-ZA", Title: "Afrikaans"},
		{Code: "ar-SA", Title: "Arabic"},
		{Code: "hy-AM", Title: "Armenian"},
		{Code: "az-AZ", Title: "Azerbaijani"},
		{Code: "be-BY", Title: "Belarusian"},
		{Code: "bs-BA", Title: "Bosnian"},
		{Code: "bg-BG", Title: "Bulgarian"},
		{Code: "ca-ES", Title: "Catalan"},
		{Code: "zh-CN", Title: "Chinese"},
		{Code: "hr-HR", Title: "Croatian"},
		{Code: "cs-CZ", Title: "Czech"},
		{Code: "da-DK", Title: "Danish"},
		{Code: "nl-NL", Title: "Dutch"},
		{Code: "en-US", Title: "English"},
		{Code: "et-EE", Title: "Estonian"},
		{Code: "fi-FI", Title: "Finnish"},
		{Code: "fr-FR", Title: "French"},
		{Code: "gl-ES", Title: "Galician"},
		{Code: "de-DE", Title: "German"},
		{Code: "el-GR", Title: "Greek"},
		{Code: "he-IL", Title: "Hebrew"},
		{Code: "hi-IN", Title: "Hindi"},
		{Code: "hu-HU", Title: "Hungarian"},
		{Code: "is-IS", Title: "Icelandic"},
		{Code: "id-ID", Title: "Indonesian"},
		{Code: "it-IT", Title: "Italian"},
		{Code: "ja-JP", Title: "Japanese"},
		{Code: "kn-IN", Title: "Kannada"},
		{Code: "kk-KZ", Title: "Kazakh"},
		{Code: "ko-KR", Title: "Korean"},
		{Code: "lv-LV", Title: "Latvian"},
		{Code: "lt-LT", Title: "Lithuanian"},
		{Code: "mk-MK", Title: "Macedonian"},
		{Code: "ms-MY", Title: "Malay"},
		{Code: "mr-IN", Title: "Marathi"},
		{Code: "mi-NZ", Title: "Maori"},
		{Code: "ne-NP", Title: "Nepali"},
		{Code: "no-NO", Title: "Norwegian"},
		{Code: "fa-IR", Title: "Persian"},
		{Code: "pl-PL", Title: "Polish"},
		{Code: "pt-PT", Title: "Portuguese"},
		{Code: "ro-RO", Title: "Romanian"},
		{Code: "ru-RU", Title: "Russian"},
		{Code: "sr-RS", Title: "Serbian"},
		{Code: "sk-SK", Title: "Slovak"},
		{Code: "sl-SI", Title: "Slovenian"},
		{Code: "es-ES", Title: "Spanish"},
		{Code: "sw-KE", Title: "Swahili"},
		{Code: "sv-SE", Title: "Swedish"},
		{Code: "tl-PH", Title: "Tagalog"},
		{Code: "ta-IN", Title: "Tamil"},
		{Code: "th-TH", Title: "Thai"},
		{Code: "tr-TR", Title: "Turkish"},
		{Code: "uk-UA", Title: "Ukrainian"},
		{Code: "ur-PK", Title: "Urdu"},
		{Code: "vi-VN", Title: "Vietnamese"},
		{Code: "cy-GB", Title: "Welsh"},
	}

	openAIVoiceFormats = []speech.VoiceFormat{
		{Name: "MP3", Extension: ".mp3", MimeType: ContentTypeMPEG},
		{Name: "Opus", Extension: ".opus", MimeType: ContentTypeOpus},
		{Name: "AAC", Extension: ".aac", MimeType: ContentTypeAAC},
		{Name: "FLAC", Extension: ".flac", MimeType: ContentTypeFLAC},
		{Name: "WAV", Extension: ".wav", MimeType: ContentTypeWAV},
		{Name: "PCM", Extension: ".pcm", MimeType: ContentTypePCM},
	}
)

// Voices returns OpenAI's built-in voices without calling upstream.
func (o *OpenAI) Voices(ctx context.Context, client speech.HTTPClient, token string) ([]speech.Voice, error) {
	voices := make([]speech.Voice, 0, len(openAIVoiceIDs))
	for _, id := range openAIVoiceIDs {
		voices = append(voices, speech.Voice{
			ID:               id,
			Name:             strings.ToUpper(id[:1]) + id[1:],
			Labels:           map[string]any{},
			Tags:             []string{},
			Languages:        openAIVoiceLanguages,
			Formats:          openAIVoiceFormats,
			CompatibleModels: openAIVoiceModels,
			PreviewAudioURL:  "https://cdn.openai.com/API/docs/audio/" + id + ".wav",
		})
	}
	return voices, nil
}
