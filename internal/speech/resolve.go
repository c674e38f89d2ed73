package speech

import "strings"

// modelSeparator splits the provider key from the provider-native model name.
const modelSeparator = "/"

// Resolve splits raw.Model into provider and native model and copies every
// other field across unchanged. Extra is copied so the processed request
// shares no storage with raw. Only the first separator counts, so native
// model names may themselves contain slashes.
func Resolve(raw RawSpeechRequest) (*ProcessedSpeechRequest, error) {
	provider, model, found := strings.Cut(raw.Model, modelSeparator)
	if !found || provider == "" || model == "" {
		return nil, NewValidationError("invalid model: %s", raw.Model)
	}

	return &ProcessedSpeechRequest{
		Input:          raw.Input,
		Voice:          raw.Voice,
		Instructions:   raw.Instructions,
		ResponseFormat: raw.ResponseFormat,
		Speed:          raw.Speed,
		Extra:          raw.Extra.Clone(),
		Provider:       provider,
		Model:          model,
	}, nil
}
