package speech

import "encoding/json"

// RawSpeechRequest is the canonical synthesis request as received from a caller.
// It follows the shape of OpenAI's /v1/audio/speech body, with Model carrying
// a "<provider>/<model>" pair and any unknown members collected into Extra.
type RawSpeechRequest struct {
	// Input is the text to synthesize
	Input string `json:"input"`

	// Model is "<provider>/<native-model>", e.g. "elevenlabs/eleven_multilingual_v2"
	Model string `json:"model"`

	// Voice is the provider-native voice identifier
	Voice string `json:"voice"`

	// Instructions steer the voice (not every provider supports them)
	Instructions *string `json:"instructions,omitempty"`

	// ResponseFormat is the requested audio encoding
	ResponseFormat *string `json:"response_format,omitempty"`

	// Speed is the speech rate multiplier
	Speed *float64 `json:"speed,omitempty"`

	// Extra holds every member not named above, untouched
	Extra Extra `json:"-"`
}

// canonicalFields are the JSON members RawSpeechRequest decodes itself.
// Matching is exact: "Voice" is an extra member, not the voice.
var canonicalFields = map[string]struct{}{
	"input":           {},
	"model":           {},
	"voice":           {},
	"instructions":    {},
	"response_format": {},
	"speed":           {},
}

// UnmarshalJSON decodes the canonical fields and sweeps every other member into Extra.
func (r *RawSpeechRequest) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}

	canonical := make(map[string]json.RawMessage, len(canonicalFields))
	var extra Extra
	for key, value := range members {
		if _, ok := canonicalFields[key]; ok {
			canonical[key] = value
			continue
		}
		if extra == nil {
			extra = make(Extra)
		}
		extra[key] = value
	}

	// encoding/json matches field names case-insensitively, so only the
	// exact canonical members are handed to the typed decode
	filtered, err := json.Marshal(canonical)
	if err != nil {
		return err
	}

	// alias drops the method set so the inner decode does not recurse
	type alias RawSpeechRequest
	var typed alias
	if err := json.Unmarshal(filtered, &typed); err != nil {
		return err
	}

	*r = RawSpeechRequest(typed)
	r.Extra = extra
	return nil
}

// ProcessedSpeechRequest is a RawSpeechRequest after model resolution.
// It is built once per inbound call and must not be modified afterwards.
type ProcessedSpeechRequest struct {
	Input          string
	Voice          string
	Instructions   *string
	ResponseFormat *string
	Speed          *float64
	Extra          Extra

	// Provider is the registry key, the left half of the raw model
	Provider string

	// Model is the provider-native model name, the right half of the raw model
	Model string
}
