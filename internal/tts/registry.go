package tts

import (
	"github.com/lexiqai/speech-gateway/internal/config"
	"github.com/lexiqai/speech-gateway/internal/speech"
)

// NewRegistry registers every supported provider adapter, pointed at the
// base URLs from cfg.
func NewRegistry(cfg *config.Config) *speech.Registry {
	return speech.NewRegistry(
		NewOpenAI(WithOpenAIBaseURL(cfg.OpenAIBaseURL)),
		NewElevenLabs(WithElevenLabsBaseURL(cfg.ElevenLabsBaseURL)),
		NewCartesia(
			WithCartesiaBaseURL(cfg.CartesiaBaseURL),
			WithCartesiaVersion(cfg.CartesiaVersion),
		),
		NewDeepgram(WithDeepgramBaseURL(cfg.DeepgramBaseURL)),
	)
}
