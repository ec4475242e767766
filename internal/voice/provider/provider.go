package provider

import (
	"context"
	"io"
)

// Provider names
const (
	NameOpenAI     = "openai"
	NameElevenLabs = "elevenlabs"
	NamePolly      = "polly"
	NameGCP        = "gcp"
)

// Provider defines the interface for TTS providers.
// Synthesize errors are classified with the reliability package kinds.
type Provider interface {
	// Name returns the provider name
	Name() string

	// ListVoices returns available voices for this provider
	ListVoices(ctx context.Context) ([]Voice, error)

	// Synthesize generates audio from text and returns an audio stream
	Synthesize(ctx context.Context, text string, options SynthesizeOptions) (io.ReadCloser, error)

	// IsAvailable checks if the provider is available (can be used)
	IsAvailable(ctx context.Context) bool
}

// Voice represents a voice option
type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Language    string `json:"language"`
	Gender      string `json:"gender,omitempty"`
	Description string `json:"description,omitempty"`
}

// SynthesizeOptions contains options for text synthesis
type SynthesizeOptions struct {
	Voice    string  `json:"voice"`
	Speed    float64 `json:"speed,omitempty"`    // Speed multiplier (0.25-4.0)
	Format   string  `json:"format,omitempty"`   // Output format (mp3, wav, ogg, pcm)
	Language string  `json:"language,omitempty"` // Language code
	Model    string  `json:"model,omitempty"`

	// ElevenLabs voice settings
	Stability       float64 `json:"stability,omitempty"`
	SimilarityBoost float64 `json:"similarity_boost,omitempty"`
	Style           float64 `json:"style,omitempty"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`

	// Amazon Polly options
	Engine     string `json:"engine,omitempty"`
	SampleRate string `json:"sample_rate,omitempty"`

	// Cues are delivery cues removed from the text. Providers that understand
	// inline audio tags send them along; others ignore them.
	Cues []string `json:"cues,omitempty"`
}

// Factory creates provider instances
type Factory interface {
	CreateProvider(providerName string, config map[string]interface{}) (Provider, error)
	ListProviders() []string
}
