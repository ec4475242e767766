package voice

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/daikw/angertranslator/internal/audio"
	"github.com/daikw/angertranslator/internal/persona"
	"github.com/daikw/angertranslator/internal/reliability"
	"github.com/daikw/angertranslator/internal/voice/provider"
)

// DefaultTimeout bounds a single synthesis attempt
const DefaultTimeout = 10 * time.Second

// Synthesizer turns text segments into audio clips using one provider.
// Transient failures are retried; credential and validation failures are not.
type Synthesizer struct {
	provider   provider.Provider
	fileConfig *ConfigFile
	policy     reliability.Policy
	timeout    time.Duration
	cache      *ClipCache
}

// Option configures a Synthesizer
type Option func(*Synthesizer)

// WithPolicy replaces the retry policy
func WithPolicy(p reliability.Policy) Option {
	return func(s *Synthesizer) { s.policy = p }
}

// WithTimeout sets the per-attempt timeout
func WithTimeout(d time.Duration) Option {
	return func(s *Synthesizer) { s.timeout = d }
}

// WithCache enables the clip cache
func WithCache(c *ClipCache) Option {
	return func(s *Synthesizer) { s.cache = c }
}

// NewSynthesizer wraps p. fileConfig may be nil.
func NewSynthesizer(p provider.Provider, fileConfig *ConfigFile, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		provider:   p,
		fileConfig: fileConfig,
		policy:     reliability.DefaultPolicy(),
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig picks the provider named by cliProvider or the config file
// and creates it through factory.
func NewFromConfig(factory provider.Factory, fileConfig *ConfigFile, cliProvider string, opts ...Option) (*Synthesizer, error) {
	res := Resolve(persona.Generic, 0, fileConfig, cliProvider)
	p, err := factory.CreateProvider(res.Provider, res.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", res.Provider, err)
	}
	if fileConfig != nil && fileConfig.Defaults != nil && fileConfig.Defaults.CacheDir != "off" {
		opts = append([]Option{WithCache(NewClipCache(fileConfig.Defaults.CacheDir))}, opts...)
	}
	return NewSynthesizer(p, fileConfig, opts...), nil
}

// Provider returns the wrapped provider
func (s *Synthesizer) Provider() provider.Provider {
	return s.provider
}

// Synthesize returns the audio for one text segment, voiced for its persona and intensity.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) (audio.Clip, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return audio.Clip{}, reliability.Validation("voice.synthesize", "text cannot be empty")
	}

	res := Resolve(req.Persona, req.Intensity, s.fileConfig, s.provider.Name())
	opts := res.Options
	opts.Cues = req.Cues
	format := audio.ParseFormat(opts.Format)
	rate := sampleRateFor(s.provider.Name(), opts)

	key := Key(s.provider.Name(), opts.Voice, string(format), text, opts.Cues)
	if s.cache != nil {
		if clip, ok := s.cache.Get(key, format); ok {
			log.Debug().Str("provider", s.provider.Name()).Msg("Using cached clip")
			clip.SampleRate = rate
			return clip, nil
		}
	}

	var data []byte
	err := s.policy.Do(ctx, "voice.synthesize", func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		reader, err := s.provider.Synthesize(attemptCtx, text, opts)
		if err != nil {
			return err
		}
		defer reader.Close()

		data, err = io.ReadAll(reader)
		if err != nil {
			return reliability.FromTransport("voice.read", err)
		}
		return nil
	})
	if err != nil {
		return audio.Clip{}, err
	}
	if len(data) == 0 {
		return audio.Clip{}, reliability.New(reliability.KindGeneration, "voice.synthesize",
			fmt.Errorf("%s returned empty audio", s.provider.Name()))
	}

	clip := audio.Clip{Data: data, Format: format, SampleRate: rate}
	if s.cache != nil {
		s.cache.Put(key, clip)
	}

	log.Debug().
		Str("provider", s.provider.Name()).
		Str("voice", opts.Voice).
		Int("bytes", len(data)).
		Msg("Synthesized segment")
	return clip, nil
}

// sampleRateFor reports the rate of raw PCM output; encoded formats carry their own.
func sampleRateFor(providerName string, opts provider.SynthesizeOptions) int {
	if providerName == provider.NameElevenLabs {
		return audio.DefaultSampleRate
	}
	if rate, err := strconv.Atoi(opts.SampleRate); err == nil && rate > 0 {
		return rate
	}
	return audio.DefaultSampleRate
}
