package bleep

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/daikw/angertranslator/internal/audio"
	"github.com/daikw/angertranslator/internal/reliability"
)

// Device reports whether an output device exists. audio.CommandPlayer implements it.
type Device interface {
	Available() bool
}

// Synthesizer plays tones on an audio player. The device is probed once and reused.
type Synthesizer struct {
	player     audio.Player
	sampleRate int

	once      sync.Once
	supported bool
}

// NewSynthesizer creates a synthesizer on player. A nil player is unsupported.
func NewSynthesizer(player audio.Player, sampleRate int) *Synthesizer {
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}
	return &Synthesizer{player: player, sampleRate: sampleRate}
}

// Supported reports whether tones can be played.
func (s *Synthesizer) Supported() bool {
	s.once.Do(func() {
		switch d := s.player.(type) {
		case nil:
			s.supported = false
		case Device:
			s.supported = d.Available()
		default:
			s.supported = true
		}
		if !s.supported {
			log.Warn().Msg("Audio output unavailable, bleep tones are disabled")
		}
	})
	return s.supported
}

// PlayTone plays one tone and returns when it finished.
// It is a no-op when the device is unsupported.
func (s *Synthesizer) PlayTone(ctx context.Context, p Params) error {
	if !s.Supported() {
		log.Debug().Float64("frequency", p.Frequency).Dur("duration", p.Duration).Msg("Skipping tone, audio unsupported")
		return nil
	}
	log.Debug().Float64("frequency", p.Frequency).Dur("duration", p.Duration).Msg("Playing tone")

	err := s.player.Play(ctx, Clip(p, s.sampleRate))
	if err != nil && reliability.KindOf(err) == reliability.KindAudioDevice {
		// The device vanished after the probe; degrade instead of failing playback.
		log.Warn().Err(err).Msg("Tone playback failed")
		return nil
	}
	return err
}

// PlaySequence plays n tones separated by pause.
func (s *Synthesizer) PlaySequence(ctx context.Context, p Params, n int, pause time.Duration) error {
	if n <= 0 {
		return nil
	}
	if !s.Supported() {
		return nil
	}
	for i := 0; i < n; i++ {
		if i > 0 && pause > 0 {
			t := time.NewTimer(pause)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.PlayTone(ctx, p); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("failed to play tone %d of %d: %w", i+1, n, err)
		}
	}
	return nil
}
