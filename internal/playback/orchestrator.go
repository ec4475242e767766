// Package playback plays parsed segments back to back: speech for text
// segments and censor tones for bleep segments.
package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/daikw/angertranslator/internal/annotate"
	"github.com/daikw/angertranslator/internal/audio"
	"github.com/daikw/angertranslator/internal/bleep"
	"github.com/daikw/angertranslator/internal/persona"
	"github.com/daikw/angertranslator/internal/voice"
)

// DefaultGap is the pause inserted between segments
const DefaultGap = 50 * time.Millisecond

// Outcomes reported to an Observer
const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

// Voice synthesizes speech for a text segment. *voice.Synthesizer implements it.
type Voice interface {
	Synthesize(ctx context.Context, req voice.Request) (audio.Clip, error)
}

// TonePlayer plays a censor tone. *bleep.Synthesizer implements it.
type TonePlayer interface {
	PlayTone(ctx context.Context, p bleep.Params) error
}

// Observer is told about finished segments and sequences.
type Observer interface {
	SegmentPlayed(kind string, elapsed time.Duration)
	SequenceFinished(outcome string)
}

type nopObserver struct{}

func (nopObserver) SegmentPlayed(string, time.Duration) {}
func (nopObserver) SequenceFinished(string)             {}

// Orchestrator runs at most one playback sequence at a time.
type Orchestrator struct {
	voice    Voice
	player   audio.Player
	tones    TonePlayer
	gap      time.Duration
	style    bleep.Style
	observer Observer

	mu      sync.Mutex
	current *Handle
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithGap sets the pause between segments; zero disables it.
func WithGap(d time.Duration) Option {
	return func(o *Orchestrator) { o.gap = d }
}

// WithBleepStyle uses style for every persona instead of the persona's own.
func WithBleepStyle(style bleep.Style) Option {
	return func(o *Orchestrator) { o.style = style }
}

// WithObserver reports playback events to obs
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// New creates an orchestrator speaking through v on player and bleeping through tones.
func New(v Voice, player audio.Player, tones TonePlayer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		voice:    v,
		player:   player,
		tones:    tones,
		gap:      DefaultGap,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SpeakSequence stops any running sequence, waits for it to wind down and
// starts playing segments in order. The returned handle controls the new sequence.
// If ctx has already ended the running sequence is left alone and the returned
// handle is Cancelled.
func (o *Orchestrator) SpeakSequence(ctx context.Context, segments []annotate.Segment, id persona.ID, intensity int) *Handle {
	o.mu.Lock()
	defer o.mu.Unlock()

	h := &Handle{
		ID:    uuid.New(),
		done:  make(chan struct{}),
		state: Playing,
	}
	if ctx.Err() != nil {
		h.cancel = func() {}
		o.finish(h, Cancelled, nil)
		close(h.done)
		return h
	}

	if prev := o.current; prev != nil {
		prev.Stop()
		<-prev.done
	}

	runCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	o.current = h

	log.Debug().
		Str("sequence", h.ID.String()).
		Str("persona", string(id)).
		Int("segments", len(segments)).
		Msg("Starting playback")

	go o.run(runCtx, h, segments, id, intensity)
	return h
}

// Stop halts the running sequence, if any.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	h := o.current
	o.mu.Unlock()
	if h != nil {
		h.Stop()
	}
}

func (o *Orchestrator) run(ctx context.Context, h *Handle, segments []annotate.Segment, id persona.ID, intensity int) {
	defer h.cancel()
	defer close(h.done)

	style := o.style
	if style == "" {
		style = bleep.Style(persona.Lookup(id).BleepStyle)
	}
	base, _ := bleep.Preset(style)

	for i, seg := range segments {
		if ctx.Err() != nil {
			o.finish(h, Cancelled, nil)
			return
		}
		if i > 0 && o.gap > 0 {
			if err := pause(ctx, o.gap); err != nil {
				o.finish(h, Cancelled, nil)
				return
			}
		}

		start := time.Now()
		var err error
		switch seg.Kind {
		case annotate.SegmentBleep:
			err = o.tones.PlayTone(ctx, bleep.ForText(seg.Content, base))
		default:
			err = o.speak(ctx, seg, id, intensity)
		}
		if err != nil {
			if ctx.Err() != nil {
				o.finish(h, Cancelled, nil)
				return
			}
			o.finish(h, Idle, fmt.Errorf("failed to play segment %d: %w", i, err))
			return
		}
		o.observer.SegmentPlayed(string(seg.Kind), time.Since(start))
	}

	o.finish(h, Idle, nil)
}

func (o *Orchestrator) speak(ctx context.Context, seg annotate.Segment, id persona.ID, intensity int) error {
	clip, err := o.voice.Synthesize(ctx, voice.Request{
		Text:      seg.Content,
		Cues:      seg.Cues,
		Persona:   id,
		Intensity: intensity,
	})
	if err != nil {
		return err
	}
	return o.player.Play(ctx, clip)
}

func (o *Orchestrator) finish(h *Handle, state State, err error) {
	h.mu.Lock()
	h.state = state
	h.err = err
	h.mu.Unlock()

	outcome := OutcomeCompleted
	switch {
	case state == Cancelled:
		outcome = OutcomeCancelled
	case err != nil:
		outcome = OutcomeFailed
		log.Warn().Err(err).Str("sequence", h.ID.String()).Msg("Playback aborted")
	}
	o.observer.SequenceFinished(outcome)
	log.Debug().Str("sequence", h.ID.String()).Str("outcome", outcome).Msg("Playback finished")
}

func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
