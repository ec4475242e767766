// Package translator turns a polite message into an annotated persona rewrite.
package translator

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/daikw/angertranslator/internal/annotate"
	"github.com/daikw/angertranslator/internal/generator"
	"github.com/daikw/angertranslator/internal/persona"
	"github.com/daikw/angertranslator/internal/ratelimit"
	"github.com/daikw/angertranslator/internal/reliability"
)

// MaxTextLength is the longest input accepted, in characters.
const MaxTextLength = 2000

const (
	OutcomeOK          = "ok"
	OutcomeRateLimited = "rate_limited"
	OutcomeInvalid     = "invalid"
	OutcomeFailed      = "failed"
)

// Request is one translation request
type Request struct {
	Text      string `json:"text"`
	Persona   string `json:"persona"`
	Intensity int    `json:"intensity"`
}

// Result carries every rendering of one translation.
type Result struct {
	Persona   persona.ID         `json:"persona"`
	Intensity int                `json:"intensity"`
	Raw       string             `json:"raw"`
	Annotated string             `json:"annotated"`
	Display   string             `json:"display"`
	Segments  []annotate.Segment `json:"segments"`
}

// Recorder receives translation metrics. observability.Metrics implements it.
type Recorder interface {
	ObserveTranslation(persona, outcome string, generation time.Duration)
	RateLimited()
	ExternalError(component string, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTranslation(string, string, time.Duration) {}
func (nopRecorder) RateLimited()                                    {}
func (nopRecorder) ExternalError(string, error)                     {}

// Service runs the translation flow
type Service struct {
	gen      generator.Generator
	admitter ratelimit.Admitter
	policy   reliability.Policy
	timeout  time.Duration
	recorder Recorder
}

// Option configures a Service
type Option func(*Service)

// WithAdmitter gates every translation through a rate limiter.
func WithAdmitter(a ratelimit.Admitter) Option {
	return func(s *Service) { s.admitter = a }
}

func WithPolicy(p reliability.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithTimeout bounds each generation attempt
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// New creates a service around gen. Without WithAdmitter nothing is rate limited.
func New(gen generator.Generator, opts ...Option) *Service {
	s := &Service{
		gen:      gen,
		policy:   reliability.DefaultPolicy(),
		timeout:  10 * time.Second,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Normalize validates req and resolves its persona and intensity.
// Unknown personas fall back to generic and intensity is clamped.
func Normalize(req Request) (string, persona.ID, int, error) {
	const op = "translator.translate"
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return "", "", 0, reliability.Validation(op, "text cannot be empty")
	}
	if n := utf8.RuneCountInString(text); n > MaxTextLength {
		return "", "", 0, reliability.Validation(op, "text is %d characters, the limit is %d", n, MaxTextLength)
	}
	id, ok := persona.Parse(req.Persona)
	if !ok {
		if req.Persona != "" {
			log.Debug().Str("persona", req.Persona).Msg("Unknown persona, using generic")
		}
		id = persona.Generic
	}
	return text, id, persona.ClampIntensity(req.Intensity), nil
}

// Translate admits identity, generates the rewrite and annotates it.
func (s *Service) Translate(ctx context.Context, identity string, req Request) (*Result, error) {
	const op = "translator.translate"

	text, id, intensity, err := Normalize(req)
	if err != nil {
		s.recorder.ObserveTranslation(string(persona.Generic), OutcomeInvalid, 0)
		return nil, err
	}

	if s.admitter != nil {
		decision, err := s.admitter.TryAdmit(ctx, identity)
		if err != nil {
			s.recorder.ExternalError("ratelimit", err)
			return nil, reliability.New(reliability.KindStorage, op, fmt.Errorf("failed to check rate limit: %w", err))
		}
		if !decision.Admitted {
			s.recorder.RateLimited()
			s.recorder.ObserveTranslation(string(id), OutcomeRateLimited, 0)
			log.Debug().Str("identity", identity).Dur("retry_after", decision.RetryAfter).Msg("Translation rate limited")
			return nil, reliability.RateLimited(op, decision.RetryAfter)
		}
	}

	start := time.Now()
	var raw string
	err = s.policy.Do(ctx, op, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		out, err := s.gen.Generate(attemptCtx, generator.Request{Text: text, Persona: id, Intensity: intensity})
		if err != nil {
			return err
		}
		raw = out
		return nil
	})
	elapsed := time.Since(start)
	if err != nil {
		s.recorder.ExternalError("generator", err)
		s.recorder.ObserveTranslation(string(id), OutcomeFailed, elapsed)
		return nil, fmt.Errorf("failed to generate translation: %w", err)
	}

	annotated := annotate.Annotate(raw, id, intensity)
	result := &Result{
		Persona:   id,
		Intensity: intensity,
		Raw:       raw,
		Annotated: annotated,
		Display:   annotate.ToDisplayText(annotated),
		Segments:  annotate.ParseSegments(annotated),
	}
	s.recorder.ObserveTranslation(string(id), OutcomeOK, elapsed)

	log.Debug().
		Str("generator", s.gen.Name()).
		Str("persona", string(id)).
		Int("intensity", intensity).
		Int("segments", len(result.Segments)).
		Dur("elapsed", elapsed).
		Msg("Translated")
	return result, nil
}
