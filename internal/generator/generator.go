// Package generator rewrites polite text in a persona's voice.
package generator

import (
	"context"
	"fmt"

	"github.com/daikw/angertranslator/internal/persona"
	"github.com/daikw/angertranslator/internal/reliability"
)

// Backend names
const (
	NameMock   = "mock"
	NameOpenAI = "openai"
)

// Request is one rewrite request
type Request struct {
	Text      string
	Persona   persona.ID
	Intensity int
}

// Generator produces persona-styled text. The result may already contain
// tone cues and censor spans; the annotation pipeline adds the rest.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Config selects and configures a backend
type Config struct {
	Backend string
	APIKey  string
	BaseURL string
	Model   string
	Seed    *uint64
}

// New creates the backend named by cfg.Backend; empty means mock.
func New(cfg Config) (Generator, error) {
	switch cfg.Backend {
	case "", NameMock:
		return NewMock(cfg.Seed), nil
	case NameOpenAI:
		if cfg.APIKey == "" {
			return nil, reliability.New(reliability.KindInvalidCredential, "generator.create",
				fmt.Errorf("API key is required for the openai generator"))
		}
		g := NewOpenAI(cfg.APIKey, cfg.Model)
		if cfg.BaseURL != "" {
			g.baseURL = cfg.BaseURL
		}
		return g, nil
	default:
		return nil, reliability.Validation("generator.create", "unknown generator: %s", cfg.Backend)
	}
}
