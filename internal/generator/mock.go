package generator

import (
	"context"
	"hash/fnv"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/daikw/angertranslator/internal/persona"
	"github.com/daikw/angertranslator/internal/reliability"
)

// softWords are hedges the mock rewrite strips or hardens.
var softWords = []struct {
	pattern *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`(?i)\bcould you (please )?`), "you WILL "},
	{regexp.MustCompile(`(?i)\bwould you mind\b`), "you WILL"},
	{regexp.MustCompile(`(?i)\bI think\b`), "I KNOW"},
	{regexp.MustCompile(`(?i)\bmaybe\b`), "definitely"},
	{regexp.MustCompile(`(?i)\bplease\s*`), ""},
	{regexp.MustCompile(`(?i)\bsorry,?\s*`), ""},
	{regexp.MustCompile(`(?i)\bjust\s+`), ""},
}

var spaces = regexp.MustCompile(`\s{2,}`)

// Mock rewrites text offline. Without a seed the output depends only on the
// request; with a seed choices vary between calls but are reproducible.
type Mock struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMock creates a mock generator. seed may be nil.
func NewMock(seed *uint64) *Mock {
	m := &Mock{}
	if seed != nil {
		m.rng = rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	}
	return m
}

// Name returns the backend name
func (m *Mock) Name() string {
	return NameMock
}

// Generate rewrites req.Text: a signature phrase, hardened wording, shouting
// from the severe bracket and a censored expletive at the top of it.
func (m *Mock) Generate(ctx context.Context, req Request) (string, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return "", reliability.Validation("generator.generate", "text cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rule := persona.Lookup(req.Persona)
	intensity := persona.ClampIntensity(req.Intensity)
	bracket := persona.BracketFor(intensity)

	body := text
	if bracket > persona.Mild {
		for _, sw := range softWords {
			body = sw.pattern.ReplaceAllString(body, sw.replace)
		}
		body = strings.TrimSpace(spaces.ReplaceAllString(body, " "))
		if body == "" {
			body = text
		}
	}
	if bracket == persona.Severe {
		body = strings.ToUpper(body)
	}
	body = strings.TrimRight(body, ".") + strings.Repeat("!", int(bracket)+1)

	parts := []string{}
	if len(rule.Signatures) > 0 {
		parts = append(parts, rule.Signatures[m.pick(text, len(rule.Signatures))])
	}
	parts = append(parts, body)
	if bracket == persona.Severe && intensity >= persona.ReactionThreshold && len(rule.Expletives) > 0 {
		parts = append(parts, "**"+rule.Expletives[m.pick(text+"!", len(rule.Expletives))]+"**")
	}

	out := strings.Join(parts, " ")
	log.Debug().Str("persona", string(rule.ID)).Int("intensity", intensity).Msg("Mock generation")
	return out, nil
}

func (m *Mock) pick(key string, n int) int {
	if m.rng != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.rng.IntN(n)
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}
