package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daikw/angertranslator/internal/persona"
	"github.com/daikw/angertranslator/internal/reliability"
)

func TestMock_Generate(t *testing.T) {
	const input = "Could you please send the report."

	tests := []struct {
		name      string
		intensity int
		wantBody  string
		expletive bool
	}{
		{"mild keeps wording", 10, "Could you please send the report!", false},
		{"moderate hardens hedges", 45, "you WILL send the report!!", false},
		{"severe below reaction threshold shouts", 65, "YOU WILL SEND THE REPORT!!!", false},
		{"severe at the top adds a censored expletive", 95, "YOU WILL SEND THE REPORT!!!", true},
	}

	rule := persona.Lookup(persona.Enforcer)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewMock(nil).Generate(context.Background(), Request{Text: input, Persona: persona.Enforcer, Intensity: tt.intensity})
			require.NoError(t, err)

			assert.True(t, startsWithAny(out, rule.Signatures), out)
			assert.Contains(t, out, tt.wantBody)
			if tt.expletive {
				last := out[strings.LastIndex(out, " ")+1:]
				require.True(t, strings.HasPrefix(last, "**") && strings.HasSuffix(last, "**"), out)
				assert.Contains(t, rule.Expletives, strings.Trim(last, "*"))
			} else {
				assert.NotContains(t, out, "**")
			}
		})
	}
}

func startsWithAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func TestMock_Deterministic(t *testing.T) {
	req := Request{Text: "I think this is fine.", Persona: persona.Karen, Intensity: 80}

	a, err := NewMock(nil).Generate(context.Background(), req)
	require.NoError(t, err)
	b, err := NewMock(nil).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, a, "I KNOW THIS IS FINE")
}

func TestMock_SeedIsReproducible(t *testing.T) {
	seed := uint64(42)
	req := Request{Text: "Please stop.", Persona: persona.Sarcastic, Intensity: 100}

	g1, g2 := NewMock(&seed), NewMock(&seed)
	for i := 0; i < 5; i++ {
		a, err := g1.Generate(context.Background(), req)
		require.NoError(t, err)
		b, err := g2.Generate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestMock_UnknownPersonaFallsBack(t *testing.T) {
	out, err := NewMock(nil).Generate(context.Background(), Request{Text: "hello", Persona: "pirate", Intensity: 500})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Contains(t, out, "HELLO!!!")
}

func TestMock_Errors(t *testing.T) {
	_, err := NewMock(nil).Generate(context.Background(), Request{Text: "  "})
	assert.Equal(t, reliability.KindValidation, reliability.KindOf(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewMock(nil).Generate(ctx, Request{Text: "hi"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenAI_Generate(t *testing.T) {
	t.Run("returns the completion", func(t *testing.T) {
		var got chatRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, OpenAIChatEndpoint, r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" [cold] It's nothing personal. "}}]}`))
		}))
		defer server.Close()

		g := NewOpenAI("sk-test", "")
		g.baseURL = server.URL

		out, err := g.Generate(context.Background(), Request{Text: "Please pay.", Persona: persona.Don, Intensity: 50})
		require.NoError(t, err)
		assert.Equal(t, "[cold] It's nothing personal.", out)

		assert.Equal(t, DefaultOpenAIModel, got.Model)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "system", got.Messages[0].Role)
		assert.Contains(t, got.Messages[0].Content, "crime boss")
		assert.Equal(t, chatMessage{Role: "user", Content: "Please pay."}, got.Messages[1])
		assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	})

	for _, tc := range []struct {
		name   string
		status int
		body   string
		want   reliability.Kind
	}{
		{"empty completion", http.StatusOK, `{"choices":[]}`, reliability.KindGeneration},
		{"blank content", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`, reliability.KindGeneration},
		{"malformed body", http.StatusOK, `not json`, reliability.KindGeneration},
		{"bad key", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key"}}`, reliability.KindInvalidCredential},
		{"rate limited", http.StatusTooManyRequests, `{}`, reliability.KindRateLimited},
		{"server error", http.StatusBadGateway, `oops`, reliability.KindTransient},
	} {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			g := NewOpenAI("sk-test", "gpt-4o")
			g.baseURL = server.URL

			_, err := g.Generate(context.Background(), Request{Text: "hi", Persona: persona.Karen})
			require.Error(t, err)
			assert.Equal(t, tc.want, reliability.KindOf(err))
		})
	}
}

func TestSystemPrompt(t *testing.T) {
	seen := map[string]bool{}
	for _, id := range persona.All() {
		c := characterFor(id)
		assert.False(t, seen[c], "duplicate character for %s", id)
		seen[c] = true
	}

	severe := SystemPrompt(persona.Enforcer, 90)
	assert.Contains(t, severe, "drill sergeant")
	assert.Contains(t, severe, "**word**")
	assert.Contains(t, severe, "shouting")

	mild := SystemPrompt(persona.Corporate, 10)
	assert.Contains(t, mild, "composed")
	assert.NotContains(t, mild, "**word**")
}

func TestNew(t *testing.T) {
	g, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, NameMock, g.Name())

	_, err = New(Config{Backend: NameOpenAI})
	assert.Equal(t, reliability.KindInvalidCredential, reliability.KindOf(err))

	g, err = New(Config{Backend: NameOpenAI, APIKey: "k", BaseURL: "http://localhost"})
	require.NoError(t, err)
	assert.Equal(t, NameOpenAI, g.Name())

	_, err = New(Config{Backend: "bard"})
	assert.Equal(t, reliability.KindValidation, reliability.KindOf(err))
}
