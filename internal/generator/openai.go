package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/daikw/angertranslator/internal/persona"
	"github.com/daikw/angertranslator/internal/reliability"
)

const (
	OpenAIBaseURL      = "https://api.openai.com/v1"
	OpenAIChatEndpoint = "/chat/completions"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// OpenAI generates rewrites with the chat completions API
type OpenAI struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAI creates a chat generator. An empty model uses DefaultOpenAIModel.
func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{
		apiKey:  apiKey,
		model:   model,
		baseURL: OpenAIBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the backend name
func (g *OpenAI) Name() string {
	return NameOpenAI
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type openAIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate asks the model to rewrite req.Text in the persona's voice.
func (g *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	const op = "openai.generate"
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return "", reliability.Validation(op, "text cannot be empty")
	}

	intensity := persona.ClampIntensity(req.Intensity)
	body := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt(req.Persona, intensity)},
			{Role: "user", Content: text},
		},
		Temperature: 0.4 + 0.6*float64(intensity)/persona.MaxIntensity,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := g.baseURL + OpenAIChatEndpoint
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	log.Debug().
		Str("endpoint", endpoint).
		Str("model", g.model).
		Str("persona", string(req.Persona)).
		Int("intensity", intensity).
		Msg("Making OpenAI chat request")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", reliability.FromTransport(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", reliability.FromTransport(op, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := string(respBody)
		var apiErr openAIError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return "", reliability.FromHTTPStatus(op, resp.StatusCode, msg)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", reliability.New(reliability.KindGeneration, op, fmt.Errorf("failed to decode response: %w", err))
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", reliability.New(reliability.KindGeneration, op, fmt.Errorf("empty completion"))
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// SystemPrompt builds the instruction for a persona and intensity.
func SystemPrompt(id persona.ID, intensity int) string {
	rule := persona.Lookup(id)
	var b strings.Builder
	b.WriteString("Rewrite the user's polite message as ")
	b.WriteString(characterFor(id))
	b.WriteString(". Keep the meaning and keep it short. ")
	switch persona.BracketFor(intensity) {
	case persona.Mild:
		b.WriteString("Stay mostly composed; the irritation should only show between the lines.")
	case persona.Moderate:
		b.WriteString("Let the anger show openly and put key words in capitals.")
	default:
		b.WriteString("Go all out. Shout, and mark each profanity as **word** so it can be bleeped.")
	}
	if len(rule.Cues) > 0 {
		b.WriteString(" You may insert delivery cues in square brackets from this list: ")
		b.WriteString(strings.Join(rule.Cues, ", "))
		b.WriteString(".")
	}
	b.WriteString(" Reply with the rewritten message only.")
	return b.String()
}

// characterFor describes who is speaking. Every persona needs a case here.
func characterFor(id persona.ID) string {
	switch id {
	case persona.Enforcer:
		return "a drill sergeant barking orders at a useless recruit"
	case persona.HighlandHowler:
		return "a furious Scottish Highlander who has had enough of everything"
	case persona.Don:
		return "a soft-spoken crime boss whose calm is the scariest part"
	case persona.CrackedController:
		return "a gamer who just lost a match to lag and is losing it"
	case persona.Karen:
		return "an entitled customer who demands to speak to the manager"
	case persona.Corporate:
		return "a passive-aggressive middle manager hiding rage behind office jargon"
	case persona.Sarcastic:
		return "a dry, withering sarcast who cannot believe what they are hearing"
	case persona.Generic:
		return "someone who is very, very annoyed"
	default:
		return "someone who is very, very annoyed"
	}
}
