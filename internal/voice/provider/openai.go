package provider

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

	"github.com/daikw/angertranslator/internal/reliability"
)

const (
	OpenAIBaseURL        = "https://api.openai.com/v1"
	OpenAITTSEndpoint    = "/audio/speech"
	OpenAIModelsEndpoint = "/models"
)

// OpenAIProvider implements the Provider interface for OpenAI Audio API
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIProvider creates a new OpenAI TTS provider
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:  apiKey,
		baseURL: OpenAIBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return NameOpenAI
}

// ListVoices returns available OpenAI voices
func (p *OpenAIProvider) ListVoices(ctx context.Context) ([]Voice, error) {
	return []Voice{
		{ID: "alloy", Name: "Alloy", Language: "en", Gender: "neutral", Description: "Balanced, clear voice"},
		{ID: "echo", Name: "Echo", Language: "en", Gender: "male", Description: "Deep, resonant voice"},
		{ID: "fable", Name: "Fable", Language: "en", Gender: "neutral", Description: "Expressive, storytelling voice"},
		{ID: "onyx", Name: "Onyx", Language: "en", Gender: "male", Description: "Strong, authoritative voice"},
		{ID: "nova", Name: "Nova", Language: "en", Gender: "female", Description: "Bright, energetic voice"},
		{ID: "shimmer", Name: "Shimmer", Language: "en", Gender: "female", Description: "Warm, friendly voice"},
	}, nil
}

// openAISpeechRequest is the body of POST /audio/speech
type openAISpeechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed"`
	Instructions   string  `json:"instructions,omitempty"`
}

// Synthesize generates audio from text using OpenAI Audio API
func (p *OpenAIProvider) Synthesize(ctx context.Context, text string, options SynthesizeOptions) (io.ReadCloser, error) {
	const op = "openai.synthesize"
	if strings.TrimSpace(text) == "" {
		return nil, reliability.Validation(op, "text cannot be empty")
	}

	voice := options.Voice
	if voice == "" {
		voice = "alloy"
	}
	model := options.Model
	if model == "" {
		model = "tts-1"
	}
	format := options.Format
	if format == "" {
		format = "mp3"
	}

	body := openAISpeechRequest{
		Model:          model,
		Input:          text,
		Voice:          voice,
		ResponseFormat: format,
		Speed:          clampSpeed(options.Speed),
	}
	// Only the gpt-4o TTS models accept steering instructions.
	if len(options.Cues) > 0 && strings.HasPrefix(model, "gpt-4o") {
		body.Instructions = "Deliver this " + strings.Join(options.Cues, ", ") + "."
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := p.baseURL + OpenAITTSEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	log.Debug().
		Str("endpoint", endpoint).
		Str("voice", voice).
		Str("model", model).
		Str("format", format).
		Float64("speed", body.Speed).
		Msg("Making OpenAI TTS request")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, reliability.FromTransport(op, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := string(respBody)
		var apiErr OpenAIError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.String()
		}
		return nil, reliability.FromHTTPStatus(op, resp.StatusCode, msg)
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Str("content_type", resp.Header.Get("Content-Type")).
		Msg("OpenAI TTS request successful")

	return resp.Body, nil
}

// IsAvailable validates the API key against the models endpoint
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	if p.apiKey == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+OpenAIModelsEndpoint, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// OpenAIProviderFromConfig creates an OpenAI provider from configuration
func OpenAIProviderFromConfig(config map[string]interface{}) (*OpenAIProvider, error) {
	apiKey, ok := config["api_key"].(string)
	if !ok || apiKey == "" {
		return nil, reliability.New(reliability.KindInvalidCredential, "openai.config", fmt.Errorf("api_key is required for OpenAI provider"))
	}

	provider := NewOpenAIProvider(apiKey)
	if baseURL, ok := config["base_url"].(string); ok && baseURL != "" {
		provider.baseURL = strings.TrimSuffix(baseURL, "/")
	}

	return provider, nil
}

// OpenAIError represents an error from OpenAI API
type OpenAIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (e OpenAIError) String() string {
	return fmt.Sprintf("OpenAI API Error: %s (type: %s, code: %s)", e.Error.Message, e.Error.Type, e.Error.Code)
}

// clampSpeed limits speed to the 0.25-4.0 range shared by OpenAI and GCP; zero means 1.0.
func clampSpeed(speed float64) float64 {
	switch {
	case speed <= 0:
		return 1.0
	case speed < 0.25:
		return 0.25
	case speed > 4.0:
		return 4.0
	default:
		return speed
	}
}
