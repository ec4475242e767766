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
	ElevenLabsBaseURL        = "https://api.elevenlabs.io/v1"
	ElevenLabsTTSEndpoint    = "/text-to-speech"
	ElevenLabsVoicesEndpoint = "/voices"

	// ElevenLabsAudioTagModel understands inline [cue] audio tags.
	ElevenLabsAudioTagModel = "eleven_v3"
)

// ElevenLabsProvider implements the Provider interface for ElevenLabs TTS API v1
type ElevenLabsProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewElevenLabsProvider creates a new ElevenLabs TTS provider
func NewElevenLabsProvider(apiKey string) *ElevenLabsProvider {
	return &ElevenLabsProvider{
		apiKey:  apiKey,
		baseURL: ElevenLabsBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Name returns the provider name
func (p *ElevenLabsProvider) Name() string {
	return NameElevenLabs
}

// ElevenLabsVoice represents a voice from ElevenLabs API
type ElevenLabsVoice struct {
	VoiceID         string            `json:"voice_id"`
	Name            string            `json:"name"`
	Category        string            `json:"category"`
	Labels          map[string]string `json:"labels"`
	Description     string            `json:"description"`
	PreviewURL      string            `json:"preview_url"`
	AvailableForTts bool              `json:"available_for_tts"`
	FineTuning      struct {
		Language string `json:"language"`
	} `json:"fine_tuning"`
}

// VoiceSettings are the per-request ElevenLabs delivery settings
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style,omitempty"`
	Speed           float64 `json:"speed,omitempty"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

// ElevenLabsVoicesResponse represents the response from voices API
type ElevenLabsVoicesResponse struct {
	Voices []ElevenLabsVoice `json:"voices"`
}

// ListVoices returns available ElevenLabs voices
func (p *ElevenLabsProvider) ListVoices(ctx context.Context) ([]Voice, error) {
	const op = "elevenlabs.voices"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+ElevenLabsVoicesEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create voices request: %w", err)
	}
	req.Header.Set("xi-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, reliability.FromTransport(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, reliability.FromHTTPStatus(op, resp.StatusCode, string(body))
	}

	var voicesResp ElevenLabsVoicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&voicesResp); err != nil {
		return nil, fmt.Errorf("failed to decode voices response: %w", err)
	}

	voices := make([]Voice, 0, len(voicesResp.Voices))
	for _, v := range voicesResp.Voices {
		if !v.AvailableForTts {
			continue
		}
		language := "multilingual"
		if v.FineTuning.Language != "" {
			language = v.FineTuning.Language
		}
		voices = append(voices, Voice{
			ID:          v.VoiceID,
			Name:        v.Name,
			Language:    language,
			Gender:      v.Labels["gender"],
			Description: v.Description,
		})
	}

	log.Debug().
		Int("voice_count", len(voices)).
		Msg("ElevenLabs voices retrieved successfully")

	return voices, nil
}

// ElevenLabsTTSRequest represents the request body for TTS synthesis
type ElevenLabsTTSRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id,omitempty"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// Synthesize generates audio from text using ElevenLabs TTS API
func (p *ElevenLabsProvider) Synthesize(ctx context.Context, text string, options SynthesizeOptions) (io.ReadCloser, error) {
	const op = "elevenlabs.synthesize"
	if strings.TrimSpace(text) == "" {
		return nil, reliability.Validation(op, "text cannot be empty")
	}

	voice := options.Voice
	if voice == "" {
		voice = "21m00Tcm4TlvDq8ikWAM" // Rachel
	}
	model := options.Model
	if model == "" {
		model = "eleven_multilingual_v2"
	}
	outputFormat := convertToElevenLabsFormat(options.Format)

	settings := VoiceSettings{
		Stability:       0.5,
		SimilarityBoost: 0.75,
		UseSpeakerBoost: options.UseSpeakerBoost,
	}
	if options.Stability > 0 {
		settings.Stability = options.Stability
	}
	if options.SimilarityBoost > 0 {
		settings.SimilarityBoost = options.SimilarityBoost
	}
	if options.Style > 0 {
		settings.Style = options.Style
	}
	if options.Speed > 0 {
		// ElevenLabs accepts 0.7-1.2
		settings.Speed = min(max(options.Speed, 0.7), 1.2)
	}

	requestBody := ElevenLabsTTSRequest{
		Text:          WithAudioTags(text, options.Cues, model),
		ModelID:       model,
		VoiceSettings: settings,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s%s/%s?output_format=%s", p.baseURL, ElevenLabsTTSEndpoint, voice, outputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", p.apiKey)

	log.Debug().
		Str("endpoint", endpoint).
		Str("voice", voice).
		Str("model", model).
		Int("cues", len(options.Cues)).
		Msg("Making ElevenLabs TTS request")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, reliability.FromTransport(op, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := string(body)
		var errorResp ElevenLabsError
		if json.Unmarshal(body, &errorResp) == nil && errorResp.Detail != nil {
			msg = errorResp.String()
		}
		return nil, reliability.FromHTTPStatus(op, resp.StatusCode, msg)
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Str("content_type", resp.Header.Get("Content-Type")).
		Msg("ElevenLabs TTS request successful")

	return resp.Body, nil
}

// WithAudioTags prefixes text with [cue] audio tags when model supports them.
func WithAudioTags(text string, cues []string, model string) string {
	if model != ElevenLabsAudioTagModel || len(cues) == 0 {
		return text
	}
	var b strings.Builder
	for _, cue := range cues {
		cue = strings.TrimSpace(cue)
		if cue == "" {
			continue
		}
		b.WriteString("[" + cue + "] ")
	}
	b.WriteString(text)
	return b.String()
}

// IsAvailable checks if ElevenLabs provider is available
func (p *ElevenLabsProvider) IsAvailable(ctx context.Context) bool {
	if p.apiKey == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+ElevenLabsVoicesEndpoint, nil)
	if err != nil {
		return false
	}
	req.Header.Set("xi-api-key", p.apiKey)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// ElevenLabsProviderFromConfig creates an ElevenLabs provider from configuration
func ElevenLabsProviderFromConfig(config map[string]interface{}) (*ElevenLabsProvider, error) {
	apiKey, ok := config["api_key"].(string)
	if !ok || apiKey == "" {
		return nil, reliability.New(reliability.KindInvalidCredential, "elevenlabs.config", fmt.Errorf("api_key is required for ElevenLabs provider"))
	}

	provider := NewElevenLabsProvider(apiKey)
	if baseURL, ok := config["base_url"].(string); ok && baseURL != "" {
		provider.baseURL = strings.TrimSuffix(baseURL, "/")
	}

	return provider, nil
}

// convertToElevenLabsFormat converts common format names to ElevenLabs format names
func convertToElevenLabsFormat(format string) string {
	switch strings.ToLower(format) {
	case "wav", "wave", "pcm":
		return "pcm_44100"
	case "ulaw":
		return "ulaw_8000"
	default:
		return "mp3_44100_128"
	}
}

// ElevenLabsError represents an error from ElevenLabs API
type ElevenLabsError struct {
	Detail interface{} `json:"detail"`
}

func (e ElevenLabsError) String() string {
	switch detail := e.Detail.(type) {
	case string:
		return fmt.Sprintf("ElevenLabs API Error: %s", detail)
	case map[string]interface{}:
		if msg, ok := detail["message"].(string); ok {
			return fmt.Sprintf("ElevenLabs API Error: %s", msg)
		}
		return fmt.Sprintf("ElevenLabs API Error: %v", detail)
	case []interface{}:
		if len(detail) > 0 {
			if first, ok := detail[0].(map[string]interface{}); ok {
				if msg, ok := first["msg"].(string); ok {
					return fmt.Sprintf("ElevenLabs API Error: %s", msg)
				}
			}
		}
		return fmt.Sprintf("ElevenLabs API Error: %v", detail)
	default:
		return fmt.Sprintf("ElevenLabs API Error: %v", detail)
	}
}
