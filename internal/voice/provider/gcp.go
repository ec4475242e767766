package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/daikw/angertranslator/internal/reliability"
)

// GCPClient is the subset of the Cloud TTS client the provider uses
type GCPClient interface {
	ListVoices(ctx context.Context, req *texttospeechpb.ListVoicesRequest, opts ...gax.CallOption) (*texttospeechpb.ListVoicesResponse, error)
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
	Close() error
}

// GCPProvider implements the Provider interface for Google Cloud Text-to-Speech
type GCPProvider struct {
	client   GCPClient
	voice    string
	language string
}

// GCPProviderOption is a functional option for configuring GCPProvider
type GCPProviderOption func(*GCPProvider)

// WithGCPVoice sets the default voice
func WithGCPVoice(voice string) GCPProviderOption {
	return func(p *GCPProvider) {
		p.voice = voice
	}
}

// WithGCPLanguage sets the default language code
func WithGCPLanguage(language string) GCPProviderOption {
	return func(p *GCPProvider) {
		p.language = language
	}
}

// WithGCPClient replaces the gRPC client
func WithGCPClient(client GCPClient) GCPProviderOption {
	return func(p *GCPProvider) {
		p.client = client
	}
}

// NewGCPProvider creates a new Google Cloud TTS provider.
// Authentication uses Application Default Credentials unless a client is supplied.
func NewGCPProvider(ctx context.Context, opts ...GCPProviderOption) (*GCPProvider, error) {
	p := &GCPProvider{
		voice:    "en-US-Neural2-C",
		language: "en-US",
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil {
		client, err := texttospeech.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCP TTS client: %w", err)
		}
		p.client = client
	}

	return p, nil
}

// Name returns the provider name
func (p *GCPProvider) Name() string {
	return NameGCP
}

// ListVoices returns available voices from Google Cloud TTS
func (p *GCPProvider) ListVoices(ctx context.Context) ([]Voice, error) {
	resp, err := p.client.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list GCP voices: %w", classifyGRPCError("gcp.voices", err))
	}

	var voices []Voice
	for _, v := range resp.Voices {
		gender := "unknown"
		switch v.SsmlGender {
		case texttospeechpb.SsmlVoiceGender_MALE:
			gender = "male"
		case texttospeechpb.SsmlVoiceGender_FEMALE:
			gender = "female"
		case texttospeechpb.SsmlVoiceGender_NEUTRAL:
			gender = "neutral"
		}
		for _, langCode := range v.LanguageCodes {
			voices = append(voices, Voice{
				ID:          v.Name,
				Name:        v.Name,
				Language:    langCode,
				Gender:      gender,
				Description: fmt.Sprintf("%s voice (%s)", detectEngineType(v.Name), strings.Join(v.LanguageCodes, ", ")),
			})
		}
	}

	log.Debug().Int("count", len(voices)).Msg("Listed GCP TTS voices")
	return voices, nil
}

// detectEngineType determines the engine type from voice name
func detectEngineType(voiceName string) string {
	name := strings.ToLower(voiceName)
	switch {
	case strings.Contains(name, "wavenet"):
		return "WaveNet"
	case strings.Contains(name, "neural2"):
		return "Neural2"
	case strings.Contains(name, "studio"):
		return "Studio"
	case strings.Contains(name, "chirp"):
		return "Chirp"
	case strings.Contains(name, "news"):
		return "News"
	default:
		return "Standard"
	}
}

// Synthesize generates audio from text using Google Cloud TTS
func (p *GCPProvider) Synthesize(ctx context.Context, text string, options SynthesizeOptions) (io.ReadCloser, error) {
	const op = "gcp.synthesize"
	if strings.TrimSpace(text) == "" {
		return nil, reliability.Validation(op, "text cannot be empty")
	}

	voice := p.voice
	if options.Voice != "" {
		voice = options.Voice
	}
	lang := languageFromVoice(voice, p.language)
	if options.Language != "" {
		lang = options.Language
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: lang,
			Name:         voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: getAudioEncoding(options.Format),
			SpeakingRate:  clampSpeed(options.Speed),
		},
	}

	log.Debug().
		Str("voice", voice).
		Str("language", lang).
		Str("format", options.Format).
		Float64("speed", req.AudioConfig.SpeakingRate).
		Msg("Making GCP TTS synthesis request")

	resp, err := p.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, classifyGRPCError(op, err)
	}
	if len(resp.AudioContent) == 0 {
		return nil, reliability.New(reliability.KindGeneration, op, errors.New("empty audio content"))
	}

	log.Debug().
		Int("audio_bytes", len(resp.AudioContent)).
		Msg("GCP TTS synthesis successful")

	return io.NopCloser(bytes.NewReader(resp.AudioContent)), nil
}

// languageFromVoice extracts "en-US" from "en-US-Neural2-C".
func languageFromVoice(voice, fallback string) string {
	parts := strings.Split(voice, "-")
	if len(parts) >= 3 {
		return parts[0] + "-" + parts[1]
	}
	return fallback
}

// getAudioEncoding converts format string to GCP audio encoding
func getAudioEncoding(format string) texttospeechpb.AudioEncoding {
	switch strings.ToLower(format) {
	case "wav", "linear16", "pcm":
		return texttospeechpb.AudioEncoding_LINEAR16
	case "ogg", "ogg_opus":
		return texttospeechpb.AudioEncoding_OGG_OPUS
	default:
		return texttospeechpb.AudioEncoding_MP3
	}
}

// classifyGRPCError maps gRPC status codes to reliability kinds.
func classifyGRPCError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	st, ok := status.FromError(err)
	if !ok {
		return reliability.FromTransport(op, err)
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return reliability.New(reliability.KindInvalidCredential, op, err)
	case codes.ResourceExhausted:
		return reliability.New(reliability.KindRateLimited, op, err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.Internal, codes.Aborted:
		return reliability.New(reliability.KindTransient, op, err)
	case codes.InvalidArgument, codes.OutOfRange:
		return reliability.New(reliability.KindValidation, op, err)
	default:
		return reliability.New(reliability.KindOther, op, err)
	}
}

// IsAvailable checks if the GCP TTS service is available
func (p *GCPProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{LanguageCode: p.language})
	return err == nil
}

// Close closes the GCP client
func (p *GCPProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// GCPProviderFromConfig creates a GCPProvider from configuration map
func GCPProviderFromConfig(ctx context.Context, config map[string]interface{}) (*GCPProvider, error) {
	var opts []GCPProviderOption
	if voice, ok := config["voice"].(string); ok && voice != "" {
		opts = append(opts, WithGCPVoice(voice))
	}
	if language, ok := config["language"].(string); ok && language != "" {
		opts = append(opts, WithGCPLanguage(language))
	}
	return NewGCPProvider(ctx, opts...)
}
