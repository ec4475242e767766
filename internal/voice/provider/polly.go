package provider

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/daikw/angertranslator/internal/reliability"
)

// PollyClient interface defines the methods we need from the Polly client
type PollyClient interface {
	DescribeVoices(ctx context.Context, params *polly.DescribeVoicesInput, optFns ...func(*polly.Options)) (*polly.DescribeVoicesOutput, error)
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// PollyProvider implements the Provider interface for Amazon Polly
type PollyProvider struct {
	client PollyClient
	region string
}

// NewPollyProvider creates a new Amazon Polly TTS provider
func NewPollyProvider(ctx context.Context, region string) (*PollyProvider, error) {
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &PollyProvider{
		client: polly.NewFromConfig(cfg),
		region: region,
	}, nil
}

// NewPollyProviderWithClient wraps an existing client
func NewPollyProviderWithClient(client PollyClient, region string) *PollyProvider {
	return &PollyProvider{client: client, region: region}
}

// Name returns the provider name
func (p *PollyProvider) Name() string {
	return NamePolly
}

// ListVoices returns available Amazon Polly voices
func (p *PollyProvider) ListVoices(ctx context.Context) ([]Voice, error) {
	result, err := p.client.DescribeVoices(ctx, &polly.DescribeVoicesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list Polly voices: %w", classifyPollyError("polly.voices", err))
	}

	voices := make([]Voice, 0, len(result.Voices))
	for _, v := range result.Voices {
		voice := Voice{
			ID:       string(v.Id),
			Name:     aws.ToString(v.Name),
			Language: string(v.LanguageCode),
			Description: fmt.Sprintf("%s voice, %s engine supported",
				cases.Title(language.English).String(string(v.Gender)),
				formatSupportedEngines(v.SupportedEngines)),
		}
		switch v.Gender {
		case types.GenderFemale:
			voice.Gender = "female"
		case types.GenderMale:
			voice.Gender = "male"
		}
		voices = append(voices, voice)
	}

	return voices, nil
}

// Synthesize generates audio from text using Amazon Polly.
// Speeds other than 1.0 are sent as SSML prosody.
func (p *PollyProvider) Synthesize(ctx context.Context, text string, options SynthesizeOptions) (io.ReadCloser, error) {
	const op = "polly.synthesize"
	if strings.TrimSpace(text) == "" {
		return nil, reliability.Validation(op, "text cannot be empty")
	}

	voiceID := options.Voice
	if voiceID == "" {
		voiceID = "Joanna"
	}

	var pollyFormat types.OutputFormat
	switch strings.ToLower(options.Format) {
	case "", "mp3":
		pollyFormat = types.OutputFormatMp3
	case "ogg":
		pollyFormat = types.OutputFormatOggVorbis
	case "pcm":
		pollyFormat = types.OutputFormatPcm
	default:
		return nil, reliability.Validation(op, "unsupported audio format: %s", options.Format)
	}

	engine := types.EngineNeural
	switch strings.ToLower(options.Engine) {
	case "", "neural":
	case "standard":
		engine = types.EngineStandard
	case "long-form":
		engine = types.EngineLongForm
	case "generative":
		engine = types.EngineGenerative
	default:
		log.Warn().Str("engine", options.Engine).Msg("Unknown engine, using neural")
	}

	input := &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		VoiceId:      types.VoiceId(voiceID),
		OutputFormat: pollyFormat,
		Engine:       engine,
		TextType:     types.TextTypeText,
	}
	if ssml, ok := prosodySSML(text, options.Speed); ok {
		input.Text = aws.String(ssml)
		input.TextType = types.TextTypeSsml
	}

	switch options.SampleRate {
	case "":
	case "8000", "16000", "22050", "24000":
		input.SampleRate = aws.String(options.SampleRate)
	default:
		log.Warn().Str("sample_rate", options.SampleRate).Msg("Invalid sample rate, using default")
	}

	log.Debug().
		Str("voice_id", voiceID).
		Str("output_format", string(pollyFormat)).
		Str("engine", string(engine)).
		Str("text_type", string(input.TextType)).
		Msg("Making Polly synthesis request")

	result, err := p.client.SynthesizeSpeech(ctx, input)
	if err != nil {
		return nil, classifyPollyError(op, err)
	}

	log.Debug().
		Str("content_type", aws.ToString(result.ContentType)).
		Msg("Polly synthesis request successful")

	return result.AudioStream, nil
}

// prosodySSML wraps text in a prosody rate element when speed differs from 1.0.
func prosodySSML(text string, speed float64) (string, bool) {
	if speed <= 0 || math.Abs(speed-1) < 0.01 {
		return "", false
	}
	rate := int(math.Round(min(max(speed, 0.2), 2.0) * 100))

	var b strings.Builder
	fmt.Fprintf(&b, `<speak><prosody rate="%d%%">`, rate)
	_ = xml.EscapeText(&b, []byte(text))
	b.WriteString("</prosody></speak>")
	return b.String(), true
}

// classifyPollyError maps smithy API error codes to reliability kinds.
func classifyPollyError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return reliability.FromTransport(op, err)
	}
	switch apiErr.ErrorCode() {
	case "UnrecognizedClientException", "InvalidSignatureException", "AccessDeniedException",
		"ExpiredTokenException", "MissingAuthenticationTokenException":
		return reliability.New(reliability.KindInvalidCredential, op, err)
	case "ThrottlingException", "TooManyRequestsException":
		return reliability.New(reliability.KindRateLimited, op, err)
	case "TextLengthExceededException", "InvalidSsmlException", "SsmlMarksNotSupportedForTextTypeException",
		"InvalidSampleRateException", "EngineNotSupportedException", "LanguageNotSupportedException":
		return reliability.New(reliability.KindValidation, op, err)
	}
	if apiErr.ErrorFault() == smithy.FaultServer {
		return reliability.New(reliability.KindTransient, op, err)
	}
	return reliability.New(reliability.KindOther, op, err)
}

// IsAvailable checks if Amazon Polly provider is available
func (p *PollyProvider) IsAvailable(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := p.client.DescribeVoices(checkCtx, &polly.DescribeVoicesInput{})
	return err == nil
}

// PollyProviderFromConfig creates a Polly provider from configuration
func PollyProviderFromConfig(ctx context.Context, config map[string]interface{}) (*PollyProvider, error) {
	region := "us-east-1"
	if r, ok := config["region"].(string); ok && r != "" {
		region = r
	}
	return NewPollyProvider(ctx, region)
}

// formatSupportedEngines formats the list of supported engines for display
func formatSupportedEngines(engines []types.Engine) string {
	if len(engines) == 0 {
		return "unknown"
	}
	names := make([]string, len(engines))
	for i, engine := range engines {
		names[i] = string(engine)
	}
	return strings.Join(names, ", ")
}
