package provider

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/daikw/angertranslator/internal/reliability"
)

// MockPollyClient is a mock implementation of the Polly API client
type MockPollyClient struct {
	mock.Mock
}

func (m *MockPollyClient) DescribeVoices(ctx context.Context, params *polly.DescribeVoicesInput, optFns ...func(*polly.Options)) (*polly.DescribeVoicesOutput, error) {
	args := m.Called(ctx, params)
	result := args.Get(0)
	if result == nil {
		return nil, args.Error(1)
	}
	return result.(*polly.DescribeVoicesOutput), args.Error(1)
}

func (m *MockPollyClient) SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error) {
	args := m.Called(ctx, params)
	result := args.Get(0)
	if result == nil {
		return nil, args.Error(1)
	}
	return result.(*polly.SynthesizeSpeechOutput), args.Error(1)
}

func TestPollyProvider_ListVoices(t *testing.T) {
	mockClient := &MockPollyClient{}
	provider := NewPollyProviderWithClient(mockClient, "us-east-1")

	mockClient.On("DescribeVoices", mock.Anything, mock.Anything).Return(&polly.DescribeVoicesOutput{
		Voices: []types.Voice{
			{
				Id:               types.VoiceIdJoanna,
				Name:             aws.String("Joanna"),
				LanguageCode:     types.LanguageCodeEnUs,
				Gender:           types.GenderFemale,
				SupportedEngines: []types.Engine{types.EngineNeural, types.EngineStandard},
			},
		},
	}, nil)

	voices, err := provider.ListVoices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Voice{{
		ID:          "Joanna",
		Name:        "Joanna",
		Language:    "en-US",
		Gender:      "female",
		Description: "Female voice, neural, standard engine supported",
	}}, voices)
	mockClient.AssertExpectations(t)
}

func TestPollyProvider_Synthesize(t *testing.T) {
	t.Run("plain text at normal speed", func(t *testing.T) {
		mockClient := &MockPollyClient{}
		provider := NewPollyProviderWithClient(mockClient, "us-east-1")

		mockClient.On("SynthesizeSpeech", mock.Anything, mock.MatchedBy(func(in *polly.SynthesizeSpeechInput) bool {
			return aws.ToString(in.Text) == "Hello" &&
				in.TextType == types.TextTypeText &&
				in.VoiceId == types.VoiceIdMatthew &&
				in.Engine == types.EngineNeural &&
				in.OutputFormat == types.OutputFormatMp3
		})).Return(&polly.SynthesizeSpeechOutput{
			AudioStream: io.NopCloser(strings.NewReader("mp3")),
			ContentType: aws.String("audio/mpeg"),
		}, nil)

		reader, err := provider.Synthesize(context.Background(), "Hello", SynthesizeOptions{Voice: "Matthew", Speed: 1.0})
		require.NoError(t, err)
		data, _ := io.ReadAll(reader)
		assert.Equal(t, "mp3", string(data))
		mockClient.AssertExpectations(t)
	})

	t.Run("speed becomes SSML prosody", func(t *testing.T) {
		mockClient := &MockPollyClient{}
		provider := NewPollyProviderWithClient(mockClient, "us-east-1")

		mockClient.On("SynthesizeSpeech", mock.Anything, mock.MatchedBy(func(in *polly.SynthesizeSpeechInput) bool {
			return in.TextType == types.TextTypeSsml &&
				aws.ToString(in.Text) == `<speak><prosody rate="115%">Fish &amp; chips &lt;now&gt;</prosody></speak>`
		})).Return(&polly.SynthesizeSpeechOutput{AudioStream: io.NopCloser(strings.NewReader("x"))}, nil)

		_, err := provider.Synthesize(context.Background(), "Fish & chips <now>", SynthesizeOptions{Speed: 1.15})
		require.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("rejects unsupported format without calling the API", func(t *testing.T) {
		mockClient := &MockPollyClient{}
		provider := NewPollyProviderWithClient(mockClient, "us-east-1")

		_, err := provider.Synthesize(context.Background(), "Hello", SynthesizeOptions{Format: "flac"})
		assert.Equal(t, reliability.KindValidation, reliability.KindOf(err))
		mockClient.AssertNotCalled(t, "SynthesizeSpeech", mock.Anything, mock.Anything)
	})

	t.Run("empty text", func(t *testing.T) {
		_, err := NewPollyProviderWithClient(&MockPollyClient{}, "").Synthesize(context.Background(), "", SynthesizeOptions{})
		assert.Contains(t, err.Error(), "text cannot be empty")
	})
}

func TestClassifyPollyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want reliability.Kind
	}{
		{"bad credentials", &smithy.GenericAPIError{Code: "UnrecognizedClientException", Fault: smithy.FaultClient}, reliability.KindInvalidCredential},
		{"throttled", &smithy.GenericAPIError{Code: "ThrottlingException", Fault: smithy.FaultClient}, reliability.KindRateLimited},
		{"too long", &smithy.GenericAPIError{Code: "TextLengthExceededException", Fault: smithy.FaultClient}, reliability.KindValidation},
		{"service failure", &smithy.GenericAPIError{Code: "ServiceFailureException", Fault: smithy.FaultServer}, reliability.KindTransient},
		{"other client error", &smithy.GenericAPIError{Code: "LexiconNotFoundException", Fault: smithy.FaultClient}, reliability.KindOther},
		{"network", errors.New("dial tcp: connection refused"), reliability.KindTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reliability.KindOf(classifyPollyError("polly.synthesize", tt.err)))
		})
	}

	assert.ErrorIs(t, classifyPollyError("op", context.Canceled), context.Canceled)
}

func TestPollyProvider_IsAvailable(t *testing.T) {
	mockClient := &MockPollyClient{}
	mockClient.On("DescribeVoices", mock.Anything, mock.Anything).Return(nil, errors.New("no credentials"))
	assert.False(t, NewPollyProviderWithClient(mockClient, "us-east-1").IsAvailable(context.Background()))
}

func TestFormatSupportedEngines(t *testing.T) {
	assert.Equal(t, "unknown", formatSupportedEngines(nil))
	assert.Equal(t, "neural, generative", formatSupportedEngines([]types.Engine{types.EngineNeural, types.EngineGenerative}))
}
