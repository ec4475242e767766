package voice

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/daikw/angertranslator/internal/audio"
	"github.com/daikw/angertranslator/internal/persona"
	"github.com/daikw/angertranslator/internal/reliability"
	"github.com/daikw/angertranslator/internal/voice/provider"
)

type mockProvider struct {
	mock.Mock
	name string
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) ListVoices(ctx context.Context) ([]provider.Voice, error) {
	return nil, nil
}

func (m *mockProvider) Synthesize(ctx context.Context, text string, options provider.SynthesizeOptions) (io.ReadCloser, error) {
	args := m.Called(text, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return io.NopCloser(strings.NewReader(args.String(0))), args.Error(1)
}

func (m *mockProvider) IsAvailable(ctx context.Context) bool { return true }

func noSleepPolicy() reliability.Policy {
	p := reliability.DefaultPolicy()
	p.Sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return p
}

func TestSynthesizer_Synthesize(t *testing.T) {
	p := &mockProvider{name: provider.NameElevenLabs}
	p.On("Synthesize", "Listen here", mock.MatchedBy(func(o provider.SynthesizeOptions) bool {
		return o.Voice == "EXAVITQu4vr4xnSDxMaL" && assert.ObjectsAreEqual([]string{"shrill"}, o.Cues)
	})).Return("audio", nil).Once()

	s := NewSynthesizer(p, nil, WithPolicy(noSleepPolicy()))
	clip, err := s.Synthesize(context.Background(), Request{
		Text:      "  Listen here ",
		Cues:      []string{"shrill"},
		Persona:   persona.Karen,
		Intensity: 80,
	})
	require.NoError(t, err)
	assert.Equal(t, "audio", string(clip.Data))
	assert.Equal(t, audio.FormatMP3, clip.Format)
	p.AssertExpectations(t)
}

func TestSynthesizer_RetriesTransientFailures(t *testing.T) {
	p := &mockProvider{name: provider.NameOpenAI}
	transient := reliability.New(reliability.KindTransient, "openai.synthesize", errors.New("503"))
	p.On("Synthesize", "hi", mock.Anything).Return(nil, transient).Twice()
	p.On("Synthesize", "hi", mock.Anything).Return("ok", nil).Once()

	clip, err := NewSynthesizer(p, nil, WithPolicy(noSleepPolicy())).
		Synthesize(context.Background(), Request{Text: "hi", Persona: persona.Enforcer})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(clip.Data))
	p.AssertNumberOfCalls(t, "Synthesize", 3)
}

func TestSynthesizer_DoesNotRetryCredentialFailures(t *testing.T) {
	p := &mockProvider{name: provider.NameOpenAI}
	authErr := reliability.New(reliability.KindInvalidCredential, "openai.synthesize", errors.New("401"))
	p.On("Synthesize", "hi", mock.Anything).Return(nil, authErr)

	_, err := NewSynthesizer(p, nil, WithPolicy(noSleepPolicy())).
		Synthesize(context.Background(), Request{Text: "hi"})
	assert.Equal(t, reliability.KindInvalidCredential, reliability.KindOf(err))
	p.AssertNumberOfCalls(t, "Synthesize", 1)
}

func TestSynthesizer_EmptyAudioIsGenerationFailure(t *testing.T) {
	p := &mockProvider{name: provider.NamePolly}
	p.On("Synthesize", "hi", mock.Anything).Return("", nil)

	_, err := NewSynthesizer(p, nil).Synthesize(context.Background(), Request{Text: "hi"})
	assert.Equal(t, reliability.KindGeneration, reliability.KindOf(err))
}

func TestSynthesizer_EmptyTextRejected(t *testing.T) {
	p := &mockProvider{name: provider.NamePolly}

	_, err := NewSynthesizer(p, nil).Synthesize(context.Background(), Request{Text: "   "})
	assert.Equal(t, reliability.KindValidation, reliability.KindOf(err))
	p.AssertNotCalled(t, "Synthesize", mock.Anything, mock.Anything)
}

func TestSynthesizer_UsesCache(t *testing.T) {
	p := &mockProvider{name: provider.NameGCP}
	p.On("Synthesize", "again", mock.Anything).Return("clip", nil).Once()

	s := NewSynthesizer(p, nil, WithCache(NewClipCache(t.TempDir())))
	req := Request{Text: "again", Persona: persona.Don, Intensity: 40}

	first, err := s.Synthesize(context.Background(), req)
	require.NoError(t, err)
	second, err := s.Synthesize(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Data, second.Data)
	p.AssertNumberOfCalls(t, "Synthesize", 1)
}

func TestSynthesizer_PCMSampleRate(t *testing.T) {
	fileConfig := &ConfigFile{
		Providers: map[string]ProviderConfig{
			provider.NamePolly: {Format: "pcm", SampleRate: "16000"},
		},
	}
	p := &mockProvider{name: provider.NamePolly}
	p.On("Synthesize", "raw", mock.Anything).Return("\x00\x00", nil)

	clip, err := NewSynthesizer(p, fileConfig).Synthesize(context.Background(), Request{Text: "raw"})
	require.NoError(t, err)
	assert.Equal(t, audio.FormatPCM, clip.Format)
	assert.Equal(t, 16000, clip.SampleRate)
}

type stubFactory struct {
	gotName   string
	gotConfig map[string]interface{}
}

func (f *stubFactory) CreateProvider(name string, config map[string]interface{}) (provider.Provider, error) {
	f.gotName, f.gotConfig = name, config
	if name == "broken" {
		return nil, errors.New("nope")
	}
	return &mockProvider{name: name}, nil
}

func (f *stubFactory) ListProviders() []string { return nil }

func TestNewFromConfig(t *testing.T) {
	factory := &stubFactory{}
	fileConfig := &ConfigFile{
		DefaultProvider: provider.NamePolly,
		Defaults:        &DefaultsConfig{CacheDir: t.TempDir()},
		Providers: map[string]ProviderConfig{
			provider.NamePolly: {Region: "eu-west-1"},
		},
	}

	s, err := NewFromConfig(factory, fileConfig, "")
	require.NoError(t, err)
	assert.Equal(t, provider.NamePolly, s.Provider().Name())
	assert.Equal(t, "eu-west-1", factory.gotConfig["region"])
	assert.NotNil(t, s.cache)

	_, err = NewFromConfig(factory, nil, "broken")
	assert.ErrorContains(t, err, "failed to create broken provider")
}
