package bleep

import (
	"context"
	"encoding/binary"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daikw/angertranslator/internal/audio"
	"github.com/daikw/angertranslator/internal/reliability"
)

func TestDurationForText(t *testing.T) {
	tests := []struct {
		content string
		want    time.Duration
	}{
		{"", 300 * time.Millisecond},
		{"ab", 300 * time.Millisecond},
		{"abc", 300 * time.Millisecond},
		{"frick", 500 * time.Millisecond},
		{strings.Repeat("a", 20), 2 * time.Second},
		{strings.Repeat("a", 30), 2 * time.Second},
		{"ばかやろう", 500 * time.Millisecond},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DurationForText(tt.content), "content %q", tt.content)
	}
}

func TestPresetsAreDistinct(t *testing.T) {
	styles := Styles()
	require.Len(t, styles, 4)
	for i, a := range styles {
		pa, ok := Preset(a)
		require.True(t, ok)
		for _, b := range styles[i+1:] {
			pb, _ := Preset(b)
			assert.NotEqual(t, pa.Frequency, pb.Frequency, "%s vs %s", a, b)
			assert.NotEqual(t, pa.Duration, pb.Duration, "%s vs %s", a, b)
		}
	}

	p, ok := Preset("kazoo")
	assert.False(t, ok)
	assert.Equal(t, 1000.0, p.Frequency)
}

func TestEnvelopeSumsToDuration(t *testing.T) {
	tests := []Params{
		{Duration: time.Second, FadeIn: 100 * time.Millisecond, FadeOut: 200 * time.Millisecond},
		{Duration: 100 * time.Millisecond, FadeIn: 300 * time.Millisecond, FadeOut: 100 * time.Millisecond},
		{Duration: 300 * time.Millisecond},
		{Duration: 7 * time.Millisecond, FadeIn: 5 * time.Millisecond, FadeOut: 5 * time.Millisecond},
	}
	for _, p := range tests {
		in, sustain, out := p.Envelope()
		assert.Equal(t, p.Duration, in+sustain+out)
		assert.GreaterOrEqual(t, sustain, time.Duration(0))
	}

	in, sustain, out := Params{Duration: 100 * time.Millisecond, FadeIn: 300 * time.Millisecond, FadeOut: 100 * time.Millisecond}.Envelope()
	assert.Equal(t, 75*time.Millisecond, in)
	assert.Equal(t, time.Duration(0), sustain)
	assert.Equal(t, 25*time.Millisecond, out)
}

func TestGain(t *testing.T) {
	p := Params{Duration: time.Second, FadeIn: 100 * time.Millisecond, FadeOut: 100 * time.Millisecond}
	assert.Equal(t, 0.0, p.Gain(0))
	assert.InDelta(t, 0.5, p.Gain(50*time.Millisecond), 1e-9)
	assert.Equal(t, 1.0, p.Gain(500*time.Millisecond))
	assert.InDelta(t, 0.5, p.Gain(950*time.Millisecond), 1e-9)
	assert.Equal(t, 0.0, p.Gain(time.Second))
	assert.Equal(t, 1.0, Params{Duration: time.Second}.Gain(0))
}

func TestRender(t *testing.T) {
	p := Params{Frequency: 1000, Duration: 10 * time.Millisecond, Volume: 1}
	pcm := Render(p, 8000)
	require.Len(t, pcm, 2*80)

	peak := 0
	for i := 0; i < len(pcm); i += 2 {
		v := int(int16(binary.LittleEndian.Uint16(pcm[i:])))
		if v < 0 {
			v = -v
		}
		peak = max(peak, v)
	}
	assert.Greater(t, peak, 30000)

	quiet := Render(Params{Frequency: 1000, Duration: 10 * time.Millisecond, Volume: 0}, 8000)
	for _, b := range quiet {
		assert.Zero(t, b)
	}
}

func TestRenderWAV(t *testing.T) {
	p, _ := Preset(Harsh)
	wav, err := RenderWAV(p, 0)
	require.NoError(t, err)
	pcm, rate, err := audio.DecodeWAV(wav)
	require.NoError(t, err)
	assert.Equal(t, audio.DefaultSampleRate, rate)
	assert.Len(t, pcm, 2*int(0.3*audio.DefaultSampleRate))
}

type recordingPlayer struct {
	mu    sync.Mutex
	clips []audio.Clip
	err   error
}

func (r *recordingPlayer) Play(_ context.Context, clip audio.Clip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clips = append(r.clips, clip)
	return r.err
}

type offlineDevice struct {
	recordingPlayer
	probes int
}

func (o *offlineDevice) Available() bool {
	o.probes++
	return false
}

func TestSynthesizerUnsupportedNoops(t *testing.T) {
	dev := &offlineDevice{}
	s := NewSynthesizer(dev, 0)
	p, _ := Preset(Broadcast)

	assert.False(t, s.Supported())
	assert.NoError(t, s.PlayTone(context.Background(), p))
	assert.NoError(t, s.PlaySequence(context.Background(), p, 3, time.Millisecond))
	assert.Empty(t, dev.clips)
	assert.Equal(t, 1, dev.probes)

	assert.False(t, NewSynthesizer(nil, 0).Supported())
	assert.NoError(t, NewSynthesizer(nil, 0).PlayTone(context.Background(), p))
}

func TestSynthesizerPlaySequence(t *testing.T) {
	player := &recordingPlayer{}
	s := NewSynthesizer(player, 8000)
	p := Params{Frequency: 600, Duration: 20 * time.Millisecond, Volume: 0.5}

	require.NoError(t, s.PlaySequence(context.Background(), p, 3, time.Millisecond))
	require.Len(t, player.clips, 3)
	for _, clip := range player.clips {
		assert.Equal(t, audio.FormatPCM, clip.Format)
		assert.Equal(t, 8000, clip.SampleRate)
		assert.Len(t, clip.Data, 2*160)
	}
}

func TestSynthesizerDeviceFailureDegrades(t *testing.T) {
	player := &recordingPlayer{err: reliability.New(reliability.KindAudioDevice, "audio.play", audio.ErrNoPlayer)}
	s := NewSynthesizer(player, 8000)
	assert.NoError(t, s.PlayTone(context.Background(), Params{Duration: time.Millisecond}))
}

func TestSynthesizerSequenceCancelled(t *testing.T) {
	player := &recordingPlayer{}
	s := NewSynthesizer(player, 8000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.PlaySequence(ctx, Params{Duration: time.Millisecond}, 2, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, player.clips)
}
