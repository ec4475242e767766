package bleep

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/daikw/angertranslator/internal/audio"
)

// Render returns PCM16LE mono samples of the tone at sampleRate.
func Render(p Params, sampleRate int) []byte {
	p = p.normalized()
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}

	n := int(math.Round(p.Duration.Seconds() * float64(sampleRate)))
	out := make([]byte, 2*n)
	step := 2 * math.Pi * p.Frequency / float64(sampleRate)
	for i := 0; i < n; i++ {
		t := time.Duration(float64(i) / float64(sampleRate) * float64(time.Second))
		v := math.Sin(step*float64(i)) * p.Gain(t) * p.Volume
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(v*math.MaxInt16)))
	}
	return out
}

// RenderWAV renders the tone as a WAV file body.
func RenderWAV(p Params, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}
	return audio.EncodeWAV(Render(p, sampleRate), sampleRate)
}

// Clip renders the tone as a playable clip.
func Clip(p Params, sampleRate int) audio.Clip {
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}
	return audio.Clip{Data: Render(p, sampleRate), Format: audio.FormatPCM, SampleRate: sampleRate}
}
