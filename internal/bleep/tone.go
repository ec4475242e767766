// Package bleep synthesizes censor tones: sine waves with a linear fade-in, sustain, fade-out envelope.
package bleep

import (
	"sort"
	"time"
	"unicode/utf8"
)

// Style names a tone preset
type Style string

const (
	Broadcast Style = "broadcast"
	Soft      Style = "soft"
	Harsh     Style = "harsh"
	Muffled   Style = "muffled"
)

// Params fully describes one tone. Volume is in [0,1].
type Params struct {
	Frequency float64       `json:"frequency_hz"`
	Duration  time.Duration `json:"duration"`
	Volume    float64       `json:"volume"`
	FadeIn    time.Duration `json:"fade_in"`
	FadeOut   time.Duration `json:"fade_out"`
}

var presets = map[Style]Params{
	Broadcast: {Frequency: 1000, Duration: 500 * time.Millisecond, Volume: 0.5, FadeIn: 10 * time.Millisecond, FadeOut: 10 * time.Millisecond},
	Soft:      {Frequency: 600, Duration: time.Second, Volume: 0.3, FadeIn: 50 * time.Millisecond, FadeOut: 100 * time.Millisecond},
	Harsh:     {Frequency: 1200, Duration: 300 * time.Millisecond, Volume: 0.7, FadeIn: 2 * time.Millisecond, FadeOut: 5 * time.Millisecond},
	Muffled:   {Frequency: 800, Duration: 800 * time.Millisecond, Volume: 0.4, FadeIn: 40 * time.Millisecond, FadeOut: 80 * time.Millisecond},
}

// Preset returns the parameters of a named style. Unknown styles fall back to Broadcast.
func Preset(style Style) (Params, bool) {
	p, ok := presets[style]
	if !ok {
		return presets[Broadcast], false
	}
	return p, true
}

// Styles lists the preset names in alphabetical order
func Styles() []Style {
	out := make([]Style, 0, len(presets))
	for s := range presets {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Text-derived duration bounds
const (
	PerCharacter = 100 * time.Millisecond
	MinDuration  = 300 * time.Millisecond
	MaxDuration  = 2 * time.Second
)

// DurationForText returns clamp(len(content) * 0.1s, 0.3s, 2.0s), counting runes.
func DurationForText(content string) time.Duration {
	d := time.Duration(utf8.RuneCountInString(content)) * PerCharacter
	if d < MinDuration {
		return MinDuration
	}
	if d > MaxDuration {
		return MaxDuration
	}
	return d
}

// ForText returns base with its duration replaced by the duration derived from content.
func ForText(content string, base Params) Params {
	base.Duration = DurationForText(content)
	return base
}

// Envelope splits p.Duration into fade-in, sustain and fade-out phases that sum exactly to it.
// Fades longer than the tone are scaled down proportionally.
func (p Params) Envelope() (fadeIn, sustain, fadeOut time.Duration) {
	if p.Duration <= 0 {
		return 0, 0, 0
	}
	fadeIn, fadeOut = max(p.FadeIn, 0), max(p.FadeOut, 0)
	if total := fadeIn + fadeOut; total > p.Duration {
		fadeIn = time.Duration(float64(p.Duration) * float64(fadeIn) / float64(total))
		fadeOut = p.Duration - fadeIn
	}
	sustain = p.Duration - fadeIn - fadeOut
	return fadeIn, sustain, fadeOut
}

// Gain returns the envelope amplitude in [0,1] at offset t from the tone start.
func (p Params) Gain(t time.Duration) float64 {
	fadeIn, sustain, fadeOut := p.Envelope()
	switch {
	case t < 0 || t >= p.Duration:
		return 0
	case t < fadeIn:
		return float64(t) / float64(fadeIn)
	case t < fadeIn+sustain:
		return 1
	default:
		return float64(p.Duration-t) / float64(fadeOut)
	}
}

// normalized clamps volume and replaces non-positive frequency and duration.
func (p Params) normalized() Params {
	if p.Frequency <= 0 {
		p.Frequency = presets[Broadcast].Frequency
	}
	if p.Duration <= 0 {
		p.Duration = presets[Broadcast].Duration
	}
	p.Volume = min(max(p.Volume, 0), 1)
	return p
}
