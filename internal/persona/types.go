package persona

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ID identifies a persona
type ID string

const (
	Enforcer          ID = "enforcer"
	HighlandHowler    ID = "highland-howler"
	Don               ID = "don"
	CrackedController ID = "cracked-controller"
	Karen             ID = "karen"
	Corporate         ID = "corporate"
	Sarcastic         ID = "sarcastic"

	// Generic is the fallback for unrecognized ids. It is not user-selectable.
	Generic ID = "generic"
)

// All returns the selectable personas in menu order
func All() []ID {
	return []ID{Enforcer, HighlandHowler, Don, CrackedController, Karen, Corporate, Sarcastic}
}

// Parse normalizes s and reports whether it names a selectable persona
func Parse(s string) (ID, bool) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range All() {
		if id == known {
			return id, true
		}
	}
	return Generic, false
}

// DisplayName returns a human readable name, e.g. "Highland Howler"
func (id ID) DisplayName() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(id), "-", " "))
}

// Bracket is an emotional-progression level selected by intensity
type Bracket int

const (
	Mild Bracket = iota
	Moderate
	Severe
)

func (b Bracket) String() string {
	switch b {
	case Moderate:
		return "moderate"
	case Severe:
		return "severe"
	default:
		return "mild"
	}
}

// Intensity bounds and thresholds
const (
	MinIntensity = 0
	MaxIntensity = 100

	mildCeiling     = 30
	moderateCeiling = 60

	// ReactionThreshold is the intensity at which reaction cues follow exclamations.
	ReactionThreshold = 70
)

// ClampIntensity limits intensity to [0,100]
func ClampIntensity(intensity int) int {
	if intensity < MinIntensity {
		return MinIntensity
	}
	if intensity > MaxIntensity {
		return MaxIntensity
	}
	return intensity
}

// BracketFor maps intensity to a bracket: [0,30] mild, (30,60] moderate, (60,100] severe
func BracketFor(intensity int) Bracket {
	intensity = ClampIntensity(intensity)
	switch {
	case intensity <= mildCeiling:
		return Mild
	case intensity <= moderateCeiling:
		return Moderate
	default:
		return Severe
	}
}

// Rule is the annotation and delivery rule set of one persona.
// Rules returned by Lookup share their slices; callers must not modify them.
type Rule struct {
	ID          ID
	Description string

	// Cues is the full tone-cue vocabulary of the persona.
	Cues []string
	// Progression holds the opening cues per bracket, strongest last.
	Progression [3][]string

	PauseCue    string
	ReactionCue string
	ClosingCue  string

	// TriggerWords are emphasized from the moderate bracket upwards.
	TriggerWords []string

	// Signatures and Expletives only feed text generation.
	Signatures []string
	Expletives []string

	Voice      VoiceProfile
	BleepStyle string
}

// OpeningCues returns the cues prepended for the given intensity
func (r Rule) OpeningCues(intensity int) []string {
	return r.Progression[BracketFor(intensity)]
}

// VoiceProfile selects provider voices and delivery settings for a persona
type VoiceProfile struct {
	OpenAIVoice     string  `json:"openai_voice"`
	ElevenLabsVoice string  `json:"elevenlabs_voice"`
	PollyVoice      string  `json:"polly_voice"`
	GCPVoice        string  `json:"gcp_voice"`
	Speed           float64 `json:"speed"`
	Stability       float64 `json:"stability"`
	Style           float64 `json:"style"`
}

// ForIntensity speeds delivery up and makes it less stable as intensity grows
func (v VoiceProfile) ForIntensity(intensity int) VoiceProfile {
	f := float64(ClampIntensity(intensity)) / MaxIntensity
	out := v
	out.Speed = v.Speed * (1 + 0.15*f)
	out.Stability = v.Stability - 0.3*f
	if out.Stability < 0.1 {
		out.Stability = 0.1
	}
	out.Style = v.Style + 0.4*f
	if out.Style > 1 {
		out.Style = 1
	}
	return out
}
