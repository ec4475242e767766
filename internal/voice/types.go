package voice

import (
	"github.com/daikw/angertranslator/internal/persona"
	"github.com/daikw/angertranslator/internal/voice/provider"
)

// Request is one text segment to be spoken
type Request struct {
	Text      string
	Cues      []string
	Persona   persona.ID
	Intensity int
}

// Resolution is the outcome of merging persona, file config and flags
type Resolution struct {
	Provider string
	Options  provider.SynthesizeOptions
	// Config is handed to provider.Factory.CreateProvider
	Config map[string]interface{}
}

// DefaultProvider is used when nothing else names one
const DefaultProvider = provider.NameElevenLabs
