// Package audio holds the clip type shared by synthesizers and the local output device.
package audio

// Format is an encoded audio container
type Format string

const (
	FormatMP3 Format = "mp3"
	FormatWAV Format = "wav"
	FormatOGG Format = "ogg"
	// FormatPCM is raw signed 16-bit little-endian mono PCM at Clip.SampleRate.
	FormatPCM Format = "pcm"
)

// ParseFormat maps a provider output format name to a Format; unknown names default to MP3.
func ParseFormat(s string) Format {
	switch s {
	case "wav", "wave":
		return FormatWAV
	case "ogg", "ogg_vorbis", "opus":
		return FormatOGG
	case "pcm", "linear16":
		return FormatPCM
	default:
		return FormatMP3
	}
}

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	switch f {
	case FormatPCM:
		return ".raw"
	case "":
		return ".mp3"
	default:
		return "." + string(f)
	}
}

// ContentType returns the MIME type for HTTP delivery
func (f Format) ContentType() string {
	switch f {
	case FormatWAV:
		return "audio/wav"
	case FormatOGG:
		return "audio/ogg"
	case FormatPCM:
		return "audio/L16"
	default:
		return "audio/mpeg"
	}
}

// Clip is one playable unit of encoded audio
type Clip struct {
	Data       []byte
	Format     Format
	SampleRate int
}

// Playable converts raw PCM to WAV so command line players accept it.
func (c Clip) Playable() (Clip, error) {
	if c.Format != FormatPCM {
		return c, nil
	}
	data, err := EncodeWAV(c.Data, c.SampleRate)
	if err != nil {
		return Clip{}, err
	}
	return Clip{Data: data, Format: FormatWAV, SampleRate: c.SampleRate}, nil
}
