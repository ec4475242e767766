package voice

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/daikw/angertranslator/internal/audio"
)

const cacheDir = "angertranslator-voice"

// CacheTTL is how long a cached clip is kept
const CacheTTL = 24 * time.Hour

// ClipCache stores synthesized clips on disk so repeated phrases are not
// synthesized twice. Entries are plain audio files named by content hash.
type ClipCache struct {
	dir string
	now func() time.Time
}

// NewClipCache creates a cache in dir, or in the OS temp directory when dir is empty.
func NewClipCache(dir string) *ClipCache {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), cacheDir)
	}
	return &ClipCache{dir: dir, now: time.Now}
}

// Key identifies a clip by everything that changes the audio.
func Key(providerName, voiceName, format, text string, cues []string) string {
	h := sha256.New()
	for _, part := range []string{providerName, voiceName, format, text, strings.Join(cues, ",")} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get returns the cached clip for key, if any.
func (c *ClipCache) Get(key string, format audio.Format) (audio.Clip, bool) {
	path := c.path(key, format)
	info, err := os.Stat(path)
	if err != nil || c.now().Sub(info.ModTime()) > CacheTTL {
		return audio.Clip{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return audio.Clip{}, false
	}
	return audio.Clip{Data: data, Format: format}, true
}

// Put stores clip under key. Failures are logged and otherwise ignored.
func (c *ClipCache) Put(key string, clip audio.Clip) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		log.Debug().Err(err).Msg("Failed to create clip cache directory")
		return
	}
	if err := os.WriteFile(c.path(key, clip.Format), clip.Data, 0644); err != nil {
		log.Debug().Err(err).Msg("Failed to write cached clip")
	}
}

// Cleanup removes clips older than CacheTTL.
func (c *ClipCache) Cleanup() {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}

	cutoff := c.now().Add(-CacheTTL)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(c.dir, entry.Name()))
		}
	}
}

func (c *ClipCache) path(key string, format audio.Format) string {
	return filepath.Join(c.dir, key+format.Extension())
}
