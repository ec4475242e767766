package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/daikw/angertranslator/internal/voice/provider"
)

// ConfigFileName is the voice settings file inside the app directory
const ConfigFileName = "voice.json"

// ConfigFile represents the voice configuration file structure
type ConfigFile struct {
	DefaultProvider string                    `json:"defaultProvider,omitempty"`
	Defaults        *DefaultsConfig           `json:"defaults,omitempty"`
	Providers       map[string]ProviderConfig `json:"providers,omitempty"`
}

// DefaultsConfig applies to every provider unless overridden
type DefaultsConfig struct {
	Speed float64 `json:"speed,omitempty"`
	// CacheDir overrides where synthesized clips are cached; "off" disables caching.
	CacheDir string `json:"cacheDir,omitempty"`
}

// ProviderConfig represents provider-specific configuration
type ProviderConfig struct {
	APIKey  string  `json:"apiKey,omitempty"`
	BaseURL string  `json:"baseUrl,omitempty"`
	Voice   string  `json:"voice,omitempty"`
	Model   string  `json:"model,omitempty"`
	Format  string  `json:"format,omitempty"`
	Speed   float64 `json:"speed,omitempty"`

	// ElevenLabs options
	Stability       float64 `json:"stability,omitempty"`
	SimilarityBoost float64 `json:"similarityBoost,omitempty"`
	Style           float64 `json:"style,omitempty"`
	UseSpeakerBoost *bool   `json:"useSpeakerBoost,omitempty"`

	// Amazon Polly options
	Region     string `json:"region,omitempty"`
	Engine     string `json:"engine,omitempty"`
	SampleRate string `json:"sampleRate,omitempty"`

	// Google Cloud options
	Language string `json:"language,omitempty"`
}

// ConfigLoader handles loading voice configuration from files
type ConfigLoader struct {
	projectPath string
	globalPath  string
}

// NewConfigLoader creates a new config loader
func NewConfigLoader() *ConfigLoader {
	homeDir, _ := os.UserHomeDir()
	return &ConfigLoader{
		projectPath: filepath.Join(".angertranslator", ConfigFileName),
		globalPath:  filepath.Join(homeDir, ".angertranslator", ConfigFileName),
	}
}

// LoadConfig loads configuration with priority:
// 1. Project-local config (.angertranslator/voice.json)
// 2. Global config (~/.angertranslator/voice.json)
// Returns nil if no config file found
func (l *ConfigLoader) LoadConfig(workDir string) (*ConfigFile, error) {
	projectConfigPath := filepath.Join(workDir, l.projectPath)
	if config, err := l.loadFromFile(projectConfigPath); err == nil {
		log.Debug().Str("path", projectConfigPath).Msg("Loaded project voice config")
		return config, nil
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if config, err := l.loadFromFile(l.globalPath); err == nil {
		log.Debug().Str("path", l.globalPath).Msg("Loaded global voice config")
		return config, nil
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	log.Debug().Msg("No voice config file found")
	return nil, nil
}

// LoadFromPath loads configuration from a specific path
func (l *ConfigLoader) LoadFromPath(path string) (*ConfigFile, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, err
	}
	return l.loadFromFile(path)
}

// validateConfigPath rejects traversal and anything but a voice.json file
func validateConfigPath(path string) error {
	if strings.Contains(path, "..") {
		return fmt.Errorf("invalid config path: path traversal not allowed")
	}
	if filepath.Base(filepath.Clean(path)) != ConfigFileName {
		return fmt.Errorf("invalid config path: must be a %s file", ConfigFileName)
	}
	return nil
}

func (l *ConfigLoader) loadFromFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config ConfigFile
	if err := json.Unmarshal([]byte(expandEnvVars(string(data))), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	checkFilePermissions(path)
	return &config, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values
func expandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		if value, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return value
		}
		// Variable names are not logged.
		log.Debug().Msg("Referenced environment variable not set in config")
		return ""
	})
}

func checkFilePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		log.Warn().
			Str("permissions", fmt.Sprintf("%04o", mode)).
			Msg("Voice config file may contain secrets but has permissive permissions. Consider: chmod 600")
	}
}

// GetProviderConfig returns configuration for a specific provider
func (c *ConfigFile) GetProviderConfig(providerName string) *ProviderConfig {
	if c == nil || c.Providers == nil {
		return nil
	}
	if config, exists := c.Providers[providerName]; exists {
		return &config
	}
	return nil
}

// GetEffectiveProvider returns the provider to use (explicit or default)
func (c *ConfigFile) GetEffectiveProvider(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if c != nil && c.DefaultProvider != "" {
		return c.DefaultProvider
	}
	return ""
}

// Validate returns one message per problem
func (c *ConfigFile) Validate() []string {
	var problems []string
	if c == nil {
		return problems
	}

	known := provider.NewFactory(context.Background()).ListProviders()
	if c.DefaultProvider != "" && !slices.Contains(known, c.DefaultProvider) {
		problems = append(problems, fmt.Sprintf("defaultProvider: unknown provider %q", c.DefaultProvider))
	}

	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		cfg := c.Providers[name]
		problems = append(problems, validateProviderConfig(name, &cfg)...)
	}
	return problems
}

func validateProviderConfig(name string, config *ProviderConfig) []string {
	var problems []string

	switch name {
	case provider.NameOpenAI:
		if config.APIKey == "" {
			problems = append(problems, fmt.Sprintf("%s: apiKey is required (use ${OPENAI_API_KEY} for env var)", name))
		}
	case provider.NameElevenLabs:
		if config.APIKey == "" {
			problems = append(problems, fmt.Sprintf("%s: apiKey is required (use ${ELEVENLABS_API_KEY} for env var)", name))
		}
		if config.Stability < 0 || config.Stability > 1 {
			problems = append(problems, fmt.Sprintf("%s: stability must be between 0.0 and 1.0", name))
		}
		if config.SimilarityBoost < 0 || config.SimilarityBoost > 1 {
			problems = append(problems, fmt.Sprintf("%s: similarityBoost must be between 0.0 and 1.0", name))
		}
	case provider.NamePolly:
		if config.Format != "" && !slices.Contains([]string{"mp3", "ogg", "pcm"}, config.Format) {
			problems = append(problems, fmt.Sprintf("%s: format must be mp3, ogg or pcm", name))
		}
	case provider.NameGCP:
	default:
		problems = append(problems, fmt.Sprintf("%s: unknown provider", name))
	}

	if config.Speed != 0 && (config.Speed < 0.25 || config.Speed > 4.0) {
		problems = append(problems, fmt.Sprintf("%s: speed must be between 0.25 and 4.0", name))
	}

	return problems
}

// GenerateExampleConfig generates an example configuration
func GenerateExampleConfig() string {
	example := ConfigFile{
		DefaultProvider: provider.NameElevenLabs,
		Defaults:        &DefaultsConfig{Speed: 1.0},
		Providers: map[string]ProviderConfig{
			provider.NameOpenAI: {
				APIKey: "${OPENAI_API_KEY}",
				Model:  "gpt-4o-mini-tts",
				Format: "mp3",
			},
			provider.NameElevenLabs: {
				APIKey:          "${ELEVENLABS_API_KEY}",
				Model:           provider.ElevenLabsAudioTagModel,
				SimilarityBoost: 0.75,
			},
			provider.NamePolly: {
				Region:     "us-east-1",
				Engine:     "neural",
				SampleRate: "22050",
			},
			provider.NameGCP: {
				Language: "en-US",
			},
		},
	}

	data, _ := json.MarshalIndent(example, "", "  ")
	return string(data)
}

// MaskSecrets masks sensitive values in config for display.
// Only the presence and length of a key is shown.
func (c *ConfigFile) MaskSecrets() *ConfigFile {
	if c == nil {
		return nil
	}

	masked := &ConfigFile{
		DefaultProvider: c.DefaultProvider,
		Defaults:        c.Defaults,
		Providers:       make(map[string]ProviderConfig),
	}
	for name, p := range c.Providers {
		if p.APIKey != "" {
			p.APIKey = fmt.Sprintf("[set, %d chars]", len(p.APIKey))
		}
		masked.Providers[name] = p
	}
	return masked
}
