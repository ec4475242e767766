package persona

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

const (
	ConfigFileName = "persona.json"
	AppDir         = ".angertranslator"

	// File permissions
	DirPermission  = 0755 // Directory permission (rwxr-xr-x)
	FilePermission = 0644 // File permission (rw-r--r--)
)

// Config holds the translation defaults for a project
type Config struct {
	Persona    string `json:"persona"`
	Intensity  int    `json:"intensity"`
	BleepStyle string `json:"bleep_style,omitempty"`
	Provider   string `json:"provider,omitempty"`
}

// LoadConfig loads persona defaults from the project's .angertranslator directory.
// Returns nil, nil when no file exists.
func LoadConfig(projectPath string) (*Config, error) {
	return loadConfigFile(filepath.Join(projectPath, AppDir, ConfigFileName))
}

// LoadConfigWithFallback loads persona defaults from the current directory,
// falling back to the home directory if not found.
func LoadConfigWithFallback() (*Config, error) {
	config, err := LoadConfig(".")
	if err != nil {
		return nil, err
	}
	if config != nil {
		log.Debug().Msg("Using project persona config")
		return config, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	config, err = loadConfigFile(filepath.Join(homeDir, AppDir, ConfigFileName))
	if err != nil {
		return nil, err
	}
	if config != nil {
		log.Debug().Msg("Using global persona config")
	}
	return config, nil
}

func loadConfigFile(configPath string) (*Config, error) {
	log.Debug().Str("path", configPath).Msg("Loading persona config")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("path", configPath).Msg("No persona config found")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	log.Debug().Str("persona", config.Persona).Int("intensity", config.Intensity).Msg("Loaded persona config")
	return &config, nil
}

// SaveConfig saves persona defaults to the project's .angertranslator directory
func SaveConfig(projectPath string, config *Config) error {
	appDir := filepath.Join(projectPath, AppDir)

	if err := os.MkdirAll(appDir, DirPermission); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", AppDir, err)
	}

	configPath := filepath.Join(appDir, ConfigFileName)

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, FilePermission); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Debug().Str("path", configPath).Msg("Saved persona config")
	return nil
}

// GetDefaultConfig returns the built-in defaults
func GetDefaultConfig() *Config {
	return &Config{
		Persona:   string(Karen),
		Intensity: 50,
	}
}

// ValidateConfig checks if the configuration is valid
func ValidateConfig(config *Config) error {
	if config.Persona == "" {
		return fmt.Errorf("persona cannot be empty")
	}
	if _, ok := Parse(config.Persona); !ok {
		return fmt.Errorf("unknown persona: %s", config.Persona)
	}
	if config.Intensity < MinIntensity || config.Intensity > MaxIntensity {
		return fmt.Errorf("intensity must be between %d and %d", MinIntensity, MaxIntensity)
	}
	switch config.BleepStyle {
	case "", "broadcast", "soft", "harsh", "muffled":
	default:
		return fmt.Errorf("unsupported bleep style: %s", config.BleepStyle)
	}
	return nil
}
