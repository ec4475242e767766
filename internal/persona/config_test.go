package persona

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("NoConfigFile", func(t *testing.T) {
		config, err := LoadConfig(tmpDir)
		if err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
		if config != nil {
			t.Errorf("Expected nil config, got %v", config)
		}
	})

	t.Run("ValidConfigFile", func(t *testing.T) {
		appDir := filepath.Join(tmpDir, AppDir)
		if err := os.MkdirAll(appDir, 0755); err != nil {
			t.Fatal(err)
		}

		testConfig := &Config{
			Persona:    "don",
			Intensity:  80,
			BleepStyle: "muffled",
		}

		data, err := json.MarshalIndent(testConfig, "", "  ")
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(appDir, ConfigFileName), data, 0644); err != nil {
			t.Fatal(err)
		}

		config, err := LoadConfig(tmpDir)
		if err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
		if config == nil {
			t.Fatal("Expected config, got nil")
		}
		if *config != *testConfig { //nolint:staticcheck // checked for nil above
			t.Errorf("Expected %+v, got %+v", testConfig, config)
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, AppDir, ConfigFileName)
		if err := os.WriteFile(configPath, []byte("invalid json"), 0644); err != nil {
			t.Fatal(err)
		}

		config, err := LoadConfig(tmpDir)
		if err == nil {
			t.Error("Expected error for invalid JSON")
		}
		if config != nil {
			t.Error("Expected nil config for invalid JSON")
		}
	})
}

func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()

	config := &Config{Persona: "corporate", Intensity: 25}
	if err := SaveConfig(tmpDir, config); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if loaded == nil || loaded.Persona != "corporate" || loaded.Intensity != 25 {
		t.Errorf("Loaded config mismatch: %+v", loaded)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", *GetDefaultConfig(), false},
		{"empty persona", Config{Intensity: 10}, true},
		{"unknown persona", Config{Persona: "pirate", Intensity: 10}, true},
		{"intensity too high", Config{Persona: "karen", Intensity: 101}, true},
		{"negative intensity", Config{Persona: "karen", Intensity: -1}, true},
		{"bad bleep style", Config{Persona: "karen", Intensity: 10, BleepStyle: "kazoo"}, true},
		{"explicit bleep style", Config{Persona: "karen", Intensity: 10, BleepStyle: "harsh"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(&tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
