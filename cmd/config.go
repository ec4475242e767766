package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/angertranslator/internal/config"
	"github.com/daikw/angertranslator/internal/persona"
	"github.com/daikw/angertranslator/internal/voice"
)

func handleConfigInit(_ context.Context, _ *cli.Command) error {
	log.Info().Msg("Initializing persona configuration...")

	existing, err := persona.LoadConfig(".")
	if err != nil {
		return err
	}
	if existing != nil {
		log.Warn().Msg("Persona configuration already exists")
		return nil
	}

	if err := persona.SaveConfig(".", persona.GetDefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("Created %s/%s with default configuration\n", persona.AppDir, persona.ConfigFileName)
	return nil
}

func handleConfigExample(_ context.Context, _ *cli.Command) error {
	fmt.Println(voice.GenerateExampleConfig())
	return nil
}

// effectiveConfig is what config show prints.
type effectiveConfig struct {
	Runtime runtimeView       `json:"runtime"`
	Persona *persona.Config   `json:"persona"`
	Voice   *voice.ConfigFile `json:"voice,omitempty"`
	Issues  []string          `json:"issues,omitempty"`
}

type runtimeView struct {
	BindAddr       string `json:"bind_addr"`
	Generator      string `json:"generator"`
	OpenAIKey      string `json:"openai_key,omitempty"`
	VoiceProvider  string `json:"voice_provider,omitempty"`
	Store          string `json:"store"`
	RateLimit      string `json:"rate_limit"`
	RequestTimeout string `json:"request_timeout"`
	RetryAttempts  int    `json:"retry_attempts"`
}

func runtimeViewOf(cfg config.Config) runtimeView {
	store := "file " + cfg.StorePath
	switch {
	case cfg.RedisURL != "":
		store = "redis"
	case cfg.DatabaseURL != "":
		store = "postgres"
	}
	view := runtimeView{
		BindAddr:       cfg.BindAddr,
		Generator:      cfg.Generator,
		VoiceProvider:  cfg.VoiceProvider,
		Store:          store,
		RateLimit:      fmt.Sprintf("%d per %s", cfg.RateLimitMax, cfg.RateLimitWindow),
		RequestTimeout: cfg.RequestTimeout.String(),
		RetryAttempts:  cfg.RetryAttempts,
	}
	if cfg.OpenAIAPIKey != "" {
		view.OpenAIKey = fmt.Sprintf("[set, %d chars]", len(cfg.OpenAIAPIKey))
	}
	return view
}

func handleConfigShow(_ context.Context, c *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	out := effectiveConfig{Runtime: runtimeViewOf(cfg)}

	defaults := translationDefaults(c)
	out.Persona = &defaults
	if err := persona.ValidateConfig(out.Persona); err != nil {
		out.Issues = append(out.Issues, err.Error())
	}

	voiceConfig, err := loadVoiceConfig("")
	if err != nil {
		out.Issues = append(out.Issues, err.Error())
	} else if voiceConfig != nil {
		out.Issues = append(out.Issues, voiceConfig.Validate()...)
		out.Voice = voiceConfig.MaskSecrets()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
