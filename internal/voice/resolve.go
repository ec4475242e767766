package voice

import (
	"github.com/rs/zerolog/log"

	"github.com/daikw/angertranslator/internal/persona"
	"github.com/daikw/angertranslator/internal/voice/provider"
)

// Resolve merges all configuration sources into a provider name, its
// synthesis options and the config map for the provider factory.
//
// Priority (highest → lowest):
//  1. cliProvider argument (provider name only)
//  2. persona voice profile, scaled for intensity
//  3. fileConfig.Providers[effectiveProvider] (per-provider overrides)
//  4. fileConfig.Defaults (global defaults from config file)
//  5. hard-coded defaults
func Resolve(id persona.ID, intensity int, fileConfig *ConfigFile, cliProvider string) Resolution {
	opts := provider.SynthesizeOptions{
		Speed:           1.0,
		Format:          "mp3",
		Stability:       0.5,
		SimilarityBoost: 0.75,
		UseSpeakerBoost: true,
		Engine:          "neural",
		SampleRate:      "22050",
	}
	config := map[string]interface{}{}

	// Layer 4: fileConfig.Defaults
	if fileConfig != nil && fileConfig.Defaults != nil && fileConfig.Defaults.Speed > 0 {
		opts.Speed = fileConfig.Defaults.Speed
	}

	effectiveProvider := fileConfig.GetEffectiveProvider(cliProvider)
	if effectiveProvider == "" {
		effectiveProvider = DefaultProvider
	}

	// Layer 3: fileConfig.Providers[effectiveProvider]
	if provCfg := fileConfig.GetProviderConfig(effectiveProvider); provCfg != nil {
		applyProviderConfig(&opts, config, provCfg)
	}

	// Layer 2: persona
	profile := persona.Lookup(id).Voice.ForIntensity(intensity)
	if v := voiceFor(profile, effectiveProvider); v != "" {
		opts.Voice = v
	}
	// Persona speed scales the configured speed.
	if profile.Speed > 0 {
		opts.Speed *= profile.Speed
	}
	if profile.Stability > 0 {
		opts.Stability = profile.Stability
	}
	if profile.Style > 0 {
		opts.Style = profile.Style
	}
	if effectiveProvider == provider.NameGCP && opts.Voice != "" {
		config["voice"] = opts.Voice
	}

	log.Debug().
		Str("provider", effectiveProvider).
		Str("persona", string(id)).
		Str("voice", opts.Voice).
		Float64("speed", opts.Speed).
		Msg("Resolved voice config")

	return Resolution{Provider: effectiveProvider, Options: opts, Config: config}
}

func applyProviderConfig(opts *provider.SynthesizeOptions, config map[string]interface{}, provCfg *ProviderConfig) {
	if provCfg.APIKey != "" {
		config["api_key"] = provCfg.APIKey
	}
	if provCfg.BaseURL != "" {
		config["base_url"] = provCfg.BaseURL
	}
	if provCfg.Region != "" {
		config["region"] = provCfg.Region
	}
	if provCfg.Language != "" {
		config["language"] = provCfg.Language
		opts.Language = provCfg.Language
	}
	if provCfg.Voice != "" {
		opts.Voice = provCfg.Voice
	}
	if provCfg.Model != "" {
		opts.Model = provCfg.Model
	}
	if provCfg.Format != "" {
		opts.Format = provCfg.Format
	}
	if provCfg.Speed > 0 {
		opts.Speed = provCfg.Speed
	}
	if provCfg.Stability > 0 {
		opts.Stability = provCfg.Stability
	}
	if provCfg.SimilarityBoost > 0 {
		opts.SimilarityBoost = provCfg.SimilarityBoost
	}
	if provCfg.Style > 0 {
		opts.Style = provCfg.Style
	}
	if provCfg.UseSpeakerBoost != nil {
		opts.UseSpeakerBoost = *provCfg.UseSpeakerBoost
	}
	if provCfg.Engine != "" {
		opts.Engine = provCfg.Engine
	}
	if provCfg.SampleRate != "" {
		opts.SampleRate = provCfg.SampleRate
	}
}

// voiceFor picks the persona's voice for a provider.
func voiceFor(profile persona.VoiceProfile, providerName string) string {
	switch providerName {
	case provider.NameOpenAI:
		return profile.OpenAIVoice
	case provider.NameElevenLabs:
		return profile.ElevenLabsVoice
	case provider.NamePolly:
		return profile.PollyVoice
	case provider.NameGCP:
		return profile.GCPVoice
	default:
		return ""
	}
}
