package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/angertranslator/internal/config"
	"github.com/daikw/angertranslator/internal/generator"
	"github.com/daikw/angertranslator/internal/keystore"
	"github.com/daikw/angertranslator/internal/kv"
	"github.com/daikw/angertranslator/internal/persona"
	"github.com/daikw/angertranslator/internal/ratelimit"
	"github.com/daikw/angertranslator/internal/reliability"
	"github.com/daikw/angertranslator/internal/voice"
	"github.com/daikw/angertranslator/internal/voice/provider"
)

const storePrefix = "anger"

// app bundles what most commands need.
type app struct {
	cfg   config.Config
	store kv.Store
	keys  *keystore.Keystore
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	store, err := kv.Open(ctx, kv.Config{
		RedisURL:    cfg.RedisURL,
		DatabaseURL: cfg.DatabaseURL,
		Path:        cfg.StorePath,
		Prefix:      storePrefix,
	})
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, store: store, keys: keystore.New(store)}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		log.Debug().Err(err).Msg("Failed to close store")
	}
}

func (a *app) policy() reliability.Policy {
	p := reliability.DefaultPolicy()
	p.MaxAttempts = a.cfg.RetryAttempts
	return p
}

// admitter shares limiter state through Redis when the store is Redis backed.
func (a *app) admitter() ratelimit.Admitter {
	if r, ok := a.store.(*kv.Redis); ok {
		return ratelimit.NewRedis(r.Client(), storePrefix, a.cfg.RateLimitMax, a.cfg.RateLimitWindow)
	}
	return ratelimit.New(a.cfg.RateLimitMax, a.cfg.RateLimitWindow)
}

// identity is the rate limit identity of this machine and user.
func (a *app) identity(ctx context.Context) string {
	traits := []string{runtime.GOOS, runtime.GOARCH}
	if host, err := os.Hostname(); err == nil {
		traits = append(traits, host)
	}
	if u, err := user.Current(); err == nil {
		traits = append(traits, u.Username)
	}
	id, err := ratelimit.CachedIdentity(ctx, a.store, traits...)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to cache identity")
		return ratelimit.Fingerprint(traits...)
	}
	return id
}

// apiKey returns explicit, then a stored key for service.
func (a *app) apiKey(ctx context.Context, service, explicit string) string {
	if explicit != "" {
		return explicit
	}
	key, ok, err := a.keys.Retrieve(ctx, service)
	if err != nil {
		log.Warn().Err(err).Str("service", service).Msg("Failed to read stored key")
		return ""
	}
	if ok {
		log.Debug().Str("service", service).Msg("Using stored API key")
	}
	return key
}

func (a *app) generator(ctx context.Context, c *cli.Command) (generator.Generator, error) {
	backend := c.String("generator")
	if backend == "" {
		backend = a.cfg.Generator
	}
	model := c.String("model")
	if model == "" {
		model = a.cfg.GeneratorModel
	}
	gc := generator.Config{Backend: backend, Model: model}
	if backend == generator.NameOpenAI {
		gc.APIKey = a.apiKey(ctx, "openai", a.cfg.OpenAIAPIKey)
	}
	if seed := c.Int("seed"); seed != 0 {
		s := uint64(seed)
		gc.Seed = &s
	}
	return generator.New(gc)
}

// loadVoiceConfig reads voice.json from path, or the project then global default.
func loadVoiceConfig(path string) (*voice.ConfigFile, error) {
	loader := voice.NewConfigLoader()
	if path != "" {
		return loader.LoadFromPath(path)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return loader.LoadConfig(cwd)
}

// synthesizer creates the voice synthesizer, filling missing API keys from the keystore.
func (a *app) synthesizer(ctx context.Context, voicePath, providerName string) (*voice.Synthesizer, error) {
	fileConfig, err := loadVoiceConfig(voicePath)
	if err != nil {
		return nil, err
	}
	if providerName == "" {
		providerName = a.cfg.VoiceProvider
	}
	if fileConfig == nil {
		fileConfig = &voice.ConfigFile{}
	}
	if fileConfig.Providers == nil {
		fileConfig.Providers = map[string]voice.ProviderConfig{}
	}

	name := fileConfig.GetEffectiveProvider(providerName)
	if name == "" {
		name = voice.DefaultProvider
	}
	if name == provider.NameOpenAI || name == provider.NameElevenLabs {
		pc := fileConfig.Providers[name]
		if pc.APIKey == "" {
			if key := a.apiKey(ctx, name, os.Getenv(strings.ToUpper(name)+"_API_KEY")); key != "" {
				pc.APIKey = key
				fileConfig.Providers[name] = pc
			}
		}
	}

	for _, problem := range fileConfig.Validate() {
		log.Warn().Str("problem", problem).Msg("Voice configuration issue")
	}
	return voice.NewFromConfig(provider.NewFactory(ctx), fileConfig, name,
		voice.WithPolicy(a.policy()),
		voice.WithTimeout(a.cfg.RequestTimeout))
}

// translationDefaults resolves persona, intensity and bleep style: flags, then
// persona.json, then built-ins.
func translationDefaults(c *cli.Command) persona.Config {
	defaults := persona.GetDefaultConfig()
	if fileConfig, err := persona.LoadConfigWithFallback(); err != nil {
		log.Warn().Err(err).Msg("Failed to load persona config")
	} else if fileConfig != nil {
		if err := persona.ValidateConfig(fileConfig); err != nil {
			log.Warn().Err(err).Msg("Ignoring invalid persona config")
		} else {
			defaults = fileConfig
		}
	}

	out := *defaults
	if name := c.String("persona"); name != "" {
		out.Persona = name
	}
	if intensity := int(c.Int("intensity")); intensity >= 0 {
		out.Intensity = intensity
	}
	return out
}

// readText takes the text from the arguments or, without arguments, from stdin.
func readText(c *cli.Command, stdin io.Reader) (string, error) {
	if c.Args().Len() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	data, err := io.ReadAll(io.LimitReader(stdin, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("no text provided (pass it as an argument or via stdin)")
	}
	return text, nil
}

// describeError adds a hint for errors the user can act on.
func describeError(err error) error {
	switch reliability.KindOf(err) {
	case reliability.KindRateLimited:
		wait := reliability.RetryAfterOf(err).Round(100 * time.Millisecond)
		return fmt.Errorf("%w (try again in %s)", err, wait)
	case reliability.KindInvalidCredential:
		return fmt.Errorf("%w (store a key with 'angertranslator key set <service>')", err)
	default:
		return err
	}
}
