package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/angertranslator/internal/keystore"
	"github.com/daikw/angertranslator/internal/playback"
)

var (
	version  = "dev"
	revision = "none"
)

func main() {
	// Setup logger
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.Command{
		Name:  "angertranslator",
		Usage: "Rewrite polite messages in an angry persona's voice, bleeps included",
		Description: `angertranslator turns a polite message into what you actually meant.
Pick a persona and an intensity; the rewrite is annotated with delivery cues and
censor spans, shown on screen and optionally spoken with censor bleeps.`,
		Version: fmt.Sprintf("%s (rev: %s)", version, revision),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"V"},
				Usage:   "Enable verbose logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "translate",
				Aliases:   []string{"t"},
				Usage:     "Translate a polite message (argument or stdin)",
				ArgsUsage: "[text]",
				Action:    handleTranslate,
				Flags: append(translationFlags(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the full result as JSON",
					},
					&cli.BoolFlag{
						Name:  "censor",
						Usage: "Mask censor spans instead of highlighting them",
					},
					&cli.BoolFlag{
						Name:  "annotated",
						Usage: "Also print the annotated text with delivery cues",
					},
				),
			},
			{
				Name:      "speak",
				Aliases:   []string{"s"},
				Usage:     "Translate a message and speak it with censor bleeps",
				ArgsUsage: "[text]",
				Action:    handleSpeak,
				Flags: append(translationFlags(),
					&cli.StringFlag{
						Name:  "provider",
						Usage: "TTS provider: openai, elevenlabs, polly, gcp (default from voice.json or ANGER_VOICE_PROVIDER)",
					},
					&cli.StringFlag{
						Name:  "voice-config",
						Usage: "Path to voice.json (default: project, then global)",
					},
					&cli.DurationFlag{
						Name:  "gap",
						Usage: "Pause between segments",
						Value: playback.DefaultGap,
					},
				),
			},
			{
				Name:   "bleep",
				Usage:  "Play or render a censor tone",
				Action: handleBleep,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "style",
						Usage: "Tone preset: broadcast, harsh, muffled, soft",
						Value: "broadcast",
					},
					&cli.StringFlag{
						Name:  "text",
						Usage: "Derive the duration from the length of this text",
					},
					&cli.DurationFlag{
						Name:  "duration",
						Usage: "Tone duration (overrides --text)",
					},
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   "Number of bleeps to play back to back",
						Value:   1,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write a WAV file instead of playing",
					},
				},
			},
			{
				Name:  "key",
				Usage: "Manage stored API keys",
				Commands: []*cli.Command{
					{
						Name:      "set",
						Usage:     "Store an API key (read from stdin when omitted)",
						ArgsUsage: "<service> [key]",
						Action:    handleKeySet,
						Flags: []cli.Flag{
							&cli.DurationFlag{
								Name:  "ttl",
								Usage: "Time until the key expires",
								Value: keystore.DefaultTTL,
							},
						},
					},
					{
						Name:      "get",
						Usage:     "Show a stored API key, masked",
						ArgsUsage: "<service>",
						Action:    handleKeyGet,
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "reveal",
								Usage: "Print the key in full",
							},
						},
					},
					{
						Name:      "remove",
						Aliases:   []string{"rm"},
						Usage:     "Remove a stored API key",
						ArgsUsage: "<service>",
						Action:    handleKeyRemove,
					},
				},
			},
			{
				Name:    "personas",
				Aliases: []string{"ls"},
				Usage:   "List available personas",
				Action:  handlePersonas,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP and WebSocket API",
				Action: handleServe,
				Flags: append(generatorFlags(),
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (default ANGER_BIND_ADDR or :8080)",
					},
					&cli.StringFlag{
						Name:  "provider",
						Usage: "TTS provider for the speak socket; empty disables speech",
					},
				),
			},
			{
				Name:   "mcp",
				Usage:  "Serve translate and segments tools over MCP stdio",
				Action: handleMCP,
				Flags:  generatorFlags(),
			},
			{
				Name:  "config",
				Usage: "Manage configuration files",
				Commands: []*cli.Command{
					{
						Name:   "init",
						Usage:  "Create .angertranslator/persona.json with defaults",
						Action: handleConfigInit,
					},
					{
						Name:   "example",
						Usage:  "Print an example voice.json",
						Action: handleConfigExample,
					},
					{
						Name:   "show",
						Usage:  "Show effective configuration with secrets masked",
						Action: handleConfigShow,
					},
				},
			},
		},
		Before: func(ctx context.Context, c *cli.Command) error {
			if c.Bool("verbose") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			return nil
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("Failed to run application")
	}
}

// translationFlags are shared by commands that translate text.
func translationFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:    "persona",
			Aliases: []string{"p"},
			Usage:   "Persona id (default from persona.json, else karen)",
		},
		&cli.IntFlag{
			Name:    "intensity",
			Aliases: []string{"i"},
			Usage:   "Intensity 0-100 (default from persona.json, else 50)",
			Value:   -1,
		},
	}, generatorFlags()...)
}

// generatorFlags select and tune the text generator.
func generatorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "generator",
			Usage: "Text generator: mock or openai (default ANGER_GENERATOR)",
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: "Model for the openai generator",
		},
		&cli.IntFlag{
			Name:  "seed",
			Usage: "Seed for varied mock output (0 keeps output deterministic)",
		},
	}
}
