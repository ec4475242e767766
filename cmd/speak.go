package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/angertranslator/internal/audio"
	"github.com/daikw/angertranslator/internal/bleep"
	"github.com/daikw/angertranslator/internal/playback"
)

func handleSpeak(ctx context.Context, c *cli.Command) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	synth, err := a.synthesizer(ctx, c.String("voice-config"), c.String("provider"))
	if err != nil {
		return err
	}
	player := audio.NewCommandPlayer()
	if !player.Available() {
		return fmt.Errorf("%w: install afplay, paplay, aplay or ffplay", audio.ErrNoPlayer)
	}

	res, err := translate(ctx, a, c)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "📢 %s via %s\n", nameColor.Sprint(res.Persona.DisplayName()), synth.Provider().Name())
	fmt.Println(renderDisplay(res.Display, true))

	orch := playback.New(synth, player, bleep.NewSynthesizer(player, audio.DefaultSampleRate),
		playback.WithGap(c.Duration("gap")),
		playback.WithBleepStyle(bleep.Style(translationDefaults(c).BleepStyle)))
	h := orch.SpeakSequence(ctx, res.Segments, res.Persona, res.Intensity)
	if err := h.Wait(); err != nil {
		return describeError(err)
	}
	if h.State() == playback.Cancelled {
		log.Info().Msg("Playback stopped")
		return nil
	}
	fmt.Fprintln(os.Stderr, "✅ Done")
	return nil
}

func handleBleep(ctx context.Context, c *cli.Command) error {
	style := bleep.Style(c.String("style"))
	params, ok := bleep.Preset(style)
	if !ok {
		log.Warn().Str("style", string(style)).Msg("Unknown bleep style, using broadcast")
	}
	if text := c.String("text"); text != "" {
		params = bleep.ForText(text, params)
	}
	if d := c.Duration("duration"); d > 0 {
		params.Duration = d
	}

	if output := c.String("output"); output != "" {
		if err := audio.WriteWAVFile(output, bleep.Render(params, audio.DefaultSampleRate), audio.DefaultSampleRate); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		fmt.Fprintf(os.Stderr, "✅ Tone saved to %s\n", output)
		return nil
	}

	synth := bleep.NewSynthesizer(audio.NewCommandPlayer(), audio.DefaultSampleRate)
	if !synth.Supported() {
		return fmt.Errorf("no audio output available; use --output to write a WAV file")
	}
	err := synth.PlaySequence(ctx, params, int(c.Int("count")), 80*time.Millisecond)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
