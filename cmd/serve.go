package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/angertranslator/internal/httpapi"
	"github.com/daikw/angertranslator/internal/observability"
	"github.com/daikw/angertranslator/internal/playback"
	"github.com/daikw/angertranslator/internal/ratelimit"
	"github.com/daikw/angertranslator/internal/translator"
)

func handleServe(ctx context.Context, c *cli.Command) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := c.String("addr")
	if addr == "" {
		addr = a.cfg.BindAddr
	}

	gen, err := a.generator(ctx, c)
	if err != nil {
		return describeError(err)
	}

	admitter := a.admitter()
	if l, ok := admitter.(*ratelimit.Limiter); ok {
		l.StartJanitor(ctx, a.cfg.JanitorInterval)
	}

	metrics := observability.NewMetrics(a.cfg.MetricsNamespace)
	svc := translator.New(gen,
		translator.WithAdmitter(admitter),
		translator.WithPolicy(a.policy()),
		translator.WithTimeout(a.cfg.RequestTimeout),
		translator.WithRecorder(metrics))

	var v playback.Voice
	if name := c.String("provider"); name != "" || a.cfg.VoiceProvider != "" {
		synth, err := a.synthesizer(ctx, "", name)
		if err != nil {
			return err
		}
		v = synth
		log.Info().Str("provider", synth.Provider().Name()).Msg("Speech enabled")
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           httpapi.New(a.cfg, svc, v, metrics).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("generator", gen.Name()).Msg("Listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
