/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

// krishimitra-speaker is the playback daemon: one coordinator driving the
// sound card, controlled over a unix socket with a line protocol.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"krishimitra/internal/clip"
	"krishimitra/internal/config"
	"krishimitra/internal/logging"
	"krishimitra/pkg/audioengine"
	"krishimitra/pkg/format"
	"krishimitra/pkg/playback"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "krishimitra-speaker:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.Console(cfg.LogLevel)
	log.Info().Msgf("%s Speaker V.%d.%d", format.AppName, format.VersionMajor, format.VersionMinor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver := clip.NewResolver(clip.Options{CacheDir: cfg.CacheDir(), Timeout: cfg.Backend.Timeout}, log)
	spk, err := audioengine.NewSpeaker(resolver, cfg.Audio.SampleRate, cfg.Audio.VolumeDB, log)
	if err != nil {
		return err
	}
	defer spk.Close()

	coord := playback.New(spk, log)
	go func() {
		if err := coord.Run(ctx); err != nil {
			log.Error().Err(err).Msg("coordinator stopped")
		}
	}()

	ln, err := listen(cfg.Audio.Socket)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Audio.Socket, err)
	}
	defer os.Remove(cfg.Audio.Socket)
	log.Info().Str("socket", cfg.Audio.Socket).Msg("listening")

	srv := &server{player: coord, volume: spk, log: log.With().Str("component", "ipc").Logger()}
	if err := srv.serve(ctx, ln); err != nil {
		return err
	}
	<-coord.Done()
	log.Info().Msg("bye")
	return nil
}
