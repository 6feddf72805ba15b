/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

// krishimitra is the terminal chat client for the farming assistant.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"krishimitra/internal/assistant"
	"krishimitra/internal/autoplay"
	"krishimitra/internal/chat"
	"krishimitra/internal/clip"
	"krishimitra/internal/config"
	"krishimitra/internal/i18n"
	"krishimitra/internal/location"
	"krishimitra/internal/logging"
	"krishimitra/internal/prefs"
	"krishimitra/internal/ui"
	"krishimitra/internal/voice"
	"krishimitra/pkg/audioengine"
	"krishimitra/pkg/playback"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "krishimitra:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, logFile, err := logging.File(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log.Info().Str("backend", cfg.Backend.URL).Msg("start")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	store, err := prefs.Open(cfg.PrefsPath())
	if err != nil {
		return err
	}
	catalog, err := i18n.New(cfg.UI.LocaleDir, log)
	if err != nil {
		return err
	}
	if err := catalog.Watch(ctx); err != nil {
		log.Warn().Err(err).Msg("locale hot reload disabled")
	}

	resolver := clip.NewResolver(clip.Options{CacheDir: cfg.CacheDir(), Timeout: cfg.Backend.Timeout}, log)
	backend, audioOK := openBackend(resolver, cfg, log)

	coord := playback.New(backend, log)
	coordCtx, stopCoord := context.WithCancel(ctx)
	defer func() {
		stopCoord()
		<-coord.Done()
	}()
	go coord.Run(coordCtx)

	messages := chat.NewList()
	policy := autoplay.New(coord, cfg.Audio.Autoplay, log)
	policy.Attach(messages)

	bot := assistant.New(assistant.Options{
		BaseURL:     cfg.Backend.URL,
		Timeout:     cfg.Backend.Timeout,
		MinInterval: cfg.Backend.MinInterval,
	}, log)
	go func() {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := bot.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Msg("backend not answering yet")
		}
	}()

	var recorder *voice.Recorder
	r := voice.NewRecorder(voice.Options{
		Command:     cfg.Voice.Command,
		InputFormat: cfg.Voice.InputFormat,
		InputDevice: cfg.Voice.InputDevice,
		MaxDuration: cfg.Voice.MaxDuration,
	}, log)
	if err := r.Available(); err != nil {
		log.Info().Err(err).Msg("voice input off")
	} else {
		recorder = r
	}

	lang := cfg.UI.Language
	if lang == "" && store.Get().Language == "" {
		lang = i18n.Match(os.Getenv("LANG"))
	}

	model := ui.New(ctx, ui.Deps{
		Catalog:        catalog,
		Prefs:          store,
		Messages:       messages,
		Player:         coord,
		Autoplay:       policy,
		Assistant:      bot,
		Recorder:       recorder,
		Geocoder:       location.NewGeocoder(cfg.Location.URL, 10*time.Second, log),
		Language:       lang,
		TypingSpeed:    cfg.UI.TypingSpeed,
		AudioAvailable: audioOK,
		Log:            log,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	log.Info().Int("messages", messages.Len()).Msg("bye")
	return nil
}

// openBackend opens the sound card. Without one the chat still works and
// every play request fails quietly back to idle.
func openBackend(resolver *clip.Resolver, cfg *config.Config, log zerolog.Logger) (playback.Backend, bool) {
	spk, err := audioengine.NewSpeaker(resolver, cfg.Audio.SampleRate, cfg.Audio.VolumeDB, log)
	if err != nil {
		log.Warn().Err(err).Msg("audio playback unavailable")
		return mutedBackend{}, false
	}
	return spk, true
}

type mutedBackend struct{}

func (mutedBackend) Open(context.Context, string, playback.Notify) (playback.Handle, error) {
	return nil, audioengine.ErrNoDevice
}
