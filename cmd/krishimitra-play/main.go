/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

// krishimitra-play plays clip locators one after another through the same
// coordinator the chat client uses, printing a level sparkline for each.
//
//	krishimitra-play answer.mp3 https://example.org/tip.ogg
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"krishimitra/internal/clip"
	"krishimitra/internal/codec"
	"krishimitra/internal/config"
	"krishimitra/internal/logging"
	"krishimitra/pkg/audioengine"
	"krishimitra/pkg/format"
	"krishimitra/pkg/playback"
)

const (
	generalUsage   = "Usage: krishimitra-play <locator> [locator...]"
	waveformPoints = 60
)

func main() {
	fmt.Println("========================================")
	fmt.Printf("%s Play V.%d.%d\n", format.AppName, format.VersionMajor, format.VersionMinor)
	fmt.Println("CTRL + C stop and exit")

	if len(os.Args) < 2 {
		fmt.Printf("\n%s\n", generalUsage)
		return
	}
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "[!]", err)
		os.Exit(1)
	}
}

func run(locators []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.Console(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver := clip.NewResolver(clip.Options{CacheDir: cfg.CacheDir(), Timeout: cfg.Backend.Timeout}, log)
	spk, err := audioengine.NewSpeaker(resolver, cfg.Audio.SampleRate, cfg.Audio.VolumeDB, log)
	if err != nil {
		return err
	}
	defer spk.Close()

	coord := playback.New(spk, log)
	runCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		<-coord.Done()
	}()
	go coord.Run(runCtx)

	updates := coord.Subscribe()
	defer coord.Unsubscribe(updates)

	for i, loc := range locators {
		c, err := resolver.Resolve(ctx, loc)
		if err != nil {
			fmt.Printf("[%d] %s: %v\n", i+1, loc, err)
			continue
		}
		fmt.Printf("[%d] %s (%s, %d bytes)\n", i+1, loc, c.Kind, len(c.Data))
		printWaveform(c, log)

		if !playOne(ctx, coord, updates, loc) {
			return nil
		}
	}
	return nil
}

// playOne starts locator and waits for it to end or fail. It reports false
// when interrupted.
func playOne(ctx context.Context, coord *playback.Coordinator, updates <-chan playback.Status, locator string) bool {
	coord.RequestPlayPause(locator)
	started := false
	for {
		select {
		case <-ctx.Done():
			coord.DisableAndStop()
			return false
		case st := <-updates:
			switch {
			case st.Locator == locator && st.Playing && !started:
				started = true
				fmt.Println("    ▶ playing")
			case st.Phase() == playback.PhaseIdle:
				if started {
					fmt.Println("    ■ done")
				} else {
					fmt.Println("    ✗ could not play")
				}
				return true
			}
		}
	}
}

func printWaveform(c *clip.Clip, log zerolog.Logger) {
	stream, f, err := audioengine.Decode(c)
	if err != nil {
		log.Debug().Err(err).Msg("waveform")
		return
	}
	defer stream.Close()
	pcm, err := audioengine.MonoPCM(stream)
	if err != nil {
		log.Debug().Err(err).Msg("waveform")
	}
	if len(pcm) == 0 {
		return
	}
	secs := float64(len(pcm)) / float64(f.SampleRate)
	fmt.Printf("    %s %.1fs %.1f dBFS\n",
		codec.Sparkline(codec.GenerateWaveformData(pcm, waveformPoints)), secs, audioengine.LevelDB(pcm))
}
