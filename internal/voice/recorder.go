/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package voice records a spoken question from the microphone through ffmpeg
// and turns it into a WAV ready for transcription.
package voice

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"krishimitra/internal/codec"
	"krishimitra/pkg/audioengine"
	"krishimitra/pkg/format"
)

var (
	ErrUnsupported = errors.New("voice: microphone capture unsupported")
	ErrNoSpeech    = errors.New("voice: no speech detected")
)

const (
	startupGrace = 250 * time.Millisecond
	stopGrace    = 1200 * time.Millisecond

	// DefaultSilenceThreshold is the speech-band energy under which a
	// window counts as silence.
	DefaultSilenceThreshold = 4000
)

// Options configures a Recorder.
type Options struct {
	Command     string
	InputFormat string
	InputDevice string
	MaxDuration time.Duration
}

// Recorder starts ffmpeg microphone captures.
type Recorder struct {
	opts Options
	log  zerolog.Logger
}

func NewRecorder(opts Options, log zerolog.Logger) *Recorder {
	if opts.Command == "" {
		opts.Command = "ffmpeg"
	}
	if opts.InputFormat == "" {
		opts.InputFormat = "pulse"
	}
	if opts.InputDevice == "" {
		opts.InputDevice = "default"
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 15 * time.Second
	}
	return &Recorder{opts: opts, log: log.With().Str("component", "voice").Logger()}
}

// Available reports ErrUnsupported when the capture command is missing.
func (r *Recorder) Available() error {
	if _, err := exec.LookPath(r.opts.Command); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return nil
}

// Start begins capturing 16 kHz mono PCM. The capture ends on Stop, when ctx
// is cancelled or after MaxDuration.
func (r *Recorder) Start(ctx context.Context) (*Recording, error) {
	if err := r.Available(); err != nil {
		return nil, err
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", r.opts.InputFormat,
		"-i", r.opts.InputDevice,
		"-ac", strconv.Itoa(format.VoiceChannels),
		"-ar", strconv.Itoa(format.VoiceSampleRate),
		"-t", strconv.FormatFloat(r.opts.MaxDuration.Seconds(), 'f', 1, 64),
		"-f", "s16le",
		"-",
	}

	cctx, cancel := context.WithTimeout(ctx, r.opts.MaxDuration+stopGrace)
	cmd := exec.CommandContext(cctx, r.opts.Command, args...)
	// let ffmpeg flush on cancel instead of SIGKILL
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = stopGrace

	rec := &Recording{cmd: cmd, cancel: cancel, done: make(chan struct{}), log: r.log}
	cmd.Stderr = &rec.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: start ffmpeg: %v", ErrUnsupported, err)
	}

	go rec.collect(stdout)

	select {
	case <-rec.done:
		if rec.err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupported, rec.err)
		}
		return nil, fmt.Errorf("%w: ffmpeg exited before capture started", ErrUnsupported)
	case <-time.After(startupGrace):
	}

	r.log.Info().Str("device", r.opts.InputDevice).Dur("max", r.opts.MaxDuration).Msg("capture started")
	return rec, nil
}

// ======================================================
// Recording
// ======================================================

// Recording is one running capture.
type Recording struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	log    zerolog.Logger

	stderr bytes.Buffer
	done   chan struct{}
	pcm    []int16
	err    error

	stopOnce sync.Once
}

func (rec *Recording) collect(stdout io.Reader) {
	defer close(rec.done)
	defer rec.cancel()

	raw, readErr := io.ReadAll(stdout)
	waitErr := normalizeExit(rec.cmd.Wait())

	rec.pcm = decodeS16LE(raw)
	switch {
	case readErr != nil:
		rec.err = readErr
	case waitErr != nil:
		rec.err = fmt.Errorf("%w: %s", waitErr, bytes.TrimSpace(rec.stderr.Bytes()))
	case len(raw) == 0 && rec.stderr.Len() > 0:
		rec.err = errors.New(string(bytes.TrimSpace(rec.stderr.Bytes())))
	}
}

// Done is closed when the capture has ended for any reason.
func (rec *Recording) Done() <-chan struct{} { return rec.done }

// Stop ends the capture and returns the recorded samples.
func (rec *Recording) Stop() ([]int16, error) {
	rec.stopOnce.Do(func() {
		select {
		case <-rec.done:
			return
		default:
		}
		if rec.cmd.Process != nil {
			_ = rec.cmd.Process.Signal(os.Interrupt)
		}
		select {
		case <-rec.done:
		case <-time.After(stopGrace):
			if rec.cmd.Process != nil {
				_ = rec.cmd.Process.Kill()
			}
			<-rec.done
		}
	})
	<-rec.done

	rec.log.Info().
		Int("samples", len(rec.pcm)).
		Float64("level_db", audioengine.LevelDB(rec.pcm)).
		Msg("capture stopped")
	return rec.pcm, rec.err
}

// ======================================================
// Post-processing
// ======================================================

// Prepare trims leading and trailing silence, normalises the level and
// encodes a WAV for the transcription endpoint.
func Prepare(pcm []int16, threshold float64) ([]byte, error) {
	if threshold <= 0 {
		threshold = DefaultSilenceThreshold
	}
	speech := codec.TrimSilence(pcm, format.VoiceSampleRate, threshold)
	if len(speech) == 0 {
		return nil, ErrNoSpeech
	}
	out := append([]int16(nil), speech...)
	audioengine.Normalize(out, 0.8, 8)
	return audioengine.EncodeVoiceWAV(out)
}

func decodeS16LE(raw []byte) []int16 {
	pcm := make([]int16, len(raw)/2)
	for i := range pcm {
		pcm[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return pcm
}

// normalizeExit treats an interrupted ffmpeg as a clean stop.
func normalizeExit(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
