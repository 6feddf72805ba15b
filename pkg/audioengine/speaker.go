/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package audioengine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/rs/zerolog"

	"krishimitra/internal/clip"
	"krishimitra/pkg/format"
	"krishimitra/pkg/playback"
)

var (
	ErrNoDevice = errors.New("audioengine: no audio output device")
	errClosed   = errors.New("audioengine: handle closed")
)

// Resolver loads clip bytes for a locator.
type Resolver interface {
	Resolve(ctx context.Context, locator string) (*clip.Clip, error)
}

var (
	initOnce sync.Once
	initRate beep.SampleRate
	initErr  error
)

// initSpeaker opens the output device once per process.
func initSpeaker(rate beep.SampleRate) (beep.SampleRate, error) {
	initOnce.Do(func() {
		initRate = rate
		initErr = speaker.Init(rate, rate.N(time.Millisecond*format.BufferMillis))
	})
	if initErr != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoDevice, initErr)
	}
	return initRate, nil
}

// ======================================================
// Speaker backend
// ======================================================

// Speaker plays clips through the system output using the beep mixer. It
// implements playback.Backend.
type Speaker struct {
	resolver Resolver
	rate     beep.SampleRate
	log      zerolog.Logger

	mu       sync.Mutex
	volumeDB float64
	live     *speakerHandle
}

// NewSpeaker opens the audio device at sampleRate (0 means the default).
func NewSpeaker(resolver Resolver, sampleRate int, volumeDB float64, log zerolog.Logger) (*Speaker, error) {
	if sampleRate <= 0 {
		sampleRate = format.SampleRate
	}
	rate, err := initSpeaker(beep.SampleRate(sampleRate))
	if err != nil {
		return nil, err
	}
	return &Speaker{
		resolver: resolver,
		rate:     rate,
		volumeDB: volumeDB,
		log:      log.With().Str("component", "speaker").Logger(),
	}, nil
}

// Open resolves and decodes locator into a silent handle positioned at the
// beginning. Start hands it to the mixer.
func (s *Speaker) Open(ctx context.Context, locator string, notify playback.Notify) (playback.Handle, error) {
	c, err := s.resolver.Resolve(ctx, locator)
	if err != nil {
		return nil, err
	}
	stream, sf, err := Decode(c)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		stream.Close()
		return nil, err
	}

	var src beep.Streamer = stream
	if sf.SampleRate != s.rate {
		src = beep.Resample(format.ResampleQuality, sf.SampleRate, s.rate, stream)
	}

	s.mu.Lock()
	db := s.volumeDB
	s.mu.Unlock()

	h := &speakerHandle{owner: s, stream: stream, notify: notify}
	h.vol = &effects.Volume{
		Streamer: &startSignal{Streamer: src, fire: func() { notify(playback.Event{Kind: playback.EventStarted}) }},
		Base:     2,
		Volume:   db,
	}
	h.ctrl = &beep.Ctrl{Streamer: h.vol}

	s.log.Debug().Str("kind", c.Kind.String()).Int("rate", int(sf.SampleRate)).Msg("open clip")
	return h, nil
}

// SetVolume changes the gain in dB for the live clip and every later one.
func (s *Speaker) SetVolume(db float64) {
	s.mu.Lock()
	s.volumeDB = db
	h := s.live
	s.mu.Unlock()

	if h == nil {
		return
	}
	speaker.Lock()
	h.vol.Volume = db
	speaker.Unlock()
}

// Volume reports the current gain in dB.
func (s *Speaker) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volumeDB
}

// Close silences the mixer.
func (s *Speaker) Close() {
	speaker.Clear()
}

func (s *Speaker) forget(h *speakerHandle) {
	s.mu.Lock()
	if s.live == h {
		s.live = nil
	}
	s.mu.Unlock()
}

// ======================================================
// Handle
// ======================================================

// speakerHandle fields touched by the mixer are guarded by speaker.Lock.
type speakerHandle struct {
	owner  *Speaker
	stream beep.StreamCloser
	ctrl   *beep.Ctrl
	vol    *effects.Volume
	notify playback.Notify
	closed bool
}

// Start attaches the clip to the mixer. A handle paused before Start stays
// silent until Resume.
func (h *speakerHandle) Start() error {
	// the gain may have moved while the clip was loading
	db := h.owner.Volume()
	speaker.Lock()
	if h.closed {
		speaker.Unlock()
		return errClosed
	}
	h.vol.Volume = db
	speaker.Unlock()

	h.owner.mu.Lock()
	h.owner.live = h
	h.owner.mu.Unlock()

	speaker.Play(beep.Seq(h.ctrl, beep.Callback(h.finish)))
	return nil
}

func (h *speakerHandle) Pause() error { return h.setPaused(true) }
func (h *speakerHandle) Resume() error { return h.setPaused(false) }

func (h *speakerHandle) setPaused(p bool) error {
	speaker.Lock()
	defer speaker.Unlock()
	if h.closed {
		return errClosed
	}
	h.ctrl.Paused = p
	return nil
}

// Close detaches the clip from the mixer. Once it returns no further samples
// are pulled from the decoder.
func (h *speakerHandle) Close() error {
	speaker.Lock()
	if h.closed {
		speaker.Unlock()
		return nil
	}
	h.closed = true
	h.ctrl.Streamer = nil
	speaker.Unlock()

	h.owner.forget(h)
	return h.stream.Close()
}

// finish runs on the mixer goroutine with the speaker lock held.
func (h *speakerHandle) finish() {
	if h.closed {
		return
	}
	if err := h.stream.Err(); err != nil {
		h.notify(playback.Event{Kind: playback.EventFailed, Err: err})
		return
	}
	h.notify(playback.Event{Kind: playback.EventEnded})
}

// startSignal fires once, the first time the wrapped streamer yields sound.
type startSignal struct {
	beep.Streamer
	fire  func()
	fired bool
}

func (s *startSignal) Stream(samples [][2]float64) (int, bool) {
	n, ok := s.Streamer.Stream(samples)
	if n > 0 && !s.fired {
		s.fired = true
		s.fire()
	}
	return n, ok
}
