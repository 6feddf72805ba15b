/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package audioengine

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	"github.com/hraban/opus"

	"krishimitra/internal/clip"
	"krishimitra/pkg/format"
)

// 120 ms at 48 kHz, the longest opus frame
const maxOpusFrame = 5760

// Decode opens a streamer over a resolved clip.
func Decode(c *clip.Clip) (beep.StreamCloser, beep.Format, error) {
	switch c.Kind {
	case format.KindMP3:
		s, f, err := mp3.Decode(io.NopCloser(bytes.NewReader(c.Data)))
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("decode mp3: %w", err)
		}
		return s, f, nil
	case format.KindWAV:
		s, f, err := wav.Decode(bytes.NewReader(c.Data))
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("decode wav: %w", err)
		}
		return s, f, nil
	case format.KindOpus:
		s, err := newOpusStreamer(c.Data)
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("decode opus: %w", err)
		}
		return s, beep.Format{SampleRate: format.SampleRate, NumChannels: 2, Precision: 2}, nil
	}
	return nil, beep.Format{}, clip.ErrUnknownFormat
}

// ======================================================
// Ogg Opus Streamer
// ======================================================

// opusStreamer decodes an in-memory ogg opus file lazily, one packet batch at
// a time, and always yields stereo at 48 kHz.
type opusStreamer struct {
	src      *opus.Stream
	channels int
	pcm      []int16
	buffer   [][2]float64
	err      error
	done     bool
}

func newOpusStreamer(data []byte) (*opusStreamer, error) {
	ch := opusChannels(data)
	if ch == 0 {
		return nil, errors.New("missing OpusHead")
	}
	s, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &opusStreamer{
		src:      s,
		channels: ch,
		pcm:      make([]int16, maxOpusFrame*ch),
	}, nil
}

func (o *opusStreamer) Stream(samples [][2]float64) (int, bool) {
	filled := 0

	for filled < len(samples) {
		if len(o.buffer) == 0 {
			if o.done || !o.refill() {
				break
			}
		}
		n := copy(samples[filled:], o.buffer)
		o.buffer = o.buffer[n:]
		filled += n
	}

	return filled, filled > 0
}

func (o *opusStreamer) refill() bool {
	n, err := o.src.Read(o.pcm)
	if err != nil {
		if err != io.EOF {
			o.err = err
		}
		o.done = true
		return false
	}
	if n == 0 {
		o.done = true
		return false
	}

	ch := o.channels
	for i := 0; i < n; i++ {
		l := float64(o.pcm[i*ch]) / 32768.0
		r := l
		if ch > 1 {
			r = float64(o.pcm[i*ch+1]) / 32768.0
		}
		o.buffer = append(o.buffer, [2]float64{l, r})
	}
	return true
}

func (o *opusStreamer) Err() error { return o.err }

func (o *opusStreamer) Close() error { return o.src.Close() }

// opusChannels reads the channel count from the OpusHead packet, 0 if absent.
func opusChannels(data []byte) int {
	idx := bytes.Index(data, []byte(format.MagicOpus))
	if idx < 0 || idx+9 >= len(data) {
		return 0
	}
	return int(data[idx+9])
}
