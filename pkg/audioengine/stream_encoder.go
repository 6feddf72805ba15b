/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package audioengine

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"krishimitra/pkg/format"
)

// EncodeWAV writes interleaved 16-bit PCM as a WAV file. The encoder patches
// the header sizes on Close, hence the WriteSeeker.
func EncodeWAV(w io.WriteSeeker, pcm []int16, rate, channels int) error {
	enc := wav.NewEncoder(w, rate, format.VoiceBitDepth, channels, 1)

	intBuf := &audio.IntBuffer{
		Data:           make([]int, len(pcm)),
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		SourceBitDepth: format.VoiceBitDepth,
	}
	for i, s := range pcm {
		intBuf.Data[i] = int(s)
	}

	if err := enc.Write(intBuf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}

// EncodeVoiceWAV encodes a mono capture at the voice rate into memory.
func EncodeVoiceWAV(pcm []int16) ([]byte, error) {
	buf := &seekBuffer{}
	if err := EncodeWAV(buf, pcm, format.VoiceSampleRate, format.VoiceChannels); err != nil {
		return nil, err
	}
	return buf.data, nil
}

// seekBuffer is an in-memory io.WriteSeeker.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	end := b.pos + len(p)
	if end > len(b.data) {
		if end > cap(b.data) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.data)
			b.data = grown
		} else {
			b.data = b.data[:end]
		}
	}
	copy(b.data[b.pos:], p)
	b.pos = end
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, errors.New("seek: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("seek: negative position")
	}
	b.pos = int(abs)
	return abs, nil
}
