/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package codec

import (
	"math"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// GenerateWaveformData reduces PCM to `points` RMS levels scaled to 0-255.
func GenerateWaveformData(pcm []int16, points int) []byte {
	if len(pcm) == 0 || points <= 0 {
		return nil
	}
	step := len(pcm) / points
	if step == 0 {
		step = 1
	}

	waveform := make([]byte, 0, points)
	for i := 0; i < len(pcm) && len(waveform) < points; i += step {
		var sum float64
		count := 0
		for j := 0; j < step && (i+j) < len(pcm); j++ {
			val := float64(pcm[i+j])
			sum += val * val
			count++
		}

		rms := math.Sqrt(sum / float64(count))
		// speech rarely goes past a fifth of full scale, stretch it
		normalized := uint8(math.Min((rms/32768.0)*255.0*5.0, 255.0))
		waveform = append(waveform, normalized)
	}
	return waveform
}

// Sparkline renders levels as a row of block characters.
func Sparkline(levels []byte) string {
	out := make([]rune, len(levels))
	for i, l := range levels {
		idx := int(l) * len(sparkRunes) / 256
		out[i] = sparkRunes[idx]
	}
	return string(out)
}
