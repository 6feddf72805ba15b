/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package codec

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

const (
	speechFFTSize = 512
	speechLowHz   = 300
	speechHighHz  = 3400
)

// SpeechEnergy returns the mean magnitude of the speech band (300-3400 Hz)
// in one window of mono PCM.
func SpeechEnergy(window []int16, rate int) float64 {
	if len(window) == 0 || rate <= 0 {
		return 0
	}
	buf := make([]float64, speechFFTSize)
	for i := 0; i < speechFFTSize && i < len(window); i++ {
		buf[i] = float64(window[i])
	}

	coeffs := fft.FFTReal(buf)

	lo := speechLowHz * speechFFTSize / rate
	hi := speechHighHz * speechFFTSize / rate
	if hi > speechFFTSize/2 {
		hi = speechFFTSize / 2
	}
	if lo >= hi {
		return 0
	}

	var sum float64
	for k := lo; k < hi; k++ {
		c := coeffs[k]
		sum += math.Sqrt(real(c)*real(c) + imag(c)*imag(c))
	}
	return sum / float64(hi-lo)
}

// TrimSilence drops leading and trailing windows of mono PCM whose speech
// energy stays under threshold. All-silent input returns nil.
func TrimSilence(pcm []int16, rate int, threshold float64) []int16 {
	first, last := -1, -1
	for i := 0; i < len(pcm); i += speechFFTSize {
		end := i + speechFFTSize
		if end > len(pcm) {
			end = len(pcm)
		}
		if SpeechEnergy(pcm[i:end], rate) >= threshold {
			if first < 0 {
				first = i
			}
			last = end
		}
	}
	if first < 0 {
		return nil
	}
	return pcm[first:last]
}
