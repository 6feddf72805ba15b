/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package audioengine

import (
	"math"

	"github.com/faiface/beep"
)

// Peak returns the largest absolute sample value.
func Peak(samples []int16) int {
	var max int
	for _, v := range samples {
		a := int(v)
		if a < 0 {
			a = -a
		}
		if a > max {
			max = a
		}
	}
	return max
}

// LevelDB returns the RMS level of samples in dBFS. Silence is -inf.
func LevelDB(samples []int16) float64 {
	if len(samples) == 0 {
		return math.Inf(-1)
	}
	var sum float64
	for _, v := range samples {
		f := float64(v) / 32768.0
		sum += f * f
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms)
}

// MonoPCM drains s and mixes it down to 16-bit mono, for level displays.
func MonoPCM(s beep.Streamer) ([]int16, error) {
	var out []int16
	buf := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(buf)
		for _, f := range buf[:n] {
			v := (f[0] + f[1]) / 2 * 32767
			out = append(out, int16(math.Max(-32768, math.Min(32767, v))))
		}
		if !ok {
			break
		}
	}
	if e, ok := s.(interface{ Err() error }); ok {
		return out, e.Err()
	}
	return out, nil
}
