/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package audioengine

// ApplyQuickGain scales samples in place, clipping at the int16 range.
func ApplyQuickGain(samples []int16, factor float64) {
	for i := range samples {
		val := float64(samples[i]) * factor
		if val > 32767 {
			val = 32767
		} else if val < -32768 {
			val = -32768
		}
		samples[i] = int16(val)
	}
}

// Normalize raises quiet voice recordings so their peak reaches target
// (0..1 of full scale). Gain is capped at maxGain so that room noise in an
// almost silent take is not blown up.
func Normalize(samples []int16, target, maxGain float64) float64 {
	peak := Peak(samples)
	if peak == 0 {
		return 1
	}
	gain := target * 32767 / float64(peak)
	if gain > maxGain {
		gain = maxGain
	}
	if gain <= 1 {
		return 1
	}
	ApplyQuickGain(samples, gain)
	return gain
}
