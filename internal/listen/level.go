package listen

import "math"

// AudioLevel maps a mono sample buffer to a 0-100 loudness scale.
// RMS is converted to dB and the -60..0 dB range is normalized; quieter
// than -60 dB clamps to 0, full scale to 100.
func AudioLevel(samples []float32) int {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms <= 0 {
		return 0
	}

	db := 20 * math.Log10(rms+1e-10)
	level := (db + 60) * 100 / 60

	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return int(level)
}

// silenceThreshold derives the skip-transcription threshold from the
// microphone sensitivity (1-10). Higher sensitivity lowers the threshold:
// more chunks get transcribed, at a CPU cost.
func silenceThreshold(sensitivity int) int {
	t := 16 - sensitivity
	if t < 1 {
		return 1
	}
	return t
}
