package codec2

// earProtectionLevel is the output level above which frames are attenuated.
const earProtectionLevel = 30000.0

// earProtection attenuates a frame whose peak exceeds earProtectionLevel.
// A frame x times over the limit is scaled by 1/x^2, so large excursions,
// usually caused by bit errors, are cut harder than small ones.
func earProtection(inOut []float64) {
	maxSample := 0.0
	for _, s := range inOut {
		if s > maxSample {
			maxSample = s
		}
	}

	over := maxSample / earProtectionLevel
	if over > 1.0 {
		gain := 1.0 / (over * over)
		for i := range inOut {
			inOut[i] *= gain
		}
	}
}
