package codec2

import "math"

// Background noise post filter.
const (
	BG_THRESH = 40.0 // only unvoiced frames below this level (dB) update the estimate
	BG_BETA   = 0.1  // smoothing factor of the estimate
	BG_MARGIN = 6.0  // harmonics within this margin (dB) of the estimate are treated as noise
)

// postfilter tracks the background noise level in bgEst and randomises the
// phase of voiced harmonics that are not clearly above it. Low level
// harmonics of "voiced" frames are usually noise, and a deterministic
// phase on them is heard as a buzz. It returns the number of harmonics
// whose phase was randomised.
func postfilter(model *Model, bgEst *float64, rng *lcg) int {
	e := 1e-12
	for m := 1; m <= model.L; m++ {
		e += model.A[m] * model.A[m]
	}
	e = 10.0 * math.Log10(e/float64(model.L))

	if e < BG_THRESH && !model.Voiced {
		*bgEst = *bgEst*(1.0-BG_BETA) + e*BG_BETA
	}

	uv := 0
	if model.Voiced {
		thresh := math.Pow(10.0, (*bgEst+BG_MARGIN)/20.0)
		for m := 1; m <= model.L; m++ {
			if model.A[m] < thresh {
				model.Phi[m] = rng.phase()
				uv++
			}
		}
	}
	return uv
}
