package codec2

import (
	"math"
)

// interpWo2 sets the Wo of a subframe that carries only a voicing bit from
// the surrounding decoded frames prev and next. weight is the position of
// interp between them, 0 at prev and 1 at next.
func interpWo2(interp *Model, prev *Model, next *Model, weight float64, woMin float64) {
	// Voiced between two unvoiced frames is most likely a voicing error.
	if interp.Voiced && !prev.Voiced && !next.Voiced {
		interp.Voiced = false
	}

	wo := woMin
	if interp.Voiced {
		switch {
		case prev.Voiced && next.Voiced:
			wo = (1.0-weight)*prev.Wo + weight*next.Wo
		case !prev.Voiced && next.Voiced:
			wo = next.Wo
		default:
			wo = prev.Wo
		}
	}
	interp.setWo(wo)
}

// interpEnergy2 interpolates energies linearly in the log domain.
func interpEnergy2(prevE, nextE, weight float64) float64 {
	return math.Pow(10.0, (1.0-weight)*math.Log10(prevE)+weight*math.Log10(nextE))
}

// interpolateLsp interpolates LSP vectors linearly.
func interpolateLsp(interp, prev, next []float64, weight float64) {
	for i := range interp {
		interp[i] = (1.0-weight)*prev[i] + weight*next[i]
	}
}
