package codec2

import (
	"math"
)

// samplePhase samples the phase response of the LPC synthesis filter
// 1/A(e^jw) at each harmonic, given the spectrum Aw of A(z).
func samplePhase(model *Model, H []COMP, Aw []COMP) {
	r := TWO_PI / FFTSize
	for m := 1; m <= model.L; m++ {
		b := int(float64(m)*model.Wo/r + 0.5)
		if b >= len(Aw) {
			b = len(Aw) - 1
		}
		// 1/A has the phase of the conjugate of A.
		H[m] = COMP{Real: Aw[b].Real, Imag: -Aw[b].Imag}
	}
}

// phaseSynthZeroOrder builds harmonic phases from no transmitted phase
// information. The excitation phase advances by Wo*nSamp per subframe; a
// voiced excitation is an impulse train e^{j m phase}, an unvoiced one has
// a random phase per harmonic. The excitation is filtered by H.
func phaseSynthZeroOrder(nSamp int, model *Model, exPhase *float64, H []COMP, rng *lcg) {
	*exPhase += model.Wo * float64(nSamp)
	*exPhase -= TWO_PI * math.Floor(*exPhase/TWO_PI+0.5)

	for m := 1; m <= model.L; m++ {
		var Ex COMP
		if model.Voiced {
			Ex.Real = math.Cos(*exPhase * float64(m))
			Ex.Imag = math.Sin(*exPhase * float64(m))
		} else {
			phi := rng.phase()
			Ex.Real = math.Cos(phi)
			Ex.Imag = math.Sin(phi)
		}

		// Filter the excitation with the LPC phase response.
		A := COMP{
			Real: H[m].Real*Ex.Real - H[m].Imag*Ex.Imag,
			Imag: H[m].Imag*Ex.Real + H[m].Real*Ex.Imag,
		}
		model.Phi[m] = math.Atan2(A.Imag, A.Real+1e-12)
	}
}
