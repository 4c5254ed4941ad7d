package codec2

import (
	"math"
)

// postFilterConfig selects the LPC post filter applied during decoding.
type postFilterConfig struct {
	enabled   bool
	bassBoost bool
	beta      float64 // Strength of the formant emphasis.
	gamma     float64 // Bandwidth of the weighting filter.
}

// aksToM2 samples the LPC synthesis filter power spectrum E/|A(e^jw)|^2 at
// each harmonic band of model and replaces model.A with the square root of
// the band energy. It returns the SNR of the new amplitudes against the
// old ones and the full FFTSize point spectrum of A(z), which the phase
// synthesiser samples.
func aksToM2(f FFT, ak []float64, order int, model *Model, E float64, pf postFilterConfig) (snr float64, Aw []COMP) {
	r := TWO_PI / FFTSize

	a := make([]float64, FFTSize)
	copy(a, ak[:order+1])
	X := f.Forward(a)
	Aw = make([]COMP, FFTSize)
	for i, c := range X {
		Aw[i] = COMP{Real: real(c), Imag: imag(c)}
	}

	Pw := make([]float64, FFTSize/2)
	for i := range Pw {
		Pw[i] = 1.0 / (Aw[i].mag2() + 1e-6)
	}

	if pf.enabled {
		lpcPostFilter(f, Pw, ak, order, pf, E)
	} else {
		for i := range Pw {
			Pw[i] *= E
		}
	}

	signal := 1e-30
	noise := 1e-32
	for m := 1; m <= model.L; m++ {
		am := int((float64(m)-0.5)*model.Wo/r + 0.5)
		bm := int((float64(m)+0.5)*model.Wo/r + 0.5)
		if bm > FFTSize/2 {
			bm = FFTSize / 2
		}
		Em := 0.0
		for i := am; i < bm; i++ {
			Em += Pw[i]
		}
		Am := math.Sqrt(Em)

		signal += model.A[m] * model.A[m]
		noise += (model.A[m] - Am) * (model.A[m] - Am)
		model.A[m] = Am
	}
	return 10.0 * math.Log10(signal/noise), Aw
}

// lpcPostFilter emphasises the formants of the power spectrum Pw. The
// weighting filter W(z) = A(z/gamma) is combined with Pw into
// R = sqrt(|W|^2 Pw), Pw is multiplied by R^(2 beta), and the result is
// scaled back to the energy it had before filtering, times E. The optional
// bass boost adds 3 dB below 1 kHz.
func lpcPostFilter(f FFT, Pw []float64, ak []float64, order int, pf postFilterConfig, E float64) {
	x := make([]float64, FFTSize)
	x[0] = ak[0]
	coeff := pf.gamma
	for i := 1; i <= order; i++ {
		x[i] = ak[i] * coeff
		coeff *= pf.gamma
	}
	Ww := f.Forward(x)

	eBefore := 1e-4
	for i := range Pw {
		eBefore += Pw[i]
	}

	eAfter := 1e-4
	for i := range Pw {
		w2 := real(Ww[i])*real(Ww[i]) + imag(Ww[i])*imag(Ww[i])
		Rw := math.Sqrt(w2 * Pw[i])
		Pfw := math.Pow(Rw, pf.beta)
		Pw[i] *= Pfw * Pfw
		eAfter += Pw[i]
	}

	gain := eBefore / eAfter * E
	for i := range Pw {
		Pw[i] *= gain
	}

	if pf.bassBoost {
		for i := 0; i < FFTSize/8 && i < len(Pw); i++ {
			Pw[i] *= 1.4 * 1.4
		}
	}
}

// applyLpcCorrection attenuates the first harmonic of very low pitched
// frames, where LPC modelling overestimates it.
func applyLpcCorrection(model *Model) {
	if model.Wo < PI*150.0/4000.0 {
		model.A[1] *= 0.032
	}
}
