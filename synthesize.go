package codec2

import (
	"math"
)

// synthesise adds one subframe of sinusoids described by model into the
// overlap buffer Sn_ (length 2*nSamp). The first nSamp samples of Sn_ are
// complete after the call. With shift set the buffer is first advanced by
// nSamp, otherwise the new frame is added on top of it.
func synthesise(nSamp int, f FFT, Sn_ []float64, model *Model, Pn []float64, shift bool) {
	if shift {
		copy(Sn_[:nSamp-1], Sn_[nSamp:2*nSamp-1])
		Sn_[nSamp-1] = 0.0
	}

	// One bin per harmonic, Hermitian so the inverse DFT is real.
	Sw := make([]complex128, FFTSize)
	for m := 1; m <= model.L; m++ {
		b := int(float64(m)*model.Wo*FFTSize/TWO_PI + 0.5)
		if b > FFTSize/2-1 {
			b = FFTSize/2 - 1
		}
		Sw[b] = complex(model.A[m]*math.Cos(model.Phi[m]), model.A[m]*math.Sin(model.Phi[m]))
		Sw[FFTSize-b] = complex(real(Sw[b]), -imag(Sw[b]))
	}
	sw := f.Inverse(Sw)

	// Overlap add with the trapezoidal window.
	for i := 0; i < nSamp-1; i++ {
		Sn_[i] += sw[FFTSize-nSamp+1+i] * Pn[i]
	}
	for i, j := nSamp-1, 0; i < 2*nSamp; i, j = i+1, j+1 {
		if shift {
			Sn_[i] = sw[j] * Pn[i]
		} else {
			Sn_[i] += sw[j] * Pn[i]
		}
	}
}

// synthesiseOneFrame turns a decoded model and the LPC spectrum Aw into
// nSamp output samples: zero order phase synthesis, background noise post
// filter, overlap add, gain, ear protection and saturation to int16.
func (c *Codec2) synthesiseOneFrame(model *Model, speech []int16, Aw []COMP, gain float64) {
	nSamp := c.c2const.NSamp

	var H [MaxAmp + 1]COMP
	samplePhase(model, H[:], Aw)
	phaseSynthZeroOrder(nSamp, model, &c.exPhase, H[:], c.rng)

	if n := postfilter(model, &c.bgEst, c.rng); n > 0 {
		c.stats.NoisePhases += n
	}

	synthesise(nSamp, c.fft, c.synBuf, model, c.pn, true)

	out := c.synBuf[:nSamp]
	for i := range out {
		out[i] *= gain
	}
	earProtection(out)

	for i, s := range out {
		switch {
		case s > 32767.0:
			speech[i] = 32767
		case s < -32767.0:
			speech[i] = -32767
		default:
			speech[i] = int16(s)
		}
	}
}
