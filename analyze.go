package codec2

import (
	"math"
)

// Voicing post processing thresholds.
const (
	eratioVoicedDB   = 10.0 // low/high energy ratio that forces voiced
	eratioUnvoicedDB = -10.0
	lowWoEratioDB    = -4.0 // below 60 Hz a mildly HF dominant frame is unvoiced
	pitchJumpHz      = 15.0
)

// dftSpeech centres the windowed analysis buffer on the time axis and
// returns its FFTSize point DFT, so that the DFT phases are referenced to
// the centre of the window.
func dftSpeech(c2const *C2Const, f FFT, Sn []float64, w []float64) []COMP {
	mPitch := c2const.MPitch
	nw := c2const.Nw
	in := make([]float64, FFTSize)

	// Move 2nd half to start of FFT input vector.
	for i := 0; i < nw/2; i++ {
		in[i] = Sn[i+mPitch/2] * w[i+mPitch/2]
	}
	// Move 1st half to end of FFT input vector.
	for i := 0; i < nw/2; i++ {
		in[FFTSize-nw/2+i] = Sn[i+mPitch/2-nw/2] * w[i+mPitch/2-nw/2]
	}

	res := f.Forward(in)
	Sw := make([]COMP, FFTSize)
	for i, c := range res {
		Sw[i] = COMP{Real: real(c), Imag: imag(c)}
	}
	return Sw
}

// hsPitchRefinement searches pitch periods pmin..pmax in steps of pstep
// for the Wo that maximises the harmonic sum of |Sw|^2.
func hsPitchRefinement(model *Model, Sw []COMP, pmin, pmax, pstep float64) {
	// Use the initial estimate for the number of harmonics.
	L := int(PI / model.Wo)
	Wom := model.Wo
	Em := 0.0
	oneOnR := FFTSize / TWO_PI

	for p := pmin; p <= pmax; p += pstep {
		E := 0.0
		Wo := TWO_PI / p
		bFloat := Wo * oneOnR
		current := bFloat
		for m := 1; m <= L; m++ {
			b := int(current + 0.5)
			if b >= len(Sw) {
				break
			}
			E += Sw[b].mag2()
			current += bFloat
		}
		if E > Em {
			Em = E
			Wom = Wo
		}
	}
	model.Wo = Wom
}

// twoStagePitchRefinement refines the NLP estimate with a coarse then a
// fine harmonic sum search, then clamps Wo and derives L.
func twoStagePitchRefinement(c2const *C2Const, model *Model, Sw []COMP) {
	// Coarse refinement.
	pmax := TWO_PI/model.Wo + 5
	pmin := TWO_PI/model.Wo - 5
	hsPitchRefinement(model, Sw, pmin, pmax, 1.0)

	// Fine refinement.
	pmax = TWO_PI/model.Wo + 1
	pmin = TWO_PI/model.Wo - 1
	hsPitchRefinement(model, Sw, pmin, pmax, 0.25)

	model.setWo(c2const.clampWo(model.Wo))
}

// estimateAmplitudes sets A[m] to the root of the DFT energy within half
// a harmonic spacing of each harmonic. When estPhase is set the raw DFT
// phase at the harmonic centre is stored in Phi[m].
func estimateAmplitudes(model *Model, Sw []COMP, estPhase bool) {
	oneOnR := FFTSize / TWO_PI
	for m := 1; m <= model.L; m++ {
		am := int((float64(m)-0.5)*model.Wo*oneOnR + 0.5)
		bm := int((float64(m)+0.5)*model.Wo*oneOnR + 0.5)
		den := 0.0
		for i := am; i < bm; i++ {
			den += Sw[i].mag2()
		}
		model.A[m] = math.Sqrt(den)

		if estPhase {
			b := int(float64(m)*model.Wo*oneOnR + 0.5)
			model.Phi[m] = math.Atan2(Sw[b].Imag, Sw[b].Real)
		}
	}
}

// voicingEstimate is the result of estVoicingMbe.
type voicingEstimate struct {
	snr    float64 // dB, fully voiced model against the DFT below 1 kHz
	eratio float64 // dB, energy below 2 kHz over energy above
}

// estVoicingMbe decides voicing by fitting a purely voiced harmonic model
// (built from the window response W) to the DFT below 1 kHz, then corrects
// gross errors using the low/high frequency energy ratio.
func estVoicingMbe(c2const *C2Const, model *Model, Sw []COMP, W []float64) voicingEstimate {
	halfFs := float64(c2const.Fs) / 2
	l1000 := int(float64(model.L) * 1000.0 / halfFs)

	sig := 1e-4
	for l := 1; l <= l1000; l++ {
		sig += model.A[l] * model.A[l]
	}

	Wo := model.Wo
	errAcc := 1e-4
	for l := 1; l <= l1000; l++ {
		var Am COMP
		den := 0.0
		al := int(math.Ceil((float64(l) - 0.5) * Wo * FFTSize / TWO_PI))
		bl := int(math.Ceil((float64(l) + 0.5) * Wo * FFTSize / TWO_PI))

		// Estimate amplitude of harmonic assuming it is totally voiced.
		offset := int(FFTSize/2 - float64(l)*Wo*FFTSize/TWO_PI + 0.5)
		for m := al; m < bl; m++ {
			Am.Real += Sw[m].Real * W[offset+m]
			Am.Imag += Sw[m].Imag * W[offset+m]
			den += W[offset+m] * W[offset+m]
		}
		if den > 0 {
			Am.Real /= den
			Am.Imag /= den
		}

		// Error between the voiced model and the original.
		for m := al; m < bl; m++ {
			ew := COMP{
				Real: Sw[m].Real - Am.Real*W[offset+m],
				Imag: Sw[m].Imag - Am.Imag*W[offset+m],
			}
			errAcc += ew.mag2()
		}
	}

	snr := 10.0 * math.Log10(sig/errAcc)
	model.Voiced = snr > V_THRESH

	// Voiced speech is dominated by low frequency energy, unvoiced by
	// high frequency energy.
	l2000 := int(float64(model.L) * 2000.0 / halfFs)
	l4000 := int(float64(model.L) * 4000.0 / halfFs)
	elow, ehigh := 1e-4, 1e-4
	for l := 1; l <= l2000; l++ {
		elow += model.A[l] * model.A[l]
	}
	for l := l2000; l <= l4000; l++ {
		ehigh += model.A[l] * model.A[l]
	}
	eratio := 10.0 * math.Log10(elow/ehigh)

	if !model.Voiced && eratio > eratioVoicedDB {
		model.Voiced = true
	}
	if model.Voiced {
		if eratio < eratioUnvoicedDB {
			model.Voiced = false
		}
		// Low (50 Hz) pitch estimates on unvoiced speech match noise well
		// because of the close harmonic spacing.
		sixty := 60.0 * TWO_PI / float64(c2const.Fs)
		if eratio < lowWoEratioDB && model.Wo <= sixty {
			model.Voiced = false
		}
	}

	return voicingEstimate{snr: snr, eratio: eratio}
}

// analyseOneFrame shifts nSamp new samples into the analysis buffer and
// extracts the harmonic model: pitch, amplitudes and voicing. LPC energy
// and LSPs are computed separately, only on frames that transmit them.
func (c *Codec2) analyseOneFrame(speech []float64, model *Model) {
	nSamp := c.c2const.NSamp
	mPitch := c.c2const.MPitch

	copy(c.sn[:mPitch-nSamp], c.sn[nSamp:])
	copy(c.sn[mPitch-nSamp:], speech[:nSamp])

	Sw := dftSpeech(&c.c2const, c.fft, c.sn, c.w)

	pitch, _ := c.nlp.estimate(c.sn, nSamp, &c.prevF0Enc)
	model.Wo = TWO_PI / pitch
	twoStagePitchRefinement(&c.c2const, model, Sw)

	estimateAmplitudes(model, Sw, false)
	v := estVoicingMbe(&c.c2const, model, Sw, c.wResp)

	f0 := model.Wo * float64(c.c2const.Fs) / TWO_PI
	if model.Voiced && pitchJumped(f0, c.prevF0Model, c.prevVoicedEnc, v.eratio) {
		model.Voiced = false
	}
	c.prevF0Model = f0
	c.prevVoicedEnc = model.Voiced
}

// pitchJumped reports whether a voiced frame at f0 should be demoted to
// unvoiced. Voiced speech moves its pitch slowly, so a jump of more than
// pitchJumpHz from a voiced previous frame marks noise, unless the
// spectrum is low frequency dominant (eratio >= 0 dB). An unvoiced
// previous frame carries no pitch, so onsets are never demoted.
func pitchJumped(f0, prevF0 float64, prevVoiced bool, eratio float64) bool {
	return prevVoiced && eratio < 0 && math.Abs(f0-prevF0) > pitchJumpHz
}
