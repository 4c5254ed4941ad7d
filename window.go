package codec2

import (
	"math"

	"github.com/mjibson/go-dsp/window"
)

// makeAnalysisWindow computes the time domain analysis window w (length
// MPitch) and its frequency response W (length FFTSize). Only the central
// Nw samples of w are non zero. w is normalised so that harmonic
// amplitudes can be read directly off the DFT.
func makeAnalysisWindow(c2const *C2Const, f FFT) (w []float64, W []float64) {
	mPitch := c2const.MPitch
	nw := c2const.Nw
	w = make([]float64, mPitch)

	hann := window.Hann(nw)
	start := mPitch/2 - nw/2
	sum := 0.0
	for i, j := start, 0; i < mPitch/2+nw/2; i, j = i+1, j+1 {
		w[i] = hann[j]
		sum += w[i] * w[i]
	}
	norm := 1.0 / math.Sqrt(sum*float64(FFTSize))
	for i := range w {
		w[i] *= norm
	}

	// Modulo FFTSize shift w so that it is even about n=0, which makes
	// the imaginary part of its DFT zero.
	wshift := make([]float64, FFTSize)
	for i := 0; i < nw/2; i++ {
		wshift[i] = w[i+mPitch/2]
	}
	for i, j := FFTSize-nw/2, mPitch/2-nw/2; i < FFTSize; i, j = i+1, j+1 {
		wshift[i] = w[j]
	}
	temp := f.Forward(wshift)

	// Re-arrange W to be symmetrical about FFTSize/2.
	W = make([]float64, FFTSize)
	for i := 0; i < FFTSize/2; i++ {
		W[i] = real(temp[i+FFTSize/2])
		W[i+FFTSize/2] = real(temp[i])
	}
	return w, W
}

// makeSynthesisWindow generates the trapezoidal (Parzen) synthesis window.
// It returns a slice of length 2*NSamp (i.e. 20ms worth of samples) where
// NSamp is the number of samples per 10ms frame.
func makeSynthesisWindow(c2const *C2Const) []float64 {
	nsamp := c2const.NSamp
	tw := c2const.Tw
	Pn := make([]float64, 2*nsamp)

	win := 0.0
	step := 1.0 / (2.0 * float64(tw))
	for i := nsamp/2 - tw; i < nsamp/2+tw; i++ {
		Pn[i] = win
		win += step
	}
	for i := nsamp/2 + tw; i < 3*nsamp/2-tw; i++ {
		Pn[i] = 1.0
	}
	win = 1.0
	for i := 3*nsamp/2 - tw; i < 3*nsamp/2+tw; i++ {
		Pn[i] = win
		win -= step
	}
	return Pn
}
