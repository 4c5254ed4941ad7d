package codec2

import "github.com/mjibson/go-dsp/fft"

// FFT is our FFT interface.
type FFT interface {
	// Forward returns the full N-point DFT of a real input.
	Forward(in []float64) []complex128
	// Inverse returns the real part of the unscaled inverse DFT, i.e.
	// sum_k X[k] e^{j2pi kn/N} with no 1/N factor.
	Inverse(in []complex128) []float64
}

// defaultFFT implements FFT using go-dsp/fft.
type defaultFFT struct {
	size int
}

// NewFFT creates a new FFT instance for the given size.
func NewFFT(size int) FFT {
	return &defaultFFT{size: size}
}

// Forward zero pads or truncates in to the transform size.
func (f *defaultFFT) Forward(in []float64) []complex128 {
	if len(in) != f.size {
		x := make([]float64, f.size)
		copy(x, in)
		in = x
	}
	return fft.FFTReal(in)
}

// Inverse undoes go-dsp's 1/N scaling so callers see kiss_fft style
// unscaled output.
func (f *defaultFFT) Inverse(in []complex128) []float64 {
	complexOut := fft.IFFT(in)
	realOut := make([]float64, len(complexOut))
	scale := float64(len(complexOut))
	for i, v := range complexOut {
		realOut[i] = real(v) * scale
	}
	return realOut
}
