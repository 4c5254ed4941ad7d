package codec2

import (
	"github.com/mjibson/go-dsp/window"
)

// nlpState holds the memories of the nonlinear pitch estimator.
type nlpState struct {
	fs     int                  // Sample rate.
	m      int                  // Analysis window length.
	sq     []float64            // Squared speech samples.
	memX   float64              // Notch filter memory.
	memY   float64              // Notch filter memory.
	memFir [NLP_NTAP]float64    // FIR filter memory.
	fft    FFT                  // PE_FFT_SIZE point transform.
	w      []float64            // Analysis window for decimated signal (length = m/DEC)
	pmin   int                  // Minimum pitch period in samples.
	pmax   int                  // Maximum pitch period in samples.
	fw     [PE_FFT_SIZE]float64 // Scratch for the decimated, windowed signal.
}

func newNLP(c2const *C2Const) *nlpState {
	m := c2const.MPitch
	return &nlpState{
		fs:   c2const.Fs,
		m:    m,
		sq:   make([]float64, m),
		fft:  NewFFT(PE_FFT_SIZE),
		w:    window.Hann(m / DEC),
		pmin: c2const.PMin,
		pmax: c2const.PMax,
	}
}

// estimate runs the pitch estimator over the analysis buffer Sn, of which
// the newest n samples have not been seen before. It returns the pitch
// period in samples and the F0 estimate in Hz, and updates prevF0 so the
// next call can favour it.
func (s *nlpState) estimate(Sn []float64, n int, prevF0 *float64) (pitch float64, f0 float64) {
	m := s.m

	// Square the latest n samples.
	for i := m - n; i < m; i++ {
		s.sq[i] = Sn[i] * Sn[i]
	}

	// Notch filter at DC. The small constant keeps all-zero input away
	// from denormal territory in the FFT.
	for i := m - n; i < m; i++ {
		notch := s.sq[i] - s.memX
		notch += COEFF * s.memY
		s.memX = s.sq[i]
		s.memY = notch
		s.sq[i] = notch + 1.0
	}

	// FIR low pass filter.
	for i := m - n; i < m; i++ {
		copy(s.memFir[:NLP_NTAP-1], s.memFir[1:])
		s.memFir[NLP_NTAP-1] = s.sq[i]
		acc := 0.0
		for j := 0; j < NLP_NTAP; j++ {
			acc += s.memFir[j] * nlpFir[j]
		}
		s.sq[i] = acc
	}

	// Decimate, window and DFT.
	for i := range s.fw {
		s.fw[i] = 0
	}
	for i := 0; i < m/DEC; i++ {
		s.fw[i] = s.sq[i*DEC] * s.w[i]
	}
	X := s.fft.Forward(s.fw[:])
	Fw := make([]float64, PE_FFT_SIZE)
	for i, c := range X {
		Fw[i] = real(c)*real(c) + imag(c)*imag(c)
	}

	// Global peak search over the valid pitch band.
	minBin := PE_FFT_SIZE * DEC / s.pmax
	maxBin := PE_FFT_SIZE * DEC / s.pmin
	gmax := 0.0
	gmaxBin := minBin
	for i := minBin; i <= maxBin; i++ {
		if Fw[i] > gmax {
			gmax = Fw[i]
			gmaxBin = i
		}
	}

	bestF0 := postProcessSubMultiples(Fw, s.pmin, s.pmax, gmax, gmaxBin, *prevF0)

	// Shift the square buffer to make room for new samples.
	copy(s.sq[:m-n], s.sq[n:])

	*prevF0 = bestF0
	return float64(s.fs) / bestF0, bestF0
}

// postProcessSubMultiples searches the integer sub-multiples of the global
// peak for local maxima. The lowest frequency sub-multiple that clears the
// threshold wins; the threshold is halved near the previous estimate.
func postProcessSubMultiples(Fw []float64, pmin, pmax int, gmax float64, gmaxBin int, prevF0 float64) float64 {
	mult := 2
	minBin := PE_FFT_SIZE * DEC / pmax
	cmaxBin := gmaxBin
	prevF0Bin := int(prevF0 * float64(PE_FFT_SIZE*DEC) / float64(SampleRate))

	for gmaxBin/mult >= minBin {
		b := gmaxBin / mult
		bmin := int(0.8 * float64(b))
		bmax := int(1.2 * float64(b))
		if bmin < minBin {
			bmin = minBin
		}

		var thresh float64
		if prevF0Bin > bmin && prevF0Bin < bmax {
			thresh = CNLP * 0.5 * gmax
		} else {
			thresh = CNLP * gmax
		}

		lmax := 0.0
		lmaxBin := bmin
		for b := bmin; b <= bmax; b++ {
			if Fw[b] > lmax {
				lmax = Fw[b]
				lmaxBin = b
			}
		}

		if lmax > thresh && lmaxBin > 0 && lmaxBin+1 < len(Fw) {
			if lmax > Fw[lmaxBin-1] && lmax > Fw[lmaxBin+1] {
				cmaxBin = lmaxBin
			}
		}
		mult++
	}

	return float64(cmaxBin) * float64(SampleRate) / float64(PE_FFT_SIZE*DEC)
}
