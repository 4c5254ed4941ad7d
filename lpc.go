package codec2

import "math"

// LPC analysis constants.
const (
	LPC_MAX_N = 512 // Maximum number of samples in frame.

	lpcBwExpand = 0.994 // per-tap bandwidth expansion applied before LSP conversion
	lspDelta1   = 0.01  // grid spacing for LSP root searches
	lspBisect   = 5     // bisection steps per located root
)

// autocorrelate returns the order+1 autocorrelation lags of Sn.
func autocorrelate(Sn []float64, order int) []float64 {
	R := make([]float64, order+1)
	for j := 0; j <= order; j++ {
		for i := 0; i < len(Sn)-j; i++ {
			R[j] += Sn[i] * Sn[i+j]
		}
	}
	return R
}

// levinsonDurbin solves for the LPC coefficients a[0..order] (a[0] = 1)
// from the autocorrelation R, following Makhoul's formulation. A
// reflection coefficient outside (-1, 1) means the frame is numerically
// unstable at that order; it is clamped to zero.
func levinsonDurbin(R []float64, order int) []float64 {
	var a [LpcMax + 1][LpcMax + 1]float64
	e := R[0] // Equation 38a, Makhoul

	for i := 1; i <= order; i++ {
		sum := 0.0
		for j := 1; j <= i-1; j++ {
			sum += a[i-1][j] * R[i-j]
		}
		k := -1.0 * (R[i] + sum) / e // Equation 38b, Makhoul
		if math.Abs(k) > 1.0 || math.IsNaN(k) {
			k = 0.0
		}

		a[i][i] = k
		for j := 1; j <= i-1; j++ {
			a[i][j] = a[i-1][j] + k*a[i-1][i-j] // Equation 38c, Makhoul
		}

		e *= 1 - k*k // Equation 38d, Makhoul
	}

	lpcs := make([]float64, order+1)
	lpcs[0] = 1.0
	for i := 1; i <= order; i++ {
		lpcs[i] = a[order][i]
	}
	return lpcs
}

// InverseFilter filters Sn by A(z), returning the prediction residual.
// Samples before Sn[0] are taken as zero.
func InverseFilter(Sn []float64, a []float64, order int) []float64 {
	res := make([]float64, len(Sn))
	for i := range Sn {
		acc := 0.0
		for j := 0; j <= order; j++ {
			if i-j < 0 {
				break
			}
			acc += Sn[i-j] * a[j]
		}
		res[i] = acc
	}
	return res
}

// SynthesisFilter runs res through the all pole filter 1/A(z), the inverse
// of InverseFilter.
func SynthesisFilter(res []float64, a []float64, order int) []float64 {
	Sn := make([]float64, len(res))
	for i := range res {
		acc := res[i] * a[0]
		for j := 1; j <= order; j++ {
			if i-j < 0 {
				break
			}
			acc -= Sn[i-j] * a[j]
		}
		Sn[i] = acc
	}
	return Sn
}

// findAks windows Sn, runs LPC analysis and returns the coefficients and
// the prediction error energy.
func findAks(Sn []float64, w []float64, order int) (a []float64, energy float64) {
	if order > LpcMax || len(Sn) > LPC_MAX_N {
		panic("codec2: LPC analysis bounds exceeded")
	}
	Wn := make([]float64, len(Sn))
	for i := range Sn {
		Wn[i] = Sn[i] * w[i]
	}
	R := autocorrelate(Wn, order)
	a = levinsonDurbin(R, order)
	for i := 0; i <= order; i++ {
		energy += a[i] * R[i]
	}
	return a, energy
}

// benignLsps fills lsp with an evenly spaced, strictly increasing vector
// inside (0, pi). It stands in whenever the analysis cannot produce one.
func benignLsps(lsp []float64) {
	order := len(lsp)
	for i := range lsp {
		lsp[i] = PI * float64(i+1) / float64(order+1)
	}
}

// speechToUQLSPS computes the LPC energy and the unquantised LSPs of the
// windowed analysis buffer. ok is false when root finding failed and the
// benign fallback vector was substituted.
func speechToUQLSPS(sn, w []float64, order int) (energy float64, lsp []float64, ok bool) {
	lsp = make([]float64, order)

	e := 0.0
	for i := range sn {
		x := sn[i] * w[i]
		e += x * x
	}
	// LPC analysis fails on a silent frame.
	if e == 0.0 {
		benignLsps(lsp)
		return 0.0, lsp, true
	}

	ak, E := findAks(sn, w, order)

	// Expand bandwidth after measuring the energy so E cannot go negative.
	g := 1.0
	for i := 0; i <= order; i++ {
		ak[i] *= g
		g *= lpcBwExpand
	}

	roots := LpcToLsp(ak, lsp, order, lspBisect, lspDelta1)
	if roots != order {
		benignLsps(lsp)
		return E, lsp, false
	}
	return E, lsp, true
}
