package codec2

import "math"

// Minimum LSP separations in Hz enforced after quantisation. Errors below
// these are inaudible; a collapsed or crossed pair makes the LPC
// synthesis filter unstable.
const (
	lspSepLowHz  = 12.5 // lines 1..3
	lspSepMidHz  = 25.0 // lines 4..6
	lspSepHighHz = 75.0 // lines 7..

	lspMaxHz = 3950.0 // ceiling of the top line after quantisation
)

// LpcToLsp converts LPC coefficients a (length order+1, with a[0]==1)
// into LSP frequencies (in radians) stored in lsp (length at least order).
// P'(z) and Q'(z) are evaluated as Chebyshev series in x = cos(w), on a
// grid of spacing delta from x=1 down to x=-1; each sign change is
// bisected nb+1 times. It returns the number of roots found, which the
// caller must compare with order.
func LpcToLsp(a []float64, lsp []float64, order int, nb int, delta float64) int {
	if order > LpcMax || order%2 != 0 {
		panic("codec2: unsupported LSP order")
	}
	m := order / 2
	roots := 0

	// P'(z) = P(z)/(1 + z^-1) and Q'(z) = Q(z)/(1 - z^-1).
	var P, Q [LpcMax/2 + 1]float64
	P[0] = 1.0
	Q[0] = 1.0
	for i := 1; i <= m; i++ {
		P[i] = a[i] + a[order+1-i] - P[i-1]
		Q[i] = a[i] - a[order+1-i] + Q[i-1]
	}
	for i := 0; i < m; i++ {
		P[i] *= 2.0
		Q[i] *= 2.0
	}

	xl := 1.0
	xr := 0.0
	var xm float64

	// Alternate between P' and Q', one root each.
	for j := 0; j < order; j++ {
		poly := P[:m+1]
		if j%2 == 1 {
			poly = Q[:m+1]
		}

		psuml := chebPolyEva(poly, xl, order)
		for found := false; !found && xr >= -1.0; {
			xr = xl - delta
			psumr := chebPolyEva(poly, xr, order)
			if psumr*psuml < 0.0 || psumr == 0.0 {
				roots++
				for k := 0; k <= nb; k++ {
					xm = (xl + xr) / 2.0
					psumm := chebPolyEva(poly, xm, order)
					if psumm*psuml > 0.0 {
						psuml = psumm
						xl = xm
					} else {
						xr = xm
					}
				}
				lsp[j] = xm
				xl = xm
				found = true
			} else {
				psuml = psumr
				xl = xr
			}
		}
	}

	// Convert from the x domain to radians.
	for i := 0; i < order; i++ {
		x := lsp[i]
		if x > 1.0 {
			x = 1.0
		} else if x < -1.0 {
			x = -1.0
		}
		lsp[i] = math.Acos(x)
	}
	return roots
}

// chebPolyEva evaluates the Chebyshev series with coefficients coef
// (length order/2+1, highest order first) at x.
func chebPolyEva(coef []float64, x float64, order int) float64 {
	n := order / 2
	var T [LpcMax/2 + 1]float64
	T[0] = 1.0
	if n > 0 {
		T[1] = x
	}
	for i := 2; i <= n; i++ {
		T[i] = 2*x*T[i-1] - T[i-2]
	}
	sum := 0.0
	for i := 0; i <= n; i++ {
		sum += coef[n-i] * T[i]
	}
	return sum
}

// LspToLpc converts LSP frequencies (in radians) to LPC coefficients
// ak[0..order] by cascading the second order sections
// 1 - 2cos(lsp_i)z^-1 + z^-2 of P(z) and Q(z).
func LspToLpc(lsp []float64, ak []float64, order int) {
	if order > LpcMax || order%2 != 0 {
		panic("codec2: unsupported LSP order")
	}
	var xfreq [LpcMax]float64
	for i := 0; i < order; i++ {
		xfreq[i] = math.Cos(lsp[i])
	}

	N := order / 2
	var Wp [LpcMax*4 + 2]float64
	xin1 := 1.0
	xin2 := 1.0

	// Feed an impulse through both cascades; the sum of the outputs is A(z).
	for j := 0; j <= order; j++ {
		for i := 0; i < N; i++ {
			n := i * 4
			xout1 := xin1 - 2.0*xfreq[2*i]*Wp[n] + Wp[n+1]
			xout2 := xin2 - 2.0*xfreq[2*i+1]*Wp[n+2] + Wp[n+3]
			Wp[n+1] = Wp[n]
			Wp[n+3] = Wp[n+2]
			Wp[n] = xin1
			Wp[n+2] = xin2
			xin1 = xout1
			xin2 = xout2
		}
		// The (1 + z^-1) and (1 - z^-1) factors.
		tail := 4 * N
		xout1 := xin1 + Wp[tail]
		xout2 := xin2 - Wp[tail+1]
		ak[j] = 0.5 * (xout1 + xout2)
		Wp[tail] = xin1
		Wp[tail+1] = xin2

		xin1 = 0.0
		xin2 = 0.0
	}
}

// checkLspOrder swaps any pair of LSPs that is out of order, nudging them
// apart by 0.1 rad, and restarts the scan. It returns the number of swaps.
func checkLspOrder(lsp []float64, order int) int {
	swaps := 0
	for i := 1; i < order; i++ {
		if lsp[i] < lsp[i-1] {
			swaps++
			tmp := lsp[i-1]
			lsp[i-1] = lsp[i] - 0.1
			lsp[i] = tmp + 0.1
			i = 0
		}
	}
	return swaps
}

// lspSep is the minimum separation in Hz between line i and line i-1.
func lspSep(i int) float64 {
	switch {
	case i < 4:
		return lspSepLowHz
	case i < 7:
		return lspSepMidHz
	}
	return lspSepHighHz
}

// bwExpandLsps forces a minimum separation between consecutive LSPs,
// growing with frequency, and keeps the top line below lspMaxHz. Applying
// it twice is the same as applying it once.
func bwExpandLsps(lsp []float64, order int) {
	for i := 1; i < order; i++ {
		if sep := lspSep(i) * hzToRad; lsp[i]-lsp[i-1] < sep {
			lsp[i] = lsp[i-1] + sep
		}
	}

	// Corrupt indexes can place lines above pi. Pin the top line and walk
	// down, pushing lines below it by the same separations.
	if top := lspMaxHz * hzToRad; lsp[order-1] > top {
		lsp[order-1] = top
		for i := order - 1; i > 0; i-- {
			if sep := lspSep(i) * hzToRad; lsp[i]-lsp[i-1] < sep {
				lsp[i-1] = lsp[i] - sep
			}
		}
	}
}
