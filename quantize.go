package codec2

import (
	"math"
)

// Quantiser field widths and ranges.
const (
	WoBits    = 7
	WoLevels  = 1 << WoBits
	WoDtBits  = 3
	EBits     = 5
	ELevels   = 1 << EBits
	EMinDB    = -10.0
	EMaxDB    = 40.0
	WoEBits   = 8
	eMaxWoEDB = 60.0 // decoded joint Wo/E energies are limited to [EMinDB, eMaxWoEDB]
)

// quantise returns the index of the codebook vector nearest to vec under
// the weights w, and adds the squared error of the winner to se.
func quantise(cb []float64, vec []float64, w []float64, k int, m int, se *float64) int {
	bestIndex := 0
	bestErr := 1.0e32
	for j := 0; j < m; j++ {
		e := 0.0
		for i := 0; i < k; i++ {
			diff := (cb[j*k+i] - vec[i]) * w[i]
			e += diff * diff
		}
		if e < bestErr {
			bestErr = e
			bestIndex = j
		}
	}
	*se += bestErr
	return bestIndex
}

// findNearest is the unweighted nearest neighbour search.
func findNearest(cb *Codebook, x []float64) int {
	best := 0
	minDist := 1e15
	for i := 0; i < cb.M; i++ {
		dist := 0.0
		for j, v := range cb.entry(i) {
			d := x[j] - v
			dist += d * d
		}
		if dist < minDist {
			minDist = dist
			best = i
		}
	}
	return best
}

// findNearestWeighted minimises sum w[j]*(x[j]-cb[j])^2.
func findNearestWeighted(cb *Codebook, x []float64, w []float64) int {
	best := 0
	minDist := 1e15
	for i := 0; i < cb.M; i++ {
		dist := 0.0
		for j, v := range cb.entry(i) {
			d := x[j] - v
			dist += w[j] * d * d
		}
		if dist < minDist {
			minDist = dist
			best = i
		}
	}
	return best
}

// -----------------------------------------------------------------------------
// Wo and energy
// -----------------------------------------------------------------------------

func clampIndex(index, levels int) int {
	if index < 0 {
		return 0
	}
	if index > levels-1 {
		return levels - 1
	}
	return index
}

// encodeWo uniformly quantises Wo between WoMin and WoMax.
func encodeWo(c2const *C2Const, wo float64, bits int) int {
	levels := 1 << bits
	norm := (wo - c2const.WoMin) / (c2const.WoMax - c2const.WoMin)
	return clampIndex(int(math.Floor(float64(levels)*norm+0.5)), levels)
}

func decodeWo(c2const *C2Const, index int, bits int) float64 {
	levels := 1 << bits
	step := (c2const.WoMax - c2const.WoMin) / float64(levels)
	return c2const.clampWo(c2const.WoMin + step*float64(clampIndex(index, levels)))
}

// encodeWoDt quantises the change in Wo since prevWo as a WoDtBits two's
// complement field, in steps of the WoLevels scalar quantiser.
func encodeWoDt(c2const *C2Const, wo, prevWo float64) int {
	norm := (wo - prevWo) / (c2const.WoMax - c2const.WoMin)
	index := int(math.Floor(WoLevels*norm + 0.5))
	maxIndex := (1 << (WoDtBits - 1)) - 1
	minIndex := -(maxIndex + 1)
	if index > maxIndex {
		index = maxIndex
	}
	if index < minIndex {
		index = minIndex
	}
	return index & ((1 << WoDtBits) - 1)
}

func decodeWoDt(c2const *C2Const, index int, prevWo float64) float64 {
	index &= (1 << WoDtBits) - 1
	// Sign extend.
	if index&(1<<(WoDtBits-1)) != 0 {
		index |= ^((1 << WoDtBits) - 1)
	}
	step := (c2const.WoMax - c2const.WoMin) / WoLevels
	return c2const.clampWo(prevWo + step*float64(index))
}

// encodeEnergy quantises e in dB, uniformly over [EMinDB, EMaxDB].
func encodeEnergy(e float64, bits int) int {
	levels := 1 << bits
	// A silent frame has zero LPC energy.
	if e <= 0 {
		return 0
	}
	eDB := 10.0 * math.Log10(e)
	norm := (eDB - EMinDB) / (EMaxDB - EMinDB)
	return clampIndex(int(math.Floor(float64(levels)*norm+0.5)), levels)
}

func decodeEnergy(index int, bits int) float64 {
	levels := 1 << bits
	step := (EMaxDB - EMinDB) / float64(levels)
	eDB := EMinDB + step*float64(clampIndex(index, levels))
	return math.Pow(10.0, eDB/10.0)
}

// geCoeff are the predictor coefficients of the joint Wo/E quantiser.
var geCoeff = [2]float64{0.8, 0.9}

// encodeWoE jointly quantises log2 Wo and energy in dB with a first order
// predictive VQ. xq is the predictor state, updated in place; encoder and
// decoder keep identical copies.
func encodeWoE(model *Model, e float64, xq *[2]float64) int {
	if e < 0.0 {
		e = 0.0
	}
	var x, w, err [2]float64
	x[0] = math.Log2((model.Wo / PI) * 4000.0 / 50.0)
	x[1] = 10.0 * math.Log10(1e-4+e)

	computeWeights2(x[:], xq[:], w[:])
	for i := range err {
		err[i] = x[i] - geCoeff[i]*xq[i]
	}
	n1 := findNearestWeighted(&geCb, err[:], w[:])

	for i, v := range geCb.entry(n1) {
		xq[i] = geCoeff[i]*xq[i] + v
	}
	return n1
}

// decodeWoE inverts encodeWoE. Wo is clamped to the pitch range and the
// energy to [EMinDB, eMaxWoEDB] so a corrupted index stays harmless.
func decodeWoE(c2const *C2Const, index int, xq *[2]float64) (wo float64, e float64) {
	index = geCb.clampIndex(index)
	for i, v := range geCb.entry(index) {
		xq[i] = geCoeff[i]*xq[i] + v
	}
	wo = c2const.clampWo(math.Pow(2.0, xq[0]) * (PI * 50.0) / 4000.0)

	eDB := xq[1]
	if eDB < EMinDB {
		eDB = EMinDB
	} else if eDB > eMaxWoEDB {
		eDB = eMaxWoEDB
	}
	return wo, math.Pow(10.0, eDB/10.0)
}

// computeWeights2 derives the squared error weights of the joint Wo/E
// search from the target x and the predictor state xp.
func computeWeights2(x, xp, w []float64) {
	w[0] = 30.0
	w[1] = 1.0
	if x[1] < 0 {
		w[0] *= 0.6
		w[1] *= 0.3
	}
	if x[1] < -10 {
		w[0] *= 0.3
		w[1] *= 0.3
	}
	// Higher weight when pitch is stable.
	if math.Abs(x[0]-xp[0]) < 0.2 {
		w[0] *= 2.0
		w[1] *= 1.5
	} else if math.Abs(x[0]-xp[0]) > 0.5 {
		w[0] *= 0.5
	}
	// Lower weight for low energy, relative to the last frame.
	if x[1] < xp[1]-10 {
		w[1] *= 0.5
	}
	if x[1] < xp[1]-20 {
		w[1] *= 0.5
	}
	w[0] = w[0] * w[0]
	w[1] = w[1] * w[1]
}

// -----------------------------------------------------------------------------
// LSP quantisers
// -----------------------------------------------------------------------------

// lspQuantiser is one LSP coding scheme. Indices are returned and consumed
// in packing order, with widths given by bits. encode also returns the
// squared quantisation error of the vector in Hz^2.
type lspQuantiser interface {
	name() string
	order() int
	bits() []int
	encode(lsp []float64) (indexes []int, se float64)
	decode(indexes []int, lsp []float64)
}

func codebookBits(cbs []Codebook) []int {
	b := make([]int, len(cbs))
	for i := range cbs {
		b[i] = cbs[i].Log2M
	}
	return b
}

func radToHz(rad float64) float64 { return rad / hzToRad }

// lspScalar quantises each line in Hz against its own scalar codebook.
type lspScalar struct{}

func (lspScalar) name() string { return "scalar" }
func (lspScalar) order() int { return len(lspCb) }
func (lspScalar) bits() []int { return codebookBits(lspCb) }

func (lspScalar) encode(lsp []float64) ([]int, float64) {
	se := 0.0
	wt := []float64{1.0}
	indexes := make([]int, len(lspCb))
	for i := range lspCb {
		hz := []float64{radToHz(lsp[i])}
		indexes[i] = quantise(lspCb[i].CB, hz, wt, lspCb[i].K, lspCb[i].M, &se)
	}
	return indexes, se
}

func (lspScalar) decode(indexes []int, lsp []float64) {
	for i := range lspCb {
		idx := lspCb[i].clampIndex(indexes[i])
		lsp[i] = lspCb[i].entry(idx)[0] * hzToRad
	}
}

// lspDiffScalar quantises the first line in Hz, then the distance of each
// line from the previous quantised line. Tracking the quantised rather
// than the true previous line stops errors accumulating.
type lspDiffScalar struct{}

func (lspDiffScalar) name() string { return "diff-scalar" }
func (lspDiffScalar) order() int { return len(lspCbd) }
func (lspDiffScalar) bits() []int { return codebookBits(lspCbd) }

// The error of each difference is the error of the line itself, since
// the reference is the quantised previous line.
func (lspDiffScalar) encode(lsp []float64) ([]int, float64) {
	se := 0.0
	wt := []float64{1.0}
	indexes := make([]int, len(lspCbd))
	prevQ := 0.0
	for i := range lspCbd {
		d := radToHz(lsp[i]) - prevQ
		cb := &lspCbd[i]
		indexes[i] = quantise(cb.CB, []float64{d}, wt, cb.K, cb.M, &se)
		prevQ += cb.entry(indexes[i])[0]
	}
	return indexes, se
}

// Corrupt indexes can sum past 4 kHz; bwExpandLsps pulls the top back.
func (lspDiffScalar) decode(indexes []int, lsp []float64) {
	hz := 0.0
	for i := range lspCbd {
		idx := lspCbd[i].clampIndex(indexes[i])
		hz += lspCbd[i].entry(idx)[0]
		lsp[i] = hz * hzToRad
	}
}

// lspSplitVQ is a three stage VQ: a full vector first stage, then the even
// and odd lines of the residual quantised separately, each weighted by the
// inverse of the local line spacing.
type lspSplitVQ struct{}

func (lspSplitVQ) name() string { return "split-vq" }
func (lspSplitVQ) order() int { return lspCbJvm[0].K }
func (lspSplitVQ) bits() []int { return codebookBits(lspCbJvm) }

// computeWeights favours closely spaced lines, which mark formants.
func computeWeights(x []float64, w []float64) {
	n := len(x)
	w[0] = math.Min(x[0], x[1]-x[0])
	for i := 1; i < n-1; i++ {
		w[i] = math.Min(x[i]-x[i-1], x[i+1]-x[i])
	}
	w[n-1] = math.Min(x[n-1]-x[n-2], PI-x[n-1])
	for i := range w {
		w[i] = 1.0 / (0.01 + w[i])
	}
}

func (v lspSplitVQ) encode(lsp []float64) ([]int, float64) {
	order := len(lsp)
	half := order / 2
	w := make([]float64, order)
	computeWeights(lsp, w)

	n1 := findNearest(&lspCbJvm[0], lsp)
	q := lspCbJvm[0].entry(n1)

	err2 := make([]float64, half)
	err3 := make([]float64, half)
	w2 := make([]float64, half)
	w3 := make([]float64, half)
	for i := 0; i < half; i++ {
		err2[i] = lsp[2*i] - q[2*i]
		err3[i] = lsp[2*i+1] - q[2*i+1]
		w2[i] = w[2*i]
		w3[i] = w[2*i+1]
	}
	n2 := findNearestWeighted(&lspCbJvm[1], err2, w2)
	n3 := findNearestWeighted(&lspCbJvm[2], err3, w3)
	indexes := []int{n1, n2, n3}

	// The stages search in radians with different weights, so the error
	// is measured on the reconstruction.
	rec := make([]float64, order)
	v.decode(indexes, rec)
	se := 0.0
	for i := range rec {
		d := radToHz(rec[i] - lsp[i])
		se += d * d
	}
	return indexes, se
}

func (lspSplitVQ) decode(indexes []int, lsp []float64) {
	n1 := lspCbJvm[0].clampIndex(indexes[0])
	n2 := lspCbJvm[1].clampIndex(indexes[1])
	n3 := lspCbJvm[2].clampIndex(indexes[2])
	copy(lsp, lspCbJvm[0].entry(n1))
	even := lspCbJvm[1].entry(n2)
	odd := lspCbJvm[2].entry(n3)
	for i := range even {
		lsp[2*i] += even[i]
		lsp[2*i+1] += odd[i]
	}
}

// sumBits totals a list of field widths.
func sumBits(b []int) int {
	n := 0
	for _, v := range b {
		n += v
	}
	return n
}
