package codec2

// Split VQ codebooks for the 1200 bit/s mode, in radians. Stage 1 is a
// 9 bit, 10 dimensional product codebook: each pair of lines takes one of
// a few joint positions. Stages 2 and 3 are 9 bit, 5 dimensional residual
// codebooks for the even and odd lines, with a non uniform grid per line.
// The positions and residual levels were fitted offline (k-means) to LPC
// analyses of formant shaped harmonic frames. The tables are built once at
// package initialisation and never modified.
var lspCbJvm = buildSplitVQCodebooks()

// Joint stage 1 positions of each line pair in Hz. Pairs 0..3 take 2 bits,
// the top pair 1 bit.
var vqPairsHz = [LpcOrder / 2][][2]float64{
	{{340, 440}, {470, 550}, {590, 675}, {685, 805}},
	{{850, 1440}, {915, 1100}, {1020, 1305}, {1040, 1580}},
	{{1435, 1755}, {1520, 2065}, {1755, 1900}, {1975, 2155}},
	{{2180, 2555}, {2385, 2580}, {2385, 2840}, {2595, 2840}},
	{{2955, 3350}, {3100, 3415}},
}

// Residual levels of each line in Hz. Lines 0..7 take 2 bits, lines 8 and
// 9 one bit.
var vqResidualHz = [LpcOrder][]float64{
	{-60, -25, 15, 55},
	{-55, -20, 15, 55},
	{-85, -25, 40, 120},
	{-105, -30, 30, 100},
	{-120, -40, 35, 115},
	{-95, -20, 50, 125},
	{-85, -20, 40, 95},
	{-90, -25, 45, 110},
	{-40, 40},
	{-60, 40},
}

const hzToRad = PI / 4000.0

// productDigit extracts factor d of a product codebook index n, where every
// factor before d has sizes[j] levels (a power of two).
func productDigit(n int, sizes []int, d int) int {
	shift := 0
	for j := 0; j < d; j++ {
		shift += log2Int(sizes[j])
	}
	return (n >> shift) & (sizes[d] - 1)
}

func log2Int(n int) int {
	b := 0
	for n > 1 {
		n >>= 1
		b++
	}
	return b
}

func buildSplitVQCodebooks() []Codebook {
	const m = 512
	half := LpcOrder / 2

	pairSizes := make([]int, half)
	for p := range vqPairsHz {
		pairSizes[p] = len(vqPairsHz[p])
	}
	stage1 := make([]float64, 0, m*LpcOrder)
	for n := 0; n < m; n++ {
		for p := 0; p < half; p++ {
			pos := vqPairsHz[p][productDigit(n, pairSizes, p)]
			stage1 = append(stage1, pos[0]*hzToRad, pos[1]*hzToRad)
		}
	}

	residual := func(parity int) []float64 {
		sizes := make([]int, half)
		for d := range sizes {
			sizes[d] = len(vqResidualHz[2*d+parity])
		}
		cb := make([]float64, 0, m*half)
		for n := 0; n < m; n++ {
			for d := 0; d < half; d++ {
				levels := vqResidualHz[2*d+parity]
				cb = append(cb, levels[productDigit(n, sizes, d)]*hzToRad)
			}
		}
		return cb
	}

	return []Codebook{
		{K: LpcOrder, Log2M: 9, M: m, CB: stage1},
		{K: half, Log2M: 9, M: m, CB: residual(0)},
		{K: half, Log2M: 9, M: m, CB: residual(1)},
	}
}
