package codec2

import (
	"math"
	"testing"
)

func TestWoScalarRoundTrip(t *testing.T) {
	c2const := newC2Const()
	step := (c2const.WoMax - c2const.WoMin) / WoLevels
	for wo := c2const.WoMin; wo <= c2const.WoMax; wo += step / 3 {
		idx := encodeWo(&c2const, wo, WoBits)
		if idx < 0 || idx >= WoLevels {
			t.Fatalf("Wo %v: index %d out of range", wo, idx)
		}
		got := decodeWo(&c2const, idx, WoBits)
		if math.Abs(got-wo) > step+1e-12 {
			t.Fatalf("Wo %v decoded as %v, step %v", wo, got, step)
		}
		if again := encodeWo(&c2const, wo, WoBits); again != idx {
			t.Fatalf("Wo %v: index %d then %d", wo, idx, again)
		}
	}

	if got := decodeWo(&c2const, -3, WoBits); got != c2const.WoMin {
		t.Errorf("decodeWo(-3) = %v, want WoMin", got)
	}
	if got := decodeWo(&c2const, 1000, WoBits); got > c2const.WoMax {
		t.Errorf("decodeWo(1000) = %v above WoMax", got)
	}
}

func TestWoDeltaRoundTrip(t *testing.T) {
	c2const := newC2Const()
	step := (c2const.WoMax - c2const.WoMin) / WoLevels
	prev := decodeWo(&c2const, 40, WoBits)

	for d := -4; d <= 3; d++ {
		wo := prev + float64(d)*step
		idx := encodeWoDt(&c2const, wo, prev)
		if idx < 0 || idx >= 1<<WoDtBits {
			t.Fatalf("delta %d: index %d out of range", d, idx)
		}
		if got := decodeWoDt(&c2const, idx, prev); math.Abs(got-wo) > 1e-9 {
			t.Errorf("delta %d: decoded %v, want %v", d, got, wo)
		}
	}

	// Larger changes saturate.
	up := decodeWoDt(&c2const, encodeWoDt(&c2const, prev+20*step, prev), prev)
	if math.Abs(up-(prev+3*step)) > 1e-9 {
		t.Errorf("large rise decoded as %v, want %v", up, prev+3*step)
	}
	down := decodeWoDt(&c2const, encodeWoDt(&c2const, prev-20*step, prev), prev)
	if math.Abs(down-(prev-4*step)) > 1e-9 {
		t.Errorf("large fall decoded as %v, want %v", down, prev-4*step)
	}

	if got := decodeWoDt(&c2const, 4, c2const.WoMin); got != c2const.WoMin {
		t.Errorf("fall below WoMin decoded as %v", got)
	}
}

func TestEnergyRoundTrip(t *testing.T) {
	step := (EMaxDB - EMinDB) / ELevels
	for db := EMinDB; db <= EMaxDB-step; db += 0.25 {
		idx := encodeEnergy(math.Pow(10, db/10), EBits)
		if idx < 0 || idx >= ELevels {
			t.Fatalf("%v dB: index %d out of range", db, idx)
		}
		got := 10 * math.Log10(decodeEnergy(idx, EBits))
		if math.Abs(got-db) > step/2+1e-9 {
			t.Fatalf("%v dB decoded as %v dB", db, got)
		}
	}

	for _, e := range []float64{0, -1} {
		if idx := encodeEnergy(e, EBits); idx != 0 {
			t.Errorf("encodeEnergy(%v) = %d, want 0", e, idx)
		}
	}
	if idx := encodeEnergy(1e12, EBits); idx != ELevels-1 {
		t.Errorf("encodeEnergy(1e12) = %d, want %d", idx, ELevels-1)
	}
}

func TestWoEDecodeRange(t *testing.T) {
	c2const := newC2Const()
	eMin := math.Pow(10, EMinDB/10)
	eMax := math.Pow(10, eMaxWoEDB/10)

	var chained [2]float64
	for idx := -1; idx <= 1<<WoEBits; idx++ {
		var fresh [2]float64
		for _, xq := range []*[2]float64{&fresh, &chained} {
			wo, e := decodeWoE(&c2const, idx, xq)
			if wo < c2const.WoMin || wo > c2const.WoMax {
				t.Fatalf("index %d: Wo %v out of range", idx, wo)
			}
			if e < eMin*(1-1e-12) || e > eMax*(1+1e-12) {
				t.Fatalf("index %d: energy %v out of range", idx, e)
			}
		}
	}
}

func TestWoEConverges(t *testing.T) {
	c2const := newC2Const()
	tests := []struct {
		f0, db float64
	}{
		{200, 30},
		{100, 10},
		{300, 45},
		{150, -5},
	}
	for _, tc := range tests {
		var model Model
		model.setWo(TWO_PI * tc.f0 / SampleRate)
		e := math.Pow(10, tc.db/10)

		var xqEnc, xqDec [2]float64
		var wo, eq float64
		for k := 0; k < 20; k++ {
			idx := encodeWoE(&model, e, &xqEnc)
			if idx < 0 || idx >= 1<<WoEBits {
				t.Fatalf("index %d out of range", idx)
			}
			wo, eq = decodeWoE(&c2const, idx, &xqDec)
			if xqEnc != xqDec {
				t.Fatalf("frame %d: predictor states diverged %v %v", k, xqEnc, xqDec)
			}
		}
		if rel := math.Abs(wo-model.Wo) / model.Wo; rel > 0.05 {
			t.Errorf("%v Hz: decoded Wo off by %.1f%%", tc.f0, 100*rel)
		}
		if d := math.Abs(10*math.Log10(eq) - tc.db); d > 3 {
			t.Errorf("%v dB: decoded energy off by %.2f dB", tc.db, d)
		}
	}
}

func TestLspQuantisers(t *testing.T) {
	tests := []struct {
		q     lspQuantiser
		bits  int
		maxHz float64
	}{
		{lspScalar{}, 36, 100.001},
		{lspDiffScalar{}, 50, 1e-6},
		{lspSplitVQ{}, 27, 60},
	}
	for _, tc := range tests {
		t.Run(tc.q.name(), func(t *testing.T) {
			if got := sumBits(tc.q.bits()); got != tc.bits {
				t.Fatalf("%d bits, want %d", got, tc.bits)
			}
			if tc.q.order() != LpcOrder {
				t.Fatalf("order %d, want %d", tc.q.order(), LpcOrder)
			}

			lsp := testLsps()
			idx, se := tc.q.encode(lsp)
			widths := tc.q.bits()
			if len(idx) != len(widths) {
				t.Fatalf("%d indexes for %d fields", len(idx), len(widths))
			}
			for i := range idx {
				if idx[i] < 0 || idx[i] >= 1<<widths[i] {
					t.Fatalf("index %d = %d does not fit %d bits", i, idx[i], widths[i])
				}
			}
			again, _ := tc.q.encode(lsp)
			for i := range idx {
				if again[i] != idx[i] {
					t.Fatalf("encode not deterministic at %d", i)
				}
			}

			got := make([]float64, LpcOrder)
			tc.q.decode(idx, got)
			want := 0.0
			for i := range got {
				d := radToHz(got[i]) - testLspsHz[i]
				if math.Abs(d) > tc.maxHz {
					t.Errorf("line %d decoded %.1f Hz, want %.0f +/- %.0f", i, radToHz(got[i]), testLspsHz[i], tc.maxHz)
				}
				want += d * d
			}
			if math.Abs(se-want) > 1e-6*(1+want) {
				t.Errorf("squared error %v, decoded vector gives %v", se, want)
			}

			// Corrupt indexes are clamped, never out of bounds.
			bad := make([]int, len(idx))
			for i := range bad {
				bad[i] = 1 << 20
			}
			tc.q.decode(bad, got)
			for i := range bad {
				bad[i] = -1
			}
			tc.q.decode(bad, got)
		})
	}
}

func TestLspQuantiserRMSError(t *testing.T) {
	lsps := formantLsps(t, 3, 200)
	tests := []struct {
		q      lspQuantiser
		maxRMS float64 // Hz
	}{
		{lspScalar{}, 60},
		{lspDiffScalar{}, 25},
		{lspSplitVQ{}, 45},
	}
	out := make([]float64, LpcOrder)
	for _, tc := range tests {
		t.Run(tc.q.name(), func(t *testing.T) {
			se := 0.0
			for _, lsp := range lsps {
				idx, _ := tc.q.encode(lsp)
				tc.q.decode(idx, out)
				checkLspOrder(out, LpcOrder)
				bwExpandLsps(out, LpcOrder)
				for i := range lsp {
					d := radToHz(out[i] - lsp[i])
					se += d * d
				}
			}
			rms := math.Sqrt(se / float64(len(lsps)*LpcOrder))
			t.Logf("%d vectors, rms %.1f Hz", len(lsps), rms)
			if rms > tc.maxRMS {
				t.Fatalf("rms error %.1f Hz, want <= %.0f", rms, tc.maxRMS)
			}
		})
	}
}

func TestCorruptDiffLspsStayBelowPi(t *testing.T) {
	idx := make([]int, LpcOrder)
	for i := range idx {
		idx[i] = 31
	}
	lsp := make([]float64, LpcOrder)
	lspDiffScalar{}.decode(idx, lsp)
	if lsp[LpcOrder-1] <= PI {
		t.Fatalf("top line %v, expected the raw decode to overflow", lsp[LpcOrder-1])
	}

	checkLspOrder(lsp, LpcOrder)
	bwExpandLsps(lsp, LpcOrder)
	if got := radToHz(lsp[LpcOrder-1]); got > lspMaxHz+1e-9 {
		t.Fatalf("top line %.1f Hz above %.0f", got, lspMaxHz)
	}
	for i := 1; i < LpcOrder; i++ {
		if got := radToHz(lsp[i] - lsp[i-1]); got < lspSep(i)-1e-9 {
			t.Fatalf("separation %d = %.3f Hz, want >= %.1f", i, got, lspSep(i))
		}
	}
	if lsp[0] <= 0 {
		t.Fatalf("bottom line %v not above 0", lsp[0])
	}
}

func TestComputeWeightsFavoursCloseLines(t *testing.T) {
	x := []float64{0.2, 0.25, 0.8, 1.4}
	w := make([]float64, len(x))
	computeWeights(x, w)
	if w[0] <= w[2] || w[1] <= w[3] {
		t.Fatalf("weights %v do not favour the close pair", w)
	}
}
