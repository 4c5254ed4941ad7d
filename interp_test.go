package codec2

import (
	"math"
	"testing"
)

func TestInterpWo2(t *testing.T) {
	c2const := newC2Const()
	wo := func(hz float64) float64 { return TWO_PI * hz / SampleRate }

	tests := []struct {
		name       string
		prevV      bool
		interpV    bool
		nextV      bool
		weight     float64
		wantHz     float64
		wantVoiced bool
	}{
		{"both voiced", true, true, true, 0.5, 150, true},
		{"both voiced weighted", true, true, true, 0.25, 125, true},
		{"onset", false, true, true, 0.5, 200, true},
		{"offset", true, true, false, 0.5, 100, true},
		{"isolated voiced", false, true, false, 0.5, 0, false},
		{"unvoiced", true, false, true, 0.5, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var prev, next, interp Model
			prev.setWo(wo(100))
			prev.Voiced = tc.prevV
			next.setWo(wo(200))
			next.Voiced = tc.nextV
			interp.Voiced = tc.interpV

			interpWo2(&interp, &prev, &next, tc.weight, c2const.WoMin)
			if interp.Voiced != tc.wantVoiced {
				t.Fatalf("voiced = %v, want %v", interp.Voiced, tc.wantVoiced)
			}
			want := c2const.WoMin
			if tc.wantHz > 0 {
				want = wo(tc.wantHz)
			}
			if math.Abs(interp.Wo-want) > 1e-12 {
				t.Fatalf("Wo = %v, want %v", interp.Wo, want)
			}
			if interp.L != int(math.Floor(PI/interp.Wo)) {
				t.Fatalf("L = %d not derived from Wo %v", interp.L, interp.Wo)
			}
		})
	}
}

func TestInterpEnergy2(t *testing.T) {
	if got := interpEnergy2(1, 100, 0.5); math.Abs(got-10) > 1e-9 {
		t.Errorf("midpoint of 1 and 100 = %v, want 10", got)
	}
	if got := interpEnergy2(4, 9, 0); math.Abs(got-4) > 1e-12 {
		t.Errorf("weight 0 = %v, want 4", got)
	}
	if got := interpEnergy2(4, 9, 1); math.Abs(got-9) > 1e-12 {
		t.Errorf("weight 1 = %v, want 9", got)
	}
}

func TestInterpolateLsp(t *testing.T) {
	prev := []float64{0.1, 0.2, 0.3}
	next := []float64{0.3, 0.6, 0.9}
	got := make([]float64, 3)
	interpolateLsp(got, prev, next, 0.25)
	want := []float64{0.15, 0.3, 0.45}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
