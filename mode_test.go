package codec2

import (
	"errors"
	"testing"
)

func TestModeLayouts(t *testing.T) {
	tests := []struct {
		mode    Mode
		bits    int
		bytes   int
		samples int
	}{
		{Mode3200, 64, 8, 160},
		{Mode2400, 48, 6, 160},
		{Mode1600, 64, 8, 320},
		{Mode1400, 56, 7, 320},
		{Mode1300, 52, 7, 320},
		{Mode1200, 48, 6, 320},
	}
	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			cfg, err := tc.mode.config()
			if err != nil {
				t.Fatal(err)
			}
			if err := cfg.validate(); err != nil {
				t.Fatalf("validate: %v", err)
			}
			c, err := New(tc.mode)
			if err != nil {
				t.Fatal(err)
			}
			defer c.Close()
			if got := c.BitsPerFrame(); got != tc.bits {
				t.Errorf("BitsPerFrame = %d, want %d", got, tc.bits)
			}
			if got := c.BytesPerFrame(); got != tc.bytes {
				t.Errorf("BytesPerFrame = %d, want %d", got, tc.bytes)
			}
			if got := c.SamplesPerFrame(); got != tc.samples {
				t.Errorf("SamplesPerFrame = %d, want %d", got, tc.samples)
			}
		})
	}
}

func TestModeValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  modeConfig
		want error
	}{
		{
			name: "order mismatch",
			cfg: modeConfig{name: "x", bitrate: 3200, subframes: 2, updates: []int{1},
				woe: []woeScheme{woeScalar}, lsp: lspDiffScalar{}, lpcOrder: 8},
			want: ErrInvalidLPCOrder,
		},
		{
			name: "bit count",
			cfg: modeConfig{name: "x", bitrate: 2400, subframes: 2, updates: []int{1},
				woe: []woeScheme{woeScalar}, lsp: lspDiffScalar{}, lpcOrder: LpcOrder},
			want: ErrInvalidMode,
		},
		{
			name: "leading delta",
			cfg: modeConfig{name: "x", bitrate: 1600, subframes: 4, updates: []int{1, 3},
				woe: []woeScheme{woeDelta, woeScalar}, lsp: lspScalar{}, lpcOrder: LpcOrder, spare: 4},
			want: ErrInvalidMode,
		},
		{
			name: "last subframe without update",
			cfg: modeConfig{name: "x", bitrate: 3200, subframes: 2, updates: []int{0},
				woe: []woeScheme{woeScalar}, lsp: lspDiffScalar{}, lpcOrder: LpcOrder},
			want: ErrInvalidMode,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.validate(); !errors.Is(err, tc.want) {
				t.Fatalf("validate = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"3200", Mode3200},
		{"2400", Mode2400},
		{"1600", Mode1600},
		{"1400", Mode1400},
		{" 1300 ", Mode1300},
		{"1200", Mode1200},
		{"mode1200", Mode1200},
		{"MODE_3200", Mode3200},
	}
	for _, tc := range tests {
		got, err := ParseMode(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}

	for _, in := range []string{"", "700", "3200x", "mode"} {
		if _, err := ParseMode(in); !errors.Is(err, ErrInvalidMode) {
			t.Errorf("ParseMode(%q) error = %v, want ErrInvalidMode", in, err)
		}
	}
}

func TestModeNames(t *testing.T) {
	for _, m := range Modes() {
		back, err := ParseMode(m.String())
		if err != nil || back != m {
			t.Errorf("mode %d: String %q parses back as %v, %v", int(m), m.String(), back, err)
		}
		if m.Bitrate() <= 0 {
			t.Errorf("mode %v: bitrate %d", m, m.Bitrate())
		}
	}
	if got := Mode(42).String(); got != "Mode(42)" {
		t.Errorf("unknown mode String = %q", got)
	}
	if got := Mode(42).Bitrate(); got != 0 {
		t.Errorf("unknown mode Bitrate = %d", got)
	}
	if _, err := New(Mode(42)); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("New(42) error = %v, want ErrInvalidMode", err)
	}
}
