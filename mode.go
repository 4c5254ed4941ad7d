package codec2

import (
	"fmt"
	"strings"
)

// Mode selects one of the fixed bit rate configurations. The values are
// the mode bytes stored in .c2 file headers.
type Mode int

// Supported modes.
const (
	Mode3200 Mode = iota
	Mode2400
	Mode1600
	Mode1400
	Mode1300
	Mode1200
)

// woeScheme selects how one parameter update codes Wo and energy.
type woeScheme int

const (
	woeScalar woeScheme = iota // WoBits Wo + EBits energy
	woeDelta                   // WoDtBits change from the previous update + EBits energy
	woeJoint                   // WoEBits joint predictive VQ
)

func (s woeScheme) bits() int {
	switch s {
	case woeScalar:
		return WoBits + EBits
	case woeDelta:
		return WoDtBits + EBits
	default:
		return WoEBits
	}
}

// modeConfig is the frame layout of a mode. Every 10 ms subframe carries a
// voicing bit; the subframes listed in updates also carry Wo and energy,
// and the last subframe carries the LSPs. Voicing bits are packed as late
// as possible before the update that follows them.
type modeConfig struct {
	name      string
	bitrate   int
	subframes int
	updates   []int // subframe indexes carrying Wo and energy, ascending
	woe       []woeScheme
	lsp       lspQuantiser
	lpcOrder  int
	spare     int
}

var modes = map[Mode]*modeConfig{
	Mode3200: {
		name: "3200", bitrate: 3200, subframes: 2,
		updates: []int{1}, woe: []woeScheme{woeScalar},
		lsp: lspDiffScalar{}, lpcOrder: LpcOrder,
	},
	Mode2400: {
		name: "2400", bitrate: 2400, subframes: 2,
		updates: []int{1}, woe: []woeScheme{woeJoint},
		lsp: lspScalar{}, lpcOrder: LpcOrder, spare: 2,
	},
	Mode1600: {
		name: "1600", bitrate: 1600, subframes: 4,
		updates: []int{1, 3}, woe: []woeScheme{woeScalar, woeDelta},
		lsp: lspScalar{}, lpcOrder: LpcOrder, spare: 4,
	},
	Mode1400: {
		name: "1400", bitrate: 1400, subframes: 4,
		updates: []int{1, 3}, woe: []woeScheme{woeJoint, woeJoint},
		lsp: lspScalar{}, lpcOrder: LpcOrder,
	},
	Mode1300: {
		name: "1300", bitrate: 1300, subframes: 4,
		updates: []int{3}, woe: []woeScheme{woeScalar},
		lsp: lspScalar{}, lpcOrder: LpcOrder,
	},
	Mode1200: {
		name: "1200", bitrate: 1200, subframes: 4,
		updates: []int{1, 3}, woe: []woeScheme{woeJoint, woeJoint},
		lsp: lspSplitVQ{}, lpcOrder: LpcOrder, spare: 1,
	},
}

// totalBits is the packed frame width.
func (m *modeConfig) totalBits() int {
	n := m.subframes + m.spare + sumBits(m.lsp.bits())
	for _, s := range m.woe {
		n += s.bits()
	}
	return n
}

// validate checks the layout once, when a session is created.
func (m *modeConfig) validate() error {
	if m.lpcOrder != m.lsp.order() || m.lpcOrder%2 != 0 || m.lpcOrder > LpcMax {
		return fmt.Errorf("%w: mode %s order %d, %s quantiser codes %d",
			ErrInvalidLPCOrder, m.name, m.lpcOrder, m.lsp.name(), m.lsp.order())
	}
	if len(m.updates) == 0 || len(m.updates) != len(m.woe) ||
		m.updates[len(m.updates)-1] != m.subframes-1 {
		return fmt.Errorf("%w: mode %s has a malformed update list", ErrInvalidMode, m.name)
	}
	if m.woe[0] == woeDelta {
		return fmt.Errorf("%w: mode %s starts with a differential Wo", ErrInvalidMode, m.name)
	}
	// subframes*10 ms at bitrate bit/s.
	if want := m.bitrate * m.subframes / 100; m.totalBits() != want {
		return fmt.Errorf("%w: mode %s packs %d bits, want %d",
			ErrInvalidMode, m.name, m.totalBits(), want)
	}
	return nil
}

// isUpdate reports which update, if any, subframe i carries.
func (m *modeConfig) isUpdate(i int) (int, bool) {
	for u, s := range m.updates {
		if s == i {
			return u, true
		}
	}
	return 0, false
}

func (m Mode) config() (*modeConfig, error) {
	cfg, ok := modes[m]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(m))
	}
	return cfg, nil
}

// String returns the nominal bit rate, e.g. "3200".
func (m Mode) String() string {
	if cfg, ok := modes[m]; ok {
		return cfg.name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Bitrate returns the nominal bit rate in bit/s, or 0 for an unknown mode.
func (m Mode) Bitrate() int {
	if cfg, ok := modes[m]; ok {
		return cfg.bitrate
	}
	return 0
}

// ParseMode accepts a bit rate such as "1200", optionally prefixed with
// "mode" or "MODE_".
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "mode")
	name = strings.TrimPrefix(name, "_")
	for m, cfg := range modes {
		if cfg.name == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Modes lists the supported modes from highest to lowest bit rate.
func Modes() []Mode {
	return []Mode{Mode3200, Mode2400, Mode1600, Mode1400, Mode1300, Mode1200}
}
