package codec2

// State is the position of a session in its encode or decode cycle.
//
// Encoding walks Idle, Analysing (once per subframe), Quantising, Packed
// and back to Idle. Decoding walks Unpacked, Dequantising, Interpolating,
// Synthesising (once per subframe) and back to Idle.
type State int

// Session states.
const (
	StateIdle State = iota
	StateAnalysing
	StateQuantising
	StatePacked
	StateUnpacked
	StateDequantising
	StateInterpolating
	StateSynthesising
)

var stateNames = [...]string{
	StateIdle:          "idle",
	StateAnalysing:     "analysing",
	StateQuantising:    "quantising",
	StatePacked:        "packed",
	StateUnpacked:      "unpacked",
	StateDequantising:  "dequantising",
	StateInterpolating: "interpolating",
	StateSynthesising:  "synthesising",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}
