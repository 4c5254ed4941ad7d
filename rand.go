package codec2

// RandMax is the largest value returned by lcg.next.
const RandMax = 32767

// lcg is the linear congruential generator used for unvoiced and noise
// phases. Each session owns one, so output depends only on the seed and
// the input, never on other sessions.
type lcg struct {
	state uint64
}

func newLCG(seed uint64) *lcg {
	return &lcg{state: seed}
}

// next returns a value in [0, RandMax].
func (r *lcg) next() int {
	r.state = r.state*1103515245 + 12345
	return int((r.state / 65536) % 32768)
}

// phase returns a phase in [0, 2pi].
func (r *lcg) phase() float64 {
	return TWO_PI * float64(r.next()) / RandMax
}
