package codec2

import "math"

// Basic constants.
const (
	PI     = math.Pi
	TWO_PI = 2.0 * math.Pi
)

// FFT and NLP related constants.
const (
	FFTSize     = 512  // DFT size for analysis and synthesis
	PE_FFT_SIZE = 512  // DFT size for pitch estimation
	DEC         = 5    // Decimation factor
	CNLP        = 0.3  // Post processor constant
	V_THRESH    = 6.0  // Voicing threshold in dB
	NLP_NTAP    = 48   // Decimation FIR filter order
	COEFF       = 0.95 // Notch filter parameter
	MaxAmp      = 80   // Maximum number of harmonics at 8 kHz
)

// nlpFir: 48-tap 600Hz low-pass FIR filter coefficients.
var nlpFir = [NLP_NTAP]float64{
	-1.0818124e-03, -1.1008344e-03, -9.2768838e-04, -4.2289438e-04,
	5.5034190e-04, 2.0029849e-03, 3.7058509e-03, 5.1449415e-03,
	5.5924666e-03, 4.3036754e-03, 8.0284511e-04, -4.8204610e-03,
	-1.1705810e-02, -1.8199275e-02, -2.2065282e-02, -2.0920610e-02,
	-1.2808831e-02, 3.2204775e-03, 2.6683811e-02, 5.5520624e-02,
	8.6305944e-02, 1.1480192e-01, 1.3674206e-01, 1.4867556e-01,
	1.4867556e-01, 1.3674206e-01, 1.1480192e-01, 8.6305944e-02,
	5.5520624e-02, 2.6683811e-02, 3.2204775e-03, -1.2808831e-02,
	-2.0920610e-02, -2.2065282e-02, -1.8199275e-02, -1.1705810e-02,
	-4.8204610e-03, 8.0284511e-04, 4.3036754e-03, 5.5924666e-03,
	5.1449415e-03, 3.7058509e-03, 2.0029849e-03, 5.5034190e-04,
	-4.2289438e-04, -9.2768838e-04, -1.1008344e-03, -1.0818124e-03,
}

// Frame timing constants.
const (
	MPitchS         = 0.0400 // pitch analysis window in s
	PMinS           = 0.0025 // minimum pitch period in s
	PMaxS           = 0.0200 // maximum pitch period in s
	TWS             = 0.0050 // trapezoidal synthesis window in s
	FrameLengthSecs = 0.01   // internal proc frame length in secs
	SampleRate      = 8000

	// LpcOrder is the order of every LPC/LSP vector in the codec.
	LpcOrder = 10
	// LpcMax bounds the LPC order accepted by the LPC and LSP routines.
	LpcMax = 20
)

// COMP represents a complex number.
type COMP struct {
	Real float64
	Imag float64
}

func (c COMP) mag2() float64 {
	return c.Real*c.Real + c.Imag*c.Imag
}

// Model holds the sinusoidal model parameters of one 10 ms frame. A and
// Phi are indexed 1..L; index 0 is unused.
type Model struct {
	Wo     float64             // Fundamental frequency estimate in radians/sample.
	L      int                 // Number of harmonics, always floor(pi/Wo).
	A      [MaxAmp + 1]float64 // Harmonic amplitudes.
	Phi    [MaxAmp + 1]float64 // Harmonic phases.
	Voiced bool                // Voiced flag.
}

// setWo updates the fundamental and derives L from it. A Wo that yields
// L outside [1, MaxAmp] is a programming error: every caller clamps Wo
// to the pitch range first.
func (m *Model) setWo(wo float64) {
	l := int(math.Floor(PI / wo))
	if l < 1 || l > MaxAmp {
		panic("codec2: harmonic count out of range")
	}
	m.Wo = wo
	m.L = l
}

// C2Const holds constants calculated at run time.
type C2Const struct {
	Fs     int     // Sample rate.
	NSamp  int     // Number of samples per 10ms frame.
	MaxAmp int     // Maximum number of harmonics.
	MPitch int     // Pitch estimation window size in samples.
	PMin   int     // Minimum pitch period in samples.
	PMax   int     // Maximum pitch period in samples.
	WoMin  float64 // Minimum fundamental frequency in radians.
	WoMax  float64 // Maximum fundamental frequency in radians.
	Nw     int     // Analysis window size in samples.
	Tw     int     // Trapezoidal synthesis window overlap.
}

func newC2Const() C2Const {
	fs := float64(SampleRate)
	return C2Const{
		Fs:     SampleRate,
		NSamp:  int(math.Round(fs * FrameLengthSecs)),
		MaxAmp: int(math.Floor(fs * PMaxS / 2)),
		PMin:   int(math.Floor(fs * PMinS)),
		PMax:   int(math.Floor(fs * PMaxS)),
		MPitch: int(math.Floor(fs * MPitchS)),
		WoMin:  TWO_PI / math.Floor(fs*PMaxS),
		WoMax:  TWO_PI / math.Floor(fs*PMinS),
		Nw:     279,
		Tw:     int(fs * TWS),
	}
}

// clampWo limits wo to the valid pitch range.
func (c *C2Const) clampWo(wo float64) float64 {
	if wo < c.WoMin {
		return c.WoMin
	}
	if wo > c.WoMax {
		return c.WoMax
	}
	return wo
}
