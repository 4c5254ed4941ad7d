package codec2

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Codec2 is one encoder or decoder session. It owns every memory carried
// between frames, so a session must not be used from more than one
// goroutine at a time. Use one session per stream; sessions share nothing
// but the read-only codebooks.
type Codec2 struct {
	mode    Mode
	cfg     *modeConfig
	c2const C2Const
	state   State
	closed  bool

	fft   FFT
	w     []float64 // Time domain analysis window (length MPitch).
	wResp []float64 // Frequency response of w (length FFTSize).

	// Encoder memories.
	sn            []float64 // Analysis buffer (length MPitch).
	nlp           *nlpState
	prevF0Enc     float64 // Previous NLP estimate in Hz.
	prevF0Model   float64 // Previous refined f0 in Hz.
	prevVoicedEnc bool
	xqEnc         [2]float64 // Joint Wo/E predictor state.

	// Decoder memories.
	synBuf       []float64 // Synthesis overlap buffer (length 2*NSamp).
	pn           []float64 // Trapezoidal synthesis window (length 2*NSamp).
	prevModelDec Model
	prevLspsDec  []float64
	prevEDec     float64
	xqDec        [2]float64
	exPhase      float64 // Excitation phase accumulator.
	bgEst        float64 // Background noise estimate in dB.
	rng          *lcg
	pf           postFilterConfig

	log   logrus.FieldLogger
	trace TraceSink
	stats Stats
}

// Stats counts the degenerate events a session recovered from.
type Stats struct {
	Frames       int // Frames encoded or decoded.
	LspFallbacks int // Analysis frames whose LSP root search failed.
	LspReorders  int // Decoded LSP vectors that needed reordering.
	NoisePhases  int // Voiced harmonics given a random phase by the post filter.

	// LspSqErr sums the squared LSP quantisation error in Hz^2 over every
	// encoded frame; divide by Frames*order for the mean.
	LspSqErr float64
}

// New creates a session for mode. A mode whose layout is inconsistent is
// rejected here and never fails later.
func New(mode Mode, opts ...Option) (*Codec2, error) {
	cfg, err := mode.config()
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Codec2{
		mode:    mode,
		cfg:     cfg,
		c2const: newC2Const(),
		pf:      o.pf,
		rng:     newLCG(o.seed),
		log:     o.log.WithField("mode", mode.String()),
		trace:   o.trace,
	}
	c.fft = NewFFT(FFTSize)
	c.w, c.wResp = makeAnalysisWindow(&c.c2const, c.fft)
	c.pn = makeSynthesisWindow(&c.c2const)

	c.sn = make([]float64, c.c2const.MPitch)
	for i := range c.sn {
		c.sn[i] = 1.0
	}
	c.synBuf = make([]float64, 2*c.c2const.NSamp)

	c.nlp = newNLP(&c.c2const)
	c.prevF0Enc = 1 / PMaxS

	c.prevLspsDec = make([]float64, cfg.lpcOrder)
	for i := range c.prevLspsDec {
		c.prevLspsDec[i] = float64(i) * math.Pi / float64(cfg.lpcOrder+1)
	}
	c.prevModelDec.setWo(TWO_PI / float64(c.c2const.PMax))
	c.prevEDec = 1

	c.log.WithFields(logrus.Fields{
		"bits":    cfg.totalBits(),
		"samples": c.SamplesPerFrame(),
		"lsp":     cfg.lsp.name(),
	}).Debug("codec2 session created")
	return c, nil
}

// Close releases the session buffers. Further calls return ErrClosed.
func (c *Codec2) Close() error {
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	c.sn, c.synBuf, c.prevLspsDec = nil, nil, nil
	c.nlp = nil
	return nil
}

// Mode returns the session's coding mode.
func (c *Codec2) Mode() Mode { return c.mode }

// State returns the state the session is in between calls.
func (c *Codec2) State() State { return c.state }

// Stats returns the session's degenerate event counters.
func (c *Codec2) Stats() Stats { return c.stats }

// SamplesPerFrame is the number of PCM samples Encode consumes and Decode
// produces per call.
func (c *Codec2) SamplesPerFrame() int {
	return c.cfg.subframes * c.c2const.NSamp
}

// BitsPerFrame is the number of meaningful bits in a packed frame.
func (c *Codec2) BitsPerFrame() int {
	return c.cfg.totalBits()
}

// BytesPerFrame is the packed frame length in bytes.
func (c *Codec2) BytesPerFrame() int {
	return (c.BitsPerFrame() + 7) / 8
}

// Encode compresses exactly SamplesPerFrame samples into one packed frame.
func (c *Codec2) Encode(pcm []int16) ([]byte, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if want := c.SamplesPerFrame(); len(pcm) != want {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidFrameSize, len(pcm), want)
	}
	return c.encodeFrame(pcm), nil
}

// Decode expands one packed frame of BytesPerFrame bytes into
// SamplesPerFrame samples.
func (c *Codec2) Decode(bits []byte) ([]int16, error) {
	return c.DecodeBER(bits, 0)
}

// DecodeBER is Decode with an estimate of the channel bit error rate.
// Above berMuteThreshold the frame content is not trusted: every
// subframe is synthesised unvoiced at a low energy.
func (c *Codec2) DecodeBER(bits []byte, ber float64) ([]int16, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if want := c.BytesPerFrame(); len(bits) != want {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidBitsLength, len(bits), want)
	}
	return c.decodeFrame(bits, ber), nil
}

// setState records a transition and reports it to the trace sink.
func (c *Codec2) setState(s State, subframe int, model *Model, energy float64) {
	c.state = s
	if c.trace == nil {
		return
	}
	ev := TraceEvent{Mode: c.mode, State: s, Subframe: subframe, Energy: energy}
	if model != nil {
		ev.Model = *model
	}
	c.trace.Trace(ev)
}
