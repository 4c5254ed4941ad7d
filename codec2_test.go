package codec2

import (
	"bytes"
	"errors"
	"io"
	"math"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func toPCM(x []float64) []int16 {
	pcm := make([]int16, len(x))
	for i, v := range x {
		pcm[i] = int16(math.Max(-32767, math.Min(32767, v)))
	}
	return pcm
}

func maxAbs(pcm []int16) int {
	m := 0
	for _, s := range pcm {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > m {
			m = v
		}
	}
	return m
}

// encodeDecode runs pcm through a fresh encoder and decoder and returns
// the packed frames and the decoded speech.
func encodeDecode(t *testing.T, mode Mode, pcm []int16, opts ...Option) ([][]byte, []int16) {
	t.Helper()
	enc := newTestSession(t, mode, opts...)
	dec := newTestSession(t, mode, opts...)
	n := enc.SamplesPerFrame()

	var frames [][]byte
	var out []int16
	for i := 0; i+n <= len(pcm); i += n {
		bits, err := enc.Encode(pcm[i : i+n])
		if err != nil {
			t.Fatalf("Encode frame %d: %v", i/n, err)
		}
		if len(bits) != enc.BytesPerFrame() {
			t.Fatalf("frame %d: %d bytes, want %d", i/n, len(bits), enc.BytesPerFrame())
		}
		frames = append(frames, bits)

		speech, err := dec.Decode(bits)
		if err != nil {
			t.Fatalf("Decode frame %d: %v", i/n, err)
		}
		if len(speech) != n {
			t.Fatalf("frame %d: decoded %d samples, want %d", i/n, len(speech), n)
		}
		out = append(out, speech...)
	}
	if enc.Stats().Frames != len(frames) || dec.Stats().Frames != len(frames) {
		t.Fatalf("frame counters %d/%d, want %d", enc.Stats().Frames, dec.Stats().Frames, len(frames))
	}
	return frames, out
}

func TestVoicedSpeech3200(t *testing.T) {
	pcm := toPCM(harmonicSignal(200, 1700, 1000, SampleRate))
	frames, out := encodeDecode(t, Mode3200, pcm)

	for i, f := range frames[2:] {
		if f[0]&0xc0 != 0xc0 {
			t.Fatalf("frame %d: voicing bits %08b, want both set", i+2, f[0])
		}
	}
	if m := maxAbs(out); m < 500 {
		t.Fatalf("decoded speech peak %d, too quiet", m)
	}

	// The decoded speech must carry the same pitch.
	a := newTestSession(t, Mode3200)
	n := a.c2const.NSamp
	speech := make([]float64, n)
	var model Model
	var f0s []float64
	for i := 0; (i+1)*n <= len(out); i++ {
		for j := range speech {
			speech[j] = float64(out[i*n+j])
		}
		a.analyseOneFrame(speech, &model)
		if i >= 20 {
			f0s = append(f0s, model.Wo*SampleRate/TWO_PI)
		}
	}
	sort.Float64s(f0s)
	if median := f0s[len(f0s)/2]; math.Abs(median-200) > 5 {
		t.Fatalf("decoded speech f0 %.1f Hz, want 200", median)
	}
}

func TestSilence(t *testing.T) {
	for _, mode := range Modes() {
		t.Run(mode.String(), func(t *testing.T) {
			pcm := make([]int16, 100*320)
			_, out := encodeDecode(t, mode, pcm)
			if m := maxAbs(out); m > 5000 {
				t.Fatalf("silence decoded with peak %d", m)
			}
		})
	}
}

func TestNoiseAllModes(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	x := make([]float64, 50*320)
	for i := range x {
		x[i] = rng.NormFloat64() * 3000
	}
	pcm := toPCM(x)

	for _, mode := range Modes() {
		t.Run(mode.String(), func(t *testing.T) {
			frames, out := encodeDecode(t, mode, pcm)
			if len(out) != len(pcm) {
				t.Fatalf("decoded %d samples, want %d", len(out), len(pcm))
			}

			// Spare bits at the end of the frame are zero.
			cfg, _ := mode.config()
			if cfg.spare > 0 {
				mask := byte(1<<cfg.spare - 1)
				for i, f := range frames {
					if f[len(f)-1]&mask != 0 {
						t.Fatalf("frame %d: spare bits set in %08b", i, f[len(f)-1])
					}
				}
			}
		})
	}
}

func TestDecodeCorruptFrames(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for _, mode := range Modes() {
		t.Run(mode.String(), func(t *testing.T) {
			dec := newTestSession(t, mode)
			bits := make([]byte, dec.BytesPerFrame())
			for i := 0; i < 200; i++ {
				rng.Read(bits)
				speech, err := dec.Decode(bits)
				if err != nil {
					t.Fatalf("frame %d: %v", i, err)
				}
				if len(speech) != dec.SamplesPerFrame() {
					t.Fatalf("frame %d: %d samples", i, len(speech))
				}
			}
		})
	}
}

func TestDecodeBERMute(t *testing.T) {
	pcm := toPCM(harmonicSignal(200, 1700, 1000, 20*160))
	frames, _ := encodeDecode(t, Mode3200, pcm)
	bits := frames[len(frames)-1]

	tests := []struct {
		ber   float64
		muted bool
	}{
		{0, false},
		{0.1, false},
		{0.5, true},
	}
	for _, tc := range tests {
		var synth []TraceEvent
		sink := TraceSinkFunc(func(ev TraceEvent) {
			if ev.State == StateSynthesising {
				synth = append(synth, ev)
			}
		})
		dec := newTestSession(t, Mode3200, WithTraceSink(sink))
		if _, err := dec.DecodeBER(bits, tc.ber); err != nil {
			t.Fatal(err)
		}
		if len(synth) != 2 {
			t.Fatalf("ber %v: %d synthesis events, want 2", tc.ber, len(synth))
		}
		muted := decodeEnergy(berMuteEnergyIndex, EBits)
		for _, ev := range synth {
			if tc.muted {
				if ev.Model.Voiced || ev.Energy != muted {
					t.Fatalf("ber %v subframe %d: voiced %v energy %v, want unvoiced at %v",
						tc.ber, ev.Subframe, ev.Model.Voiced, ev.Energy, muted)
				}
			} else if ev.Subframe == 1 && !ev.Model.Voiced {
				t.Fatalf("ber %v: voiced frame decoded unvoiced", tc.ber)
			}
		}
	}
}

func TestSameSeedSameOutput(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	x := make([]float64, 20*320)
	for i := range x {
		x[i] = rng.NormFloat64() * 2000
	}
	pcm := toPCM(x)

	for _, mode := range []Mode{Mode3200, Mode1200} {
		f1, o1 := encodeDecode(t, mode, pcm, WithSeed(7))
		f2, o2 := encodeDecode(t, mode, pcm, WithSeed(7))
		for i := range f1 {
			if !bytes.Equal(f1[i], f2[i]) {
				t.Fatalf("mode %v frame %d: encodings differ", mode, i)
			}
		}
		for i := range o1 {
			if o1[i] != o2[i] {
				t.Fatalf("mode %v sample %d: %d != %d", mode, i, o1[i], o2[i])
			}
		}
	}
}

func TestFrameLengthErrors(t *testing.T) {
	c := newTestSession(t, Mode1300)
	if _, err := c.Encode(make([]int16, 160)); !errors.Is(err, ErrInvalidFrameSize) {
		t.Errorf("short PCM: %v, want ErrInvalidFrameSize", err)
	}
	if _, err := c.Decode(make([]byte, 6)); !errors.Is(err, ErrInvalidBitsLength) {
		t.Errorf("short frame: %v, want ErrInvalidBitsLength", err)
	}
	if _, err := c.Decode(make([]byte, 8)); !errors.Is(err, ErrInvalidBitsLength) {
		t.Errorf("long frame: %v, want ErrInvalidBitsLength", err)
	}
	if c.Stats().Frames != 0 {
		t.Errorf("rejected calls counted as frames")
	}
}

func TestClose(t *testing.T) {
	c, err := New(Mode2400)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close: %v, want ErrClosed", err)
	}
	if _, err := c.Encode(make([]int16, 160)); !errors.Is(err, ErrClosed) {
		t.Errorf("Encode after Close: %v, want ErrClosed", err)
	}
	if _, err := c.Decode(make([]byte, 6)); !errors.Is(err, ErrClosed) {
		t.Errorf("Decode after Close: %v, want ErrClosed", err)
	}
}

func TestTraceSequence(t *testing.T) {
	type step struct {
		state    State
		subframe int
	}
	tests := []struct {
		mode Mode
		enc  []step
		dec  []step
	}{
		{
			mode: Mode3200,
			enc: []step{
				{StateAnalysing, 0}, {StateAnalysing, 1}, {StateQuantising, 1},
				{StatePacked, -1}, {StateIdle, -1},
			},
			dec: []step{
				{StateUnpacked, -1}, {StateDequantising, 1}, {StateInterpolating, -1},
				{StateSynthesising, 0}, {StateSynthesising, 1}, {StateIdle, -1},
			},
		},
		{
			mode: Mode1600,
			enc: []step{
				{StateAnalysing, 0}, {StateAnalysing, 1}, {StateQuantising, 1},
				{StateAnalysing, 2}, {StateAnalysing, 3}, {StateQuantising, 3},
				{StatePacked, -1}, {StateIdle, -1},
			},
			dec: []step{
				{StateUnpacked, -1}, {StateDequantising, 3}, {StateInterpolating, -1},
				{StateSynthesising, 0}, {StateSynthesising, 1},
				{StateSynthesising, 2}, {StateSynthesising, 3}, {StateIdle, -1},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			var got []step
			sink := TraceSinkFunc(func(ev TraceEvent) {
				if ev.Mode != tc.mode {
					t.Fatalf("event for mode %v", ev.Mode)
				}
				got = append(got, step{ev.State, ev.Subframe})
			})
			check := func(what string, want []step) {
				t.Helper()
				if len(got) != len(want) {
					t.Fatalf("%s: %d events %v, want %v", what, len(got), got, want)
				}
				for i := range want {
					if got[i] != want[i] {
						t.Fatalf("%s event %d: %v, want %v", what, i, got[i], want[i])
					}
				}
				got = got[:0]
			}

			c := newTestSession(t, tc.mode, WithTraceSink(sink))
			bits, err := c.Encode(make([]int16, c.SamplesPerFrame()))
			if err != nil {
				t.Fatal(err)
			}
			check("encode", tc.enc)
			if c.State() != StateIdle {
				t.Fatalf("state after encode = %v", c.State())
			}
			if _, err := c.Decode(bits); err != nil {
				t.Fatal(err)
			}
			check("decode", tc.dec)
		})
	}
}

func TestLogTraceSink(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	c := newTestSession(t, Mode2400, WithLogger(log), WithTraceSink(LogTraceSink(log)))
	if _, err := c.Encode(make([]int16, c.SamplesPerFrame())); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`msg="codec2 session created"`,
		`msg="codec2 state"`,
		"state=analysing",
		"state=quantising",
		"state=packed",
		"mode=2400",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestStateString(t *testing.T) {
	if got := StateSynthesising.String(); got != "synthesising" {
		t.Errorf("String = %q", got)
	}
	if got := State(99).String(); got != "unknown" {
		t.Errorf("String = %q, want unknown", got)
	}
}

func TestWithLoggerNil(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	o := defaultOptions()
	WithLogger(l)(&o)
	WithLogger(nil)(&o)
	if o.log != l {
		t.Fatal("nil logger replaced the configured one")
	}
}

// A single sinusoid is perfectly predictable: the LPC residual energy
// collapses and the LSP root search fails. The session substitutes the
// fallback vector and keeps going.
func TestPureToneFallsBack(t *testing.T) {
	x := make([]float64, 20*320)
	for i := range x {
		x[i] = 8000 * math.Cos(TWO_PI*200*float64(i)/SampleRate)
	}
	pcm := toPCM(x)

	for _, mode := range []Mode{Mode3200, Mode1300, Mode1200} {
		t.Run(mode.String(), func(t *testing.T) {
			enc := newTestSession(t, mode)
			dec := newTestSession(t, mode)
			n := enc.SamplesPerFrame()
			for i := 0; i+n <= len(pcm); i += n {
				bits, err := enc.Encode(pcm[i : i+n])
				if err != nil {
					t.Fatal(err)
				}
				if _, err := dec.Decode(bits); err != nil {
					t.Fatal(err)
				}
			}
			st := enc.Stats()
			if st.LspFallbacks < st.Frames/2 {
				t.Fatalf("%d LSP fallbacks in %d frames", st.LspFallbacks, st.Frames)
			}
			t.Logf("%d frames, %d fallbacks", st.Frames, st.LspFallbacks)
		})
	}
}

func TestLspSqErrAccumulates(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	for _, mode := range []Mode{Mode3200, Mode1300, Mode1200} {
		t.Run(mode.String(), func(t *testing.T) {
			enc := newTestSession(t, mode)
			dec := newTestSession(t, mode)
			if got := enc.Stats().LspSqErr; got != 0 {
				t.Fatalf("fresh session LspSqErr = %v", got)
			}

			pcm := make([]int16, enc.SamplesPerFrame())
			prev := 0.0
			for f := 0; f < 10; f++ {
				for i := range pcm {
					pcm[i] = int16(rng.NormFloat64() * 2000)
				}
				bits, err := enc.Encode(pcm)
				if err != nil {
					t.Fatal(err)
				}
				if _, err := dec.Decode(bits); err != nil {
					t.Fatal(err)
				}
				got := enc.Stats().LspSqErr
				if got < prev || math.IsNaN(got) || math.IsInf(got, 0) {
					t.Fatalf("frame %d: LspSqErr %v after %v", f, got, prev)
				}
				prev = got
			}
			if prev <= 0 {
				t.Fatalf("LspSqErr = %v after 10 frames, want > 0", prev)
			}
			if got := dec.Stats().LspSqErr; got != 0 {
				t.Fatalf("decoder LspSqErr = %v, want 0", got)
			}
		})
	}
}
