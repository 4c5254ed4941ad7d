// Package codec2 is a harmonic sinusoidal speech codec for 8 kHz, 16 bit
// mono speech at 3200, 2400, 1600, 1400, 1300 and 1200 bit/s.
//
// Each 10 ms of speech is modelled as a sum of harmonics of a fundamental
// Wo, with amplitudes described by an LPC spectral envelope transmitted as
// quantised line spectral pairs, a frame energy and one voicing bit. Phases
// are not transmitted; the decoder rebuilds them from the LPC filter and a
// pulse train or random excitation.
//
//	enc, _ := codec2.New(codec2.Mode1200)
//	bits, _ := enc.Encode(pcm) // len(pcm) == enc.SamplesPerFrame()
//
//	dec, _ := codec2.New(codec2.Mode1200)
//	out, _ := dec.Decode(bits) // len(bits) == dec.BytesPerFrame()
//
// A session keeps state between frames and is not safe for concurrent use.
package codec2
