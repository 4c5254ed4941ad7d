package codec2

import (
	"github.com/sirupsen/logrus"
)

// Option configures a session created by New.
type Option func(*options)

type options struct {
	pf    postFilterConfig
	seed  uint64
	log   logrus.FieldLogger
	trace TraceSink
}

func defaultOptions() options {
	return options{
		pf: postFilterConfig{
			enabled:   true,
			bassBoost: true,
			beta:      0.2,
			gamma:     0.5,
		},
		seed: 1,
		log:  logrus.StandardLogger(),
	}
}

// WithPostFilter enables the LPC post filter with formant emphasis beta,
// weighting filter bandwidth gamma and optional 3 dB bass boost.
func WithPostFilter(beta, gamma float64, bassBoost bool) Option {
	return func(o *options) {
		o.pf = postFilterConfig{enabled: true, bassBoost: bassBoost, beta: beta, gamma: gamma}
	}
}

// WithoutPostFilter disables the LPC post filter and bass boost.
func WithoutPostFilter() Option {
	return func(o *options) {
		o.pf.enabled = false
		o.pf.bassBoost = false
	}
}

// WithSeed seeds the generator used for unvoiced and noise phases. Two
// sessions with the same seed and input produce the same output.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithLogger sets the logger for degenerate frame reports. The default is
// the logrus standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithTraceSink reports every state transition to sink.
func WithTraceSink(sink TraceSink) Option {
	return func(o *options) {
		o.trace = sink
	}
}
