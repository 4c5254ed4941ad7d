package codec2

import (
	"github.com/sirupsen/logrus"
)

// TraceEvent is a snapshot taken on every session state transition.
type TraceEvent struct {
	Mode     Mode
	State    State
	Subframe int     // 10 ms subframe within the frame, -1 when not applicable
	Model    Model   // Harmonic model of Subframe, zero when not applicable
	Energy   float64 // Frame energy once known, else 0
}

// TraceSink receives trace events. It is called synchronously from Encode
// and Decode, on the caller's goroutine.
type TraceSink interface {
	Trace(ev TraceEvent)
}

// TraceSinkFunc adapts a function to TraceSink.
type TraceSinkFunc func(ev TraceEvent)

// Trace calls f(ev).
func (f TraceSinkFunc) Trace(ev TraceEvent) { f(ev) }

type logTraceSink struct {
	log logrus.FieldLogger
}

// LogTraceSink returns a TraceSink that logs each event at debug level.
func LogTraceSink(log logrus.FieldLogger) TraceSink {
	return logTraceSink{log: log}
}

func (s logTraceSink) Trace(ev TraceEvent) {
	fields := logrus.Fields{
		"mode":  ev.Mode.String(),
		"state": ev.State.String(),
	}
	if ev.Subframe >= 0 {
		fields["subframe"] = ev.Subframe
		fields["wo"] = ev.Model.Wo
		fields["L"] = ev.Model.L
		fields["voiced"] = ev.Model.Voiced
	}
	if ev.Energy != 0 {
		fields["energy"] = ev.Energy
	}
	s.log.WithFields(fields).Debug("codec2 state")
}
