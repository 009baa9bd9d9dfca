package log

// MultiLogger fans each event out to several sinks in order, typically
// a console SlogAdapter next to a FileLogger.
type MultiLogger struct {
	sinks []Logger
}

// NewMultiLogger combines sinks into one Logger.
func NewMultiLogger(sinks ...Logger) *MultiLogger {
	return &MultiLogger{sinks: sinks}
}

// Log delivers the event to every sink.
func (m *MultiLogger) Log(event Event) {
	for _, s := range m.sinks {
		s.Log(event)
	}
}

var _ Logger = (*MultiLogger)(nil)
