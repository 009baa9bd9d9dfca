package log

// Logger receives mesh events. Implementations must be safe for
// concurrent use; parallel scans log from worker goroutines.
type Logger interface {
	// Log records one event. It should return quickly; every mesh
	// operation that logs blocks on it.
	Log(event Event)
}

// NoopLogger discards all events. The zero value is ready to use and
// is the default sink for meshes constructed without a logger.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

var _ Logger = NoopLogger{}
