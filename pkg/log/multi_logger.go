package log

// MultiLogger fans one Event out to several Loggers, e.g. a SlogAdapter
// for console output alongside a FileLogger for durable capture. A nil
// entry in the list is skipped rather than panicking, so a host can
// build the list conditionally (e.g. only include a FileLogger when a
// log path was configured) without having to filter nils itself.
type MultiLogger struct {
	targets []Logger
}

// NewMultiLogger returns a Logger that forwards every event to each of
// targets, in order.
func NewMultiLogger(targets ...Logger) *MultiLogger {
	return &MultiLogger{targets: targets}
}

// Log forwards event to every configured target.
func (m *MultiLogger) Log(event Event) {
	for _, target := range m.targets {
		if target == nil {
			continue
		}
		target.Log(event)
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*MultiLogger)(nil)
