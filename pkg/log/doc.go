// Package log captures the Tuya wire protocol as structured events rather
// than free-text lines, so a recorded session can be filtered and replayed
// instead of just grepped.
//
// A Logger sits alongside a device.Session or manager.Manager and receives
// one Event per frame, decoded message, state transition, or error as it
// happens. Nothing in this package decides what to log - Session and
// Manager call Log unconditionally - so a host picks its Logger
// implementation (or NoopLogger, the zero-value default) to control volume
// and destination.
//
//	// console, for watching a device live during development
//	console := log.NewSlogAdapter(slog.Default())
//
//	// durable capture for later analysis
//	file, _ := log.NewFileLogger("/var/log/tuyalan/events.jsonl")
//
//	// fan out to both; nil entries are skipped
//	both := log.NewMultiLogger(console, file)
//
// Later, Reader replays a FileLogger's output with a Filter narrowing by
// connection, device, direction, layer, category, time range, or - for
// MessageEvents specifically - frame command byte and device return code:
//
//	r, _ := log.NewFilteredReader("/var/log/tuyalan/events.jsonl", log.Filter{
//	    DeviceID: "bf47c2e9d8a1f3b0c4d6",
//	})
//	for {
//	    event, err := r.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// Four event shapes cover every layer a session touches: a FrameEvent for
// raw transport bytes, a MessageEvent for a decoded GET/SET/heartbeat/ack,
// a StateChangeEvent for a session or manager entry moving between states,
// and an ErrorEventData for anything that went wrong along the way. Exactly
// one of Event's four pointer fields is set per record, matching its
// Category.
//
// FileLogger writes one JSON object per line and never returns an error
// from Log - a failed encode only increments EncodeErrors, since a logging
// failure must never propagate into a call that is actually driving a
// device.
package log
