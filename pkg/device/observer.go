package device

// Observer is the capability set a Session's parent implements. A
// Session may have multiple parents; every event is delivered to all of
// them, in registration order.
type Observer interface {
	// Register is called once the session's transport is up.
	Register(s *Session)

	// Unregister is called when the session terminates, for any reason.
	Unregister(s *Session)

	// GotData delivers one normalized, merged DPS record.
	GotData(record map[string]any)

	// GotError delivers a non-zero device return code, along with the
	// data most recently sent to the device (empty if nothing was
	// in flight).
	GotError(s *Session, lastAttempted map[string]any)
}
