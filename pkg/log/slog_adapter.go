package log

import (
	"context"
	"log/slog"
)

// SlogAdapter forwards events to an *slog.Logger at Debug level, for
// watching device traffic on a console during development. Type-specific
// fields are nested under a group named after the payload the event
// carries ("frame", "message", "state_change" or "error") so the flat
// common fields (conn_id, device_id, layer, ...) stay easy to
// scan across very different event shapes.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger as a Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes event to the underlying slog.Logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote_addr", event.RemoteAddr))
	}

	switch {
	case event.Frame != nil:
		attrs = append(attrs, slog.Group("frame",
			slog.Int("size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		))
	case event.Message != nil:
		attrs = append(attrs, slog.Group("message", messageAttrs(event.Message)...))
	case event.StateChange != nil:
		attrs = append(attrs, slog.Group("state_change", stateChangeAttrs(event.StateChange)...))
	case event.Error != nil:
		attrs = append(attrs, slog.Group("error", errorAttrs(event.Error)...))
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "device event", attrs...)
}

func messageAttrs(m *MessageEvent) []any {
	attrs := []any{
		slog.Int("command", int(m.Command)),
		slog.Int64("return_code", int64(m.ReturnCode)),
	}
	if len(m.Dps) > 0 {
		attrs = append(attrs, slog.Any("dps", m.Dps))
	}
	return attrs
}

func stateChangeAttrs(s *StateChangeEvent) []any {
	attrs := []any{
		slog.String("entity", s.Entity.String()),
		slog.String("old_state", s.OldState),
		slog.String("new_state", s.NewState),
	}
	if s.Reason != "" {
		attrs = append(attrs, slog.String("reason", s.Reason))
	}
	return attrs
}

func errorAttrs(e *ErrorEventData) []any {
	attrs := []any{
		slog.String("layer", e.Layer.String()),
		slog.String("message", e.Message),
	}
	if e.Context != "" {
		attrs = append(attrs, slog.String("context", e.Context))
	}
	if e.Code != nil {
		attrs = append(attrs, slog.Int64("code", int64(*e.Code)))
	}
	return attrs
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
