package log

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
)

// FileLogger appends events to a file as newline-delimited JSON, one
// Event object per line. It is safe for concurrent use from multiple
// goroutines.
type FileLogger struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
	closed  bool

	encodeErrs atomic.Int64
}

// NewFileLogger opens (creating if necessary) path for append and
// returns a FileLogger that writes to it. The file is created with mode
// 0644 if it doesn't already exist.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// Log appends event to the file as one JSON line. A failed encode (e.g.
// the disk is full) is swallowed rather than returned, since Logger.Log
// must not disrupt the caller; EncodeErrors reports how many have
// occurred so a host can alarm on it separately.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	if err := l.encoder.Encode(event); err != nil {
		l.encodeErrs.Add(1)
	}
}

// EncodeErrors returns the number of events that failed to encode since
// the FileLogger was created.
func (l *FileLogger) EncodeErrors() int64 {
	return l.encodeErrs.Load()
}

// Close closes the underlying file. It is safe to call more than once;
// calls after the first are no-ops. Log calls after Close are silently
// ignored rather than erroring.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	return l.file.Close()
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
