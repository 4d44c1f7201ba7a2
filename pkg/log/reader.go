package log

import (
	"encoding/json"
	"io"
	"os"
	"time"
)

// Filter narrows which events Reader.Next returns. A zero-value field
// matches every event for that criterion; all non-zero criteria must
// match (logical AND).
type Filter struct {
	// ConnectionID filters by exact connection ID match.
	ConnectionID string

	// DeviceID filters by Tuya device identifier.
	DeviceID string

	// Direction filters by message direction.
	Direction *Direction

	// Layer filters by protocol layer.
	Layer *Layer

	// Category filters by event category.
	Category *Category

	// Command filters MessageEvents by frame command byte (e.g. 0x0a
	// GET, 0x07 SET); events with no Message payload never match when
	// this is set.
	Command *byte

	// ReturnCode filters MessageEvents by the device's reported return
	// code; events with no Message payload never match when this is set.
	ReturnCode *int32

	// TimeStart filters events at or after this time.
	TimeStart *time.Time

	// TimeEnd filters events before this time.
	TimeEnd *time.Time
}

func (f *Filter) matches(event Event) bool {
	switch {
	case f.ConnectionID != "" && event.ConnectionID != f.ConnectionID:
		return false
	case f.DeviceID != "" && event.DeviceID != f.DeviceID:
		return false
	case f.Direction != nil && event.Direction != *f.Direction:
		return false
	case f.Layer != nil && event.Layer != *f.Layer:
		return false
	case f.Category != nil && event.Category != *f.Category:
		return false
	case f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart):
		return false
	case f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd):
		return false
	}

	if f.Command != nil || f.ReturnCode != nil {
		if event.Message == nil {
			return false
		}
		if f.Command != nil && event.Message.Command != *f.Command {
			return false
		}
		if f.ReturnCode != nil && event.Message.ReturnCode != *f.ReturnCode {
			return false
		}
	}

	return true
}

// Reader streams Events back out of a newline-delimited JSON log file
// written by FileLogger, applying an optional Filter along the way.
type Reader struct {
	file    *os.File
	decoder *json.Decoder
	filter  Filter
}

// NewReader opens path and returns a Reader over every event in it.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens path and returns a Reader that only yields
// events matching filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{
		file:    f,
		decoder: json.NewDecoder(f),
		filter:  filter,
	}, nil
}

// Next decodes and returns the next event matching the reader's filter,
// skipping any that don't. It returns io.EOF once the file is exhausted.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		if err := r.decoder.Decode(&event); err != nil {
			if err == io.EOF {
				return Event{}, io.EOF
			}
			return Event{}, err
		}

		if r.filter.matches(event) {
			return event, nil
		}
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
