package mocks

import (
	"sync"

	"github.com/tuyalan/tuyalan-go/pkg/device"
)

// RegisterCall records one Register/Unregister invocation.
type RegisterCall struct {
	Session *device.Session
}

// GotDataCall records one GotData invocation.
type GotDataCall struct {
	Record map[string]any
}

// GotErrorCall records one GotError invocation.
type GotErrorCall struct {
	Session       *device.Session
	LastAttempted map[string]any
}

// Observer is a test double implementing device.Observer. Every call is
// appended to its corresponding Calls slice; a test can additionally set
// the On* function fields to react to a call (e.g. to unblock a channel
// or compute a canned response).
type Observer struct {
	mu sync.Mutex

	RegisterCalls   []RegisterCall
	UnregisterCalls []RegisterCall
	GotDataCalls    []GotDataCall
	GotErrorCalls   []GotErrorCall

	OnRegister   func(s *device.Session)
	OnUnregister func(s *device.Session)
	OnGotData    func(record map[string]any)
	OnGotError   func(s *device.Session, lastAttempted map[string]any)
}

// NewObserver returns a ready-to-use Observer mock.
func NewObserver() *Observer {
	return &Observer{}
}

func (o *Observer) Register(s *device.Session) {
	o.mu.Lock()
	o.RegisterCalls = append(o.RegisterCalls, RegisterCall{Session: s})
	o.mu.Unlock()

	if o.OnRegister != nil {
		o.OnRegister(s)
	}
}

func (o *Observer) Unregister(s *device.Session) {
	o.mu.Lock()
	o.UnregisterCalls = append(o.UnregisterCalls, RegisterCall{Session: s})
	o.mu.Unlock()

	if o.OnUnregister != nil {
		o.OnUnregister(s)
	}
}

func (o *Observer) GotData(record map[string]any) {
	o.mu.Lock()
	o.GotDataCalls = append(o.GotDataCalls, GotDataCall{Record: record})
	o.mu.Unlock()

	if o.OnGotData != nil {
		o.OnGotData(record)
	}
}

func (o *Observer) GotError(s *device.Session, lastAttempted map[string]any) {
	o.mu.Lock()
	o.GotErrorCalls = append(o.GotErrorCalls, GotErrorCall{Session: s, LastAttempted: lastAttempted})
	o.mu.Unlock()

	if o.OnGotError != nil {
		o.OnGotError(s, lastAttempted)
	}
}

// RegisterCount returns how many times Register has been called.
func (o *Observer) RegisterCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.RegisterCalls)
}

// Compile-time interface satisfaction check.
var _ device.Observer = (*Observer)(nil)
