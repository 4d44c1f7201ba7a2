package device

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tuyalan/tuyalan-go/pkg/connection"
	"github.com/tuyalan/tuyalan-go/pkg/log"
	"github.com/tuyalan/tuyalan-go/pkg/wire"
)

// DefaultPort is the TCP control port Tuya devices listen on.
const DefaultPort = 6668

// DefaultHeartbeatInterval is the heartbeat period for a classified,
// running session.
const DefaultHeartbeatInterval = 10 * time.Second

// ProbeHeartbeatInterval is the heartbeat period for a generic
// classification probe session.
const ProbeHeartbeatInterval = 2 * time.Second

// DefaultDisconnectThreshold is the number of missed heartbeat replies
// tolerated before a session self-terminates.
const DefaultDisconnectThreshold = 3

// DefaultDialAttempts is the number of TCP dial attempts Start makes,
// backing off between them, before giving up.
const DefaultDialAttempts = 3

// Config configures a Session.
type Config struct {
	DeviceID            string
	LocalKey            string
	IPv4                string
	Port                int           // defaults to DefaultPort
	ProtocolVersion     string        // defaults to wire.DefaultProtocolVersion
	HeartbeatInterval   time.Duration // defaults to DefaultHeartbeatInterval
	DisconnectThreshold int           // defaults to DefaultDisconnectThreshold
	DialAttempts        int           // defaults to DefaultDialAttempts

	// Driver is nil for a generic classification probe session.
	Driver Driver

	// RawDPSMode surfaces DPS entries under their numeric key when the
	// driver has no name for them (or there is no driver at all). Only
	// true for probe sessions.
	RawDPSMode bool

	Logger log.Logger
}

func (c *Config) setDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ProtocolVersion == "" {
		c.ProtocolVersion = wire.DefaultProtocolVersion
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.DisconnectThreshold == 0 {
		c.DisconnectThreshold = DefaultDisconnectThreshold
	}
	if c.DialAttempts == 0 {
		c.DialAttempts = DefaultDialAttempts
	}
	if c.Logger == nil {
		c.Logger = log.NoopLogger{}
	}
}

// Session is one TCP connection to one device: heartbeat loop, DPS
// read/write, and parent notification. A Session with no Driver runs in
// raw_dps_mode as a classification probe.
type Session struct {
	config Config
	cipher *wire.Cipher

	// connID correlates every log event this session emits. It is
	// generated once in NewSession; a replacement session for the same
	// device gets a new one.
	connID string

	connMu sync.Mutex
	conn   net.Conn

	parentsMu sync.RWMutex
	parents   []Observer

	missedResponses atomic.Int32

	statusMu   sync.Mutex
	lastStatus map[string]any

	lastAttemptedMu sync.Mutex
	lastAttempted   map[string]any

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewSession builds a Session from config. Call AddParent for every
// observer before Start.
func NewSession(config Config) (*Session, error) {
	config.setDefaults()

	var cipher *wire.Cipher
	if config.LocalKey != "" {
		c, err := wire.NewCipher(config.LocalKey, config.ProtocolVersion)
		if err != nil {
			return nil, err
		}
		cipher = c
	}

	return &Session{
		config:        config,
		cipher:        cipher,
		connID:        uuid.NewString(),
		lastStatus:    make(map[string]any),
		lastAttempted: make(map[string]any),
	}, nil
}

// DeviceID returns the device_id this session controls.
func (s *Session) DeviceID() string { return s.config.DeviceID }

// IPv4 returns the device's current IPv4 address.
func (s *Session) IPv4() string { return s.config.IPv4 }

// RawDPSMode reports whether this is a classification probe session.
func (s *Session) RawDPSMode() bool { return s.config.RawDPSMode }

// Driver returns the typed driver, or nil for a probe session.
func (s *Session) Driver() Driver { return s.config.Driver }

// AddParent registers an observer. Must be called before Start.
func (s *Session) AddParent(o Observer) {
	s.parentsMu.Lock()
	defer s.parentsMu.Unlock()
	s.parents = append(s.parents, o)
}

// LastStatus returns a snapshot of the last normalized record merged
// from inbound frames.
func (s *Session) LastStatus() map[string]any {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	out := make(map[string]any, len(s.lastStatus))
	for k, v := range s.lastStatus {
		out[k] = v
	}
	return out
}

// Alive reports whether the session's transport is currently connected.
func (s *Session) Alive() bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.conn != nil
}

// Start dials the device, registers with every parent, and launches the
// heartbeat and read loops.
func (s *Session) Start(ctx context.Context) error {
	conn, err := s.dial(ctx)
	if err != nil {
		return err
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()
	s.logStateChange(log.StateEntitySession, "", "connected", "")

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.missedResponses.Store(int32(s.config.DisconnectThreshold))

	s.notifyRegister()

	s.wg.Add(2)
	go s.readLoop(runCtx)
	go s.heartbeatLoop(runCtx)

	if s.config.Driver != nil {
		s.config.Driver.OnConnect(s)
	}

	return nil
}

// dial opens the TCP control connection, making up to DialAttempts
// attempts with exponential backoff between them before giving up.
func (s *Session) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(s.config.IPv4, strconv.Itoa(s.config.Port))
	backoff := connection.NewBackoff()

	var lastErr error
	for {
		conn, err := net.Dial("tcp", addr)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		delay := backoff.Next()
		if backoff.Attempts() >= s.config.DialAttempts {
			return nil, fmt.Errorf("device: dial %s after %d attempts: %w", s.config.IPv4, s.config.DialAttempts, lastErr)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("device: dial %s: %w", s.config.IPv4, ctx.Err())
		case <-time.After(delay):
		}
	}
}

// Close tears down the session: cancels the heartbeat, closes the
// transport, and unregisters from every parent. Safe to call more than
// once.
func (s *Session) Close() {
	s.terminate()
}

func (s *Session) terminate() {
	s.closeOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		s.connMu.Lock()
		if s.conn != nil {
			s.conn.Close()
			s.conn = nil
		}
		s.connMu.Unlock()
		s.notifyUnregister()
	})
}

// Query sends one cleartext GET frame with the canonical {devId,gwId}
// payload.
func (s *Session) Query() error {
	payload := wire.GetPayload{DevID: s.config.DeviceID, GwID: s.config.DeviceID}
	frame, err := wire.Encode(wire.CommandGet, payload, nil)
	if err != nil {
		return err
	}
	return s.write(frame)
}

// Set translates attribute names to DPS indices via the driver's
// attribute map, coerces each value, and sends one encrypted SET frame.
func (s *Session) Set(attrs map[string]any) error {
	if s.config.Driver == nil {
		return fmt.Errorf("device: Set requires a typed driver")
	}
	names := s.config.Driver.Attributes()
	dps := make(map[string]any, len(attrs))
	for name, value := range attrs {
		idx := indexOf(names, name)
		if idx < 0 {
			return fmt.Errorf("device: unknown attribute %q", name)
		}
		coerced, err := s.config.Driver.Coerce(name, value)
		if err != nil {
			return err
		}
		dps[strconv.Itoa(idx+1)] = coerced
	}
	return s.RawSet(dps)
}

// RawSet sends an encrypted SET frame with a caller-supplied DPS map,
// used during classification probing and error recovery.
func (s *Session) RawSet(dps map[string]any) error {
	if s.cipher == nil {
		return fmt.Errorf("device: no local key configured for %s", s.config.DeviceID)
	}

	s.lastAttemptedMu.Lock()
	s.lastAttempted = dps
	s.lastAttemptedMu.Unlock()

	payload := wire.SetPayload{
		DevID: s.config.DeviceID,
		UID:   "",
		T:     strconv.FormatInt(time.Now().Unix(), 10),
		Dps:   dps,
	}
	frame, err := wire.Encode(wire.CommandSet, payload, s.cipher)
	if err != nil {
		return err
	}
	return s.write(frame)
}

func (s *Session) write(frame []byte) error {
	s.connMu.Lock()
	conn := s.conn
	s.connMu.Unlock()
	if conn == nil {
		return fmt.Errorf("device: %s is not connected", s.config.DeviceID)
	}
	_, err := conn.Write(frame)
	return err
}

func (s *Session) heartbeatLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.missedResponses.Load() == 0 {
				s.logStateChange(log.StateEntitySession, "connected", "disconnected", "heartbeat timeout")
				s.terminate()
				return
			}
			s.missedResponses.Add(-1)
			if err := s.Query(); err != nil {
				s.logError(fmt.Sprintf("heartbeat query: %v", err))
			}
		}
	}
}

func (s *Session) readLoop(ctx context.Context) {
	defer s.wg.Done()

	s.connMu.Lock()
	conn := s.conn
	s.connMu.Unlock()

	var buf []byte
	chunk := make([]byte, 4096)
	for {
		n, err := conn.Read(chunk)
		if err != nil {
			select {
			case <-ctx.Done():
			default:
				s.logError(fmt.Sprintf("connection lost: %v", err))
			}
			s.terminate()
			return
		}
		buf = append(buf, chunk[:n]...)

		for {
			frameLen, ok := nextFrameLen(buf)
			if !ok {
				break
			}
			frame := buf[:frameLen]
			buf = buf[frameLen:]

			results := wire.Decode(frame, s.cipher)
			if len(results) == 1 && results[0].Err != nil {
				s.logError(fmt.Sprintf("corrupt frame: %v", results[0].Err))
				buf = buf[:0]
				break
			}
			for _, r := range results {
				s.handleResult(r)
			}
		}
	}
}

// nextFrameLen reports the byte length of the next complete frame at
// the front of buf, reading the fixed-offset length field directly so
// the read loop can accumulate partial TCP reads without re-deriving
// wire.Decode's internal buffer-consumption bookkeeping.
func nextFrameLen(buf []byte) (int, bool) {
	const headerSize = 16
	if len(buf) < headerSize {
		return 0, false
	}
	length := binary.BigEndian.Uint32(buf[12:16])
	total := headerSize + int(length)
	if total > len(buf) {
		return 0, false
	}
	return total, true
}

func (s *Session) handleResult(r wire.Result) {
	s.missedResponses.Store(int32(s.config.DisconnectThreshold))

	if r.Err != nil {
		s.logError(fmt.Sprintf("frame error: %v", r.Err))
		return
	}
	if r.ReturnCode != 0 {
		s.lastAttemptedMu.Lock()
		attempted := s.lastAttempted
		s.lastAttemptedMu.Unlock()
		s.notifyError(attempted)
		return
	}
	if len(r.Data) == 0 {
		return
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(r.Data, &raw); err != nil {
		s.logError(fmt.Sprintf("unmarshal payload: %v", err))
		return
	}

	record := make(map[string]any)
	if devIDRaw, ok := raw["devId"]; ok {
		var devID string
		if err := json.Unmarshal(devIDRaw, &devID); err == nil {
			record["devId"] = devID
		}
	}
	if dpsRaw, ok := raw["dps"]; ok {
		var dps map[string]any
		if err := json.Unmarshal(dpsRaw, &dps); err == nil {
			s.mapDPS(record, dps)
		}
	}

	if s.config.Driver != nil {
		record = s.config.Driver.Normalize(record)
	}

	s.mergeLastStatus(record)
	s.notifyData(record)
}

func (s *Session) mapDPS(record map[string]any, dps map[string]any) {
	attrs := []string(nil)
	if s.config.Driver != nil {
		attrs = s.config.Driver.Attributes()
	}
	for key, value := range dps {
		idx, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		if i := idx - 1; i >= 0 && i < len(attrs) {
			record[attrs[i]] = value
			continue
		}
		if s.config.RawDPSMode {
			record[key] = value
		}
	}
}

func (s *Session) mergeLastStatus(record map[string]any) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	for k, v := range record {
		s.lastStatus[k] = v
	}
}

func (s *Session) notifyRegister() {
	s.parentsMu.RLock()
	defer s.parentsMu.RUnlock()
	for _, p := range s.parents {
		p.Register(s)
	}
}

func (s *Session) notifyUnregister() {
	s.parentsMu.RLock()
	defer s.parentsMu.RUnlock()
	for _, p := range s.parents {
		p.Unregister(s)
	}
}

func (s *Session) notifyData(record map[string]any) {
	s.parentsMu.RLock()
	defer s.parentsMu.RUnlock()
	for _, p := range s.parents {
		p.GotData(record)
	}
}

func (s *Session) notifyError(lastAttempted map[string]any) {
	s.parentsMu.RLock()
	defer s.parentsMu.RUnlock()
	for _, p := range s.parents {
		p.GotError(s, lastAttempted)
	}
}

func (s *Session) logStateChange(entity log.StateEntity, oldState, newState, reason string) {
	s.config.Logger.Log(log.Event{
		ConnectionID: s.connID,
		DeviceID:     s.config.DeviceID,
		Layer:        log.LayerDevice,
		Category:     log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

func (s *Session) logError(msg string) {
	s.config.Logger.Log(log.Event{
		ConnectionID: s.connID,
		DeviceID:     s.config.DeviceID,
		Layer:        log.LayerDevice,
		Category:     log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerDevice,
			Message: msg,
			Context: "device.Session",
		},
	})
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
