package manager

import (
	"context"
	"fmt"
	"sync"

	"github.com/tuyalan/tuyalan-go/pkg/device"
	"github.com/tuyalan/tuyalan-go/pkg/discovery"
	"github.com/tuyalan/tuyalan-go/pkg/log"
	"github.com/tuyalan/tuyalan-go/pkg/persistence"
	"github.com/tuyalan/tuyalan-go/pkg/wire"
)

// DefaultErrorThreshold is the number of probe errors tolerated before a
// device is moved to the ignore table.
const DefaultErrorThreshold = 5

// Config configures a Manager.
type Config struct {
	// KeyStore is the persistence hook; defaults to an in-memory
	// persistence.NoopKeyStore.
	KeyStore persistence.KeyStore

	// Observer is the host application's parent for typed, running
	// sessions. Required.
	Observer device.Observer

	Logger          log.Logger
	ProtocolVersion string // defaults to wire.DefaultProtocolVersion
	Port            int    // defaults to device.DefaultPort
}

func (c *Config) setDefaults() {
	if c.KeyStore == nil {
		c.KeyStore = persistence.NewNoopKeyStore()
	}
	if c.Logger == nil {
		c.Logger = log.NoopLogger{}
	}
	if c.ProtocolVersion == "" {
		c.ProtocolVersion = wire.DefaultProtocolVersion
	}
	if c.Port == 0 {
		c.Port = device.DefaultPort
	}
}

// runningEntry is a live, classified session plus the factory that
// produced its driver, so a later IP-migration replacement can rebuild
// the same class without rememorizing the shape.
type runningEntry struct {
	session   *device.Session
	newDriver func() device.Driver
}

// pendingEntry is a generic classification probe session, plus the
// connection details needed to start its typed replacement once
// classification succeeds.
type pendingEntry struct {
	session  *device.Session
	attempts int

	localKey string
	ipv4     string
	version  string
}

// Manager keeps five tables behind one mutex: running (classified,
// live) sessions, pending (classification probe) sessions, ignored
// device ids, per-device probe error counts, and the last-seen protocol
// version per device. It implements device.Observer so it can act as
// the parent of its own probe sessions.
type Manager struct {
	config Config

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	running    map[string]*runningEntry
	pending    map[string]*pendingEntry
	ignore     map[string]bool
	errorCount map[string]int
	version    map[string]string
}

// NewManager builds a Manager. ctx is the manager's lifetime: Close
// cancels it, and every session it spawns is started against a context
// derived from it — the injected scheduler handle standing in for the
// source's single-threaded event loop.
func NewManager(ctx context.Context, config Config) (*Manager, error) {
	config.setDefaults()
	if config.Observer == nil {
		return nil, fmt.Errorf("manager: Observer is required")
	}
	if err := config.KeyStore.Load(); err != nil {
		return nil, fmt.Errorf("manager: load keys: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	return &Manager{
		config:     config,
		ctx:        runCtx,
		cancel:     cancel,
		running:    make(map[string]*runningEntry),
		pending:    make(map[string]*pendingEntry),
		ignore:     make(map[string]bool),
		errorCount: make(map[string]int),
		version:    make(map[string]string),
	}, nil
}

// InsertKey adds or replaces a device's local key, clears it from the
// ignore table, and persists the key store. This is the provisioning
// entry point: an external commissioning flow calls it once it has
// learned a new device's key.
func (m *Manager) InsertKey(deviceID, localKey string) error {
	m.mu.Lock()
	m.config.KeyStore.InsertKey(deviceID, localKey)
	delete(m.ignore, deviceID)
	m.mu.Unlock()
	return m.config.KeyStore.Persist()
}

// Notify processes one discovery announcement, per the notify algorithm:
// drop if ignored, deduplicate unchanged running sessions, replace
// migrated ones, decrement a pending probe's patience, and otherwise
// start a new session (typed if the device's class is remembered from a
// prior classification, a generic probe otherwise) once its key is
// known.
func (m *Manager) Notify(a discovery.AnnouncementRecord) {
	if a.DeviceID == "" || a.IPv4 == "" {
		return
	}

	m.mu.Lock()

	if m.ignore[a.DeviceID] {
		m.mu.Unlock()
		return
	}

	if entry, ok := m.running[a.DeviceID]; ok {
		if entry.session.IPv4() == a.IPv4 && entry.session.Alive() {
			m.mu.Unlock()
			return
		}
		remembered := entry.newDriver
		delete(m.running, a.DeviceID)
		m.mu.Unlock()
		entry.session.Close()
		m.continueNotify(a, remembered)
		return
	}

	if p, ok := m.pending[a.DeviceID]; ok {
		p.attempts--
		done := p.attempts == 0
		if done {
			delete(m.pending, a.DeviceID)
		}
		m.mu.Unlock()
		if done {
			p.session.Close()
		}
		return
	}

	m.mu.Unlock()
	m.continueNotify(a, nil)
}

// continueNotify looks the device up in the key store and starts the
// appropriate session: typed if remembered is non-nil (an IP-migration
// replacement), a generic probe otherwise.
func (m *Manager) continueNotify(a discovery.AnnouncementRecord, remembered func() device.Driver) {
	keys := m.config.KeyStore.Keys()
	localKey, known := keys[a.DeviceID]
	if !known {
		return
	}

	version := a.ProtocolVersion
	if version == "" {
		version = m.config.ProtocolVersion
	}
	m.mu.Lock()
	m.version[a.DeviceID] = version
	m.mu.Unlock()

	if remembered != nil {
		m.startTyped(a.DeviceID, localKey, a.IPv4, version, remembered)
		return
	}
	m.startProbe(a.DeviceID, localKey, a.IPv4, version)
}

// startTyped builds and starts a classified session, registering it in
// the running table before Start returns so a re-announcement arriving
// mid-connect is correctly deduplicated.
func (m *Manager) startTyped(deviceID, localKey, ipv4, version string, newDriver func() device.Driver) {
	driver := newDriver()
	session, err := device.NewSession(device.Config{
		DeviceID:        deviceID,
		LocalKey:        localKey,
		IPv4:            ipv4,
		Port:            m.config.Port,
		ProtocolVersion: version,
		Driver:          driver,
		Logger:          m.config.Logger,
	})
	if err != nil {
		m.logError(deviceID, fmt.Sprintf("build typed session: %v", err))
		return
	}
	session.AddParent(m.config.Observer)

	m.mu.Lock()
	m.running[deviceID] = &runningEntry{session: session, newDriver: newDriver}
	m.mu.Unlock()

	if err := session.Start(m.ctx); err != nil {
		m.mu.Lock()
		delete(m.running, deviceID)
		m.mu.Unlock()
		m.logError(deviceID, fmt.Sprintf("start typed session: %v", err))
	}
}

// startProbe builds and starts a generic classification probe: a
// raw_dps_mode session heartbeating every ProbeHeartbeatInterval, with
// the Manager itself as parent so got_data/got_error drive
// classification.
func (m *Manager) startProbe(deviceID, localKey, ipv4, version string) {
	session, err := device.NewSession(device.Config{
		DeviceID:          deviceID,
		LocalKey:          localKey,
		IPv4:              ipv4,
		Port:              m.config.Port,
		ProtocolVersion:   version,
		HeartbeatInterval: device.ProbeHeartbeatInterval,
		RawDPSMode:        true,
		Logger:            m.config.Logger,
	})
	if err != nil {
		m.logError(deviceID, fmt.Sprintf("build probe session: %v", err))
		return
	}
	session.AddParent(m)

	m.mu.Lock()
	m.pending[deviceID] = &pendingEntry{session: session, localKey: localKey, ipv4: ipv4, version: version}
	m.mu.Unlock()

	if err := session.Start(m.ctx); err != nil {
		m.mu.Lock()
		delete(m.pending, deviceID)
		m.mu.Unlock()
		m.logError(deviceID, fmt.Sprintf("start probe session: %v", err))
	}
}

// Register is a no-op: a pending session is already recorded in the
// pending table by startProbe before Start returns.
func (m *Manager) Register(s *device.Session) {}

// Unregister drops a probe session's pending-table entry once it
// self-terminates (classification completed, or it was superseded).
func (m *Manager) Unregister(s *device.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, s.DeviceID())
}

// GotData classifies a pending probe's raw DPS shape. On a match, the
// probe is replaced with a typed running session; otherwise the device
// id is moved to the ignore table. Either way the probe is torn down.
func (m *Manager) GotData(record map[string]any) {
	deviceID, ok := record["devId"].(string)
	if !ok {
		return
	}

	m.mu.Lock()
	entry, ok := m.pending[deviceID]
	if !ok {
		m.mu.Unlock()
		m.logDebug(deviceID, "classification data for unknown pending id")
		return
	}
	delete(m.pending, deviceID)

	newDriver := classify(record)
	if newDriver == nil {
		m.ignore[deviceID] = true
	}
	m.mu.Unlock()

	entry.session.Close()

	if newDriver == nil {
		m.logDebug(deviceID, "no classification match")
		return
	}
	m.startTyped(deviceID, entry.localKey, entry.ipv4, entry.version, newDriver)
}

// GotError runs the probe error-recovery ladder: the first error sends
// a raw SET to coax a reply out of a switch, the second tries a curtain
// state value, and after DefaultErrorThreshold errors the device is
// given up on and moved to the ignore table.
func (m *Manager) GotError(s *device.Session, lastAttempted map[string]any) {
	deviceID := s.DeviceID()

	m.mu.Lock()
	count, seen := m.errorCount[deviceID]
	m.mu.Unlock()

	switch {
	case !seen:
		_ = s.RawSet(map[string]any{"1": false})
	case count == 1:
		_ = s.RawSet(map[string]any{"1": "3"})
	}

	m.mu.Lock()
	count++
	m.errorCount[deviceID] = count
	var toClose *device.Session
	if count >= DefaultErrorThreshold {
		m.ignore[deviceID] = true
		if p, ok := m.pending[deviceID]; ok {
			toClose = p.session
			delete(m.pending, deviceID)
		}
		delete(m.errorCount, deviceID)
	}
	m.mu.Unlock()

	if toClose != nil {
		toClose.Close()
	}
}

// Close terminates every session in both tables without waiting for
// acknowledgment, and cancels the context every spawned session was
// started against.
func (m *Manager) Close() {
	m.mu.Lock()
	pending := make([]*device.Session, 0, len(m.pending))
	for _, p := range m.pending {
		pending = append(pending, p.session)
	}
	running := make([]*device.Session, 0, len(m.running))
	for _, r := range m.running {
		running = append(running, r.session)
	}
	m.pending = make(map[string]*pendingEntry)
	m.running = make(map[string]*runningEntry)
	m.mu.Unlock()

	for _, s := range pending {
		s.Close()
	}
	for _, s := range running {
		s.Close()
	}
	m.cancel()
}

func (m *Manager) logError(deviceID, msg string) {
	m.config.Logger.Log(log.Event{
		Layer:    log.LayerManager,
		Category: log.CategoryError,
		DeviceID: deviceID,
		Error: &log.ErrorEventData{
			Layer:   log.LayerManager,
			Message: msg,
			Context: "manager.Manager",
		},
	})
}

func (m *Manager) logDebug(deviceID, msg string) {
	m.config.Logger.Log(log.Event{
		Layer:    log.LayerManager,
		Category: log.CategoryState,
		DeviceID: deviceID,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityClassification,
			Reason:   msg,
			NewState: "ignored",
		},
	})
}

// Compile-time interface satisfaction check.
var _ device.Observer = (*Manager)(nil)
