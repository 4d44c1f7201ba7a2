package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/tuyalan/tuyalan-go/pkg/log"
	"github.com/tuyalan/tuyalan-go/pkg/wire"
)

// DefaultScannerPort is the UDP broadcast port Tuya devices announce on.
const DefaultScannerPort = 6666

// ScannerConfig configures a Scanner.
type ScannerConfig struct {
	// Port to listen on. Defaults to DefaultScannerPort.
	Port int

	// Notify receives every successfully decoded announcement. Required.
	Notify NotifyFunc

	// Logger for protocol logging (optional).
	Logger log.Logger
}

// Scanner listens for Tuya LAN announcement broadcasts and decodes them
// into AnnouncementRecord values.
type Scanner struct {
	config ScannerConfig
	conn   *net.UDPConn

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScanner creates a Scanner from config. Port defaults to 6666 and
// Logger defaults to a no-op logger.
func NewScanner(config ScannerConfig) (*Scanner, error) {
	if config.Notify == nil {
		return nil, fmt.Errorf("discovery: Notify is required")
	}
	if config.Port == 0 {
		config.Port = DefaultScannerPort
	}
	if config.Logger == nil {
		config.Logger = log.NoopLogger{}
	}
	return &Scanner{config: config}, nil
}

// Start binds the UDP socket and begins the read loop in a background
// goroutine. Start returns once the socket is bound and listening.
func (s *Scanner) Start(ctx context.Context) error {
	if s.running.Load() {
		return fmt.Errorf("discovery: scanner already running")
	}

	addr := &net.UDPAddr{IP: net.IPv4zero, Port: s.config.Port}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return fmt.Errorf("discovery: listen udp: %w", err)
	}
	s.conn = conn

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running.Store(true)

	go s.readLoop(runCtx)

	return nil
}

// Stop closes the UDP socket and stops the read loop.
func (s *Scanner) Stop() error {
	if !s.running.Load() {
		return nil
	}
	s.running.Store(false)
	s.cancel()
	err := s.conn.Close()
	<-s.done
	return err
}

func (s *Scanner) readLoop(ctx context.Context) {
	defer close(s.done)

	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, _, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if !s.running.Load() {
				return
			}
			s.logError(fmt.Sprintf("read udp: %v", err))
			continue
		}

		record, err := decodeAnnouncement(buf[:n])
		if err != nil {
			s.logError(fmt.Sprintf("decode announcement: %v", err))
			continue
		}
		if record == nil {
			continue
		}

		s.config.Notify(*record)
	}
}

func decodeAnnouncement(datagram []byte) (*AnnouncementRecord, error) {
	results := wire.Decode(datagram, nil)
	for _, result := range results {
		if result.Err != nil {
			return nil, result.Err
		}
		if len(result.Data) == 0 {
			continue
		}

		var announcement wireAnnouncement
		if err := json.Unmarshal(result.Data, &announcement); err != nil {
			return nil, fmt.Errorf("discovery: unmarshal announcement: %w", err)
		}
		if announcement.GwID == "" || announcement.IP == "" {
			continue
		}

		return &AnnouncementRecord{
			DeviceID:        announcement.GwID,
			IPv4:            announcement.IP,
			ProtocolVersion: announcement.Version,
		}, nil
	}
	return nil, nil
}

func (s *Scanner) logError(msg string) {
	s.config.Logger.Log(log.Event{
		Layer:    log.LayerTransport,
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: msg,
			Context: "discovery.Scanner",
		},
	})
}
