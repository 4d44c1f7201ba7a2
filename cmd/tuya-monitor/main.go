// Command tuya-monitor demonstrates wiring a discovery.Scanner to a
// manager.Manager and logging every device event to stderr.
//
// This example shows how to:
//   - Load known device ids/keys into a persistence.KeyStore
//   - Start a Scanner and forward its announcements to a Manager
//   - Implement device.Observer to react to got_data/got_error events
//   - Run until SIGINT/SIGTERM
//
// Usage:
//
//	go run ./cmd/tuya-monitor
//
// This is not an interactive console UI; it is reference wiring that
// mirrors how a host application assembles the pieces this module
// exposes. Loading real device keys (e.g. from a CSV file written by a
// cloud provisioning flow) is left to that host application.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tuyalan/tuyalan-go/pkg/device"
	"github.com/tuyalan/tuyalan-go/pkg/discovery"
	"github.com/tuyalan/tuyalan-go/pkg/log"
	"github.com/tuyalan/tuyalan-go/pkg/manager"
	"github.com/tuyalan/tuyalan-go/pkg/persistence"
)

func main() {
	slogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	protoLog := log.NewSlogAdapter(slogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keys := persistence.NewNoopKeyStore()
	loadKnownKeys(keys)

	obs := &consoleObserver{logger: slogger}
	mgr, err := manager.NewManager(ctx, manager.Config{
		KeyStore: keys,
		Observer: obs,
		Logger:   protoLog,
	})
	if err != nil {
		slogger.Error("create manager", "err", err)
		os.Exit(1)
	}
	defer mgr.Close()

	scanner, err := discovery.NewScanner(discovery.ScannerConfig{
		Notify: mgr.Notify,
		Logger: protoLog,
	})
	if err != nil {
		slogger.Error("create scanner", "err", err)
		os.Exit(1)
	}
	if err := scanner.Start(ctx); err != nil {
		slogger.Error("start scanner", "err", err)
		os.Exit(1)
	}
	defer scanner.Stop()

	slogger.Info("listening for Tuya LAN announcements", "port", discovery.DefaultScannerPort)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slogger.Info("shutting down")
}

// loadKnownKeys seeds the key store with devices known ahead of time.
// A real deployment replaces this with a CSV or database-backed
// persistence.KeyStore implementation loaded from Load().
func loadKnownKeys(keys *persistence.NoopKeyStore) {
	if id, key := os.Getenv("TUYA_DEVICE_ID"), os.Getenv("TUYA_LOCAL_KEY"); id != "" && key != "" {
		keys.InsertKey(id, key)
	}
}

// consoleObserver implements device.Observer by logging every event.
type consoleObserver struct {
	logger *slog.Logger
}

func (o *consoleObserver) Register(s *device.Session) {
	o.logger.Info("session registered", "device_id", s.DeviceID(), "ip", s.IPv4())
}

func (o *consoleObserver) Unregister(s *device.Session) {
	o.logger.Info("session unregistered", "device_id", s.DeviceID())
}

func (o *consoleObserver) GotData(record map[string]any) {
	o.logger.Info("status update", "record", record)
}

func (o *consoleObserver) GotError(s *device.Session, lastAttempted map[string]any) {
	o.logger.Warn("device reported an error", "device_id", s.DeviceID(), "last_attempted", lastAttempted)
}

// Compile-time interface satisfaction check.
var _ device.Observer = (*consoleObserver)(nil)
