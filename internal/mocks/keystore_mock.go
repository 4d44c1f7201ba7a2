package mocks

import (
	"sync"

	"github.com/tuyalan/tuyalan-go/pkg/persistence"
)

// InsertKeyCall records one InsertKey invocation.
type InsertKeyCall struct {
	DeviceID string
	LocalKey string
}

// KeyStore is a test double implementing persistence.KeyStore, backed by
// a plain map like persistence.NoopKeyStore but additionally recording
// every InsertKey call and every Load/Persist invocation count, and
// allowing a test to inject a canned error from either.
type KeyStore struct {
	mu sync.Mutex

	keys map[string]string

	InsertKeyCalls []InsertKeyCall
	LoadCalls      int
	PersistCalls   int

	LoadErr    error
	PersistErr error
}

// NewKeyStore returns a KeyStore mock seeded with the given device_id ->
// local_key pairs.
func NewKeyStore(seed map[string]string) *KeyStore {
	keys := make(map[string]string, len(seed))
	for k, v := range seed {
		keys[k] = v
	}
	return &KeyStore{keys: keys}
}

func (k *KeyStore) Keys() map[string]string {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make(map[string]string, len(k.keys))
	for id, key := range k.keys {
		out[id] = key
	}
	return out
}

func (k *KeyStore) InsertKey(deviceID, localKey string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.keys == nil {
		k.keys = make(map[string]string)
	}
	k.keys[deviceID] = localKey
	k.InsertKeyCalls = append(k.InsertKeyCalls, InsertKeyCall{DeviceID: deviceID, LocalKey: localKey})
}

func (k *KeyStore) Load() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.LoadCalls++
	return k.LoadErr
}

func (k *KeyStore) Persist() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.PersistCalls++
	return k.PersistErr
}

// Compile-time interface satisfaction check.
var _ persistence.KeyStore = (*KeyStore)(nil)
