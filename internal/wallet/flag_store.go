// internal/wallet/flag_store.go
package wallet

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"
)

// FlagStore persists whether the wallet was last left connected, which
// decides whether a silent reconnect is attempted on start.
type FlagStore interface {
	Connected() bool
	SetConnected(connected bool) error
}

type FileFlagStore struct {
	path string
}

func NewFileFlagStore(path string) *FileFlagStore {
	return &FileFlagStore{path: path}
}

func (s *FileFlagStore) Connected() bool {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "true"
}

func (s *FileFlagStore) SetConnected(connected bool) error {
	if connected {
		return os.WriteFile(s.path, []byte("true"), 0o600)
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

type MemoryFlagStore struct {
	mu        sync.Mutex
	connected bool
}

func (s *MemoryFlagStore) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *MemoryFlagStore) SetConnected(connected bool) error {
	s.mu.Lock()
	s.connected = connected
	s.mu.Unlock()
	return nil
}
