package catalog

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Store holds the current snapshot and swaps it atomically on reload.
type Store struct {
	path    string
	current atomic.Pointer[Snapshot]
	logger  *zap.Logger

	mu        sync.Mutex
	listeners []func(*Snapshot)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for reload events.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore loads path (or the embedded seed when path is empty) and returns a Store.
func NewStore(path string, opts ...StoreOption) (*Store, error) {
	s := &Store{path: path, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	snap, err := Load(path)
	if err != nil {
		return nil, err
	}
	s.current.Store(snap)
	s.logger.Info("catalog loaded", zap.String("source", snap.Source()), zap.Int("tools", snap.Len()))
	return s, nil
}

// NewStoreFromSnapshot wraps an existing snapshot. Reload is a no-op for such stores.
func NewStoreFromSnapshot(snap *Snapshot, opts ...StoreOption) *Store {
	s := &Store{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(snap)
	return s
}

// Path is the catalog file, empty for the embedded seed.
func (s *Store) Path() string { return s.path }

// Current returns the active snapshot.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// OnChange registers fn to be called with each new snapshot after a reload.
func (s *Store) OnChange(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Reload re-reads the catalog file. On error the previous snapshot stays active.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	snap, err := Load(s.path)
	if err != nil {
		s.logger.Warn("catalog reload failed, keeping previous snapshot", zap.String("path", s.path), zap.Error(err))
		return fmt.Errorf("reload catalog: %w", err)
	}
	s.Replace(snap)
	return nil
}

// Replace installs snap and notifies listeners.
func (s *Store) Replace(snap *Snapshot) {
	s.current.Store(snap)
	s.logger.Info("catalog replaced", zap.String("source", snap.Source()), zap.Int("tools", snap.Len()))
	s.mu.Lock()
	listeners := make([]func(*Snapshot), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(snap)
	}
}
