package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	bolt "go.etcd.io/bbolt"

	"github.com/hyperjump/aidex/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrStoreClosed is returned by a backend after Close.
	ErrStoreClosed = errors.New("preferences store is closed")
	// ErrNewerSchema is returned when the stored data was written by a newer version.
	ErrNewerSchema = errors.New("preferences were written by a newer version")
)

// Backend is the persistence boundary of the preference store.
type Backend interface {
	// Load returns the stored preferences; ok is false when nothing was stored yet.
	Load() (prefs models.Preferences, ok bool, err error)
	Save(prefs models.Preferences) error
	Close() error
}

var (
	bucketName = []byte("preferences")
	stateKey   = []byte("state")
	versionKey = []byte("__version")
)

// BoltBackend stores preferences in a bbolt file.
type BoltBackend struct {
	mu     sync.RWMutex
	db     *bolt.DB
	closed bool
}

// OpenBolt opens or creates the preferences file at path.
func OpenBolt(path string) (*BoltBackend, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("preferences path is required")
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, fmt.Errorf("ensure preferences dir: %w", err)
	}
	db, err := bolt.Open(trimmed, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open preferences db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create preferences bucket: %w", err)
	}
	return &BoltBackend{db: db}, nil
}

// Load reads the stored preferences.
func (b *BoltBackend) Load() (models.Preferences, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return models.Preferences{}, false, ErrStoreClosed
	}
	var (
		p     models.Preferences
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return nil
		}
		if raw := bucket.Get(versionKey); raw != nil {
			v, err := strconv.Atoi(string(raw))
			if err != nil {
				return fmt.Errorf("read preferences version: %w", err)
			}
			if v > models.PreferencesSchemaVersion {
				return fmt.Errorf("%w: %d > %d", ErrNewerSchema, v, models.PreferencesSchemaVersion)
			}
		}
		raw := bucket.Get(stateKey)
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("decode preferences: %w", err)
		}
		found = true
		return nil
	})
	return p, found, err
}

// Save writes prefs and the schema version in one transaction.
func (b *BoltBackend) Save(p models.Preferences) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrStoreClosed
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		if err := bucket.Put(versionKey, []byte(strconv.Itoa(models.PreferencesSchemaVersion))); err != nil {
			return fmt.Errorf("write preferences version: %w", err)
		}
		return bucket.Put(stateKey, data)
	})
}

// Close closes the file. Later calls return ErrStoreClosed.
func (b *BoltBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

// MemoryBackend keeps preferences in memory. Useful for tests and ephemeral sessions.
type MemoryBackend struct {
	mu    sync.Mutex
	prefs *models.Preferences
	saves int
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Load() (models.Preferences, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prefs == nil {
		return models.Preferences{}, false, nil
	}
	return clonePrefs(*m.prefs), true, nil
}

func (m *MemoryBackend) Save(p models.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := clonePrefs(p)
	m.prefs = &c
	m.saves++
	return nil
}

func (m *MemoryBackend) Close() error { return nil }

// Saves returns how many times Save was called.
func (m *MemoryBackend) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func clonePrefs(p models.Preferences) models.Preferences {
	p.FavoriteTools = cloneStrings(p.FavoriteTools)
	p.SearchHistory = cloneStrings(p.SearchHistory)
	return p
}

// cloneStrings copies src; the result is never nil so records always carry
// JSON arrays.
func cloneStrings(src []string) []string {
	out := make([]string, len(src))
	copy(out, src)
	return out
}
