// Package prefs holds user preferences (theme, favorites, search history)
// behind an explicit persistence boundary.
package prefs

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/aidex/internal/models"
)

// Themes.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// MaxHistory is the number of recent searches kept.
const MaxHistory = 10

// Store is the preference state container. Every mutation is written through
// to the backend before it returns.
type Store struct {
	mu      sync.Mutex
	backend Backend
	prefs   models.Preferences
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Defaults returns the preferences of a first run.
func Defaults() models.Preferences {
	return models.Preferences{
		Version:       models.PreferencesSchemaVersion,
		Theme:         ThemeSystem,
		FavoriteTools: []string{},
		SearchHistory: []string{},
	}
}

// NewStore loads preferences from backend, falling back to Defaults when
// nothing is stored. Older layouts are upgraded in memory.
func NewStore(backend Backend, opts ...Option) (*Store, error) {
	s := &Store{backend: backend, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	p, ok, err := backend.Load()
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	if !ok {
		p = Defaults()
	}
	s.prefs = migrate(p)
	return s, nil
}

func migrate(p models.Preferences) models.Preferences {
	if !validTheme(p.Theme) {
		p.Theme = ThemeSystem
	}
	if p.FavoriteTools == nil {
		p.FavoriteTools = []string{}
	}
	if p.SearchHistory == nil {
		p.SearchHistory = []string{}
	}
	if len(p.SearchHistory) > MaxHistory {
		p.SearchHistory = p.SearchHistory[:MaxHistory]
	}
	p.Version = models.PreferencesSchemaVersion
	return p
}

func validTheme(t string) bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// Get returns a copy of the current preferences.
func (s *Store) Get() models.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePrefs(s.prefs)
}

// Theme returns the selected theme.
func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Theme
}

// SetTheme selects light, dark, or system.
func (s *Store) SetTheme(theme string) error {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if !validTheme(theme) {
		return fmt.Errorf("unknown theme %q", theme)
	}
	return s.mutate(func(p *models.Preferences) { p.Theme = theme })
}

// ToggleTheme switches between light and dark. System resolves to dark.
func (s *Store) ToggleTheme() (string, error) {
	var next string
	err := s.mutate(func(p *models.Preferences) {
		if p.Theme == ThemeDark {
			p.Theme = ThemeLight
		} else {
			p.Theme = ThemeDark
		}
		next = p.Theme
	})
	return next, err
}

// Favorites returns favorite tool IDs in the order they were added.
func (s *Store) Favorites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneStrings(s.prefs.FavoriteTools)
}

// IsFavorite reports whether id is a favorite.
func (s *Store) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.prefs.FavoriteTools, id) >= 0
}

// AddFavorite marks id as a favorite. Adding twice is a no-op.
func (s *Store) AddFavorite(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("tool id cannot be empty")
	}
	return s.mutate(func(p *models.Preferences) {
		if indexOf(p.FavoriteTools, id) < 0 {
			p.FavoriteTools = append(p.FavoriteTools, id)
		}
	})
}

// RemoveFavorite unmarks id.
func (s *Store) RemoveFavorite(id string) error {
	return s.mutate(func(p *models.Preferences) {
		if i := indexOf(p.FavoriteTools, id); i >= 0 {
			p.FavoriteTools = append(p.FavoriteTools[:i:i], p.FavoriteTools[i+1:]...)
		}
	})
}

// ToggleFavorite flips id and reports whether it is now a favorite.
func (s *Store) ToggleFavorite(id string) (bool, error) {
	if s.IsFavorite(id) {
		return false, s.RemoveFavorite(id)
	}
	return true, s.AddFavorite(id)
}

// History returns recent searches, most recent first.
func (s *Store) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneStrings(s.prefs.SearchHistory)
}

// AddSearch records query at the front of the history. A case-insensitive
// repeat moves to the front; the list keeps at most MaxHistory entries.
// Blank queries are ignored.
func (s *Store) AddSearch(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	return s.mutate(func(p *models.Preferences) {
		next := make([]string, 0, MaxHistory)
		next = append(next, query)
		for _, q := range p.SearchHistory {
			if len(next) == MaxHistory {
				break
			}
			if !strings.EqualFold(q, query) {
				next = append(next, q)
			}
		}
		p.SearchHistory = next
	})
}

// ClearHistory empties the search history.
func (s *Store) ClearHistory() error {
	return s.mutate(func(p *models.Preferences) { p.SearchHistory = []string{} })
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// mutate applies fn to a copy and commits it only if the backend save succeeds.
func (s *Store) mutate(fn func(p *models.Preferences)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := clonePrefs(s.prefs)
	fn(&next)
	if err := s.backend.Save(next); err != nil {
		s.logger.Warn("failed to save preferences", zap.Error(err))
		return fmt.Errorf("save preferences: %w", err)
	}
	s.prefs = next
	return nil
}

func indexOf(list []string, v string) int {
	for i, have := range list {
		if have == v {
			return i
		}
	}
	return -1
}
