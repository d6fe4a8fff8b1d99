// Package catalog loads tool records into immutable snapshots.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/aidex/internal/models"
)

//go:embed seed.yaml
var seedYAML []byte

// SeedSource is the Source of snapshots built from the embedded catalog.
const SeedSource = "embedded"

type catalogFile struct {
	Tools []models.Tool `yaml:"tools"`
}

// Snapshot is an immutable set of tools. A reload produces a new Snapshot, so
// pointer identity tells callers whether the collection changed.
type Snapshot struct {
	tools    []models.Tool
	byID     map[string]int
	source   string
	loadedAt time.Time
}

// NewSnapshot copies tools into a snapshot after validating every record.
// Duplicate IDs are an error.
func NewSnapshot(tools []models.Tool, source string) (*Snapshot, error) {
	s := &Snapshot{
		tools:    make([]models.Tool, len(tools)),
		byID:     make(map[string]int, len(tools)),
		source:   source,
		loadedAt: time.Now(),
	}
	for i, t := range tools {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if _, dup := s.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tool id %q", t.ID)
		}
		t.Tags = append([]string(nil), t.Tags...)
		s.tools[i] = t
		s.byID[t.ID] = i
	}
	return s, nil
}

// Parse builds a snapshot from catalog YAML.
func Parse(data []byte, source string) (*Snapshot, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", source, err)
	}
	return NewSnapshot(f.Tools, source)
}

// Load reads a catalog file. An empty path loads the embedded seed catalog.
func Load(path string) (*Snapshot, error) {
	if path == "" {
		return Seed()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data, path)
}

// Seed returns a snapshot of the embedded catalog.
func Seed() (*Snapshot, error) {
	return Parse(seedYAML, SeedSource)
}

// Tools returns a copy of the records in catalog order.
func (s *Snapshot) Tools() []models.Tool {
	if s == nil {
		return []models.Tool{}
	}
	return append([]models.Tool(nil), s.tools...)
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tools)
}

// Get returns the tool with id.
func (s *Snapshot) Get(id string) (models.Tool, bool) {
	if s == nil {
		return models.Tool{}, false
	}
	i, ok := s.byID[id]
	if !ok {
		return models.Tool{}, false
	}
	return s.tools[i], true
}

// Source is the file path the snapshot came from, or SeedSource.
func (s *Snapshot) Source() string { return s.source }

// LoadedAt is when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Categories returns each category with its tool count, sorted by name.
// Categories differing only in case are merged under the first spelling seen.
func (s *Snapshot) Categories() []models.Category {
	if s == nil {
		return []models.Category{}
	}
	counts := make(map[string]int)
	names := make(map[string]string)
	for _, t := range s.tools {
		if t.Category == "" {
			continue
		}
		key := strings.ToLower(t.Category)
		if _, ok := names[key]; !ok {
			names[key] = t.Category
		}
		counts[key]++
	}
	out := make([]models.Category, 0, len(counts))
	for key, n := range counts {
		out = append(out, models.Category{Name: names[key], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Stats counts tools, categories, featured, and new records.
// Submission and subscriber totals are filled in by the backend.
func (s *Snapshot) Stats() models.Stats {
	st := models.Stats{Categories: len(s.Categories())}
	if s == nil {
		return st
	}
	st.TotalTools = len(s.tools)
	for _, t := range s.tools {
		if t.Featured {
			st.Featured++
		}
		if t.IsNew {
			st.NewTools++
		}
	}
	return st
}
