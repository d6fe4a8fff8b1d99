package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/aidex/internal/models"
)

func TestSeed(t *testing.T) {
	snap, err := Seed()
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if snap.Len() < 10 {
		t.Errorf("seed has %d tools, want at least 10", snap.Len())
	}
	if snap.Source() != SeedSource {
		t.Errorf("Source() = %q", snap.Source())
	}
	tool, ok := snap.Get("midjourney")
	if !ok {
		t.Fatal("seed missing midjourney")
	}
	if tool.Pricing != models.PricingPaid || !tool.Featured {
		t.Errorf("midjourney = %+v", tool)
	}
	if tool.Rating == nil || *tool.Rating <= 0 {
		t.Error("midjourney rating not parsed")
	}
	if cursor, _ := snap.Get("cursor"); !cursor.IsNew {
		t.Error("is_new not parsed for cursor")
	}
}

func TestNewSnapshot_DuplicateID(t *testing.T) {
	_, err := NewSnapshot([]models.Tool{
		{ID: "a", Title: "A"},
		{ID: "a", Title: "Again"},
	}, "test")
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("err = %v, want duplicate id error", err)
	}
}

func TestNewSnapshot_InvalidRecord(t *testing.T) {
	if _, err := NewSnapshot([]models.Tool{{ID: "a"}}, "test"); err == nil {
		t.Error("expected error for missing title")
	}
}

func TestSnapshot_IsolatedFromInput(t *testing.T) {
	in := []models.Tool{{ID: "a", Title: "A", Tags: []string{"x"}}}
	snap, err := NewSnapshot(in, "test")
	if err != nil {
		t.Fatal(err)
	}
	in[0].Title = "changed"
	in[0].Tags[0] = "changed"
	got, _ := snap.Get("a")
	if got.Title != "A" || got.Tags[0] != "x" {
		t.Errorf("snapshot mutated through input: %+v", got)
	}
}

func TestSnapshot_Categories(t *testing.T) {
	snap, err := NewSnapshot([]models.Tool{
		{ID: "1", Title: "One", Category: "Video"},
		{ID: "2", Title: "Two", Category: "audio"},
		{ID: "3", Title: "Three", Category: "Audio"},
		{ID: "4", Title: "Four"},
	}, "test")
	if err != nil {
		t.Fatal(err)
	}
	cats := snap.Categories()
	if len(cats) != 2 {
		t.Fatalf("Categories() = %+v", cats)
	}
	if cats[0].Name != "audio" || cats[0].Count != 2 {
		t.Errorf("cats[0] = %+v, want audio x2", cats[0])
	}
	if cats[1].Name != "Video" || cats[1].Count != 1 {
		t.Errorf("cats[1] = %+v", cats[1])
	}
}

func TestSnapshot_Stats(t *testing.T) {
	snap, err := NewSnapshot([]models.Tool{
		{ID: "1", Title: "One", Category: "Video", Featured: true},
		{ID: "2", Title: "Two", Category: "Audio", IsNew: true},
		{ID: "3", Title: "Three", Category: "Audio", Featured: true, IsNew: true},
	}, "test")
	if err != nil {
		t.Fatal(err)
	}
	st := snap.Stats()
	if st.TotalTools != 3 || st.Categories != 2 || st.Featured != 2 || st.NewTools != 2 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestNilSnapshot(t *testing.T) {
	var snap *Snapshot
	if snap.Len() != 0 || len(snap.Tools()) != 0 || len(snap.Categories()) != 0 {
		t.Error("nil snapshot should behave as empty")
	}
	if _, ok := snap.Get("x"); ok {
		t.Error("nil snapshot Get returned ok")
	}
}

func writeCatalog(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestStore_ReloadSwapsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.yaml")
	writeCatalog(t, path, "tools:\n  - id: a\n    title: A\n")

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	first := store.Current()

	var notified *Snapshot
	store.OnChange(func(s *Snapshot) { notified = s })

	writeCatalog(t, path, "tools:\n  - id: a\n    title: A\n  - id: b\n    title: B\n")
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	second := store.Current()
	if second == first {
		t.Error("Reload kept the same snapshot identity")
	}
	if second.Len() != 2 || notified != second {
		t.Errorf("after reload len=%d notified=%v", second.Len(), notified == second)
	}
}

func TestStore_ReloadErrorKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.yaml")
	writeCatalog(t, path, "tools:\n  - id: a\n    title: A\n")
	store, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	before := store.Current()

	writeCatalog(t, path, "tools:\n  - id: a\n    title: A\n  - id: a\n    title: dup\n")
	if err := store.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if store.Current() != before {
		t.Error("failed reload replaced the snapshot")
	}
}

func TestStore_EmptyPathUsesSeed(t *testing.T) {
	store, err := NewStore("")
	if err != nil {
		t.Fatal(err)
	}
	if store.Current().Source() != SeedSource {
		t.Errorf("Source = %q", store.Current().Source())
	}
	if err := store.Reload(); err != nil {
		t.Errorf("Reload on seed store: %v", err)
	}
}

func TestStore_ReplaceNotifiesListenersInOrder(t *testing.T) {
	seed, err := Seed()
	if err != nil {
		t.Fatal(err)
	}
	store := NewStoreFromSnapshot(seed)

	var calls []string
	store.OnChange(func(*Snapshot) {
		calls = append(calls, "first")
		// Registered during notification; runs from the next Replace on.
		store.OnChange(func(*Snapshot) { calls = append(calls, "late") })
	})
	store.OnChange(func(*Snapshot) { calls = append(calls, "second") })

	next, err := NewSnapshot([]models.Tool{{ID: "a", Title: "A", Category: "Chat", Pricing: models.PricingFree}}, "test")
	if err != nil {
		t.Fatal(err)
	}
	store.Replace(next)
	if got := strings.Join(calls, ","); got != "first,second" {
		t.Errorf("listeners = %s, want first,second", got)
	}
	if store.Current() != next {
		t.Error("Replace did not install the snapshot")
	}
}
