package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/aidex/internal/catalog"
	"github.com/hyperjump/aidex/internal/config"
	"github.com/hyperjump/aidex/internal/models"
	"github.com/hyperjump/aidex/internal/server"
	"github.com/hyperjump/aidex/internal/storage"
)

func TestSearchArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"image generator", "-sort", "rating"},
			expected: []string{"-sort", "rating", "image generator"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-sort", "rating", "image generator"},
			expected: []string{"-sort", "rating", "image generator"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"image generator"},
			expected: []string{"image generator"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"one", "two", "-pages", "2"},
			expected: []string{"-pages", "2", "one", "two"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchArgsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("searchArgsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"midjourney"}, "midjourney"},
		{"multiple words", []string{"image", "generator"}, "image generator"},
		{"single quoted phrase", []string{"image generator"}, "image generator"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildSearchQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestSearchConfigPathFromArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		defaultPath string
		want        string
	}{
		{"no config flag", []string{"-pages", "2", "query"}, "/default.yaml", "/default.yaml"},
		{"-config present", []string{"-config", "/custom.yaml", "query"}, "/default.yaml", "/custom.yaml"},
		{"--config present", []string{"--config", "/other.yaml"}, "/default.yaml", "/other.yaml"},
		{"config at end", []string{"query", "-config", "/end.yaml"}, "/default.yaml", "/end.yaml"},
		{"config with equals", []string{"-config=/eq.yaml", "query"}, "/default.yaml", "/eq.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchConfigPathFromArgs(tt.args, tt.defaultPath)
			if got != tt.want {
				t.Errorf("searchConfigPathFromArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" api, ,free-tier ,")
	if !reflect.DeepEqual(got, []string{"api", "free-tier"}) {
		t.Errorf("splitList() = %v", got)
	}
	if splitList("") != nil {
		t.Error("empty input should give nil")
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
}

func TestLoadConfig_explicitMissingPathFails(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing explicit config")
	}
}

// writeTestConfig writes a config that keeps preferences inside a temp dir and uses the seed catalog.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
prefs:
  path: ./prefs.db
paging:
  page_size: 5
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func runOK(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	if err := run(args, &out); err != nil {
		t.Fatalf("run(%v): %v", args, err)
	}
	return out.String()
}

func compactIDs(out string) []string {
	var ids []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		ids = append(ids, strings.SplitN(line, "\t", 2)[0])
	}
	return ids
}

func TestRun_VersionAndUnknown(t *testing.T) {
	if out := runOK(t, "version"); !strings.Contains(out, "aidex version") {
		t.Errorf("version output = %q", out)
	}
	if err := run([]string{"bogus"}, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Errorf("unknown command err = %v, want errUsage", err)
	}
	if err := run(nil, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Errorf("no command err = %v, want errUsage", err)
	}
}

func TestRunSearch_TypoTolerant(t *testing.T) {
	cfg := writeTestConfig(t)
	out := runOK(t, "search", "midjurney", "-config", cfg, "-output", "compact", "-no-history")
	ids := compactIDs(out)
	found := false
	for _, id := range ids {
		if id == "midjourney" {
			found = true
		}
	}
	if !found {
		t.Errorf("search midjurney = %v, want midjourney among results", ids)
	}
}

func TestRunSearch_FiltersAndPages(t *testing.T) {
	cfg := writeTestConfig(t)
	out := runOK(t, "search", "-config", cfg, "-category", "Writing", "-sort", "name", "-output", "compact")
	if got := compactIDs(out); !reflect.DeepEqual(got, []string{"grammarly", "jasper"}) {
		t.Errorf("writing tools = %v", got)
	}

	out = runOK(t, "search", "-config", cfg, "-output", "json")
	var first struct {
		Tools      []models.Tool      `json:"tools"`
		Pagination *models.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal([]byte(out), &first); err != nil {
		t.Fatal(err)
	}
	if len(first.Tools) != 5 || first.Pagination.Total != 16 {
		t.Errorf("first page: %d tools, pagination %+v", len(first.Tools), first.Pagination)
	}

	out = runOK(t, "search", "-config", cfg, "-pages", "2", "-output", "compact")
	if got := compactIDs(out); len(got) != 10 {
		t.Errorf("two pages should show 10 tools, got %d", len(got))
	}

	if err := run([]string{"search", "-config", cfg, "-sort", "loudest"}, &bytes.Buffer{}); err == nil {
		t.Error("unknown sort key should fail")
	}
	if err := run([]string{"search", "-config", cfg, "-pricing", "cheap"}, &bytes.Buffer{}); err == nil {
		t.Error("unknown pricing tier should fail")
	}
}

func TestRunSearch_RecordsHistory(t *testing.T) {
	cfg := writeTestConfig(t)
	runOK(t, "search", "-config", cfg, "image")
	runOK(t, "search", "-config", cfg, "code")
	runOK(t, "search", "-config", cfg, "-no-history", "video")

	out := runOK(t, "prefs", "history", "-config", cfg)
	if got := strings.Fields(out); !reflect.DeepEqual(got, []string{"code", "image"}) {
		t.Errorf("history = %v", got)
	}
	runOK(t, "prefs", "clear-history", "-config", cfg)
	if out := runOK(t, "prefs", "history", "-config", cfg); strings.TrimSpace(out) != "" {
		t.Errorf("history after clear = %q", out)
	}
}

func TestRunPrefs_ThemeAndFavorites(t *testing.T) {
	cfg := writeTestConfig(t)
	if out := runOK(t, "prefs", "theme", "-config", cfg); !strings.Contains(out, "dark") {
		t.Errorf("toggle from system should give dark, got %q", out)
	}
	if out := runOK(t, "prefs", "theme", "light", "-config", cfg); !strings.Contains(out, "light") {
		t.Errorf("set theme output = %q", out)
	}
	if err := run([]string{"prefs", "theme", "neon", "-config", cfg}, &bytes.Buffer{}); err == nil {
		t.Error("unknown theme should fail")
	}

	runOK(t, "prefs", "favorite", "claude", "-config", cfg)
	out := runOK(t, "prefs", "favorite", "suno", "-config", cfg, "-output", "json")
	var favs []string
	if err := json.Unmarshal([]byte(out), &favs); err != nil {
		t.Fatal(err)
	}
	if len(favs) != 2 {
		t.Errorf("favorites = %v", favs)
	}
	runOK(t, "prefs", "unfavorite", "claude", "-config", cfg)

	out = runOK(t, "prefs", "show", "-config", cfg, "-output", "json")
	var p models.Preferences
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatal(err)
	}
	if p.Theme != "light" || !reflect.DeepEqual(p.FavoriteTools, []string{"suno"}) {
		t.Errorf("prefs = %+v", p)
	}
}

func TestRunSuggest(t *testing.T) {
	cfg := writeTestConfig(t)
	out := runOK(t, "suggest", "-config", cfg, "midjurney")
	if strings.TrimSpace(out) != "midjourney" {
		t.Errorf("correction = %q, want midjourney", out)
	}
	if out := runOK(t, "suggest", "-config", cfg, "midjourney"); strings.TrimSpace(out) != "" {
		t.Errorf("known word should have no correction, got %q", out)
	}
	out = runOK(t, "suggest", "-config", cfg, "-complete", "-output", "json", "image gen")
	var terms []string
	if err := json.Unmarshal([]byte(out), &terms); err != nil {
		t.Fatal(err)
	}
	for _, term := range terms {
		if !strings.HasPrefix(term, "gen") {
			t.Errorf("completion %q does not start with gen", term)
		}
	}
}

func TestRunHosted_RequiresSupabaseConfig(t *testing.T) {
	cfg := writeTestConfig(t)
	err := run([]string{"hosted", "list", "-config", cfg}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "supabase is not configured") {
		t.Errorf("err = %v", err)
	}
}

func newBackend(t *testing.T) string {
	t.Helper()
	seed, err := catalog.Seed()
	if err != nil {
		t.Fatal(err)
	}
	st, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })
	cfg := config.Default()
	cfg.Storage.BleveIndexPath = ""
	srv, err := server.NewServer(catalog.NewStoreFromSnapshot(seed), st, cfg)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL + "/api"
}

func TestRunRemote_AgainstBackend(t *testing.T) {
	cfg := writeTestConfig(t)
	base := newBackend(t)

	out := runOK(t, "remote", "list", "-config", cfg, "-base-url", base, "-limit", "4", "-page", "2", "-output", "json")
	var list struct {
		Tools      []models.Tool      `json:"tools"`
		Pagination *models.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Tools) != 4 || list.Pagination == nil || list.Pagination.Page != 2 || list.Pagination.Total != 16 {
		t.Errorf("list page 2: %d tools, pagination %+v", len(list.Tools), list.Pagination)
	}

	out = runOK(t, "remote", "get", "claude", "-config", cfg, "-base-url", base, "-output", "compact")
	if got := compactIDs(out); !reflect.DeepEqual(got, []string{"claude"}) {
		t.Errorf("get claude = %v", got)
	}
	if err := run([]string{"remote", "get", "nope", "-config", cfg, "-base-url", base}, &bytes.Buffer{}); err == nil {
		t.Error("unknown tool should fail")
	}

	out = runOK(t, "remote", "categories", "-config", cfg, "-base-url", base)
	if !strings.Contains(out, "Image") {
		t.Errorf("categories output missing Image: %q", out)
	}

	out = runOK(t, "remote", "subscribe", "ada@example.com", "-config", cfg, "-base-url", base)
	if !strings.Contains(out, "Subscribed") {
		t.Errorf("subscribe output = %q", out)
	}
	if err := run([]string{"remote", "subscribe", "ada@example.com", "-config", cfg, "-base-url", base}, &bytes.Buffer{}); err == nil {
		t.Error("duplicate subscription should fail")
	}

	if err := run([]string{"remote", "submit", "-config", cfg, "-base-url", base, "-title", "Only a title"}, &bytes.Buffer{}); err == nil {
		t.Error("incomplete submission should fail validation")
	}
}
