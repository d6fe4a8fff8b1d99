// Package cli formats directory data for the aidex command line.
package cli

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/hyperjump/aidex/internal/models"
	"github.com/hyperjump/aidex/internal/search"
	"github.com/hyperjump/aidex/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one tool per line.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat returns the output format for s; empty means text.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OutputText:
		return OutputText, nil
	case OutputCompact, OutputJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, compact, or json)", s)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteTools writes a tool list. page may be nil.
func WriteTools(w io.Writer, tools []models.Tool, page *models.Pagination, format OutputFormat) error {
	switch format {
	case OutputJSON:
		if tools == nil {
			tools = []models.Tool{}
		}
		return WriteJSON(w, struct {
			Tools      []models.Tool      `json:"tools"`
			Pagination *models.Pagination `json:"pagination,omitempty"`
		}{tools, page})
	case OutputCompact:
		for i := range tools {
			writeCompact(w, &tools[i])
		}
		return nil
	default:
		if len(tools) == 0 {
			fmt.Fprintln(w, "No tools found.")
			return nil
		}
		for i := range tools {
			writeOneTool(w, &tools[i])
		}
		if page != nil {
			fmt.Fprintf(w, "Page %d of %d (%d tools)\n", page.Page, page.TotalPages, page.Total)
		}
		return nil
	}
}

// WriteSearchResponse writes a backend search result, including any suggestion.
func WriteSearchResponse(w io.Writer, resp *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, resp)
	}
	if format == OutputText {
		fmt.Fprintf(w, "\nFound %d tools for %q", resp.Total, resp.Query)
		if resp.AutoFuzzy {
			fmt.Fprint(w, " (fuzzy)")
		}
		fmt.Fprintln(w)
		if len(resp.Suggestions) > 0 {
			fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(resp.Suggestions, ", "))
		}
		fmt.Fprintln(w)
	}
	return WriteTools(w, resp.Tools, nil, format)
}

func writeOneTool(w io.Writer, t *models.Tool) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "%s", t.Title)
	var badges []string
	if t.Featured {
		badges = append(badges, "featured")
	}
	if t.IsNew {
		badges = append(badges, "new")
	}
	if len(badges) > 0 {
		fmt.Fprintf(w, " [%s]", strings.Join(badges, ", "))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "ID: %s | Category: %s | Pricing: %s", t.ID, t.Category, t.Pricing)
	if t.Rating != nil {
		fmt.Fprintf(w, " | Rating: %.1f", *t.Rating)
	}
	fmt.Fprintln(w)
	if len(t.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(t.Tags, ", "))
	}
	if t.URL != "" {
		fmt.Fprintf(w, "URL: %s\n", t.URL)
	}
	if t.Description != "" {
		fmt.Fprintf(w, "\n%s\n", search.Excerpt(t.Description, 200))
	}
	fmt.Fprintln(w)
}

func writeCompact(w io.Writer, t *models.Tool) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, utils.Truncate(t.Title, 40), t.Category, t.Pricing)
}

// WriteCategories writes category names with counts and icon keys.
func WriteCategories(w io.Writer, cats []models.Category, format OutputFormat) error {
	if format == OutputJSON {
		if cats == nil {
			cats = []models.Category{}
		}
		return WriteJSON(w, cats)
	}
	for _, c := range cats {
		if format == OutputCompact || c.Icon == "" {
			fmt.Fprintf(w, "%s\t%d\n", c.Name, c.Count)
			continue
		}
		fmt.Fprintf(w, "%-16s %4d  (%s)\n", c.Name, c.Count, c.Icon)
	}
	return nil
}

// WriteStats writes the directory counters.
func WriteStats(w io.Writer, st *models.Stats, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, st)
	}
	fmt.Fprintf(w, "Tools:       %d\n", st.TotalTools)
	fmt.Fprintf(w, "Categories:  %d\n", st.Categories)
	fmt.Fprintf(w, "Featured:    %d\n", st.Featured)
	fmt.Fprintf(w, "New:         %d\n", st.NewTools)
	fmt.Fprintf(w, "Submissions: %d\n", st.Submissions)
	fmt.Fprintf(w, "Subscribers: %d\n", st.Subscribers)
	return nil
}

// WritePreferences writes the local preferences.
func WritePreferences(w io.Writer, p models.Preferences, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, p)
	}
	fmt.Fprintf(w, "Theme: %s\n", p.Theme)
	fmt.Fprintf(w, "Favorites (%d):\n", len(p.FavoriteTools))
	for _, id := range p.FavoriteTools {
		fmt.Fprintf(w, "  %s\n", id)
	}
	fmt.Fprintf(w, "Recent searches (%d):\n", len(p.SearchHistory))
	for i, q := range p.SearchHistory {
		fmt.Fprintf(w, "  %d. %s\n", i+1, q)
	}
	return nil
}

// WriteLines writes one string per line, or a JSON array.
func WriteLines(w io.Writer, lines []string, format OutputFormat) error {
	if format == OutputJSON {
		if lines == nil {
			lines = []string{}
		}
		return WriteJSON(w, lines)
	}
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return nil
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
