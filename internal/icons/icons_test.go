package icons

import (
	"testing"

	"github.com/hyperjump/aidex/internal/catalog"
	"github.com/hyperjump/aidex/internal/models"
)

func TestEverySeedCategoryHasIcon(t *testing.T) {
	snap, err := catalog.Seed()
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range snap.Categories() {
		if _, ok := CategoryIcon(c.Name); !ok {
			t.Errorf("category %q has no icon", c.Name)
		}
	}
}

func TestResolveFallbackChain(t *testing.T) {
	r := NewRegistry(WithAssets("chatgpt.png"), WithToolIcon("suno", "music-note"))
	tests := []struct {
		name string
		tool models.Tool
		want Icon
	}{
		{"custom asset", models.Tool{ID: "chatgpt", ImageRef: "chatgpt.png", Category: "Chatbot"}, Icon{KindCustom, "chatgpt.png"}},
		{"missing asset falls back to tool icon", models.Tool{ID: "suno", ImageRef: "gone.png", Category: "Audio"}, Icon{KindFallback, "music-note"}},
		{"category icon", models.Tool{ID: "runway", Category: "VIDEO"}, Icon{KindCategory, "video"}},
		{"placeholder", models.Tool{ID: "x", Category: "Astrology", Title: "Star Gazer"}, Icon{KindPlaceholder, DefaultPlaceholder}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Resolve(tt.tool); got != tt.want {
				t.Errorf("Resolve = %+v, want %+v", got, tt.want)
			}
		})
	}

	noPlaceholder := NewRegistry(WithPlaceholder(""))
	got := noPlaceholder.Resolve(models.Tool{ID: "x", Title: "star gazer", Category: "Astrology"})
	if got != (Icon{KindInitials, "SG"}) {
		t.Errorf("initials fallback = %+v", got)
	}
}

func TestResolveWithoutAssetList(t *testing.T) {
	r := NewRegistry()
	got := r.Resolve(models.Tool{ID: "a", ImageRef: "a.png"})
	if got.Kind != KindCustom {
		t.Errorf("Resolve = %+v, want custom", got)
	}
}

func TestInitials(t *testing.T) {
	tests := map[string]string{
		"ChatGPT":         "C",
		"GitHub Copilot":  "GC",
		"DALL-E 3":        "DE",
		"notion ai tools": "NA",
		"":                "?",
		"---":             "?",
		"élan vital":      "ÉV",
	}
	for in, want := range tests {
		if got := Initials(in); got != want {
			t.Errorf("Initials(%q) = %q, want %q", in, got, want)
		}
	}
}
