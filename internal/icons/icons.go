// Package icons resolves the icon shown for a tool or category.
package icons

import (
	"strings"
	"unicode"

	"github.com/hyperjump/aidex/internal/models"
)

// Kind tells which step of the fallback chain produced an icon.
type Kind string

const (
	KindCustom      Kind = "custom"
	KindFallback    Kind = "fallback"
	KindCategory    Kind = "category"
	KindPlaceholder Kind = "placeholder"
	KindInitials    Kind = "initials"
)

// DefaultPlaceholder is the generic icon key.
const DefaultPlaceholder = "sparkles"

// categoryIcons maps lowercase category names to icon keys.
var categoryIcons = map[string]string{
	"writing":      "pen-tool",
	"image":        "image",
	"video":        "video",
	"code":         "code",
	"audio":        "music",
	"chatbot":      "message-circle",
	"productivity": "check-square",
	"research":     "book-open",
	"marketing":    "megaphone",
	"design":       "palette",
	"education":    "graduation-cap",
	"business":     "briefcase",
	"data":         "bar-chart",
	"3d":           "box",
}

// CategoryIcon returns the icon key for category (case-insensitive).
func CategoryIcon(category string) (string, bool) {
	key, ok := categoryIcons[strings.ToLower(strings.TrimSpace(category))]
	return key, ok
}

// Categories returns the category names with a mapped icon.
func Categories() []string {
	out := make([]string, 0, len(categoryIcons))
	for name := range categoryIcons {
		out = append(out, name)
	}
	return out
}

// Icon is a resolved icon reference.
type Icon struct {
	Kind Kind   `json:"kind"`
	Ref  string `json:"ref"`
}

// Registry resolves tool icons through custom asset, per-tool fallback,
// category icon, placeholder, and finally the title's initials.
type Registry struct {
	assets      map[string]struct{}
	toolIcons   map[string]string
	placeholder string
}

// Option configures a Registry.
type Option func(*Registry)

// WithAssets limits custom icons to the given asset references. Without it
// every non-empty ImageRef counts as available.
func WithAssets(refs ...string) Option {
	return func(r *Registry) {
		r.assets = make(map[string]struct{}, len(refs))
		for _, ref := range refs {
			r.assets[ref] = struct{}{}
		}
	}
}

// WithToolIcon sets the fallback icon for one tool ID.
func WithToolIcon(id, icon string) Option {
	return func(r *Registry) { r.toolIcons[id] = icon }
}

// WithPlaceholder sets the generic icon; empty disables it so initials are used.
func WithPlaceholder(icon string) Option {
	return func(r *Registry) { r.placeholder = icon }
}

// NewRegistry returns a Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{toolIcons: make(map[string]string), placeholder: DefaultPlaceholder}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the icon for t. It never fails.
func (r *Registry) Resolve(t models.Tool) Icon {
	if ref := strings.TrimSpace(t.ImageRef); ref != "" && r.hasAsset(ref) {
		return Icon{Kind: KindCustom, Ref: ref}
	}
	if icon, ok := r.toolIcons[t.ID]; ok && icon != "" {
		return Icon{Kind: KindFallback, Ref: icon}
	}
	if icon, ok := CategoryIcon(t.Category); ok {
		return Icon{Kind: KindCategory, Ref: icon}
	}
	if r.placeholder != "" {
		return Icon{Kind: KindPlaceholder, Ref: r.placeholder}
	}
	return Icon{Kind: KindInitials, Ref: Initials(t.Title)}
}

func (r *Registry) hasAsset(ref string) bool {
	if r.assets == nil {
		return true
	}
	_, ok := r.assets[ref]
	return ok
}

// Initials returns up to two uppercase initials of title, or "?" when it has no letters or digits.
func Initials(title string) string {
	var out []rune
	for _, word := range strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		out = append(out, unicode.ToUpper([]rune(word)[0]))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}
