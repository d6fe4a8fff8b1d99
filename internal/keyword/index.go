package keyword

import (
	"context"

	"github.com/hyperjump/aidex/internal/models"
)

// SearchOptions are optional parameters for full-text search. Nil means defaults.
type SearchOptions struct {
	// TitleBoost multiplies the score of matches in the title field (e.g. 3.0). 1.0 means no boost.
	TitleBoost float64
	// FuzzyEnabled enables typo-tolerant matching.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2). Defaults to 2.
	Fuzziness int
}

// FullTextIndex is a persistent or in-memory full-text index of tools.
type FullTextIndex interface {
	Index(ctx context.Context, tool *models.Tool) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Hit, error)
	Delete(ctx context.Context, id string) error
	DocCount() (uint64, error)
	Close() error
}

// Hit is a single full-text search hit.
type Hit struct {
	ID    string
	Score float64
}

// TermDictionary provides access to an index's vocabulary for spelling suggestions.
type TermDictionary interface {
	// GetAllTerms returns all unique terms in the index.
	GetAllTerms() ([]string, error)
	// GetTermFrequency returns the document frequency for a term.
	GetTermFrequency(term string) (int, error)
	// ContainsTerm checks if a term exists in the index.
	ContainsTerm(term string) (bool, error)
}
