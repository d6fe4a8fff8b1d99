package models

import (
	"fmt"
	"strings"
)

// CategoryAll is the category filter value that matches every category.
const CategoryAll = "all"

// SortKey selects the ordering of derived results.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortTrending  SortKey = "trending"
	SortNewest    SortKey = "newest"
	SortPopular   SortKey = "popular"
	SortRating    SortKey = "rating"
	SortName      SortKey = "name"
)

// ParseSortKey returns the sort key for s; empty means relevance.
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return SortRelevance, nil
	}
	switch k {
	case SortRelevance, SortTrending, SortNewest, SortPopular, SortRating, SortName:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// SearchQuery is the user's current search and filter selection.
// It is ephemeral: created with defaults, mutated by the controller, never persisted.
type SearchQuery struct {
	Text     string    `json:"text"`
	Category string    `json:"category"`
	Tags     []string  `json:"tags,omitempty"`
	Pricing  []Pricing `json:"pricing,omitempty"`
	Sort     SortKey   `json:"sort"`
}

// DefaultSearchQuery returns the query a fresh controller starts with.
func DefaultSearchQuery() SearchQuery {
	return SearchQuery{Category: CategoryAll, Sort: SortRelevance}
}

// Validate normalizes empty fields to defaults and rejects unknown sort keys or pricing tiers.
func (q *SearchQuery) Validate() error {
	if strings.TrimSpace(q.Category) == "" {
		q.Category = CategoryAll
	}
	if q.Sort == "" {
		q.Sort = SortRelevance
	}
	sort, err := ParseSortKey(string(q.Sort))
	if err != nil {
		return err
	}
	q.Sort = sort
	for _, p := range q.Pricing {
		if !p.Valid() {
			return fmt.Errorf("unknown pricing %q", p)
		}
	}
	return nil
}

// Clone returns a deep copy so callers can mutate slices freely.
func (q SearchQuery) Clone() SearchQuery {
	out := q
	out.Tags = append([]string(nil), q.Tags...)
	out.Pricing = append([]Pricing(nil), q.Pricing...)
	return out
}
