// Package search derives filtered, sorted tool lists and owns the interactive
// search/filter state.
package search

import (
	"sort"
	"strings"

	"github.com/hyperjump/aidex/internal/keyword"
	"github.com/hyperjump/aidex/internal/models"
)

// Apply derives the result list for q from idx: fuzzy text filter, then
// category, tags (all must match), pricing, and finally the sort order.
// It never returns nil.
func Apply(idx *keyword.FuzzyIndex, q models.SearchQuery) []models.Tool {
	if idx == nil {
		return []models.Tool{}
	}
	candidates := idx.Search(q.Text)
	out := make([]models.Tool, 0, len(candidates))
	for i := range candidates {
		t := &candidates[i]
		if matchCategory(t, q.Category) && matchTags(t, q.Tags) && matchPricing(t, q.Pricing) {
			out = append(out, *t)
		}
	}
	SortTools(out, q.Sort)
	return out
}

func matchCategory(t *models.Tool, category string) bool {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, models.CategoryAll) {
		return true
	}
	return strings.EqualFold(t.Category, category)
}

func matchTags(t *models.Tool, tags []string) bool {
	for _, tag := range tags {
		if !t.HasTag(tag) {
			return false
		}
	}
	return true
}

func matchPricing(t *models.Tool, tiers []models.Pricing) bool {
	if len(tiers) == 0 {
		return true
	}
	for _, p := range tiers {
		if t.Pricing == p {
			return true
		}
	}
	return false
}

// SortTools orders tools in place. Every ordering is stable.
//
//   - relevance, trending: featured first
//   - newest: new tools first
//   - popular: most views first, then featured
//   - rating: highest rating first, unrated last
//   - name: title, case-insensitive
func SortTools(tools []models.Tool, key models.SortKey) {
	switch key {
	case models.SortNewest:
		sort.SliceStable(tools, func(i, j int) bool {
			return tools[i].IsNew && !tools[j].IsNew
		})
	case models.SortPopular:
		sort.SliceStable(tools, func(i, j int) bool {
			if tools[i].Views != tools[j].Views {
				return tools[i].Views > tools[j].Views
			}
			return tools[i].Featured && !tools[j].Featured
		})
	case models.SortRating:
		sort.SliceStable(tools, func(i, j int) bool {
			ri, rj := tools[i].Rating, tools[j].Rating
			if ri == nil || rj == nil {
				return ri != nil && rj == nil
			}
			return *ri > *rj
		})
	case models.SortName:
		sort.SliceStable(tools, func(i, j int) bool {
			return strings.ToLower(tools[i].Title) < strings.ToLower(tools[j].Title)
		})
	default:
		sort.SliceStable(tools, func(i, j int) bool {
			return tools[i].Featured && !tools[j].Featured
		})
	}
}

// Featured returns the featured tools in input order.
func Featured(tools []models.Tool) []models.Tool {
	out := make([]models.Tool, 0)
	for _, t := range tools {
		if t.Featured {
			out = append(out, t)
		}
	}
	return out
}

// Hot returns new or featured tools in popular order, at most limit (0 = all).
func Hot(tools []models.Tool, limit int) []models.Tool {
	out := make([]models.Tool, 0)
	for _, t := range tools {
		if t.IsNew || t.Featured {
			out = append(out, t)
		}
	}
	SortTools(out, models.SortPopular)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Excerpt shortens s to at most maxLen runes, cutting at a word boundary when
// one is close and appending "...".
func Excerpt(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	cut := maxLen
	for i := maxLen; i > maxLen*3/4; i-- {
		if r[i] == ' ' {
			cut = i
			break
		}
	}
	return strings.TrimRight(string(r[:cut]), " ,.;:") + "..."
}
