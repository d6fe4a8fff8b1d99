package paging

import "github.com/hyperjump/aidex/internal/models"

const (
	// DefaultLimit is the page size of API list endpoints.
	DefaultLimit = 20
	// MaxLimit caps the page size a client may request.
	MaxLimit = 100
)

// Bounds are half-open [Start, End) indexes into a list.
type Bounds struct {
	Start, End int
}

// Normalize clamps page to >= 1 and limit to [1, MaxLimit], substituting
// DefaultLimit for a non-positive limit.
func Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// Slice returns the bounds of page (1-based) in a list of total items.
// Pages past the end produce an empty range at total.
func Slice(total, page, limit int) Bounds {
	page, limit = Normalize(page, limit)
	if page-1 > total/limit {
		return Bounds{Start: total, End: total}
	}
	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	return Bounds{Start: start, End: end}
}

// Meta builds envelope pagination metadata.
func Meta(total, page, limit int) *models.Pagination {
	page, limit = Normalize(page, limit)
	return &models.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}
}

// PageOf returns the tools on page together with the envelope metadata.
func PageOf(tools []models.Tool, page, limit int) ([]models.Tool, *models.Pagination) {
	b := Slice(len(tools), page, limit)
	return tools[b.Start:b.End], Meta(len(tools), page, limit)
}
