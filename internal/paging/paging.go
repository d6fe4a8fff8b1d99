// Package paging implements the growable "load more" window over a result list
// and page/limit slicing for API envelopes.
package paging

import (
	"sync"

	"github.com/hyperjump/aidex/internal/models"
)

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 12

// Page is the visible prefix of a result list.
type Page struct {
	Visible []models.Tool
	HasMore bool
}

// Window returns the first pageSize*pagesShown results. HasMore is true while
// results remain hidden.
func Window(results []models.Tool, pageSize, pagesShown int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pagesShown < 1 {
		pagesShown = 1
	}
	n := min(pageSize*pagesShown, len(results))
	return Page{
		Visible: results[:n:n],
		HasMore: n < len(results),
	}
}

// Paginator tracks how many pages of the current results are shown.
// It is safe for concurrent use.
type Paginator struct {
	mu         sync.Mutex
	pageSize   int
	pagesShown int
	results    []models.Tool
}

// NewPaginator returns a Paginator showing one page of pageSize.
func NewPaginator(pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Paginator{pageSize: pageSize, pagesShown: 1}
}

// SetResults replaces the upstream list and resets to the first page.
func (p *Paginator) SetResults(results []models.Tool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = results
	p.pagesShown = 1
}

// LoadMore shows one more page. It is a no-op when nothing is hidden and
// reports whether the window grew.
func (p *Paginator) LoadMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !Window(p.results, p.pageSize, p.pagesShown).HasMore {
		return false
	}
	p.pagesShown++
	return true
}

// Current returns the visible window.
func (p *Paginator) Current() Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Window(p.results, p.pageSize, p.pagesShown)
}

// Visible returns the visible results.
func (p *Paginator) Visible() []models.Tool {
	return p.Current().Visible
}

// HasMore reports whether results remain hidden.
func (p *Paginator) HasMore() bool {
	return p.Current().HasMore
}

// PagesShown returns the number of pages currently shown.
func (p *Paginator) PagesShown() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pagesShown
}

// Total returns the length of the upstream list.
func (p *Paginator) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.results)
}
