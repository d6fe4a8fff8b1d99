// Package baas reads the hosted tool directory from Supabase and manages
// per-user favorites there.
//
// postgrest-go does not take a context, so ctx is only checked before each call.
package baas

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"github.com/hyperjump/aidex/internal/models"
	"github.com/hyperjump/aidex/internal/paging"
)

const (
	toolsTable     = "tools"
	favoritesTable = "favorites"
	restPath       = "/rest/v1"
	schema         = "public"
)

// ErrUnauthorized is returned when Supabase Auth rejects an access token.
var ErrUnauthorized = errors.New("invalid or expired access token")

// toolRow is a row of the tools table.
type toolRow struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Pricing     string   `json:"pricing"`
	Featured    bool     `json:"featured"`
	IsNew       bool     `json:"is_new"`
	ImageRef    string   `json:"image_ref"`
	URL         string   `json:"url"`
	Rating      *float64 `json:"rating"`
	Views       int      `json:"views"`
}

func (r toolRow) tool() models.Tool {
	return models.Tool{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Tags:        r.Tags,
		Pricing:     models.Pricing(strings.ToLower(r.Pricing)),
		Featured:    r.Featured,
		IsNew:       r.IsNew,
		ImageRef:    r.ImageRef,
		URL:         r.URL,
		Rating:      r.Rating,
		Views:       r.Views,
	}
}

func toTools(rows []toolRow) []models.Tool {
	out := make([]models.Tool, len(rows))
	for i, r := range rows {
		out[i] = r.tool()
	}
	return out
}

type favoriteRow struct {
	UserID string `json:"user_id"`
	ToolID string `json:"tool_id"`
}

// Client queries the Supabase project.
type Client struct {
	url    string
	key    string
	client *supabase.Client
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New connects to the project at url with the anon or service key.
func New(url, key string, opts ...Option) (*Client, error) {
	url = strings.TrimRight(url, "/")
	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	c := &Client{url: url, key: key, client: client, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListTools returns one page of tools ordered by title, using range pagination.
func (c *Client) ListTools(ctx context.Context, page, limit int) ([]models.Tool, *models.Pagination, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	page, limit = paging.Normalize(page, limit)
	from := (page - 1) * limit
	var rows []toolRow
	count, err := c.client.From(toolsTable).
		Select("*", "exact", false).
		Order("title", &postgrest.OrderOpts{Ascending: true}).
		Range(from, from+limit-1, "").
		ExecuteTo(&rows)
	if err != nil {
		c.logger.Error("supabase list tools failed", zap.Error(err))
		return nil, nil, fmt.Errorf("list tools: %w", err)
	}
	return toTools(rows), paging.Meta(int(count), page, limit), nil
}

// SearchTools matches q case-insensitively against title or description.
func (c *Client) SearchTools(ctx context.Context, q string, limit int) ([]models.Tool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	term := sanitizePattern(q)
	if term == "" {
		return []models.Tool{}, nil
	}
	_, limit = paging.Normalize(1, limit)
	filter := fmt.Sprintf("title.ilike.*%s*,description.ilike.*%s*", term, term)
	var rows []toolRow
	_, err := c.client.From(toolsTable).
		Select("*", "", false).
		Or(filter, "").
		Limit(limit, "").
		ExecuteTo(&rows)
	if err != nil {
		c.logger.Error("supabase search failed", zap.String("q", q), zap.Error(err))
		return nil, fmt.Errorf("search tools: %w", err)
	}
	return toTools(rows), nil
}

// ToolsWithTag returns tools whose tags array contains tag.
func (c *Client) ToolsWithTag(ctx context.Context, tag string) ([]models.Tool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []toolRow
	_, err := c.client.From(toolsTable).
		Select("*", "", false).
		Contains("tags", []string{strings.ToLower(strings.TrimSpace(tag))}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("tools with tag %s: %w", tag, err)
	}
	return toTools(rows), nil
}

// CategoryCounts returns every category with its tool count, sorted by name.
// Categories differing only in case are merged.
func (c *Client) CategoryCounts(ctx context.Context) ([]models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []struct {
		Category string `json:"category"`
	}
	if _, err := c.client.From(toolsTable).Select("category", "", false).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}
	counts := make(map[string]int)
	names := make(map[string]string)
	for _, r := range rows {
		if r.Category == "" {
			continue
		}
		key := strings.ToLower(r.Category)
		if _, ok := names[key]; !ok {
			names[key] = r.Category
		}
		counts[key]++
	}
	out := make([]models.Category, 0, len(counts))
	for key, n := range counts {
		out = append(out, models.Category{Name: names[key], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// sanitizePattern drops characters that would break a PostgREST or() filter.
func sanitizePattern(q string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case ',', '(', ')', '*', '.', '"', '\\':
			return -1
		}
		return r
	}, q))
}
