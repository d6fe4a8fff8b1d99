package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hyperjump/aidex/internal/models"
)

// ListParams filter and page the tool list.
type ListParams struct {
	Page     int
	Limit    int
	Category string
	Pricing  []models.Pricing
	Tags     []string
	Sort     models.SortKey
	Query    string
}

func (p ListParams) query() map[string]string {
	q := map[string]string{}
	if p.Page > 0 {
		q["page"] = strconv.Itoa(p.Page)
	}
	if p.Limit > 0 {
		q["limit"] = strconv.Itoa(p.Limit)
	}
	if p.Category != "" {
		q["category"] = p.Category
	}
	if len(p.Pricing) > 0 {
		tiers := make([]string, len(p.Pricing))
		for i, t := range p.Pricing {
			tiers[i] = string(t)
		}
		q["pricing"] = strings.Join(tiers, ",")
	}
	if len(p.Tags) > 0 {
		q["tags"] = strings.Join(p.Tags, ",")
	}
	if p.Sort != "" {
		q["sort"] = string(p.Sort)
	}
	if p.Query != "" {
		q["q"] = p.Query
	}
	return q
}

// ToolPage is one page of tools with its pagination metadata.
type ToolPage struct {
	Tools      []models.Tool
	Pagination *models.Pagination
}

// decode runs the call and unwraps the {data, success, message} envelope.
func decode[T any](ctx context.Context, c *Client, endpoint string, opts *RequestOptions) (T, *models.Pagination, error) {
	var zero T
	raw, err := c.Request(ctx, endpoint, opts)
	if err != nil {
		return zero, nil, err
	}
	var env models.Envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, nil, fmt.Errorf("decode %s: %w", endpoint, err)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return zero, nil, &APIError{Endpoint: endpoint, Message: msg}
	}
	return env.Data, env.Pagination, nil
}

// ListTools returns one page of tools.
func (c *Client) ListTools(ctx context.Context, p ListParams) (*ToolPage, error) {
	tools, pg, err := decode[[]models.Tool](ctx, c, "/tools", &RequestOptions{Query: p.query()})
	if err != nil {
		return nil, err
	}
	return &ToolPage{Tools: tools, Pagination: pg}, nil
}

// GetTool returns a single tool.
func (c *Client) GetTool(ctx context.Context, id string) (*models.Tool, error) {
	tool, _, err := decode[models.Tool](ctx, c, "/tools/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return &tool, nil
}

// FeaturedTools returns the featured tools.
func (c *Client) FeaturedTools(ctx context.Context) ([]models.Tool, error) {
	tools, _, err := decode[[]models.Tool](ctx, c, "/tools/featured", nil)
	return tools, err
}

// HotTools returns trending new or featured tools.
func (c *Client) HotTools(ctx context.Context) ([]models.Tool, error) {
	tools, _, err := decode[[]models.Tool](ctx, c, "/tools/hot", nil)
	return tools, err
}

// ToolsByCategory returns one page of a category.
func (c *Client) ToolsByCategory(ctx context.Context, category string, page, limit int) (*ToolPage, error) {
	p := ListParams{Page: page, Limit: limit}
	tools, pg, err := decode[[]models.Tool](ctx, c, "/tools/category/"+url.PathEscape(category), &RequestOptions{Query: p.query()})
	if err != nil {
		return nil, err
	}
	return &ToolPage{Tools: tools, Pagination: pg}, nil
}

// SearchTools runs a backend full-text search.
func (c *Client) SearchTools(ctx context.Context, q string, limit int) (*models.SearchResponse, error) {
	query := map[string]string{"q": q}
	if limit > 0 {
		query["limit"] = strconv.Itoa(limit)
	}
	res, _, err := decode[models.SearchResponse](ctx, c, "/tools/search", &RequestOptions{Query: query})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// SubmitTool files a new tool for review and drops cached tool lists.
func (c *Client) SubmitTool(ctx context.Context, in models.SubmissionInput) (*models.Submission, error) {
	sub, _, err := decode[models.Submission](ctx, c, "/tools/submit", &RequestOptions{Method: http.MethodPost, Body: in})
	if err != nil {
		return nil, err
	}
	c.ClearCache("/tools")
	return &sub, nil
}

// GetCategories returns every category with its tool count.
func (c *Client) GetCategories(ctx context.Context) ([]models.Category, error) {
	cats, _, err := decode[[]models.Category](ctx, c, "/categories", nil)
	return cats, err
}

// GetStats returns the directory counters.
func (c *Client) GetStats(ctx context.Context) (*models.Stats, error) {
	st, _, err := decode[models.Stats](ctx, c, "/stats", nil)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Subscribe adds email to the newsletter.
func (c *Client) Subscribe(ctx context.Context, email string) error {
	_, _, err := decode[RawMessage](ctx, c, "/subscribe", &RequestOptions{
		Method: http.MethodPost,
		Body:   models.SubscribeInput{Email: email},
	})
	return err
}

// SendFeedback posts user feedback.
func (c *Client) SendFeedback(ctx context.Context, in models.FeedbackInput) (*models.Feedback, error) {
	fb, _, err := decode[models.Feedback](ctx, c, "/feedback", &RequestOptions{Method: http.MethodPost, Body: in})
	if err != nil {
		return nil, err
	}
	return &fb, nil
}
