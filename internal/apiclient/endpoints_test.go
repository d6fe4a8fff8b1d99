package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/aidex/internal/models"
)

func TestListTools(t *testing.T) {
	be := newFakeBackend(t, map[string]http.HandlerFunc{
		"/tools": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "2", q.Get("page"))
			assert.Equal(t, "free,paid", q.Get("pricing"))
			assert.Equal(t, "art,image", q.Get("tags"))
			assert.Equal(t, "name", q.Get("sort"))
			_, _ = io.WriteString(w, toolsEnvelope)
		},
	})
	c := New(be.URL)
	page, err := c.ListTools(context.Background(), ListParams{
		Page:    2,
		Pricing: []models.Pricing{models.PricingFree, models.PricingPaid},
		Tags:    []string{"art", "image"},
		Sort:    models.SortName,
	})
	require.NoError(t, err)
	require.Len(t, page.Tools, 1)
	assert.Equal(t, "chatgpt", page.Tools[0].ID)
	assert.True(t, page.Tools[0].Featured)
	require.NotNil(t, page.Pagination)
	assert.Equal(t, 1, page.Pagination.TotalPages)
}

func TestGetTool_EscapesID(t *testing.T) {
	be := newFakeBackend(t, map[string]http.HandlerFunc{
		"/tools/": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/tools/dall%20e", r.URL.EscapedPath())
			_, _ = io.WriteString(w, `{"success":true,"data":{"id":"dall e","title":"DALL-E"}}`)
		},
	})
	tool, err := New(be.URL).GetTool(context.Background(), "dall e")
	require.NoError(t, err)
	assert.Equal(t, "DALL-E", tool.Title)
}

func TestEnvelopeFailure(t *testing.T) {
	be := newFakeBackend(t, map[string]http.HandlerFunc{
		"/stats": okJSON(`{"success":false,"message":"maintenance"}`),
	})
	_, err := New(be.URL).GetStats(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "maintenance", apiErr.Message)
}

func TestSubmitTool_ClearsToolCache(t *testing.T) {
	be := newFakeBackend(t, map[string]http.HandlerFunc{
		"/tools":        okJSON(toolsEnvelope),
		"/categories":   okJSON(`{"success":true,"data":[]}`),
		"/tools/submit": okJSON(`{"success":true,"data":{"id":"sub-1","status":"pending","title":"New"}}`),
	})
	c := New(be.URL)
	ctx := context.Background()

	_, err := c.ListTools(ctx, ListParams{})
	require.NoError(t, err)
	_, err = c.GetCategories(ctx)
	require.NoError(t, err)

	sub, err := c.SubmitTool(ctx, models.SubmissionInput{Title: "New", URL: "https://new.example"})
	require.NoError(t, err)
	assert.Equal(t, "pending", sub.Status)
	assert.Equal(t, "New", sub.Title)

	_, err = c.ListTools(ctx, ListParams{})
	require.NoError(t, err)
	_, err = c.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, be.count("/tools"))
	assert.Equal(t, 1, be.count("/categories"))
}

func TestSearchAndSimpleEndpoints(t *testing.T) {
	be := newFakeBackend(t, map[string]http.HandlerFunc{
		"/tools/search": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "midjurney", r.URL.Query().Get("q"))
			_, _ = io.WriteString(w, `{"success":true,"data":{"tools":[{"id":"midjourney","title":"Midjourney"}],"total":1,"query":"midjurney","autoFuzzy":true,"suggestions":["midjourney"]}}`)
		},
		"/tools/featured":       okJSON(toolsEnvelope),
		"/tools/hot":            okJSON(toolsEnvelope),
		"/tools/category/Image": okJSON(toolsEnvelope),
		"/stats":                okJSON(`{"success":true,"data":{"totalTools":16,"featured":4}}`),
		"/subscribe":            okJSON(`{"success":true,"data":null}`),
		"/feedback":             okJSON(`{"success":true,"data":{"id":"fb-1","message":"great"}}`),
	})
	c := New(be.URL)
	ctx := context.Background()

	res, err := c.SearchTools(ctx, "midjurney", 5)
	require.NoError(t, err)
	assert.True(t, res.AutoFuzzy)
	assert.Equal(t, []string{"midjourney"}, res.Suggestions)

	featured, err := c.FeaturedTools(ctx)
	require.NoError(t, err)
	assert.Len(t, featured, 1)

	hot, err := c.HotTools(ctx)
	require.NoError(t, err)
	assert.Len(t, hot, 1)

	page, err := c.ToolsByCategory(ctx, "Image", 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Tools, 1)

	st, err := c.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 16, st.TotalTools)

	require.NoError(t, c.Subscribe(ctx, "a@example.com"))

	fb, err := c.SendFeedback(ctx, models.FeedbackInput{Message: "great"})
	require.NoError(t, err)
	assert.Equal(t, "fb-1", fb.ID)
}
