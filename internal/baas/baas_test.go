package baas

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	goodToken = "good-token"
	userID    = "6f1c7a52-2b1e-4c1e-9d4b-1a2b3c4d5e6f"
)

// fakeSupabase serves the PostgREST and Auth endpoints the client uses and
// records the requests it saw.
type fakeSupabase struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
}

func (f *fakeSupabase) last(path string) (*http.Request, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].URL.Path == path {
			return f.requests[i], f.bodies[i]
		}
	}
	return nil, ""
}

func (f *fakeSupabase) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Clone(context.Background()))
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/auth/v1/user":
		if r.Header.Get("Authorization") != "Bearer "+goodToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"code":401,"msg":"invalid JWT"}`)
			return
		}
		_, _ = io.WriteString(w, `{"id":"`+userID+`","email":"fan@example.com","aud":"authenticated"}`)
	case "/rest/v1/tools":
		q := r.URL.Query()
		if q.Get("select") == "category" {
			_, _ = io.WriteString(w, `[{"category":"Image"},{"category":"Chatbot"},{"category":"image"},{"category":""}]`)
			return
		}
		w.Header().Set("Content-Range", "0-1/16")
		_, _ = io.WriteString(w, `[
			{"id":"chatgpt","title":"ChatGPT","category":"Chatbot","tags":["chat"],"pricing":"Freemium","featured":true,"is_new":false,"image_ref":"chatgpt.png","rating":4.8,"views":98000},
			{"id":"claude","title":"Claude","category":"Chatbot","tags":["chat","research"],"pricing":"freemium","is_new":true}
		]`)
	case "/rest/v1/favorites":
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `[{"tool_id":"cursor"},{"tool_id":"suno"}]`)
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"not found"}`)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeSupabase) {
	t.Helper()
	fake := &fakeSupabase{}
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)
	c, err := New(ts.URL+"/", "anon-key")
	require.NoError(t, err)
	return c, fake
}

func TestListTools_RangePagination(t *testing.T) {
	c, fake := newTestClient(t)

	tools, page, err := c.ListTools(context.Background(), 3, 5)
	require.NoError(t, err)
	require.Len(t, tools, 2)
	assert.Equal(t, "chatgpt", tools[0].ID)
	assert.Equal(t, "freemium", string(tools[0].Pricing))
	assert.Equal(t, "chatgpt.png", tools[0].ImageRef)
	assert.True(t, tools[1].IsNew)
	require.NotNil(t, page)
	assert.Equal(t, 16, page.Total)
	assert.Equal(t, 4, page.TotalPages)
	assert.Equal(t, 3, page.Page)

	r, _ := fake.last("/rest/v1/tools")
	require.NotNil(t, r)
	q := r.URL.Query()
	assert.Equal(t, "10", q.Get("offset"))
	assert.Equal(t, "5", q.Get("limit"))
	assert.Contains(t, q.Get("order"), "title.asc")
	assert.Contains(t, r.Header.Get("Prefer"), "count=exact")
	assert.Equal(t, "anon-key", r.Header.Get("apikey"))
}

func TestSearchTools_IlikeOnTitleOrDescription(t *testing.T) {
	c, fake := newTestClient(t)

	_, err := c.SearchTools(context.Background(), "  image, gen(*) ", 10)
	require.NoError(t, err)
	r, _ := fake.last("/rest/v1/tools")
	require.NotNil(t, r)
	or := r.URL.Query().Get("or")
	assert.Contains(t, or, "title.ilike.*image gen*")
	assert.Contains(t, or, "description.ilike.*image gen*")
	assert.Equal(t, "10", r.URL.Query().Get("limit"))

	tools, err := c.SearchTools(context.Background(), " ,() ", 10)
	require.NoError(t, err)
	assert.Empty(t, tools)
}

func TestToolsWithTag_ArrayContains(t *testing.T) {
	c, fake := newTestClient(t)
	_, err := c.ToolsWithTag(context.Background(), " Chat ")
	require.NoError(t, err)
	r, _ := fake.last("/rest/v1/tools")
	require.NotNil(t, r)
	tags := r.URL.Query().Get("tags")
	assert.True(t, strings.HasPrefix(tags, "cs."), "tags filter = %q", tags)
	assert.Contains(t, tags, "chat")
}

func TestCategoryCounts_MergesCase(t *testing.T) {
	c, _ := newTestClient(t)
	cats, err := c.CategoryCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Chatbot", cats[0].Name)
	assert.Equal(t, 1, cats[0].Count)
	assert.Equal(t, "Image", cats[1].Name)
	assert.Equal(t, 2, cats[1].Count)
}

func TestFavorites_RequireValidToken(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	_, err := c.ListFavorites(ctx, "bad-token")
	assert.True(t, errors.Is(err, ErrUnauthorized), "err = %v", err)
	_, err = c.ListFavorites(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	ids, err := c.ListFavorites(ctx, goodToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"cursor", "suno"}, ids)
	r, _ := fake.last("/rest/v1/favorites")
	require.NotNil(t, r)
	assert.Equal(t, "eq."+userID, r.URL.Query().Get("user_id"))
	assert.Equal(t, "Bearer "+goodToken, r.Header.Get("Authorization"))

	require.NoError(t, c.AddFavorite(ctx, goodToken, "runway"))
	r, body := fake.last("/rest/v1/favorites")
	assert.Equal(t, http.MethodPost, r.Method)
	assert.Contains(t, body, `"tool_id":"runway"`)
	assert.Contains(t, body, userID)

	require.NoError(t, c.RemoveFavorite(ctx, goodToken, "runway"))
	r, _ = fake.last("/rest/v1/favorites")
	assert.Equal(t, http.MethodDelete, r.Method)
	assert.Equal(t, "eq.runway", r.URL.Query().Get("tool_id"))
}

func TestCanceledContext(t *testing.T) {
	c, fake := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := c.ListTools(ctx, 1, 10)
	assert.ErrorIs(t, err, context.Canceled)
	r, _ := fake.last("/rest/v1/tools")
	assert.Nil(t, r)
}
