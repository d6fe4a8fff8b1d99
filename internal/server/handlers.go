package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/aidex/internal/keyword"
	"github.com/hyperjump/aidex/internal/models"
	"github.com/hyperjump/aidex/internal/paging"
	"github.com/hyperjump/aidex/internal/search"
	"github.com/hyperjump/aidex/internal/storage"
)

// defaultHotLimit is how many tools /tools/hot returns without a limit.
const defaultHotLimit = 8

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.listTools(w, r, q)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	q.Category = chi.URLParam(r, "category")
	s.listTools(w, r, q)
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request, q models.SearchQuery) {
	snap := s.catalog.Current()
	results := search.Apply(s.indexes.For(snap), q)
	page, limit := s.pageParams(r)
	tools, meta := paging.PageOf(results, page, limit)
	s.logger.Debug("list tools", zap.String("q", q.Text), zap.String("category", q.Category),
		zap.Int("matches", len(results)), zap.Int("page", meta.Page))
	s.respondData(w, http.StatusOK, tools, meta)
}

func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	s.respondData(w, http.StatusOK, search.Featured(s.catalog.Current().Tools()), nil)
}

func (s *Server) handleHot(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", defaultHotLimit)
	s.respondData(w, http.StatusOK, search.Hot(s.catalog.Current().Tools(), limit), nil)
}

func (s *Server) handleGetTool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tool, ok := s.catalog.Current().Get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "tool not found")
		return
	}
	s.respondData(w, http.StatusOK, tool, nil)
}

// handleSearch runs the full-text search. When the exact query finds nothing
// it retries with fuzzy matching and offers a corrected query.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	_, limit := s.pageParams(r)
	idx, suggester, snap := s.searchState()
	if idx == nil {
		s.respondError(w, http.StatusServiceUnavailable, "search index not ready")
		return
	}

	opts := &keyword.SearchOptions{
		TitleBoost: s.config.Search.TitleBoost,
		Fuzziness:  s.config.Search.Fuzziness,
	}
	hits, err := idx.Search(r.Context(), query, limit, opts)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	autoFuzzy := false
	if len(hits) == 0 {
		opts.FuzzyEnabled = true
		autoFuzzy = true
		hits, err = idx.Search(r.Context(), query, limit, opts)
		if err != nil {
			s.logger.Error("fuzzy search failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	s.metrics.ObserveSearch(autoFuzzy)

	resp := models.SearchResponse{Tools: make([]models.Tool, 0, len(hits)), Query: query, AutoFuzzy: autoFuzzy}
	for _, hit := range hits {
		if tool, ok := snap.Get(hit.ID); ok {
			resp.Tools = append(resp.Tools, tool)
		}
	}
	resp.Total = len(resp.Tools)
	if autoFuzzy && suggester != nil {
		if corrected := suggester.CorrectQuery(query); !strings.EqualFold(corrected, query) {
			resp.Suggestions = []string{corrected}
		}
	}
	s.logger.Debug("search", zap.String("q", query), zap.Int("hits", resp.Total), zap.Bool("auto_fuzzy", autoFuzzy))
	s.respondData(w, http.StatusOK, resp, nil)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := s.catalog.Current().Categories()
	for i := range cats {
		icon := s.icons.Resolve(models.Tool{Category: cats[i].Name, Title: cats[i].Name})
		cats[i].Icon = icon.Ref
	}
	s.respondData(w, http.StatusOK, cats, nil)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := s.catalog.Current().Stats()
	var err error
	if st.Submissions, err = s.storage.CountSubmissions(ctx); err != nil {
		s.logger.Error("stats: count submissions failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if st.Subscribers, err = s.storage.CountSubscribers(ctx); err != nil {
		s.logger.Error("stats: count subscribers failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondData(w, http.StatusOK, st, nil)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.catalog.Current()
	resp := map[string]interface{}{
		"status":         "ok",
		"catalog_source": snap.Source(),
		"tools":          snap.Len(),
		"loaded_at":      snap.LoadedAt(),
	}
	paths := storage.DatabaseFiles(s.config.Storage.DatabasePath)
	if s.config.Storage.BleveIndexPath != "" {
		paths = append(paths, s.config.Storage.BleveIndexPath)
	}
	if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondData(w, http.StatusOK, resp, nil)
}

// parseQuery reads the list filters from the query string.
func parseQuery(r *http.Request) (models.SearchQuery, error) {
	v := r.URL.Query()
	q := models.DefaultSearchQuery()
	q.Text = v.Get("q")
	if c := v.Get("category"); c != "" {
		q.Category = c
	}
	q.Tags = splitList(v.Get("tags"))
	for _, p := range splitList(v.Get("pricing")) {
		tier, err := models.ParsePricing(p)
		if err != nil {
			return q, err
		}
		q.Pricing = append(q.Pricing, tier)
	}
	q.Sort = models.SortKey(v.Get("sort"))
	if err := q.Validate(); err != nil {
		return q, err
	}
	return q, nil
}

// pageParams returns page and limit, applying the configured default and cap.
func (s *Server) pageParams(r *http.Request) (int, int) {
	page := intParam(r, "page", 1)
	limit := intParam(r, "limit", s.config.Search.DefaultLimit)
	if s.config.Search.MaxLimit > 0 && limit > s.config.Search.MaxLimit {
		limit = s.config.Search.MaxLimit
	}
	return paging.Normalize(page, limit)
}

func intParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
