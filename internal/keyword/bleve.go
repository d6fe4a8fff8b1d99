package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/aidex/internal/models"
)

var textFields = []string{"title", "description", "category", "tags"}

// BleveIndex implements FullTextIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path. An empty path builds an
// in-memory index, which is what the server uses for the static catalog.
// If you change the mapping, remove the index directory to force a rebuild.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so "gpt" matches "GPT" but
	// "writer" does not collapse into "write".
	textFieldMapping.Analyzer = standard.Name
	for _, field := range textFields {
		docMapping.AddFieldMappingsAt(field, textFieldMapping)
	}
	docMapping.AddFieldMappingsAt("id", bleve.NewKeywordFieldMapping())
	docMapping.AddFieldMappingsAt("pricing", bleve.NewKeywordFieldMapping())
	im.AddDocumentMapping("tool", docMapping)
	im.DefaultType = "tool"
	im.DefaultMapping = docMapping

	if path == "" {
		index, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}
	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index adds or replaces a tool.
func (b *BleveIndex) Index(ctx context.Context, tool *models.Tool) error {
	doc := map[string]interface{}{
		"id":          tool.ID,
		"title":       tool.Title,
		"description": tool.Description,
		"category":    tool.Category,
		"tags":        tool.Tags,
		"pricing":     string(tool.Pricing),
	}
	return b.index.Index(tool.ID, doc)
}

// IndexAll indexes tools in a single batch.
func (b *BleveIndex) IndexAll(ctx context.Context, tools []models.Tool) error {
	batch := b.index.NewBatch()
	for i := range tools {
		t := &tools[i]
		err := batch.Index(t.ID, map[string]interface{}{
			"id":          t.ID,
			"title":       t.Title,
			"description": t.Description,
			"category":    t.Category,
			"tags":        t.Tags,
			"pricing":     string(t.Pricing),
		})
		if err != nil {
			return fmt.Errorf("failed to batch tool %s: %w", t.ID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to index batch: %w", err)
	}
	return nil
}

// Search runs a match (or fuzzy) query over all text fields and returns up to limit hits.
// When opts.TitleBoost > 1 a boosted title clause is OR'ed in so title hits rank first.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Hit, error) {
	titleBoost := 1.0
	fuzzyEnabled := false
	fuzziness := 2
	if opts != nil {
		if opts.TitleBoost > 0 {
			titleBoost = opts.TitleBoost
		}
		fuzzyEnabled = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
	}
	if limit <= 0 {
		limit = 10
	}

	var q blevequery.Query
	if fuzzyEnabled {
		q = buildFuzzyQuery(query, fuzziness, "", 1)
	} else {
		q = bleve.NewMatchQuery(query)
	}
	if titleBoost > 1.0 {
		var tq blevequery.Query
		if fuzzyEnabled {
			tq = buildFuzzyQuery(query, fuzziness, "title", titleBoost)
		} else {
			mq := bleve.NewMatchQuery(query)
			mq.SetField("title")
			mq.SetBoost(titleBoost)
			tq = mq
		}
		q = bleve.NewDisjunctionQuery(q, tq)
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*Hit, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &Hit{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// buildFuzzyQuery ORs a FuzzyQuery per query term. An empty field searches all fields.
func buildFuzzyQuery(queryStr string, fuzziness int, field string, boost float64) blevequery.Query {
	terms := tokenize(queryStr)
	if len(terms) == 0 {
		mq := bleve.NewMatchQuery(queryStr)
		if field != "" {
			mq.SetField(field)
		}
		return mq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		if field != "" {
			fq.SetField(field)
		}
		if boost > 1.0 {
			fq.SetBoost(boost)
		}
		queries = append(queries, fq)
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// Delete removes a tool from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// DocIDs returns the IDs of every indexed tool.
func (b *BleveIndex) DocIDs(ctx context.Context) ([]string, error) {
	count, err := b.index.DocCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []string{}, nil
	}
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(count)
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	ids := make([]string, len(results.Hits))
	for i, hit := range results.Hits {
		ids[i] = hit.ID
	}
	return ids, nil
}

// DocCount returns the number of indexed tools.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// GetAllTerms returns the unique terms of the title, category, and tags fields.
func (b *BleveIndex) GetAllTerms() ([]string, error) {
	seen := make(map[string]struct{})
	terms := make([]string, 0)
	for _, field := range []string{"title", "category", "tags"} {
		dict, err := b.index.FieldDict(field)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s dictionary: %w", field, err)
		}
		for {
			entry, err := dict.Next()
			if err != nil || entry == nil {
				break
			}
			if _, ok := seen[entry.Term]; !ok {
				seen[entry.Term] = struct{}{}
				terms = append(terms, entry.Term)
			}
		}
		_ = dict.Close()
	}
	return terms, nil
}

// GetTermFrequency returns the number of tools containing term in any text field.
func (b *BleveIndex) GetTermFrequency(term string) (int, error) {
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(term))
	req.Size = 0
	results, err := b.index.Search(req)
	if err != nil {
		return 0, fmt.Errorf("failed to search for term frequency: %w", err)
	}
	return int(results.Total), nil
}

// ContainsTerm reports whether term occurs in the index.
func (b *BleveIndex) ContainsTerm(term string) (bool, error) {
	freq, err := b.GetTermFrequency(term)
	if err != nil {
		return false, err
	}
	return freq > 0, nil
}
