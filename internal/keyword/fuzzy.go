package keyword

import (
	"sort"
	"strings"
	"unicode"

	"github.com/hyperjump/aidex/internal/models"
)

const (
	// DefaultThreshold is the highest normalized distance still counted as a match (0 = exact).
	DefaultThreshold = 0.3
	// MinQueryLength is the shortest trimmed query that triggers fuzzy matching.
	// Shorter queries are treated as empty.
	MinQueryLength = 2
)

// Searchable keys understood by the fuzzy index.
const (
	KeyID          = "id"
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyCategory    = "category"
	KeyTags        = "tags"
)

// DefaultKeys are the fields searched when the caller does not configure any.
var DefaultKeys = []string{KeyTitle, KeyDescription, KeyTags}

// FuzzyOption configures a FuzzyIndex.
type FuzzyOption func(*FuzzyIndex)

// WithThreshold sets the match cutoff on the 0..1 distance scale.
func WithThreshold(t float64) FuzzyOption {
	return func(f *FuzzyIndex) {
		if t >= 0 && t <= 1 {
			f.threshold = t
		}
	}
}

// WithMinQueryLength sets the minimum query length (in runes) for fuzzy matching.
func WithMinQueryLength(n int) FuzzyOption {
	return func(f *FuzzyIndex) {
		if n > 0 {
			f.minQueryLen = n
		}
	}
}

// FuzzyMatch is a record that matched a query, with its distance score.
type FuzzyMatch struct {
	Tool  models.Tool
	Score float64
	// Position is the record's index in the source collection.
	Position int
}

// FuzzyIndex answers typo-tolerant substring queries over a fixed collection.
// It is immutable once built; build a new one when the collection changes.
type FuzzyIndex struct {
	records     []models.Tool
	keys        []string
	fields      [][]string // per record: lowercased values of every configured key
	threshold   float64
	minQueryLen int

	termFreq map[string]int
	terms    []string
}

// BuildFuzzyIndex indexes records on keys. Unknown keys are ignored; an empty
// key list falls back to DefaultKeys. An empty collection yields an index that
// matches nothing.
func BuildFuzzyIndex(records []models.Tool, keys []string, opts ...FuzzyOption) *FuzzyIndex {
	if len(keys) == 0 {
		keys = DefaultKeys
	}
	f := &FuzzyIndex{
		records:     records,
		keys:        append([]string(nil), keys...),
		fields:      make([][]string, len(records)),
		threshold:   DefaultThreshold,
		minQueryLen: MinQueryLength,
		termFreq:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(f)
	}

	for i := range records {
		var values []string
		for _, key := range f.keys {
			for _, v := range fieldValues(&records[i], key) {
				if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
					values = append(values, v)
				}
			}
		}
		f.fields[i] = values
		f.addTerms(&records[i])
	}

	f.terms = make([]string, 0, len(f.termFreq))
	for term := range f.termFreq {
		f.terms = append(f.terms, term)
	}
	sort.Strings(f.terms)
	return f
}

func fieldValues(t *models.Tool, key string) []string {
	switch key {
	case KeyID:
		return []string{t.ID}
	case KeyTitle:
		return []string{t.Title}
	case KeyDescription:
		return []string{t.Description}
	case KeyCategory:
		return []string{t.Category}
	case KeyTags:
		return t.Tags
	}
	return nil
}

// addTerms records which dictionary terms appear in t (document frequency).
func (f *FuzzyIndex) addTerms(t *models.Tool) {
	seen := make(map[string]struct{})
	add := func(s string, minLen int) {
		for _, term := range tokenize(s) {
			if len([]rune(term)) < minLen {
				continue
			}
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			f.termFreq[term]++
		}
	}
	add(t.Title, 1)
	add(t.Category, 1)
	for _, tag := range t.Tags {
		add(tag, 1)
	}
	add(t.Description, 3)
}

// Len returns the number of indexed records.
func (f *FuzzyIndex) Len() int {
	return len(f.records)
}

// Records returns a copy of the indexed collection in original order.
func (f *FuzzyIndex) Records() []models.Tool {
	return append([]models.Tool(nil), f.records...)
}

// Search returns the records matching query, best first. Ties keep collection order.
// An empty or too-short query returns the whole collection in original order.
func (f *FuzzyIndex) Search(query string) []models.Tool {
	if !f.isFuzzyQuery(query) {
		return f.Records()
	}
	matches := f.SearchScored(query)
	out := make([]models.Tool, len(matches))
	for i, m := range matches {
		out[i] = m.Tool
	}
	return out
}

// SearchScored is Search with scores. Short queries return no matches.
func (f *FuzzyIndex) SearchScored(query string) []FuzzyMatch {
	if !f.isFuzzyQuery(query) {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(query))
	qLen := float64(len([]rune(q)))

	var matches []FuzzyMatch
	for i, values := range f.fields {
		if len(values) == 0 {
			continue
		}
		best := 1.0
		for _, v := range values {
			var score float64
			if !strings.Contains(v, q) {
				score = float64(SubstringDistance(q, v)) / qLen
			}
			if score < best {
				best = score
			}
			if best == 0 {
				break
			}
		}
		if best <= f.threshold {
			matches = append(matches, FuzzyMatch{Tool: f.records[i], Score: best, Position: i})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score < matches[j].Score
	})
	return matches
}

func (f *FuzzyIndex) isFuzzyQuery(query string) bool {
	return len([]rune(strings.TrimSpace(query))) >= f.minQueryLen
}

// GetAllTerms returns every dictionary term, sorted.
func (f *FuzzyIndex) GetAllTerms() ([]string, error) {
	return append([]string(nil), f.terms...), nil
}

// GetTermFrequency returns how many records contain term.
func (f *FuzzyIndex) GetTermFrequency(term string) (int, error) {
	return f.termFreq[strings.ToLower(term)], nil
}

// ContainsTerm reports whether term is in the dictionary.
func (f *FuzzyIndex) ContainsTerm(term string) (bool, error) {
	_, ok := f.termFreq[strings.ToLower(term)]
	return ok, nil
}

// tokenize splits s into lowercase letter/digit runs.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
