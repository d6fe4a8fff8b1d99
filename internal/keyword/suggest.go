package keyword

import (
	"sort"
	"strings"
	"sync"
)

// Suggestion is a dictionary term proposed for a query term.
type Suggestion struct {
	Term      string
	Distance  int
	Frequency int
	Score     float64
}

// CheckResult is the outcome of checking every term of a query.
type CheckResult struct {
	OriginalQuery   string
	CorrectedQuery  string
	Suggestions     []Suggestion
	HasCorrections  bool
	MisspelledTerms []string
}

// Suggester proposes corrections and completions from a TermDictionary.
// Call Refresh after the underlying index is rebuilt.
type Suggester struct {
	dictionary     TermDictionary
	maxDistance    int
	minFreq        int
	maxSuggestions int

	mu     sync.RWMutex
	terms  []string
	termOK map[string]struct{}
	loaded bool
}

// SuggesterOption configures a Suggester.
type SuggesterOption func(*Suggester)

// WithMaxDistance sets the maximum edit distance for corrections.
func WithMaxDistance(d int) SuggesterOption {
	return func(s *Suggester) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMinFrequency drops dictionary terms seen in fewer than f tools.
func WithMinFrequency(f int) SuggesterOption {
	return func(s *Suggester) {
		if f >= 0 {
			s.minFreq = f
		}
	}
}

// WithMaxSuggestions caps suggestions per term.
func WithMaxSuggestions(n int) SuggesterOption {
	return func(s *Suggester) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSuggester returns a Suggester reading terms from dict.
func NewSuggester(dict TermDictionary, opts ...SuggesterOption) *Suggester {
	s := &Suggester{
		dictionary:     dict,
		maxDistance:    2,
		minFreq:        1,
		maxSuggestions: 5,
		termOK:         make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh reloads the term list from the dictionary.
func (s *Suggester) Refresh() error {
	terms, err := s.dictionary.GetAllTerms()
	if err != nil {
		return err
	}
	set := make(map[string]struct{}, len(terms))
	lowered := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(t)
		if _, dup := set[t]; dup {
			continue
		}
		set[t] = struct{}{}
		lowered = append(lowered, t)
	}
	sort.Strings(lowered)

	s.mu.Lock()
	s.terms = lowered
	s.termOK = set
	s.loaded = true
	s.mu.Unlock()
	return nil
}

func (s *Suggester) snapshot() ([]string, map[string]struct{}, error) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if !loaded {
		if err := s.Refresh(); err != nil {
			return nil, nil, err
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.terms, s.termOK, nil
}

// Suggest returns known terms within maxDistance of term, best first.
// Terms already in the dictionary get no suggestions.
func (s *Suggester) Suggest(term string) []Suggestion {
	terms, known, err := s.snapshot()
	if err != nil {
		return nil
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	if _, ok := known[term]; ok {
		return nil
	}

	termLen := len([]rune(term))
	var out []Suggestion
	for _, cand := range terms {
		diff := len([]rune(cand)) - termLen
		if diff < 0 {
			diff = -diff
		}
		if diff > s.maxDistance {
			continue
		}
		dist := DamerauLevenshteinDistance(term, cand)
		if dist > s.maxDistance {
			continue
		}
		freq, err := s.dictionary.GetTermFrequency(cand)
		if err != nil || freq < s.minFreq {
			continue
		}
		out = append(out, Suggestion{
			Term:      cand,
			Distance:  dist,
			Frequency: freq,
			Score:     float64(freq) / float64(dist+1),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > s.maxSuggestions {
		out = out[:s.maxSuggestions]
	}
	return out
}

// Check corrects each unknown query term with its best suggestion.
func (s *Suggester) Check(query string) (*CheckResult, error) {
	_, known, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	res := &CheckResult{OriginalQuery: query}
	words := tokenize(query)
	corrected := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := known[w]; ok {
			corrected = append(corrected, w)
			continue
		}
		sugg := s.Suggest(w)
		if len(sugg) == 0 {
			corrected = append(corrected, w)
			continue
		}
		res.HasCorrections = true
		res.MisspelledTerms = append(res.MisspelledTerms, w)
		res.Suggestions = append(res.Suggestions, sugg...)
		corrected = append(corrected, sugg[0].Term)
	}
	res.CorrectedQuery = strings.Join(corrected, " ")
	return res, nil
}

// CorrectQuery returns the corrected query, or query itself when nothing changed.
func (s *Suggester) CorrectQuery(query string) string {
	res, err := s.Check(query)
	if err != nil || !res.HasCorrections {
		return query
	}
	return res.CorrectedQuery
}

// Complete returns up to n dictionary terms starting with prefix, most frequent first.
func (s *Suggester) Complete(prefix string, n int) []string {
	terms, _, err := s.snapshot()
	if err != nil || n <= 0 {
		return nil
	}
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil
	}
	start := sort.SearchStrings(terms, prefix)
	type cand struct {
		term string
		freq int
	}
	var cands []cand
	for i := start; i < len(terms) && strings.HasPrefix(terms[i], prefix); i++ {
		freq, _ := s.dictionary.GetTermFrequency(terms[i])
		cands = append(cands, cand{terms[i], freq})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].freq > cands[j].freq })
	if len(cands) > n {
		cands = cands[:n]
	}
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.term
	}
	return out
}
