package keyword

import (
	"errors"
	"testing"
)

type stubDictionary struct {
	terms  map[string]int
	allErr error
}

func (d *stubDictionary) GetAllTerms() ([]string, error) {
	if d.allErr != nil {
		return nil, d.allErr
	}
	out := make([]string, 0, len(d.terms))
	for t := range d.terms {
		out = append(out, t)
	}
	return out, nil
}

func (d *stubDictionary) GetTermFrequency(term string) (int, error) {
	return d.terms[term], nil
}

func (d *stubDictionary) ContainsTerm(term string) (bool, error) {
	_, ok := d.terms[term]
	return ok, nil
}

func TestSuggester_Defaults(t *testing.T) {
	s := NewSuggester(&stubDictionary{})
	if s.maxDistance != 2 || s.minFreq != 1 || s.maxSuggestions != 5 {
		t.Errorf("defaults = (%d, %d, %d), want (2, 1, 5)", s.maxDistance, s.minFreq, s.maxSuggestions)
	}
	s = NewSuggester(&stubDictionary{}, WithMaxDistance(1), WithMinFrequency(3), WithMaxSuggestions(2))
	if s.maxDistance != 1 || s.minFreq != 3 || s.maxSuggestions != 2 {
		t.Errorf("options not applied: (%d, %d, %d)", s.maxDistance, s.minFreq, s.maxSuggestions)
	}
}

func TestSuggester_SuggestTransposition(t *testing.T) {
	s := NewSuggester(BuildFuzzyIndex(sampleTools(), nil))
	got := s.Suggest("imgae")
	if len(got) == 0 {
		t.Fatal("no suggestions for imgae")
	}
	if got[0].Term != "image" || got[0].Distance != 1 {
		t.Errorf("best suggestion = %+v, want image at distance 1", got[0])
	}
}

func TestSuggester_KnownTermHasNoSuggestions(t *testing.T) {
	s := NewSuggester(BuildFuzzyIndex(sampleTools(), nil))
	if got := s.Suggest("Midjourney"); len(got) != 0 {
		t.Errorf("Suggest(known) = %v, want none", got)
	}
}

func TestSuggester_FrequencyBreaksDistanceTie(t *testing.T) {
	s := NewSuggester(&stubDictionary{terms: map[string]int{"voice": 1, "video": 9}})
	got := s.Suggest("vidio")
	if len(got) == 0 || got[0].Term != "video" {
		t.Errorf("Suggest(vidio) = %v, want video first", got)
	}
}

func TestSuggester_MinFrequencyAndCap(t *testing.T) {
	dict := &stubDictionary{terms: map[string]int{"code": 5, "coda": 1, "core": 2, "cone": 2}}
	s := NewSuggester(dict, WithMinFrequency(2), WithMaxSuggestions(2))
	got := s.Suggest("cobe")
	if len(got) != 2 {
		t.Fatalf("Suggest(cobe) = %v, want 2 entries", got)
	}
	for _, sg := range got {
		if sg.Term == "coda" {
			t.Error("term below min frequency suggested")
		}
	}
	if got[0].Term != "code" {
		t.Errorf("first = %q, want code", got[0].Term)
	}
}

func TestSuggester_Check(t *testing.T) {
	s := NewSuggester(BuildFuzzyIndex(sampleTools(), nil))
	res, err := s.Check("midjurney art")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.HasCorrections {
		t.Fatal("expected corrections")
	}
	if res.CorrectedQuery != "midjourney art" {
		t.Errorf("CorrectedQuery = %q, want %q", res.CorrectedQuery, "midjourney art")
	}
	if len(res.MisspelledTerms) != 1 || res.MisspelledTerms[0] != "midjurney" {
		t.Errorf("MisspelledTerms = %v", res.MisspelledTerms)
	}
	if got := s.CorrectQuery("image art"); got != "image art" {
		t.Errorf("CorrectQuery on clean query = %q", got)
	}
}

func TestSuggester_Complete(t *testing.T) {
	s := NewSuggester(BuildFuzzyIndex(sampleTools(), nil))
	got := s.Complete("ima", 5)
	if len(got) != 2 || got[0] != "image" || got[1] != "images" {
		t.Errorf("Complete(ima) = %v, want [image images]", got)
	}
	if got := s.Complete("ima", 1); len(got) != 1 {
		t.Errorf("Complete with n=1 returned %d", len(got))
	}
	if got := s.Complete("", 5); got != nil {
		t.Errorf("Complete(\"\") = %v, want nil", got)
	}
}

func TestSuggester_DictionaryError(t *testing.T) {
	s := NewSuggester(&stubDictionary{allErr: errors.New("boom")})
	if _, err := s.Check("anything"); err == nil {
		t.Error("expected error from Check")
	}
	if got := s.Suggest("anything"); got != nil {
		t.Errorf("Suggest on failing dictionary = %v", got)
	}
	if got := s.CorrectQuery("anything"); got != "anything" {
		t.Errorf("CorrectQuery fallback = %q", got)
	}
}

func TestSuggester_RefreshPicksUpNewTerms(t *testing.T) {
	dict := &stubDictionary{terms: map[string]int{"music": 1}}
	s := NewSuggester(dict)
	if got := s.Suggest("podcas"); len(got) != 0 {
		t.Fatalf("unexpected suggestions %v", got)
	}
	dict.terms["podcast"] = 1
	if err := s.Refresh(); err != nil {
		t.Fatal(err)
	}
	if got := s.Suggest("podcas"); len(got) == 0 || got[0].Term != "podcast" {
		t.Errorf("after Refresh Suggest(podcas) = %v", got)
	}
}
