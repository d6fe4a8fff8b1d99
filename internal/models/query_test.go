package models

import (
	"reflect"
	"testing"
)

func TestSearchQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   *SearchQuery
		wantErr bool
	}{
		{"empty query gets defaults", &SearchQuery{}, false},
		{"valid query", &SearchQuery{Text: "hello", Sort: SortName}, false},
		{"unknown sort", &SearchQuery{Sort: "random"}, true},
		{"valid pricing", &SearchQuery{Pricing: []Pricing{PricingFree, PricingPaid}}, false},
		{"unknown pricing", &SearchQuery{Pricing: []Pricing{"enterprise"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if tt.query.Category != CategoryAll && tt.query.Category == "" {
					t.Error("expected category default to be set")
				}
				if tt.query.Sort == "" {
					t.Error("expected sort default to be set")
				}
			}
		})
	}
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("")
	if err != nil || k != SortRelevance {
		t.Errorf("empty: got %q, %v", k, err)
	}
	k, err = ParseSortKey(" Rating ")
	if err != nil || k != SortRating {
		t.Errorf("rating: got %q, %v", k, err)
	}
	if _, err := ParseSortKey("shuffle"); err == nil {
		t.Error("expected error for unknown sort key")
	}
}

func TestParsePricing(t *testing.T) {
	p, err := ParsePricing("FreeMium")
	if err != nil || p != PricingFreemium {
		t.Errorf("got %q, %v", p, err)
	}
	if _, err := ParsePricing("enterprise"); err == nil {
		t.Error("expected error for unknown pricing")
	}
}

func TestSearchQuery_CloneIsDeep(t *testing.T) {
	q := SearchQuery{Tags: []string{"a"}, Pricing: []Pricing{PricingFree}}
	c := q.Clone()
	c.Tags[0] = "b"
	c.Pricing[0] = PricingPaid
	if q.Tags[0] != "a" || q.Pricing[0] != PricingFree {
		t.Errorf("clone shares slices with original: %+v", q)
	}
}

func TestTool_HasTagAndValidate(t *testing.T) {
	tool := Tool{ID: "t1", Title: "Writer", Tags: []string{"GPT", "Writing"}, Pricing: PricingFree}
	if !tool.HasTag("gpt") {
		t.Error("HasTag should be case-insensitive")
	}
	if tool.HasTag("image") {
		t.Error("unexpected tag match")
	}
	if err := tool.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	bad := Tool{ID: "t2"}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for empty title")
	}
	bad = Tool{ID: "t3", Title: "X", Pricing: "lifetime"}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown pricing")
	}
}

func TestRecordTagsMatchCodecs(t *testing.T) {
	tool := reflect.TypeOf(Tool{})
	for i := 0; i < tool.NumField(); i++ {
		f := tool.Field(i)
		if f.Tag.Get("json") == "" || f.Tag.Get("yaml") == "" {
			t.Errorf("Tool.%s: missing json or yaml tag", f.Name)
		}
	}
	for _, typ := range []reflect.Type{tool, reflect.TypeOf(Submission{}), reflect.TypeOf(Feedback{})} {
		for i := 0; i < typ.NumField(); i++ {
			if tag, ok := typ.Field(i).Tag.Lookup("db"); ok {
				t.Errorf("%s.%s: unused db tag %q", typ.Name(), typ.Field(i).Name, tag)
			}
		}
	}
}

func TestSubmissionInput_Normalize(t *testing.T) {
	in := SubmissionInput{Title: " Gamma ", Pricing: " Paid", URL: "https://gamma.app ", Email: " a@b.co"}
	in.Normalize()
	want := SubmissionInput{Title: "Gamma", Pricing: PricingPaid, URL: "https://gamma.app", Email: "a@b.co"}
	if !reflect.DeepEqual(in, want) {
		t.Errorf("Normalize() = %+v, want %+v", in, want)
	}
}
