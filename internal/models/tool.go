// Package models defines core data structures for tools, queries, and API payloads.
package models

import (
	"fmt"
	"strings"
)

// Pricing is the pricing tier of a tool.
type Pricing string

const (
	PricingFree     Pricing = "free"
	PricingFreemium Pricing = "freemium"
	PricingPaid     Pricing = "paid"
)

// AllPricing lists the valid pricing tiers in display order.
var AllPricing = []Pricing{PricingFree, PricingFreemium, PricingPaid}

// ParsePricing returns the pricing tier for s (case-insensitive).
func ParsePricing(s string) (Pricing, error) {
	p := Pricing(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown pricing %q", s)
	}
	return p, nil
}

// Valid reports whether p is one of the known tiers.
func (p Pricing) Valid() bool {
	switch p {
	case PricingFree, PricingFreemium, PricingPaid:
		return true
	}
	return false
}

// Tool is a single AI tool record in the directory.
type Tool struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Category    string   `json:"category" yaml:"category"`
	Tags        []string `json:"tags" yaml:"tags"`
	Pricing     Pricing  `json:"pricing" yaml:"pricing"`
	Featured    bool     `json:"featured" yaml:"featured"`
	IsNew       bool     `json:"isNew" yaml:"is_new"`
	ImageRef    string   `json:"imageRef,omitempty" yaml:"image_ref"`
	URL         string   `json:"url,omitempty" yaml:"url"`
	// Rating is nil when the tool has not been rated.
	Rating *float64 `json:"rating,omitempty" yaml:"rating"`
	Views  int      `json:"views,omitempty" yaml:"views"`
}

// HasTag reports whether the tool carries tag (case-insensitive).
func (t *Tool) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if strings.EqualFold(have, tag) {
			return true
		}
	}
	return false
}

// Validate checks the fields every catalog record must have.
func (t *Tool) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("tool id cannot be empty")
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("tool %s: title cannot be empty", t.ID)
	}
	if t.Pricing != "" && !t.Pricing.Valid() {
		return fmt.Errorf("tool %s: unknown pricing %q", t.ID, t.Pricing)
	}
	return nil
}

// Category is a category name with the number of tools filed under it.
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Icon  string `json:"icon,omitempty"`
}

// Stats summarizes the directory for the landing page counters.
type Stats struct {
	TotalTools  int   `json:"totalTools"`
	Categories  int   `json:"categories"`
	Featured    int   `json:"featured"`
	NewTools    int   `json:"newTools"`
	Submissions int64 `json:"submissions"`
	Subscribers int64 `json:"subscribers"`
}
