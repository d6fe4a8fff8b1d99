package models

import (
	"strings"
	"time"
)

// Pagination describes the page carried by an Envelope.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Envelope is the response shape of every backend endpoint.
type Envelope[T any] struct {
	Data       T           `json:"data"`
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// SearchResponse is the payload of the backend full-text search endpoint.
type SearchResponse struct {
	Tools []Tool `json:"tools"`
	Total int    `json:"total"`
	Query string `json:"query"`
	// AutoFuzzy is set when the exact search found nothing and fuzzy matching was used instead.
	AutoFuzzy bool `json:"autoFuzzy,omitempty"`
	// Suggestions holds "did you mean" corrections for misspelled queries.
	Suggestions []string `json:"suggestions,omitempty"`
}

// SubmissionInput is a user-submitted tool awaiting review.
type SubmissionInput struct {
	Title       string   `json:"title" validate:"required,max=120"`
	Description string   `json:"description" validate:"required,max=2000"`
	Category    string   `json:"category" validate:"required"`
	Tags        []string `json:"tags,omitempty" validate:"max=10,dive,max=40"`
	Pricing     Pricing  `json:"pricing" validate:"required,oneof=free freemium paid"`
	URL         string   `json:"url" validate:"required,url"`
	Email       string   `json:"email" validate:"required,email"`
}

// Normalize trims the text fields and lowercases the pricing tier so that
// "Paid" validates as paid.
func (in *SubmissionInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.URL = strings.TrimSpace(in.URL)
	in.Email = strings.TrimSpace(in.Email)
	in.Pricing = Pricing(strings.ToLower(strings.TrimSpace(string(in.Pricing))))
}

// Submission is a stored SubmissionInput.
type Submission struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	SubmissionInput
}

// SubscribeInput is a newsletter subscription request.
type SubscribeInput struct {
	Email string `json:"email" validate:"required,email"`
}

// FeedbackInput is a free-form feedback message.
type FeedbackInput struct {
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Message string `json:"message" validate:"required,max=5000"`
	Rating  int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

// Feedback is a stored FeedbackInput.
type Feedback struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	FeedbackInput
}

// Submission review states.
const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)
