// Package storage persists backend submissions, newsletter subscribers, and feedback.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/aidex/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadySubscribed is returned when an email is already on the list.
	ErrAlreadySubscribed = errors.New("email already subscribed")
)

// Storage defines backend persistence operations.
type Storage interface {
	// Submissions
	CreateSubmission(ctx context.Context, sub *models.Submission) error
	GetSubmission(ctx context.Context, id string) (*models.Submission, error)
	ListSubmissions(ctx context.Context, status string, offset, limit int) ([]*models.Submission, error)
	UpdateSubmissionStatus(ctx context.Context, id, status string) error

	// Newsletter
	AddSubscriber(ctx context.Context, email string) error
	RemoveSubscriber(ctx context.Context, email string) error

	// Feedback
	CreateFeedback(ctx context.Context, fb *models.Feedback) error
	ListFeedback(ctx context.Context, offset, limit int) ([]*models.Feedback, error)

	// Stats
	CountSubmissions(ctx context.Context) (int64, error)
	CountSubscribers(ctx context.Context) (int64, error)
	CountFeedback(ctx context.Context) (int64, error)

	Close() error
}
