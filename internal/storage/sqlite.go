package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/aidex/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist. ":memory:" opens a private in-memory database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each new connection would get its own empty database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		tags TEXT,
		pricing TEXT NOT NULL,
		url TEXT NOT NULL,
		email TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status, created_at);

	CREATE TABLE IF NOT EXISTS subscribers (
		email TEXT PRIMARY KEY,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		email TEXT,
		message TEXT NOT NULL,
		rating INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_feedback_created_at ON feedback(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateSubmission inserts a submission. Empty status becomes pending; zero CreatedAt becomes now.
func (s *SQLiteStorage) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	tagsJSON, err := json.Marshal(sub.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	if sub.Status == "" {
		sub.Status = models.SubmissionPending
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, title, description, category, tags, pricing, url, email, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Title, sub.Description, sub.Category, string(tagsJSON), string(sub.Pricing),
		sub.URL, sub.Email, sub.Status, sub.CreatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var sub models.Submission
	var tagsJSON sql.NullString
	var pricing string
	if err := row.Scan(&sub.ID, &sub.Title, &sub.Description, &sub.Category, &tagsJSON, &pricing,
		&sub.URL, &sub.Email, &sub.Status, &sub.CreatedAt); err != nil {
		return nil, err
	}
	sub.Pricing = models.Pricing(pricing)
	if tagsJSON.Valid && tagsJSON.String != "" && tagsJSON.String != "null" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &sub.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	return &sub, nil
}

const submissionColumns = `id, title, description, category, tags, pricing, url, email, status, created_at`

// GetSubmission returns a submission by ID.
func (s *SQLiteStorage) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id)
	sub, err := scanSubmission(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	return sub, err
}

// ListSubmissions returns submissions newest first. An empty status lists all.
func (s *SQLiteStorage) ListSubmissions(ctx context.Context, status string, offset, limit int) ([]*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// UpdateSubmissionStatus sets the review status of a submission.
func (s *SQLiteStorage) UpdateSubmissionStatus(ctx context.Context, id, status string) error {
	switch status {
	case models.SubmissionPending, models.SubmissionApproved, models.SubmissionRejected:
	default:
		return fmt.Errorf("unknown submission status %q", status)
	}
	result, err := s.db.ExecContext(ctx, `UPDATE submissions SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AddSubscriber adds email (case-insensitive). A repeat returns ErrAlreadySubscribed.
func (s *SQLiteStorage) AddSubscriber(ctx context.Context, email string) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO subscribers (email, created_at) VALUES (?, ?)`,
		normalizeEmail(email), time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrAlreadySubscribed
	}
	return nil
}

// RemoveSubscriber removes email from the list.
func (s *SQLiteStorage) RemoveSubscriber(ctx context.Context, email string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM subscribers WHERE email = ?`, normalizeEmail(email))
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("subscriber %s: %w", email, ErrNotFound)
	}
	return nil
}

// CreateFeedback stores a feedback message.
func (s *SQLiteStorage) CreateFeedback(ctx context.Context, fb *models.Feedback) error {
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	var rating sql.NullInt64
	if fb.Rating > 0 {
		rating = sql.NullInt64{Int64: int64(fb.Rating), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (id, email, message, rating, created_at) VALUES (?, ?, ?, ?, ?)`,
		fb.ID, fb.Email, fb.Message, rating, fb.CreatedAt,
	)
	return err
}

// ListFeedback returns feedback newest first.
func (s *SQLiteStorage) ListFeedback(ctx context.Context, offset, limit int) ([]*models.Feedback, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, message, rating, created_at FROM feedback
		 ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Feedback
	for rows.Next() {
		var fb models.Feedback
		var email sql.NullString
		var rating sql.NullInt64
		if err := rows.Scan(&fb.ID, &email, &fb.Message, &rating, &fb.CreatedAt); err != nil {
			return nil, err
		}
		fb.Email = email.String
		fb.Rating = int(rating.Int64)
		out = append(out, &fb)
	}
	return out, rows.Err()
}

func (s *SQLiteStorage) count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	return n, err
}

// CountSubmissions returns the number of submissions.
func (s *SQLiteStorage) CountSubmissions(ctx context.Context) (int64, error) {
	return s.count(ctx, "submissions")
}

// CountSubscribers returns the number of subscribers.
func (s *SQLiteStorage) CountSubscribers(ctx context.Context) (int64, error) {
	return s.count(ctx, "subscribers")
}

// CountFeedback returns the number of feedback messages.
func (s *SQLiteStorage) CountFeedback(ctx context.Context) (int64, error) {
	return s.count(ctx, "feedback")
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
