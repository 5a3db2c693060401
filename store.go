package guide

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested submission does not exist.
var ErrNotFound = sql.ErrNoRows

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps a SQLite database holding form submissions.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the retry scheduler write while the inbox reads.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// DB exposes the connection so other tables, such as page view counters,
// can live in the same file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS submissions (
    id TEXT PRIMARY KEY,
    form TEXT NOT NULL,
    fields TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    attempts INTEGER NOT NULL DEFAULT 0,
    last_error TEXT NOT NULL DEFAULT '',
    remote_ip TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS submissions_status ON submissions (status, created_at);
`)
	return err
}

const submissionColumns = `id, form, fields, status, attempts, last_error, remote_ip, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(r rowScanner) (Submission, error) {
	var sub Submission
	var fields, created, updated string
	if err := r.Scan(&sub.ID, &sub.Form, &fields, &sub.Status, &sub.Attempts, &sub.LastError, &sub.RemoteIP, &created, &updated); err != nil {
		return Submission{}, err
	}
	if err := json.Unmarshal([]byte(fields), &sub.Fields); err != nil {
		return Submission{}, fmt.Errorf("decode fields of %s: %w", sub.ID, err)
	}
	sub.CreatedAt, _ = time.Parse(timeLayout, created)
	sub.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return sub, nil
}

// SaveSubmission inserts sub. CreatedAt and UpdatedAt default to now and
// Status to pending.
func (s *Store) SaveSubmission(ctx context.Context, sub Submission) error {
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = sub.CreatedAt
	}
	if sub.Status == "" {
		sub.Status = StatusPending
	}
	fields, err := json.Marshal(sub.Fields)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO submissions (`+submissionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Form, string(fields), sub.Status, sub.Attempts, sub.LastError, sub.RemoteIP,
		sub.CreatedAt.Format(timeLayout), sub.UpdatedAt.Format(timeLayout))
	return err
}

// GetSubmission returns a single submission by id.
func (s *Store) GetSubmission(ctx context.Context, id string) (Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id)
	return scanSubmission(row)
}

// ListSubmissions returns the newest submissions first. A limit of zero
// returns all of them.
func (s *Store) ListSubmissions(ctx context.Context, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+submissionColumns+` FROM submissions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListRetryable returns pending and failed submissions that have been tried
// fewer than maxAttempts times, oldest first. Submissions stuck in sending
// since before staleBefore are included too.
func (s *Store) ListRetryable(ctx context.Context, maxAttempts int, staleBefore time.Time) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+submissionColumns+` FROM submissions
WHERE (status IN (?, ?) OR (status = ? AND updated_at < ?)) AND attempts < ?
ORDER BY created_at ASC`,
		StatusPending, StatusFailed, StatusSending, staleBefore.UTC().Format(timeLayout), maxAttempts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows *sql.Rows) ([]Submission, error) {
	var subs []Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Claim moves a pending or failed submission to sending so that only one
// caller forwards it. A submission left in sending since before staleBefore
// can be claimed again. It reports false if someone else holds the claim or
// the submission was already forwarded.
func (s *Store) Claim(ctx context.Context, id string, staleBefore time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE submissions SET status = ?, updated_at = ?
WHERE id = ? AND (status IN (?, ?) OR (status = ? AND updated_at < ?))`,
		StatusSending, time.Now().UTC().Format(timeLayout),
		id, StatusPending, StatusFailed, StatusSending, staleBefore.UTC().Format(timeLayout))
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkForwarded records a successful forward.
func (s *Store) MarkForwarded(ctx context.Context, id string) error {
	return s.mark(ctx, id, StatusForwarded, "")
}

// MarkFailed records a failed forward attempt and its error.
func (s *Store) MarkFailed(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.mark(ctx, id, StatusFailed, msg)
}

func (s *Store) mark(ctx context.Context, id, status, lastErr string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE submissions SET status = ?, attempts = attempts + 1, last_error = ?, updated_at = ? WHERE id = ?`,
		status, lastErr, time.Now().UTC().Format(timeLayout), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSubmission removes a submission by id.
func (s *Store) DeleteSubmission(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = ?`, id)
	return err
}

// CountByStatus returns the number of submissions per status.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM submissions GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
