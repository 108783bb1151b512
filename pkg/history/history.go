// Package history persists classification results to PostgreSQL so past
// decisions can be audited per session.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minwonlab/sentinel/pkg/complaint"
)

const schema = `
CREATE TABLE IF NOT EXISTS classification_history (
	id BIGSERIAL PRIMARY KEY,
	session_id TEXT NOT NULL DEFAULT '',
	turn_index INT NOT NULL DEFAULT 0,
	text TEXT NOT NULL,
	risk_score INT NOT NULL,
	risk_level TEXT NOT NULL,
	profanity_detected BOOLEAN NOT NULL DEFAULT FALSE,
	profanity_category TEXT NOT NULL DEFAULT '',
	baseline_issues TEXT[] NOT NULL DEFAULT '{}',
	metadata_issues TEXT[] NOT NULL DEFAULT '{}',
	confidence DOUBLE PRECISION NOT NULL,
	recommendation TEXT NOT NULL,
	classified_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_classification_history_session
	ON classification_history (session_id, classified_at);
`

// Entry is one persisted classification decision.
type Entry struct {
	ID           int64                     `json:"id"`
	SessionID    string                    `json:"session_id,omitempty"`
	TurnIndex    int                       `json:"turn_index"`
	Text         string                    `json:"text"`
	Result       complaint.RiskScoreResult `json:"result"`
	ClassifiedAt time.Time                 `json:"classified_at"`
}

// Repository handles classification history storage.
type Repository struct {
	pool *pgxpool.Pool
}

// New wraps an existing connection pool.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Connect opens a pool against the given DSN and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect history store: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping history store: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// EnsureSchema creates the history table and index if missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure history schema: %w", err)
	}
	return nil
}

const insertQuery = `
	INSERT INTO classification_history (
		session_id, turn_index, text, risk_score, risk_level,
		profanity_detected, profanity_category, baseline_issues,
		metadata_issues, confidence, recommendation
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING id, classified_at
`

func insertArgs(e *Entry) []any {
	return []any{
		e.SessionID,
		e.TurnIndex,
		e.Text,
		e.Result.RiskScore,
		e.Result.RiskLevel.String(),
		e.Result.ProfanityDetected,
		e.Result.ProfanityCategory,
		e.Result.BaselineIssues,
		e.Result.MetadataIssues,
		e.Result.Confidence,
		e.Result.Recommendation,
	}
}

// Insert stores one entry and fills in its assigned ID and timestamp.
func (r *Repository) Insert(ctx context.Context, e *Entry) error {
	err := r.pool.QueryRow(ctx, insertQuery, insertArgs(e)...).Scan(&e.ID, &e.ClassifiedAt)
	if err != nil {
		return fmt.Errorf("insert classification history: %w", err)
	}
	return nil
}

// InsertBatch stores many entries in one round trip.
func (r *Repository) InsertBatch(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range entries {
		batch.Queue(insertQuery, insertArgs(&entries[i])...)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range entries {
		if err := results.QueryRow().Scan(&entries[i].ID, &entries[i].ClassifiedAt); err != nil {
			return fmt.Errorf("insert classification history batch row %d: %w", i, err)
		}
	}
	return nil
}

// RecentBySession returns a session's most recent entries, newest first.
func (r *Repository) RecentBySession(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, session_id, turn_index, text, risk_score, risk_level,
		       profanity_detected, profanity_category, baseline_issues,
		       metadata_issues, confidence, recommendation, classified_at
		FROM classification_history
		WHERE session_id = $1
		ORDER BY classified_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query classification history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var level string
		err := rows.Scan(
			&e.ID, &e.SessionID, &e.TurnIndex, &e.Text,
			&e.Result.RiskScore, &level,
			&e.Result.ProfanityDetected, &e.Result.ProfanityCategory,
			&e.Result.BaselineIssues, &e.Result.MetadataIssues,
			&e.Result.Confidence, &e.Result.Recommendation,
			&e.ClassifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan classification history: %w", err)
		}
		if e.Result.RiskLevel, err = complaint.ParseSeverity(level); err != nil {
			return nil, fmt.Errorf("scan classification history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate classification history: %w", err)
	}
	return entries, nil
}

// LevelCounts returns the stored risk-level distribution.
func (r *Repository) LevelCounts(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT risk_level, COUNT(*)
		FROM classification_history
		GROUP BY risk_level
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query level counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("scan level counts: %w", err)
		}
		counts[level] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate level counts: %w", err)
	}
	return counts, nil
}

// LastForSession returns the newest entry for a session, or (nil, nil) when
// none exists.
func (r *Repository) LastForSession(ctx context.Context, sessionID string) (*Entry, error) {
	entries, err := r.RecentBySession(ctx, sessionID, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// Close releases the pool.
func (r *Repository) Close() {
	r.pool.Close()
}
