package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/openlive/faq-chatbot/internal/models"
)

// SQLiteInteractionRepository appends interaction records to a local SQLite
// table.
type SQLiteInteractionRepository struct {
	db *sql.DB
}

// NewSQLiteInteractionRepository creates the interactions table if needed.
func NewSQLiteInteractionRepository(ctx context.Context, db *sql.DB) (*SQLiteInteractionRepository, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS interactions (
			id          TEXT PRIMARY KEY,
			timestamp   TEXT NOT NULL,
			platform    TEXT NOT NULL DEFAULT '',
			user_id     TEXT NOT NULL DEFAULT '',
			message     TEXT NOT NULL DEFAULT '',
			action      TEXT NOT NULL,
			status      TEXT NOT NULL DEFAULT '',
			question_id TEXT NOT NULL DEFAULT '',
			score       REAL NOT NULL DEFAULT 0,
			ip          TEXT NOT NULL DEFAULT '',
			user_agent  TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_interactions_ts ON interactions(timestamp);
	`)
	if err != nil {
		return nil, fmt.Errorf("migrate interactions: %w", err)
	}
	return &SQLiteInteractionRepository{db: db}, nil
}

func (r *SQLiteInteractionRepository) Name() string { return "sqlite" }

// Append inserts one record.
func (r *SQLiteInteractionRepository) Append(ctx context.Context, rec models.InteractionRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO interactions
			(id, timestamp, platform, user_id, message, action, status, question_id, score, ip, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp.UTC().Format(time.RFC3339Nano), rec.Platform, rec.UserID, rec.Message,
		rec.Action, rec.Status, rec.QuestionID, rec.Score, rec.Metadata.IP, rec.Metadata.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("insert interaction %s: %w", rec.ID, err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (r *SQLiteInteractionRepository) Recent(ctx context.Context, limit int) ([]models.InteractionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, timestamp, platform, user_id, message, action, status, question_id, score, ip, user_agent
		FROM interactions
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	out := []models.InteractionRecord{}
	for rows.Next() {
		var rec models.InteractionRecord
		var ts string
		if err := rows.Scan(&rec.ID, &ts, &rec.Platform, &rec.UserID, &rec.Message, &rec.Action,
			&rec.Status, &rec.QuestionID, &rec.Score, &rec.Metadata.IP, &rec.Metadata.UserAgent); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, rec)
	}
	return out, rows.Err()
}
