// Package progress persists which prompts an owner has already
// recorded. The store is local-only ground truth: it survives restarts
// but is never synced across devices.
package progress

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"gbegne-backend/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS completed_texts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	text_id INTEGER NOT NULL,
	language TEXT NOT NULL,
	user_id TEXT,
	anonymous_user_id TEXT,
	completed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_completed_texts_owner
	ON completed_texts (text_id, language, IFNULL(user_id, ''), IFNULL(anonymous_user_id, ''));
`

// Store is the durable local completion tracker.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the completion database at path and
// ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// MarkCompleted records that owner finished textID in lang. Re-marking
// the same tuple is a no-op: the unique index plus INSERT OR IGNORE
// keeps the row count at one and never surfaces an error to the
// caller. Marking with no owner is skipped entirely, matching the
// "no owner, nothing completed" policy on the read side.
func (s *Store) MarkCompleted(ctx context.Context, textID int, lang models.Language, owner models.Owner) error {
	if owner.IsNone() {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO completed_texts (text_id, language, user_id, anonymous_user_id)
		VALUES (?, ?, ?, ?)
	`, textID, string(lang), owner.UserID(), owner.AnonymousUserID())
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

// Completed returns the set of prompt ids owner has finished in lang.
// A None owner yields an empty set without touching the database, so
// unauthenticated browsing sees the full catalog.
func (s *Store) Completed(ctx context.Context, lang models.Language, owner models.Owner) (map[int]bool, error) {
	completed := make(map[int]bool)
	if owner.IsNone() {
		return completed, nil
	}

	query := `SELECT text_id FROM completed_texts WHERE language = ? AND ` + ownerCondition(owner)
	rows, err := s.db.QueryContext(ctx, query, string(lang), owner.ID)
	if err != nil {
		return nil, fmt.Errorf("query completed texts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan completed text: %w", err)
		}
		completed[id] = true
	}
	return completed, rows.Err()
}

// History returns owner's completion records in lang, oldest first.
// A None owner has no history.
func (s *Store) History(ctx context.Context, lang models.Language, owner models.Owner) ([]models.CompletionRecord, error) {
	if owner.IsNone() {
		return nil, nil
	}

	query := `SELECT text_id, completed_at FROM completed_texts WHERE language = ? AND ` +
		ownerCondition(owner) + ` ORDER BY completed_at, id`
	rows, err := s.db.QueryContext(ctx, query, string(lang), owner.ID)
	if err != nil {
		return nil, fmt.Errorf("query completion history: %w", err)
	}
	defer rows.Close()

	var recs []models.CompletionRecord
	for rows.Next() {
		rec := models.CompletionRecord{Language: lang, Owner: owner}
		if err := rows.Scan(&rec.PromptID, &rec.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan completion record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// ownerCondition picks the owner column for the active variant.
func ownerCondition(owner models.Owner) string {
	if owner.Kind == models.OwnerRegistered {
		return `user_id = ?`
	}
	return `anonymous_user_id = ?`
}
