// Package archive is the remote recording archive: an audio blob in
// the blob store plus a metadata row in the recordings table. The two
// writes are not transactional; the save orchestrator sequences them.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"gbegne-backend/internal/models"
	"gbegne-backend/internal/storage"
)

// Sentinel errors — callers use errors.Is() instead of string matching.
var (
	ErrUpload   = errors.New("audio upload failed")
	ErrInsert   = errors.New("recording insert failed")
	ErrNotFound = errors.New("recording not found")
)

// PlaybackTTL is how long a signed playback URL stays valid.
const PlaybackTTL = time.Hour

const queryTimeout = 5 * time.Second

type Archive struct {
	DB     *sql.DB
	Blobs  storage.BlobStore
	Logger *slog.Logger
}

func (a *Archive) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// ObjectName generates a unique blob name for a new recording.
func ObjectName(ext string) string {
	if ext == "" {
		ext = ".m4a"
	}
	return fmt.Sprintf("recording_%d_%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}

// Upload copies the local artifact into blob storage under a generated
// unique name and returns that name. A missing local file or a
// rejected remote write both come back wrapped in ErrUpload.
func (a *Archive) Upload(ctx context.Context, localPath, contentType string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("%w: open artifact %s: %v", ErrUpload, localPath, err)
	}
	defer f.Close()

	objectName := ObjectName(filepath.Ext(localPath))
	if err := a.Blobs.Upload(ctx, f, objectName, contentType); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	return objectName, nil
}

// InsertMetadata persists the recording row referencing an already
// uploaded blob. Exactly one owner column is set; the table CHECK
// enforces it as well.
func (a *Archive) InsertMetadata(ctx context.Context, rec models.Recording) (models.Recording, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	err := a.DB.QueryRowContext(ctx, `
		INSERT INTO recordings (id, text, audio_file_path, is_custom, content_language, user_id, anonymous_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`,
		rec.ID, rec.Text, rec.AudioFilePath, rec.IsCustom, string(rec.ContentLanguage),
		rec.Owner.UserID(), rec.Owner.AnonymousUserID(),
	).Scan(&rec.CreatedAt)
	if err != nil {
		return models.Recording{}, fmt.Errorf("%w: %v", ErrInsert, err)
	}
	return rec, nil
}

// PlaybackURL produces a time-limited signed URL for a stored blob.
func (a *Archive) PlaybackURL(ctx context.Context, objectName string) (string, error) {
	return a.Blobs.SignedURL(ctx, objectName, PlaybackTTL)
}

// List returns owner's recordings newest first, each with a playback
// URL. A None owner owns nothing and gets an empty list.
func (a *Archive) List(ctx context.Context, owner models.Owner) ([]models.Recording, error) {
	if owner.IsNone() {
		return nil, nil
	}

	qctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := a.DB.QueryContext(qctx, `
		SELECT id, text, audio_file_path, is_custom, content_language, user_id, anonymous_user_id, created_at
		FROM recordings
		WHERE `+ownerColumn(owner)+` = $1
		ORDER BY created_at DESC
	`, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("query recordings: %w", err)
	}
	defer rows.Close()

	var recs []models.Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recs {
		url, err := a.PlaybackURL(ctx, recs[i].AudioFilePath)
		if err != nil {
			// A recording without a playback link is still listable.
			a.logger().Warn("signing playback URL failed",
				"recording", recs[i].ID, "object", recs[i].AudioFilePath, "error", err)
			continue
		}
		recs[i].PlaybackURL = url
	}
	return recs, nil
}

// Remove deletes a recording the owner holds: best-effort blob delete
// first, then the metadata row unconditionally. A blob that fails to
// delete is logged and left orphaned rather than blocking the row.
func (a *Archive) Remove(ctx context.Context, id uuid.UUID, owner models.Owner) error {
	rec, err := a.get(ctx, id, owner)
	if err != nil {
		return err
	}

	if err := a.Blobs.Delete(ctx, rec.AudioFilePath); err != nil {
		a.logger().Warn("blob delete failed, removing metadata anyway",
			"recording", id, "object", rec.AudioFilePath, "error", err)
	}

	qctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err = a.DB.ExecContext(qctx, `DELETE FROM recordings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recording row: %w", err)
	}
	return nil
}

func (a *Archive) get(ctx context.Context, id uuid.UUID, owner models.Owner) (models.Recording, error) {
	if owner.IsNone() {
		return models.Recording{}, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := a.DB.QueryRowContext(ctx, `
		SELECT id, text, audio_file_path, is_custom, content_language, user_id, anonymous_user_id, created_at
		FROM recordings
		WHERE id = $1 AND `+ownerColumn(owner)+` = $2
	`, id, owner.ID)

	rec, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Recording{}, ErrNotFound
	}
	return rec, err
}

// ownerColumn picks the owner column for the active variant.
func ownerColumn(owner models.Owner) string {
	if owner.Kind == models.OwnerRegistered {
		return "user_id"
	}
	return "anonymous_user_id"
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecording(s scanner) (models.Recording, error) {
	var (
		rec            models.Recording
		lang           string
		userID, anonID sql.NullString
	)
	err := s.Scan(&rec.ID, &rec.Text, &rec.AudioFilePath, &rec.IsCustom, &lang, &userID, &anonID, &rec.CreatedAt)
	if err != nil {
		return models.Recording{}, err
	}
	rec.ContentLanguage = models.Language(lang)
	rec.Owner = models.OwnerFromColumns(userID, anonID)
	return rec, nil
}
