// Package saver coordinates one save attempt: upload the audio blob,
// insert the metadata row, mark the prompt completed locally. The
// three writes share no transaction, so the sequence is an explicit
// saga with a defined outcome for every partial failure.
package saver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gbegne-backend/internal/models"
)

// Stage names one step of the save saga. Failures carry the stage so
// the caller can decide whether the artifact is worth retrying.
type Stage string

const (
	StageIdle            Stage = "idle"
	StageUploading       Stage = "uploading"
	StageInserting       Stage = "inserting"
	StageMarkingComplete Stage = "marking_complete"
	StageDone            Stage = "done"
)

// StageError is a save failure tagged with the stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("save failed while %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Uploader copies a local artifact into blob storage.
type Uploader interface {
	Upload(ctx context.Context, localPath, contentType string) (string, error)
}

// MetadataInserter persists the recording row.
type MetadataInserter interface {
	InsertMetadata(ctx context.Context, rec models.Recording) (models.Recording, error)
}

// CompletionMarker records local completion.
type CompletionMarker interface {
	MarkCompleted(ctx context.Context, textID int, lang models.Language, owner models.Owner) error
}

// Request is one save attempt. PromptID is zero for custom free-text
// entries, which have no catalog prompt to mark completed.
type Request struct {
	Artifact models.RecordingArtifact
	Owner    models.Owner
	Text     string
	Language models.Language
	PromptID int
	IsCustom bool
}

// Result reports a completed save. CompletionMarked is false when the
// local mark was skipped (custom entry) or failed (logged, non-fatal).
type Result struct {
	Recording        models.Recording
	CompletionMarked bool
}

type Orchestrator struct {
	Uploader Uploader
	Inserter MetadataInserter
	Marker   CompletionMarker
	Logger   *slog.Logger
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Save runs the saga sequentially. Upload and insert failures return a
// StageError and leave the artifact untouched for a manual retry. A
// completion-mark failure does not fail the save: the recording is
// durable remotely and only the local convenience bookkeeping missed,
// so the discrepancy is logged and the save still reports success.
func (o *Orchestrator) Save(ctx context.Context, req Request) (Result, error) {
	if req.Artifact.Path == "" {
		return Result{}, &StageError{Stage: StageIdle, Err: errors.New("no recording artifact")}
	}
	if req.Owner.IsNone() {
		return Result{}, &StageError{Stage: StageIdle, Err: errors.New("no owner resolved")}
	}

	remotePath, err := o.Uploader.Upload(ctx, req.Artifact.Path, req.Artifact.ContentType)
	if err != nil {
		return Result{}, &StageError{Stage: StageUploading, Err: err}
	}

	rec, err := o.Inserter.InsertMetadata(ctx, models.Recording{
		Text:            req.Text,
		AudioFilePath:   remotePath,
		IsCustom:        req.IsCustom,
		ContentLanguage: req.Language,
		Owner:           req.Owner,
	})
	if err != nil {
		return Result{}, &StageError{Stage: StageInserting, Err: err}
	}

	res := Result{Recording: rec}
	if req.IsCustom || req.PromptID == 0 {
		// Nothing to mark; straight to done.
		o.logger().Info("recording saved", "recording", rec.ID, "custom", true,
			"duration", req.Artifact.Duration)
		return res, nil
	}

	if err := o.Marker.MarkCompleted(ctx, req.PromptID, req.Language, req.Owner); err != nil {
		o.logger().Warn("recording saved but completion mark failed; prompt may be offered again",
			"recording", rec.ID, "prompt", req.PromptID, "language", req.Language, "error", err)
		return res, nil
	}

	res.CompletionMarked = true
	o.logger().Info("recording saved", "recording", rec.ID, "prompt", req.PromptID,
		"duration", req.Artifact.Duration)
	return res, nil
}
