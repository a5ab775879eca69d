package models

import (
	"time"

	"github.com/google/uuid"
)

// Recording is the metadata row persisted alongside an uploaded audio
// blob. The blob and this row are two separate writes with no
// transaction between them; the save orchestrator owns that sequencing.
type Recording struct {
	ID              uuid.UUID `json:"id"`
	Text            string    `json:"text"`
	AudioFilePath   string    `json:"audio_file_path"`
	IsCustom        bool      `json:"is_custom"`
	ContentLanguage Language  `json:"content_language"`
	Owner           Owner     `json:"-"`
	CreatedAt       time.Time `json:"created_at"`

	// PlaybackURL is a time-limited signed URL, filled in when listing.
	// Never persisted.
	PlaybackURL string `json:"playback_url,omitempty"`
}

// RecordingArtifact is the local audio file produced by a recording
// session, prior to upload. It is discarded once the save flow ends.
type RecordingArtifact struct {
	Path        string
	ContentType string
	Duration    time.Duration
}

// CompletionRecord marks that an owner has already recorded a prompt.
// Keyed by (PromptID, Language, owner); at most one record per tuple.
type CompletionRecord struct {
	PromptID    int       `json:"prompt_id"`
	Language    Language  `json:"language"`
	Owner       Owner     `json:"-"`
	CompletedAt time.Time `json:"completed_at"`
}
