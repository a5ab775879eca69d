package handler

import (
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gbegne-backend/internal/catalog"
	"gbegne-backend/internal/models"
	"gbegne-backend/internal/saver"
	"gbegne-backend/internal/validation"
)

// ListTexts returns the prompts the current owner has not recorded
// yet, filtered by an optional search query and windowed for
// incremental paging. With no owner resolved nothing is pre-filtered.
func (h *Handler) ListTexts(w http.ResponseWriter, r *http.Request) {
	lang, err := models.ParseLanguage(r.URL.Query().Get("language"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	owner, err := h.owner(r)
	if err != nil {
		writeError(w, err)
		return
	}

	completed, err := h.Progress.Completed(r.Context(), lang, owner)
	if err != nil {
		writeError(w, err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	result := catalog.Remaining(catalog.ByLanguage(lang), completed, r.URL.Query().Get("q"), page)
	writeJSON(w, http.StatusOK, result)
}

// ListProgress returns the owner's completion history for a language,
// oldest first. Without an owner the history is empty.
func (h *Handler) ListProgress(w http.ResponseWriter, r *http.Request) {
	lang, err := models.ParseLanguage(r.URL.Query().Get("language"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	owner, err := h.owner(r)
	if err != nil {
		writeError(w, err)
		return
	}

	recs, err := h.Progress.History(r.Context(), lang, owner)
	if err != nil {
		writeError(w, err)
		return
	}
	if recs == nil {
		recs = []models.CompletionRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"completed": recs})
}

// SaveRecording accepts a multipart save request: the audio file plus
// text, language, optional text_id and is_custom fields. It runs the
// full save saga and reports the failed stage on error so the client
// can keep the artifact for retry.
func (h *Handler) SaveRecording(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if owner.IsNone() {
		http.Error(w, "login or continue as guest before saving", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(validation.MaxAudioSize); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	lang, err := models.ParseLanguage(r.FormValue("language"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	text := r.FormValue("text")
	if err := validation.ValidateText(text); err != nil {
		writeError(w, err)
		return
	}
	isCustom := r.FormValue("is_custom") == "true"

	// A malformed text_id must not silently become a custom save that
	// skips completion marking.
	promptID := 0
	if v := r.FormValue("text_id"); v != "" {
		promptID, err = strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid text_id", http.StatusBadRequest)
			return
		}
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		http.Error(w, "missing audio file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if err := validation.ValidateUpload(header); err != nil {
		writeError(w, err)
		return
	}

	// Spool to a temp file so the orchestrator sees the same local
	// artifact shape the recorder produces.
	artifactPath, err := spoolArtifact(file, header.Filename)
	if err != nil {
		log.Println("spooling upload failed:", err)
		http.Error(w, "could not read upload", http.StatusInternalServerError)
		return
	}
	defer os.Remove(artifactPath)

	durationMS, _ := strconv.Atoi(r.FormValue("duration_ms"))

	result, err := h.Saver.Save(r.Context(), saver.Request{
		Artifact: models.RecordingArtifact{
			Path:        artifactPath,
			ContentType: header.Header.Get("Content-Type"),
			Duration:    time.Duration(durationMS) * time.Millisecond,
		},
		Owner:    owner,
		Text:     text,
		Language: lang,
		PromptID: promptID,
		IsCustom: isCustom,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"recording":         result.Recording,
		"completion_marked": result.CompletionMarked,
	})
}

func spoolArtifact(file io.Reader, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "artifact_*"+filepath.Ext(filename))
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// ListRecordings returns the owner's saved recordings newest first,
// each with a time-limited playback URL.
func (h *Handler) ListRecordings(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		writeError(w, err)
		return
	}

	recs, err := h.Archive.List(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	if recs == nil {
		recs = []models.Recording{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"recordings": recs})
}

func (h *Handler) DeleteRecording(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid recording id", http.StatusBadRequest)
		return
	}

	if err := h.Archive.Remove(r.Context(), id, owner); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
