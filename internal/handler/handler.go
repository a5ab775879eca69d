package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"gbegne-backend/internal/archive"
	"gbegne-backend/internal/identity"
	"gbegne-backend/internal/models"
	"gbegne-backend/internal/progress"
	"gbegne-backend/internal/saver"
	"gbegne-backend/internal/validation"
)

type Handler struct {
	Resolver *identity.Resolver
	Auth     *identity.Auth
	Archive  *archive.Archive
	Progress *progress.Store
	Saver    *saver.Orchestrator
}

// owner resolves the request's actor. A Bearer session token takes
// precedence over the X-Guest-ID header; with neither the None owner
// comes back without error.
func (h *Handler) owner(r *http.Request) (models.Owner, error) {
	return h.Resolver.CurrentOwner(r.Context(), bearerToken(r), r.Header.Get("X-Guest-ID"))
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	var stageErr *saver.StageError
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &stageErr):
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": stageErr.Err.Error(),
			"stage": string(stageErr.Stage),
		})
		return
	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrSessionExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, identity.ErrEmailNotVerified):
		status = http.StatusForbidden
	case errors.Is(err, identity.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, identity.ErrNotFound),
		errors.Is(err, archive.ErrNotFound):
		status = http.StatusNotFound
	case isValidationError(err):
		status = http.StatusBadRequest
	default:
		log.Println("internal error:", err)
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func isValidationError(err error) bool {
	for _, v := range []error{
		validation.ErrFileTooLarge, validation.ErrInvalidFileType,
		validation.ErrFilenameTooLong, validation.ErrEmptyFile,
		validation.ErrUsernameRequired, validation.ErrUsernameTooLong,
		validation.ErrInvalidEmail, validation.ErrPasswordTooShort,
		validation.ErrTextRequired,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
