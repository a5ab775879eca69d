package validation

import (
	"errors"
	"mime/multipart"
	"strings"
)

const (
	MaxAudioSize   = 50 * 1024 * 1024 // 50MB
	MaxUsernameLen = 50
	MinPasswordLen = 6
)

var (
	ErrFileTooLarge    = errors.New("file too large - maximum 50MB allowed")
	ErrInvalidFileType = errors.New("invalid file type - only m4a, mp3, wav, ogg, webm allowed")
	ErrFilenameTooLong = errors.New("filename too long - maximum 255 characters")
	ErrEmptyFile       = errors.New("file is empty")

	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameTooLong  = errors.New("username too long - maximum 50 characters")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrTextRequired     = errors.New("text is required")
)

var AllowedMimeTypes = map[string]bool{
	"audio/mp4":    true,
	"audio/m4a":    true,
	"audio/x-m4a":  true,
	"audio/aac":    true,
	"audio/mpeg":   true,
	"audio/mp3":    true,
	"audio/wav":    true,
	"audio/wave":   true,
	"audio/x-wav":  true,
	"audio/ogg":    true,
	"audio/vorbis": true,
	"audio/webm":   true,
}

func ValidateUpload(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size == 0 {
		return ErrEmptyFile
	}
	if fileHeader.Size > MaxAudioSize {
		return ErrFileTooLarge
	}
	if len(fileHeader.Filename) > 255 {
		return ErrFilenameTooLong
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = guessContentType(fileHeader.Filename)
	}
	if !AllowedMimeTypes[contentType] {
		return ErrInvalidFileType
	}
	return nil
}

func guessContentType(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx == -1 {
		return "application/octet-stream"
	}

	typeMap := map[string]string{
		"m4a":  "audio/mp4",
		"aac":  "audio/aac",
		"mp3":  "audio/mpeg",
		"wav":  "audio/wav",
		"ogg":  "audio/ogg",
		"webm": "audio/webm",
	}
	if ct, ok := typeMap[strings.ToLower(filename[idx+1:])]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ValidateUsername applies the guest-username rules: non-empty after
// trimming, bounded length. Matching stays exact and case-sensitive,
// so no normalization happens here.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrUsernameRequired
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}

func ValidateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return ErrInvalidEmail
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	return nil
}

func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrTextRequired
	}
	return nil
}
