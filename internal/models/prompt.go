package models

import "fmt"

// Language identifies which catalog a prompt or recording belongs to.
type Language string

const (
	LanguageFrench Language = "french"
	LanguageEwe    Language = "ewe"
)

// ParseLanguage validates a wire value against the supported set.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LanguageFrench:
		return LanguageFrench, nil
	case LanguageEwe:
		return LanguageEwe, nil
	default:
		return "", fmt.Errorf("unsupported language %q", s)
	}
}

// Prompt is a catalog sentence offered for recording. Prompts are
// loaded from the bundled catalogs and never mutated at runtime.
type Prompt struct {
	ID       int      `json:"id"`
	Text     string   `json:"text"`
	Language Language `json:"language"`
	Category string   `json:"category"`
}
