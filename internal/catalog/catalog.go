// Package catalog bundles the static prompt catalogs and the filter
// that computes which prompts an owner has not recorded yet.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"gbegne-backend/internal/models"
)

//go:embed french.json
var frenchJSON []byte

//go:embed ewe.json
var eweJSON []byte

var catalogs map[models.Language][]models.Prompt

func init() {
	catalogs = map[models.Language][]models.Prompt{
		models.LanguageFrench: mustLoad(frenchJSON, models.LanguageFrench),
		models.LanguageEwe:    mustLoad(eweJSON, models.LanguageEwe),
	}
}

func mustLoad(data []byte, lang models.Language) []models.Prompt {
	var prompts []models.Prompt
	if err := json.Unmarshal(data, &prompts); err != nil {
		panic(fmt.Sprintf("bundled %s catalog is invalid: %v", lang, err))
	}
	seen := make(map[int]bool, len(prompts))
	for i := range prompts {
		if seen[prompts[i].ID] {
			panic(fmt.Sprintf("bundled %s catalog has duplicate id %d", lang, prompts[i].ID))
		}
		seen[prompts[i].ID] = true
		prompts[i].Language = lang
	}
	return prompts
}

// ByLanguage returns the bundled catalog for lang in bundle order.
// Callers must not mutate the returned slice.
func ByLanguage(lang models.Language) []models.Prompt {
	return catalogs[lang]
}
