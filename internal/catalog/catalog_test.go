package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gbegne-backend/internal/models"
)

func TestBundledCatalogs(t *testing.T) {
	for _, lang := range []models.Language{models.LanguageFrench, models.LanguageEwe} {
		t.Run(string(lang), func(t *testing.T) {
			prompts := ByLanguage(lang)
			require.NotEmpty(t, prompts)

			seen := make(map[int]bool)
			for _, p := range prompts {
				assert.False(t, seen[p.ID], "duplicate id %d", p.ID)
				seen[p.ID] = true
				assert.Equal(t, lang, p.Language)
				assert.NotEmpty(t, p.Text)
				assert.NotEmpty(t, p.Category)
			}
		})
	}
}

func TestByLanguageUnknownIsEmpty(t *testing.T) {
	assert.Empty(t, ByLanguage(models.Language("klingon")))
}
