package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gbegne-backend/internal/models"
)

func prompts(n int) []models.Prompt {
	ps := make([]models.Prompt, 0, n)
	for i := 1; i <= n; i++ {
		ps = append(ps, models.Prompt{
			ID:       i,
			Text:     "phrase",
			Language: models.LanguageFrench,
			Category: "General",
		})
	}
	return ps
}

func TestRemainingExcludesCompleted(t *testing.T) {
	catalog := prompts(10)
	completed := map[int]bool{2: true, 5: true, 9: true}

	page := Remaining(catalog, completed, "", 1)

	require.Len(t, page.Prompts, 7)
	for _, p := range page.Prompts {
		assert.False(t, completed[p.ID], "completed prompt %d should be filtered out", p.ID)
	}
}

func TestRemainingEmptyCompletedReturnsFullCatalog(t *testing.T) {
	catalog := prompts(10)

	assert.Len(t, Remaining(catalog, nil, "", 1).Prompts, 10)
	assert.Len(t, Remaining(catalog, map[int]bool{}, "", 1).Prompts, 10)
}

func TestRemainingPreservesCatalogOrder(t *testing.T) {
	catalog := prompts(15)

	page := Remaining(catalog, map[int]bool{3: true, 7: true}, "", 1)

	prev := 0
	for _, p := range page.Prompts {
		assert.Greater(t, p.ID, prev, "output must keep catalog order")
		prev = p.ID
	}
}

func TestRemainingSearchIsCaseInsensitive(t *testing.T) {
	catalog := []models.Prompt{
		{ID: 1, Text: "Bonjour, comment allez-vous?", Category: "Greetings"},
		{ID: 2, Text: "Combien ça coûte?", Category: "Shopping"},
	}

	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{"lowercase against capitalized text", "bonjour", []int{1}},
		{"uppercase query", "BONJOUR", []int{1}},
		{"category match", "shopping", []int{2}},
		{"surrounding whitespace trimmed", "  bonjour  ", []int{1}},
		{"no match", "zebra", nil},
		{"empty query matches all", "", []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Remaining(catalog, nil, tt.query, 1)
			var got []int
			for _, p := range page.Prompts {
				got = append(got, p.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemainingSearchAppliesAfterCompletionFilter(t *testing.T) {
	catalog := []models.Prompt{
		{ID: 1, Text: "Bonjour, comment allez-vous?", Category: "Greetings"},
		{ID: 2, Text: "Bonjour tout le monde", Category: "Greetings"},
	}

	page := Remaining(catalog, map[int]bool{1: true}, "bonjour", 1)

	require.Len(t, page.Prompts, 1)
	assert.Equal(t, 2, page.Prompts[0].ID)
}

func TestRemainingPaging(t *testing.T) {
	catalog := prompts(PageSize*2 + 5)

	first := Remaining(catalog, nil, "", 1)
	require.Len(t, first.Prompts, PageSize)
	assert.True(t, first.HasMore)

	second := Remaining(catalog, nil, "", 2)
	require.Len(t, second.Prompts, PageSize*2)
	assert.True(t, second.HasMore)
	// Incremental paging: page 2 extends page 1 rather than replacing it.
	assert.Equal(t, first.Prompts, second.Prompts[:PageSize])

	last := Remaining(catalog, nil, "", 3)
	assert.Len(t, last.Prompts, PageSize*2+5)
	assert.False(t, last.HasMore)
}

func TestRemainingClampsPage(t *testing.T) {
	catalog := prompts(5)

	for _, page := range []int{0, -3} {
		got := Remaining(catalog, nil, "", page)
		assert.Len(t, got.Prompts, 5)
		assert.False(t, got.HasMore)
	}
}

func TestRemainingIsDeterministic(t *testing.T) {
	catalog := prompts(30)
	completed := map[int]bool{4: true, 11: true}

	a := Remaining(catalog, completed, "phrase", 1)
	b := Remaining(catalog, completed, "phrase", 1)

	assert.Equal(t, a, b)
}
