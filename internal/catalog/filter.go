package catalog

import (
	"strings"

	"gbegne-backend/internal/models"
)

// PageSize is the number of prompts added per "load more" step.
const PageSize = 20

// Page is one window of the filtered catalog.
type Page struct {
	Prompts []models.Prompt `json:"texts"`
	HasMore bool            `json:"has_more"`
}

// Remaining filters prompts an owner has not completed yet and windows
// the result for incremental paging.
//
// The filter is pure: given the same catalog, completed set and query
// it returns the same prompts in catalog order. A nil or empty
// completed set returns the full catalog. The query is trimmed and
// matched case-insensitively against prompt text and category.
// page counts from 1; the window is the first page*PageSize matches.
func Remaining(prompts []models.Prompt, completed map[int]bool, query string, page int) Page {
	if page < 1 {
		page = 1
	}
	query = strings.ToLower(strings.TrimSpace(query))

	var filtered []models.Prompt
	for _, p := range prompts {
		if completed[p.ID] {
			continue
		}
		if query != "" && !matches(p, query) {
			continue
		}
		filtered = append(filtered, p)
	}

	limit := page * PageSize
	if limit >= len(filtered) {
		return Page{Prompts: filtered}
	}
	return Page{Prompts: filtered[:limit], HasMore: true}
}

func matches(p models.Prompt, query string) bool {
	return strings.Contains(strings.ToLower(p.Text), query) ||
		strings.Contains(strings.ToLower(p.Category), query)
}
