package progress

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gbegne-backend/internal/models"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "progress.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestMarkAndGetCompleted(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	owner := models.AnonymousOwner("guest-1", "Marie")

	require.NoError(t, s.MarkCompleted(ctx, 42, models.LanguageFrench, owner))
	require.NoError(t, s.MarkCompleted(ctx, 7, models.LanguageFrench, owner))

	completed, err := s.Completed(ctx, models.LanguageFrench, owner)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{42: true, 7: true}, completed)
}

func TestMarkCompletedIsIdempotent(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	owner := models.RegisteredOwner("user-1", "marie@example.com")

	require.NoError(t, s.MarkCompleted(ctx, 42, models.LanguageFrench, owner))
	require.NoError(t, s.MarkCompleted(ctx, 42, models.LanguageFrench, owner))

	completed, err := s.Completed(ctx, models.LanguageFrench, owner)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{42: true}, completed)

	// The unique index keeps the duplicate out of storage too.
	var rows int
	require.NoError(t, s.db.QueryRow(
		`SELECT COUNT(*) FROM completed_texts WHERE text_id = 42`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestCompletedNoneOwnerIsEmpty(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	// Seed the backing store so emptiness is a policy, not an accident.
	require.NoError(t, s.MarkCompleted(ctx, 1, models.LanguageFrench,
		models.AnonymousOwner("guest-1", "Marie")))

	completed, err := s.Completed(ctx, models.LanguageFrench, models.NoOwner())
	require.NoError(t, err)
	assert.Empty(t, completed)
}

func TestMarkCompletedNoneOwnerIsNoop(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.MarkCompleted(ctx, 1, models.LanguageFrench, models.NoOwner()))

	var rows int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM completed_texts`).Scan(&rows))
	assert.Zero(t, rows)
}

func TestCompletedScopedByLanguageAndOwner(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	marie := models.AnonymousOwner("guest-1", "Marie")
	kofi := models.AnonymousOwner("guest-2", "Kofi")
	registered := models.RegisteredOwner("guest-1", "same-id@example.com")

	require.NoError(t, s.MarkCompleted(ctx, 1, models.LanguageFrench, marie))
	require.NoError(t, s.MarkCompleted(ctx, 2, models.LanguageEwe, marie))
	require.NoError(t, s.MarkCompleted(ctx, 3, models.LanguageFrench, kofi))

	completed, err := s.Completed(ctx, models.LanguageFrench, marie)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true}, completed)

	completed, err = s.Completed(ctx, models.LanguageEwe, marie)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{2: true}, completed)

	// A registered owner sharing the raw id string must not see the
	// anonymous owner's completions.
	completed, err = s.Completed(ctx, models.LanguageFrench, registered)
	require.NoError(t, err)
	assert.Empty(t, completed)
}

func TestHistoryReturnsCompletionRecords(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	owner := models.AnonymousOwner("guest-1", "Marie")

	require.NoError(t, s.MarkCompleted(ctx, 42, models.LanguageFrench, owner))
	require.NoError(t, s.MarkCompleted(ctx, 7, models.LanguageFrench, owner))
	require.NoError(t, s.MarkCompleted(ctx, 3, models.LanguageEwe, owner))

	recs, err := s.History(ctx, models.LanguageFrench, owner)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Marked in one burst, so insertion order is the tiebreak.
	assert.Equal(t, 42, recs[0].PromptID)
	assert.Equal(t, 7, recs[1].PromptID)
	for _, rec := range recs {
		assert.Equal(t, models.LanguageFrench, rec.Language)
		assert.Equal(t, owner, rec.Owner)
		assert.False(t, rec.CompletedAt.IsZero())
	}
}

func TestHistoryNoneOwnerIsEmpty(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.MarkCompleted(ctx, 1, models.LanguageFrench,
		models.AnonymousOwner("guest-1", "Marie")))

	recs, err := s.History(ctx, models.LanguageFrench, models.NoOwner())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestCompletionsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.db")
	ctx := context.Background()
	owner := models.AnonymousOwner("guest-1", "Marie")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.MarkCompleted(ctx, 42, models.LanguageEwe, owner))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	completed, err := reopened.Completed(ctx, models.LanguageEwe, owner)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{42: true}, completed)
}
