package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gbegne-backend/internal/models"
)

type fakeSessions struct {
	owners map[string]models.Owner
	err    error
}

func (f *fakeSessions) SessionOwner(ctx context.Context, token string) (models.Owner, error) {
	if f.err != nil {
		return models.NoOwner(), f.err
	}
	owner, ok := f.owners[token]
	if !ok {
		return models.NoOwner(), ErrNotFound
	}
	return owner, nil
}

type fakeDirectory struct {
	byID       map[string]models.Owner
	byUsername map[string]models.Owner
	lookupErr  error
	created    int
}

func (f *fakeDirectory) AnonymousByID(ctx context.Context, id string) (models.Owner, error) {
	if f.lookupErr != nil {
		return models.NoOwner(), f.lookupErr
	}
	owner, ok := f.byID[id]
	if !ok {
		return models.NoOwner(), ErrNotFound
	}
	return owner, nil
}

func (f *fakeDirectory) AnonymousByUsername(ctx context.Context, username string) (models.Owner, error) {
	if f.lookupErr != nil {
		return models.NoOwner(), f.lookupErr
	}
	owner, ok := f.byUsername[username]
	if !ok {
		return models.NoOwner(), ErrNotFound
	}
	return owner, nil
}

func (f *fakeDirectory) CreateAnonymous(ctx context.Context, username string) (models.Owner, error) {
	f.created++
	owner := models.AnonymousOwner(uuid.NewString(), username)
	if f.byID == nil {
		f.byID = map[string]models.Owner{}
	}
	if f.byUsername == nil {
		f.byUsername = map[string]models.Owner{}
	}
	f.byID[owner.ID] = owner
	f.byUsername[username] = owner
	return owner, nil
}

func TestCurrentOwnerPrefersRegisteredSession(t *testing.T) {
	registered := models.RegisteredOwner("user-1", "marie@example.com")
	guest := models.AnonymousOwner("guest-1", "Marie")
	r := &Resolver{
		Sessions:  &fakeSessions{owners: map[string]models.Owner{"tok": registered}},
		Anonymous: &fakeDirectory{byID: map[string]models.Owner{"guest-1": guest}},
	}

	owner, err := r.CurrentOwner(context.Background(), "tok", "guest-1")
	require.NoError(t, err)
	assert.Equal(t, registered, owner)
}

func TestCurrentOwnerFallsBackToGuest(t *testing.T) {
	guest := models.AnonymousOwner("guest-1", "Marie")
	r := &Resolver{
		Sessions:  &fakeSessions{},
		Anonymous: &fakeDirectory{byID: map[string]models.Owner{"guest-1": guest}},
	}

	// Unknown token is not an error; the guest profile still counts.
	owner, err := r.CurrentOwner(context.Background(), "dead-token", "guest-1")
	require.NoError(t, err)
	assert.Equal(t, guest, owner)
}

func TestCurrentOwnerNoneWithoutCredentials(t *testing.T) {
	r := &Resolver{Sessions: &fakeSessions{}, Anonymous: &fakeDirectory{}}

	owner, err := r.CurrentOwner(context.Background(), "", "")
	require.NoError(t, err)
	assert.True(t, owner.IsNone())
}

func TestCurrentOwnerPropagatesLookupFailure(t *testing.T) {
	boom := errors.New("connection refused")

	r := &Resolver{Sessions: &fakeSessions{err: boom}, Anonymous: &fakeDirectory{}}
	_, err := r.CurrentOwner(context.Background(), "tok", "")
	assert.ErrorIs(t, err, boom)

	r = &Resolver{Sessions: &fakeSessions{}, Anonymous: &fakeDirectory{lookupErr: boom}}
	_, err = r.CurrentOwner(context.Background(), "", "guest-1")
	assert.ErrorIs(t, err, boom)
}

func TestContinueAsGuestReusesExistingProfile(t *testing.T) {
	dir := &fakeDirectory{}
	r := &Resolver{Sessions: &fakeSessions{}, Anonymous: dir}
	ctx := context.Background()

	first, err := r.ContinueAsGuest(ctx, "Marie")
	require.NoError(t, err)

	// Same username again, e.g. after an app reinstall: same profile,
	// not a second one.
	second, err := r.ContinueAsGuest(ctx, "Marie")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, dir.created)
}

func TestContinueAsGuestIsCaseSensitive(t *testing.T) {
	dir := &fakeDirectory{}
	r := &Resolver{Sessions: &fakeSessions{}, Anonymous: dir}
	ctx := context.Background()

	first, err := r.ContinueAsGuest(ctx, "Marie")
	require.NoError(t, err)
	second, err := r.ContinueAsGuest(ctx, "marie")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, dir.created)
}

func TestContinueAsGuestPropagatesLookupFailure(t *testing.T) {
	boom := errors.New("connection refused")
	dir := &fakeDirectory{lookupErr: boom}
	r := &Resolver{Sessions: &fakeSessions{}, Anonymous: dir}

	_, err := r.ContinueAsGuest(context.Background(), "Marie")
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, dir.created, "a failed lookup must not create a profile")
}
