package identity

import (
	"context"
	"errors"

	"gbegne-backend/internal/models"
)

// SessionSource looks up the owner behind a session token.
type SessionSource interface {
	// SessionOwner returns the registered owner for token, ErrNotFound
	// for an unknown token and ErrSessionExpired for a stale one.
	SessionOwner(ctx context.Context, token string) (models.Owner, error)
}

// AnonymousDirectory is the remote anonymous_users table.
type AnonymousDirectory interface {
	AnonymousByID(ctx context.Context, id string) (models.Owner, error)
	// AnonymousByUsername matches the username exactly, case-sensitive.
	AnonymousByUsername(ctx context.Context, username string) (models.Owner, error)
	CreateAnonymous(ctx context.Context, username string) (models.Owner, error)
}

// Resolver establishes the session's owner. It is an explicit object
// handed to the catalog, progress and save components rather than
// ambient global state, so each can be tested with a fixed owner.
type Resolver struct {
	Sessions  SessionSource
	Anonymous AnonymousDirectory
}

// CurrentOwner resolves in priority order: an active registered
// session wins over an anonymous profile; with neither, the None owner
// is returned without error. Lookup failures other than "no rows"
// propagate and block resolution.
func (r *Resolver) CurrentOwner(ctx context.Context, sessionToken, guestID string) (models.Owner, error) {
	if sessionToken != "" {
		owner, err := r.Sessions.SessionOwner(ctx, sessionToken)
		switch {
		case err == nil:
			return owner, nil
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrSessionExpired):
			// Dead token; the guest profile may still identify them.
		default:
			return models.NoOwner(), err
		}
	}

	if guestID != "" {
		owner, err := r.Anonymous.AnonymousByID(ctx, guestID)
		switch {
		case err == nil:
			return owner, nil
		case errors.Is(err, ErrNotFound):
			// Stale guest id, e.g. profile removed server-side.
		default:
			return models.NoOwner(), err
		}
	}

	return models.NoOwner(), nil
}

// ContinueAsGuest finds or creates the anonymous profile for username.
// An existing profile is reused so a returning guest keeps their
// identity without credentials; absence of rows is the create signal.
func (r *Resolver) ContinueAsGuest(ctx context.Context, username string) (models.Owner, error) {
	owner, err := r.Anonymous.AnonymousByUsername(ctx, username)
	if err == nil {
		return owner, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.NoOwner(), err
	}
	return r.Anonymous.CreateAnonymous(ctx, username)
}
