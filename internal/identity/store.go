package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gbegne-backend/internal/models"
)

const queryTimeout = 5 * time.Second

// Store implements SessionSource and AnonymousDirectory on Postgres.
type Store struct {
	DB *sql.DB
}

func (s *Store) SessionOwner(ctx context.Context, token string) (models.Owner, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		id, email string
		expiresAt time.Time
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT u.id, u.email, s.expires_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1
	`, token).Scan(&id, &email, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NoOwner(), ErrNotFound
	}
	if err != nil {
		return models.NoOwner(), fmt.Errorf("query session: %w", err)
	}

	if time.Now().After(expiresAt) {
		return models.NoOwner(), ErrSessionExpired
	}
	return models.RegisteredOwner(id, email), nil
}

func (s *Store) AnonymousByID(ctx context.Context, id string) (models.Owner, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var username string
	err := s.DB.QueryRowContext(ctx,
		`SELECT username FROM anonymous_users WHERE id = $1`, id,
	).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NoOwner(), ErrNotFound
	}
	if err != nil {
		return models.NoOwner(), fmt.Errorf("query anonymous user: %w", err)
	}
	return models.AnonymousOwner(id, username), nil
}

func (s *Store) AnonymousByUsername(ctx context.Context, username string) (models.Owner, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var id string
	err := s.DB.QueryRowContext(ctx,
		`SELECT id FROM anonymous_users WHERE username = $1`, username,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NoOwner(), ErrNotFound
	}
	if err != nil {
		return models.NoOwner(), fmt.Errorf("query anonymous user: %w", err)
	}
	return models.AnonymousOwner(id, username), nil
}

func (s *Store) CreateAnonymous(ctx context.Context, username string) (models.Owner, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO anonymous_users (id, username) VALUES ($1, $2)`, id, username,
	)
	if err != nil {
		// Two devices racing on the same username hit the UNIQUE
		// constraint here; the loser retries and finds the winner's row.
		return models.NoOwner(), fmt.Errorf("create anonymous user: %w", err)
	}
	return models.AnonymousOwner(id, username), nil
}
