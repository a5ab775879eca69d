package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"gbegne-backend/internal/models"
)

const sessionTTL = 30 * 24 * time.Hour

// Auth owns the registered-account operations. Sessions are opaque
// server-side tokens in the sessions table.
type Auth struct {
	DB *sql.DB
}

// Register creates an account with a bcrypt-hashed password. The
// account starts unverified; the verification token is logged in place
// of outbound mail.
func (a *Auth) Register(ctx context.Context, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	verification := uuid.NewString()
	_, err = a.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, email_verified, verification_token)
		VALUES ($1, $2, $3, FALSE, $4)
	`, uuid.NewString(), email, string(hash), verification)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}

	log.Printf("verification mail for %s: token=%s", email, verification)
	return nil
}

// Login checks credentials and opens a session. Unverified accounts
// are rejected with ErrEmailNotVerified so the client can offer a
// resend.
func (a *Auth) Login(ctx context.Context, email, password string) (string, models.Owner, error) {
	qctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		id, hash string
		verified bool
	)
	err := a.DB.QueryRowContext(qctx,
		`SELECT id, password_hash, email_verified FROM users WHERE email = $1`, email,
	).Scan(&id, &hash, &verified)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.NoOwner(), ErrInvalidCredentials
	}
	if err != nil {
		return "", models.NoOwner(), fmt.Errorf("query user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", models.NoOwner(), ErrInvalidCredentials
	}
	if !verified {
		return "", models.NoOwner(), ErrEmailNotVerified
	}

	token := uuid.NewString()
	_, err = a.DB.ExecContext(qctx, `
		INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)
	`, token, id, time.Now().Add(sessionTTL))
	if err != nil {
		return "", models.NoOwner(), fmt.Errorf("create session: %w", err)
	}

	return token, models.RegisteredOwner(id, email), nil
}

// Logout drops the session. Unknown tokens are a no-op.
func (a *Auth) Logout(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := a.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// ResendVerification rotates the verification token for an unverified
// account and logs it in place of outbound mail.
func (a *Auth) ResendVerification(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	verification := uuid.NewString()
	res, err := a.DB.ExecContext(ctx, `
		UPDATE users SET verification_token = $1 WHERE email = $2 AND email_verified = FALSE
	`, verification, email)
	if err != nil {
		return fmt.Errorf("rotate verification token: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		// Already verified or unknown address; do not leak which.
		return nil
	}

	log.Printf("verification mail for %s: token=%s", email, verification)
	return nil
}

// VerifyEmail flips the account behind token to verified.
func (a *Auth) VerifyEmail(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := a.DB.ExecContext(ctx, `
		UPDATE users SET email_verified = TRUE, verification_token = NULL
		WHERE verification_token = $1
	`, token)
	if err != nil {
		return fmt.Errorf("verify email: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}
