// Command admin holds the operational tooling for the collection
// backend: applying the Postgres schema and inspecting the bundled
// prompt catalogs.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"gbegne-backend/internal/catalog"
	"gbegne-backend/internal/models"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		godotenv.Load()
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "admin",
		Short: "Operational tooling for the voice collection backend",
	}
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newCatalogCmd())
	return rootCmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL := os.Getenv("DATABASE_URL")
			if dbURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}

			db, err := sql.Open("postgres", dbURL)
			if err != nil {
				return fmt.Errorf("open DB: %w", err)
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping DB: %w", err)
			}

			if _, err := db.ExecContext(ctx, schema); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
			fmt.Println("Schema applied")
			return nil
		},
	}
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Show bundled prompt catalog stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, lang := range []models.Language{models.LanguageFrench, models.LanguageEwe} {
				prompts := catalog.ByLanguage(lang)
				categories := make(map[string]int)
				for _, p := range prompts {
					categories[p.Category]++
				}
				fmt.Printf("%s: %d prompts, %d categories\n", lang, len(prompts), len(categories))
			}
			return nil
		},
	}
}

// Recording rows reference exactly one owner variant; the CHECK keeps
// the two nullable columns from ever being set together.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	email_verified BOOLEAN NOT NULL DEFAULT FALSE,
	verification_token UUID,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS anonymous_users (
	id UUID PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS recordings (
	id UUID PRIMARY KEY,
	text TEXT NOT NULL,
	audio_file_path TEXT NOT NULL,
	is_custom BOOLEAN NOT NULL DEFAULT FALSE,
	content_language TEXT NOT NULL,
	user_id UUID REFERENCES users(id),
	anonymous_user_id UUID REFERENCES anonymous_users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK (num_nonnulls(user_id, anonymous_user_id) = 1)
);

CREATE INDEX IF NOT EXISTS idx_recordings_user ON recordings (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_recordings_anonymous ON recordings (anonymous_user_id, created_at DESC);
`
