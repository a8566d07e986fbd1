package migrations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Migration struct {
	ID    string
	UpSQL string
}

// DB - часть pgxpool.Pool, нужная для применения миграций.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

var allMigrations = []Migration{
	{
		ID: "20261016120000_create_seen_articles_table",
		UpSQL: `
		CREATE TABLE IF NOT EXISTS seen_articles (
		id BIGSERIAL PRIMARY KEY,
		feed TEXT NOT NULL,
		title TEXT NOT NULL,
		link TEXT NOT NULL,
		seen_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT seen_articles_feed_link_key UNIQUE (feed, link)
		);`,
	},
	{
		ID:    "20261016120100_index_seen_articles_seen_at",
		UpSQL: `CREATE INDEX IF NOT EXISTS seen_articles_seen_at_idx ON seen_articles (seen_at DESC);`,
	},
}

// Apply применяет к базе все еще не примененные миграции в одной транзакции.
// Примененные миграции отмечаются в таблице schema_migrations, поэтому повторный вызов ничего не меняет.
func Apply(ctx context.Context, log *slog.Logger, db DB) error {
	log = log.With(slog.String("component", "migrations"))
	log.Info("Starting database migrations check")
	_, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (id TEXT PRIMARY KEY);`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	rows, err := db.Query(ctx, "SELECT id FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	appliedIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("failed to scan migration id: %w", err)
	}
	applied := make(map[string]bool, len(appliedIDs))
	for _, id := range appliedIDs {
		applied[id] = true
	}
	pending := make([]Migration, 0, len(allMigrations))
	for _, m := range allMigrations {
		if !applied[m.ID] {
			pending = append(pending, m)
		}
	}
	if len(pending) == 0 {
		log.Info("Database is up to date, no new migrations found")
		return nil
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].ID < pending[j].ID
	})
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	for _, m := range pending {
		log.Info("Applying migration", slog.String("id", m.ID))
		if _, err := tx.Exec(ctx, m.UpSQL); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (id) VALUES ($1)", m.ID); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migrations transaction: %w", err)
	}
	log.Info("Database migrations applied successfully", slog.Int("count", len(pending)))
	return nil
}
