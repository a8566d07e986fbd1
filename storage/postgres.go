package storage

import (
	"context"
	"log/slog"
	"newsbot/internal/domain"
	"newsbot/internal/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxPool - подмножество pgxpool.Pool, которым пользуется хранилище.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

type PostgresSeenStore struct {
	pool         pgxPool
	log          *slog.Logger
	defaultLimit int
}

func NewPostgresSeenStore(pool pgxPool, defaultLimit int, log *slog.Logger) *PostgresSeenStore {
	return &PostgresSeenStore{
		pool:         pool,
		log:          log.With(slog.String("component", "storage"), slog.String("driver", "postgres")),
		defaultLimit: defaultLimit,
	}
}

func (db *PostgresSeenStore) Close() {
	db.log.Info("Closing database connection pool")
	db.pool.Close()
}

// Init применяет миграции, создающие таблицу seen_articles.
func (db *PostgresSeenStore) Init(ctx context.Context) error {
	const op = "storage.postgres.Init"
	if err := migrations.Apply(ctx, db.log, db.pool); err != nil {
		return storeError(op, "failed to apply migrations", err)
	}
	return nil
}

func (db *PostgresSeenStore) Exists(ctx context.Context, feed, link string) (bool, error) {
	const op = "storage.postgres.Exists"
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM seen_articles WHERE feed = $1 AND link = $2)`,
		feed, link,
	).Scan(&exists)
	if err != nil {
		return false, storeError(op, "failed to execute query", err)
	}
	return exists, nil
}

// Insert опирается на ограничение UNIQUE (feed, link): при конфликте строка не вставляется
// и RowsAffected равен нулю.
func (db *PostgresSeenStore) Insert(ctx context.Context, rec domain.SeenRecord) (bool, error) {
	const op = "storage.postgres.Insert"
	tag, err := db.pool.Exec(ctx, `
	INSERT INTO seen_articles (feed, title, link)
	VALUES ($1, $2, $3)
	ON CONFLICT (feed, link) DO NOTHING;
	`, rec.Feed, rec.Title, rec.Link)
	if err != nil {
		db.log.Error("Failed to insert seen record",
			slog.String("op", op),
			slog.String("feed", rec.Feed),
			slog.String("link", rec.Link),
			slog.Any("error", err),
		)
		return false, storeError(op, "failed to insert", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (db *PostgresSeenStore) Recent(ctx context.Context, n int) ([]domain.SeenRecord, error) {
	limit := n
	if limit <= 0 {
		limit = db.defaultLimit
	}
	const op = "storage.postgres.Recent"
	log := db.log.With(slog.String("op", op), slog.Int("limit", limit))
	rows, err := db.pool.Query(ctx, `
	SELECT feed, title, link, seen_at
	FROM seen_articles
	ORDER BY seen_at DESC, id DESC
	LIMIT $1;
	`, limit)
	if err != nil {
		log.Error("Database query failed", slog.Any("error", err))
		return nil, storeError(op, "failed to execute query", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SeenRecord, error) {
		var rec domain.SeenRecord
		err := row.Scan(&rec.Feed, &rec.Title, &rec.Link, &rec.SeenAt)
		return rec, err
	})
	if err != nil {
		log.Error("Failed to collect rows", slog.Any("error", err))
		return nil, storeError(op, "failed to scan row", err)
	}
	log.Debug("Retrieved seen records", slog.Int("count", len(records)))
	return records, nil
}
