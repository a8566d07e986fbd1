package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"newsbot/internal/domain"
	"time"

	"github.com/gocraft/dbr/v2"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const seenTable = "seen_articles"

var createSeenTable = fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id INTEGER PRIMARY KEY,
	feed TEXT NOT NULL,
	title TEXT NOT NULL,
	link TEXT NOT NULL,
	seen_at INTEGER NOT NULL,
	CONSTRAINT unique_feed_link UNIQUE (feed, link)
);`, seenTable)

// SQLiteSeenStore хранит записи в файле SQLite.
// Соединение одно: SQLite не допускает параллельных писателей.
type SQLiteSeenStore struct {
	conn         *dbr.Connection
	log          *slog.Logger
	defaultLimit int
}

// OpenSQLite открывает (или создает) файл базы по указанному пути.
func OpenSQLite(path string, defaultLimit int, log *slog.Logger) (*SQLiteSeenStore, error) {
	conn, err := dbr.Open("sqlite", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	conn.SetMaxOpenConns(1)
	return &SQLiteSeenStore{
		conn:         conn,
		log:          log.With(slog.String("component", "storage"), slog.String("driver", "sqlite")),
		defaultLimit: defaultLimit,
	}, nil
}

func (s *SQLiteSeenStore) Close() {
	s.log.Info("Closing sqlite database")
	if err := s.conn.Close(); err != nil {
		s.log.Error("Failed to close sqlite database", slog.Any("error", err))
	}
}

func (s *SQLiteSeenStore) Init(ctx context.Context) error {
	const op = "storage.sqlite.Init"
	if _, err := s.conn.ExecContext(ctx, createSeenTable); err != nil {
		return storeError(op, "failed to create table", err)
	}
	return nil
}

func (s *SQLiteSeenStore) Exists(ctx context.Context, feed, link string) (bool, error) {
	const op = "storage.sqlite.Exists"
	var count int
	err := s.conn.NewSession(nil).
		Select("COUNT(*)").
		From(seenTable).
		Where("feed = ? AND link = ?", feed, link).
		LoadOneContext(ctx, &count)
	if err != nil {
		return false, storeError(op, "failed to execute query", err)
	}
	return count > 0, nil
}

// Insert полагается на ограничение unique_feed_link: нарушение уникальности
// означает, что запись уже есть, и не считается ошибкой.
func (s *SQLiteSeenStore) Insert(ctx context.Context, rec domain.SeenRecord) (bool, error) {
	const op = "storage.sqlite.Insert"
	seenAt := rec.SeenAt
	if seenAt.IsZero() {
		seenAt = time.Now()
	}
	_, err := s.conn.NewSession(nil).
		InsertInto(seenTable).
		Columns("feed", "title", "link", "seen_at").
		Values(rec.Feed, rec.Title, rec.Link, seenAt.UnixMilli()).
		ExecContext(ctx)
	if err != nil {
		var serr *sqlite.Error
		if errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return false, nil
		}
		return false, storeError(op, "failed to insert", err)
	}
	return true, nil
}

func (s *SQLiteSeenStore) Recent(ctx context.Context, n int) ([]domain.SeenRecord, error) {
	const op = "storage.sqlite.Recent"
	limit := n
	if limit <= 0 {
		limit = s.defaultLimit
	}
	var rows []struct {
		Feed   string `db:"feed"`
		Title  string `db:"title"`
		Link   string `db:"link"`
		SeenAt int64  `db:"seen_at"`
	}
	_, err := s.conn.NewSession(nil).
		Select("feed", "title", "link", "seen_at").
		From(seenTable).
		OrderDesc("seen_at").
		OrderDesc("id").
		Limit(uint64(limit)).
		LoadContext(ctx, &rows)
	if err != nil {
		return nil, storeError(op, "failed to execute query", err)
	}
	records := make([]domain.SeenRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.SeenRecord{
			Feed:   row.Feed,
			Title:  row.Title,
			Link:   row.Link,
			SeenAt: time.UnixMilli(row.SeenAt).UTC(),
		})
	}
	return records, nil
}
