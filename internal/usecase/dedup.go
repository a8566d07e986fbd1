package usecase

import (
	"context"
	"log/slog"
	"newsbot/internal/domain"
)

// Политики дедупликации.
const (
	// DedupLatest проверяет только самую свежую запись ленты.
	DedupLatest = "latest"
	// DedupAll проверяет все записи, полученные за цикл.
	DedupAll = "all"
)

// SeenStore - часть хранилища, нужная дедупликатору.
type SeenStore interface {
	Exists(ctx context.Context, feed, link string) (bool, error)
	Insert(ctx context.Context, rec domain.SeenRecord) (bool, error)
}

// Deduplicator решает, какие записи ленты новые, и отмечает их в хранилище.
type Deduplicator struct {
	store SeenStore
	mode  string
	log   *slog.Logger
}

// NewDeduplicator создает дедупликатор; неизвестная политика трактуется как DedupLatest.
func NewDeduplicator(store SeenStore, mode string, log *slog.Logger) *Deduplicator {
	if mode != DedupAll {
		mode = DedupLatest
	}
	return &Deduplicator{
		store: store,
		mode:  mode,
		log:   log.With(slog.String("component", "dedup")),
	}
}

// Check возвращает новые статьи ленты и сохраняет их в хранилище.
// Статья возвращается только если вставка в хранилище действительно произошла,
// поэтому при конкурентных опросах одна ссылка не будет выдана дважды.
// При ошибке хранилища возвращаются уже сохраненные статьи вместе с ошибкой.
func (d *Deduplicator) Check(ctx context.Context, feed string, entries []domain.Entry) ([]domain.Article, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	candidates := entries[:1]
	if d.mode == DedupAll {
		candidates = entries
	}
	var articles []domain.Article
	checked := make(map[string]struct{}, len(candidates))
	for _, entry := range candidates {
		if entry.Link == "" {
			continue
		}
		if _, dup := checked[entry.Link]; dup {
			continue
		}
		checked[entry.Link] = struct{}{}

		seen, err := d.store.Exists(ctx, feed, entry.Link)
		if err != nil {
			return articles, err
		}
		if seen {
			continue
		}
		inserted, err := d.store.Insert(ctx, domain.SeenRecord{Feed: feed, Title: entry.Title, Link: entry.Link})
		if err != nil {
			return articles, err
		}
		if !inserted {
			d.log.Debug("Link recorded concurrently, skipping",
				slog.String("feed", feed),
				slog.String("link", entry.Link),
			)
			continue
		}
		articles = append(articles, domain.Article{Feed: feed, Title: entry.Title, Link: entry.Link})
	}
	return articles, nil
}
