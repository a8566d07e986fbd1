package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"newsbot/internal/domain"
	"newsbot/internal/metrics"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PollCycle выполняет один проход по всем настроенным лентам.
// Ленты обрабатываются параллельно (не больше concurrency одновременно),
// но результат всегда упорядочен так же, как ленты в конфигурации.
type PollCycle struct {
	feeds       []domain.FeedDescriptor
	source      FeedSource
	dedup       *Deduplicator
	feedTimeout time.Duration
	concurrency int
	log         *slog.Logger
}

// NewPollCycle создает цикл опроса для фиксированного списка лент.
func NewPollCycle(
	feeds []domain.FeedDescriptor,
	source FeedSource,
	dedup *Deduplicator,
	feedTimeout time.Duration,
	concurrency int,
	log *slog.Logger,
) *PollCycle {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &PollCycle{
		feeds:       feeds,
		source:      source,
		dedup:       dedup,
		feedTimeout: feedTimeout,
		concurrency: concurrency,
		log:         log.With(slog.String("component", "poll-cycle")),
	}
}

// Feeds возвращает ленты, которые обходит цикл.
func (p *PollCycle) Feeds() []domain.FeedDescriptor { return p.feeds }

// RunOnce обходит все ленты и возвращает новые статьи в порядке лент.
//
// Ошибка загрузки ленты не прерывает цикл: лента просто пропускается.
// Ошибки хранилища собираются и возвращаются вместе со статьями остальных лент;
// записи, уже сохраненные до ошибки, остаются в силе. Если контекст отменен,
// еще не начатые ленты пропускаются и в ошибку добавляется ctx.Err().
func (p *PollCycle) RunOnce(ctx context.Context) ([]domain.Article, error) {
	start := time.Now()
	log := p.log.With(slog.String("cycle_id", uuid.NewString()))
	log.Info("Poll cycle started", slog.Int("feeds_to_process", len(p.feeds)))

	results := make([][]domain.Article, len(p.feeds))
	feedErrs := make([]error, len(p.feeds))
	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, feed := range p.feeds {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i], feedErrs[i] = p.checkFeed(ctx, log, feed)
			return nil
		})
	}
	_ = g.Wait()

	var articles []domain.Article
	for _, r := range results {
		articles = append(articles, r...)
	}
	errs := make([]error, 0, len(feedErrs)+1)
	for _, err := range feedErrs {
		if err != nil {
			errs = append(errs, err)
		}
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, fmt.Errorf("poll cycle interrupted: %w", err))
	}
	err := errors.Join(errs...)

	duration := time.Since(start)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordCycle(status, duration.Seconds())
	log.Info("Poll cycle completed",
		slog.Int("new_articles", len(articles)),
		slog.Int("errors", len(errs)),
		slog.Int("total", len(p.feeds)),
		slog.Duration("duration", duration),
	)
	return articles, err
}

// checkFeed загружает одну ленту и прогоняет её через дедупликатор.
// Ошибка загрузки поглощается; возвращаются только ошибки хранилища.
func (p *PollCycle) checkFeed(ctx context.Context, log *slog.Logger, feed domain.FeedDescriptor) ([]domain.Article, error) {
	log = log.With(slog.String("feed", feed.Name), slog.String("url", feed.URL))
	feedCtx, cancel := context.WithTimeout(ctx, p.feedTimeout)
	defer cancel()

	entries, err := p.source.Fetch(feedCtx, feed.URL)
	if err != nil {
		fetchErr := &domain.FetchError{Feed: feed.Name, URL: feed.URL, Err: err}
		log.Warn("Feed fetch failed, skipping", slog.String("stage", "fetch"), slog.Any("error", fetchErr))
		metrics.RecordFeedCheck(feed.Name, "fetch_error", 0)
		return nil, nil
	}
	log.Debug("Feed fetched", slog.String("stage", "fetch"), slog.Int("entries", len(entries)))

	articles, err := p.dedup.Check(feedCtx, feed.Name, entries)
	if err != nil {
		log.Error("Seen store failed",
			slog.String("stage", "dedup"),
			slog.Int("saved_before_error", len(articles)),
			slog.Any("error", err),
		)
		metrics.RecordFeedCheck(feed.Name, "store_error", len(articles))
		return articles, fmt.Errorf("feed %s: %w", feed.Name, err)
	}
	metrics.RecordFeedCheck(feed.Name, "ok", len(articles))
	if len(articles) > 0 {
		log.Info("New articles found", slog.Int("count", len(articles)))
	}
	return articles, nil
}
