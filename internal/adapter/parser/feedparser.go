package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"newsbot/internal/domain"
	"strings"

	"github.com/mmcdole/gofeed"
)

// FeedParser разбирает RSS, Atom и JSON Feed в список записей.
// Порядок записей сохраняется таким, каким он был в документе.
type FeedParser struct {
	log *slog.Logger
}

func NewFeedParser(log *slog.Logger) *FeedParser {
	return &FeedParser{
		log: log.With(slog.String("component", "parser")),
	}
}

// Parse реализует интерфейс usecase.FeedParser.
func (p *FeedParser) Parse(ctx context.Context, reader io.Reader) ([]domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// gofeed.Parser не потокобезопасен, поэтому создается на каждый вызов.
	feed, err := gofeed.NewParser().Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	entries := make([]domain.Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		link := strings.TrimSpace(item.Link)
		if link == "" {
			p.log.Warn("Skipping item", slog.String("title", item.Title), slog.Any("error", domain.ErrInvalidEntry))
			continue
		}
		entries = append(entries, domain.Entry{
			Title: strings.TrimSpace(item.Title),
			Link:  link,
		})
	}
	return entries, nil
}
