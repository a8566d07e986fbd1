package usecase

import (
	"context"
	"io"
	"newsbot/internal/domain"
)

// FeedFetcher загружает сырые данные ленты.
// Возвращает io.ReadCloser, который должен быть закрыт после использования.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// FeedParser разбирает сырые данные ленты в записи в порядке документа.
type FeedParser interface {
	Parse(ctx context.Context, reader io.Reader) ([]domain.Entry, error)
}

// FeedSource отдает текущие записи ленты, новые первыми.
type FeedSource interface {
	Fetch(ctx context.Context, url string) ([]domain.Entry, error)
}

// HTTPFeedSource объединяет загрузчик и парсер в FeedSource.
type HTTPFeedSource struct {
	fetcher FeedFetcher
	parser  FeedParser
}

func NewHTTPFeedSource(fetcher FeedFetcher, parser FeedParser) *HTTPFeedSource {
	return &HTTPFeedSource{fetcher: fetcher, parser: parser}
}

func (s *HTTPFeedSource) Fetch(ctx context.Context, url string) ([]domain.Entry, error) {
	reader, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return s.parser.Parse(ctx, reader)
}
