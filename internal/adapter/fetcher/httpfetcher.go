package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	userAgent      = "newsbot/1.0"
	defaultTimeout = 30 * time.Second
)

// HTTPFetcher загружает тело ленты по HTTP.
// Таймаут клиента ограничивает запрос сверху, даже если контекст вызова его не задает.
type HTTPFetcher struct {
	client *http.Client
	log    *slog.Logger
}

// Option настраивает HTTPFetcher.
type Option func(*HTTPFetcher)

// WithClient подменяет HTTP-клиент.
func WithClient(c *http.Client) Option {
	return func(f *HTTPFetcher) { f.client = c }
}

// NewHTTPFetcher создает HTTPFetcher с клиентом по умолчанию и переданным логгером.
func NewHTTPFetcher(log *slog.Logger, opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{Timeout: defaultTimeout},
		log:    log.With(slog.String("component", "fetcher")),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch выполняет GET-запрос и возвращает тело ответа, которое вызывающий обязан закрыть.
// Любой статус кроме 200 считается ошибкой.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	log := f.log.With(slog.String("url", url))
	log.Debug("Fetching URL")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for url %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")
	resp, err := f.client.Do(req)
	if err != nil {
		log.Warn("HTTP request failed", slog.Any("error", err))
		return nil, fmt.Errorf("failed to fetch url %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		log.Warn("Unexpected status code", slog.Int("status_code", resp.StatusCode))
		return nil, fmt.Errorf("unexpected status code: %d for url %s", resp.StatusCode, url)
	}
	log.Debug("Fetched URL")
	return resp.Body, nil
}
