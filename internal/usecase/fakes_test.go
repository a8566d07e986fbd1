package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"newsbot/internal/domain"
	"sync"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errUnreachable = errors.New("dial tcp: connection refused")

// fakeSource отдает заранее заданные записи по URL ленты.
type fakeSource struct {
	mu      sync.Mutex
	entries map[string][]domain.Entry
	errs    map[string]error
	calls   map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		entries: make(map[string][]domain.Entry),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (s *fakeSource) set(url string, entries ...domain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[url] = entries
	delete(s.errs, url)
}

func (s *fakeSource) fail(url string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[url] = err
}

func (s *fakeSource) Fetch(_ context.Context, url string) ([]domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[url]++
	if err := s.errs[url]; err != nil {
		return nil, err
	}
	return s.entries[url], nil
}

// brokenStore отвечает ошибкой на любые операции для заданной ленты.
type brokenStore struct {
	SeenStore
	feed string
	err  error
}

func (s *brokenStore) Exists(ctx context.Context, feed, link string) (bool, error) {
	if feed == s.feed {
		return false, s.err
	}
	return s.SeenStore.Exists(ctx, feed, link)
}

// racingStore имитирует другой процесс, успевший вставить запись между Exists и Insert.
type racingStore struct{}

func (racingStore) Exists(context.Context, string, string) (bool, error) { return false, nil }

func (racingStore) Insert(context.Context, domain.SeenRecord) (bool, error) { return false, nil }

type sentMessage struct {
	chatID  int64
	article domain.Article
}

// fakeSender запоминает отправленные сообщения и может падать для выбранного чата.
type fakeSender struct {
	mu       sync.Mutex
	sent     []sentMessage
	failChat int64
}

func (s *fakeSender) Send(_ context.Context, chatID int64, article domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failChat != 0 && chatID == s.failChat {
		return errors.New("Forbidden: bot was blocked by the user")
	}
	s.sent = append(s.sent, sentMessage{chatID: chatID, article: article})
	return nil
}
