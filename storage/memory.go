package storage

import (
	"context"
	"newsbot/internal/domain"
	"sync"
	"time"
)

type seenKey struct {
	feed string
	link string
}

// MemorySeenStore держит записи в памяти процесса.
// Используется в тестах и для пробных запусков без базы.
type MemorySeenStore struct {
	mu           sync.RWMutex
	records      []domain.SeenRecord
	index        map[seenKey]struct{}
	defaultLimit int
	now          func() time.Time
}

func NewMemorySeenStore(defaultLimit int) *MemorySeenStore {
	return &MemorySeenStore{
		index:        make(map[seenKey]struct{}),
		defaultLimit: defaultLimit,
		now:          time.Now,
	}
}

func (s *MemorySeenStore) Init(context.Context) error { return nil }

func (s *MemorySeenStore) Exists(_ context.Context, feed, link string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[seenKey{feed, link}]
	return ok, nil
}

func (s *MemorySeenStore) Insert(_ context.Context, rec domain.SeenRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := seenKey{rec.Feed, rec.Link}
	if _, ok := s.index[key]; ok {
		return false, nil
	}
	if rec.SeenAt.IsZero() {
		rec.SeenAt = s.now().UTC()
	}
	s.index[key] = struct{}{}
	s.records = append(s.records, rec)
	return true, nil
}

func (s *MemorySeenStore) Recent(_ context.Context, limit int) ([]domain.SeenRecord, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SeenRecord, 0, min(limit, len(s.records)))
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// Len возвращает число сохраненных записей.
func (s *MemorySeenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemorySeenStore) Close() {}
