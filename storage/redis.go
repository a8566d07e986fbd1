package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"newsbot/internal/domain"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "newsbot:seen:"
	redisRecentKey = "newsbot:recent"
	redisRecentCap = 500
)

// RedisSeenStore хранит ссылки ленты в хеше newsbot:seen:<feed> (link -> title).
// HSETNX дает атомарную проверку со вставкой, поэтому хранилище можно делить между
// несколькими процессами опроса. Для листинга ведется ограниченный список последних записей.
type RedisSeenStore struct {
	client       *redis.Client
	log          *slog.Logger
	defaultLimit int
}

func NewRedisSeenStore(client *redis.Client, defaultLimit int, log *slog.Logger) *RedisSeenStore {
	return &RedisSeenStore{
		client:       client,
		log:          log.With(slog.String("component", "storage"), slog.String("driver", "redis")),
		defaultLimit: defaultLimit,
	}
}

func feedKey(feed string) string { return redisKeyPrefix + feed }

// Init только проверяет соединение: структуры Redis создаются при первой записи.
func (s *RedisSeenStore) Init(ctx context.Context) error {
	const op = "storage.redis.Init"
	if err := s.client.Ping(ctx).Err(); err != nil {
		return storeError(op, "failed to ping redis", err)
	}
	return nil
}

func (s *RedisSeenStore) Exists(ctx context.Context, feed, link string) (bool, error) {
	const op = "storage.redis.Exists"
	ok, err := s.client.HExists(ctx, feedKey(feed), link).Result()
	if err != nil {
		return false, storeError(op, "failed to check link", err)
	}
	return ok, nil
}

func (s *RedisSeenStore) Insert(ctx context.Context, rec domain.SeenRecord) (bool, error) {
	const op = "storage.redis.Insert"
	inserted, err := s.client.HSetNX(ctx, feedKey(rec.Feed), rec.Link, rec.Title).Result()
	if err != nil {
		return false, storeError(op, "failed to set link", err)
	}
	if !inserted {
		return false, nil
	}
	if rec.SeenAt.IsZero() {
		rec.SeenAt = time.Now().UTC()
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return true, storeError(op, "failed to encode record", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, redisRecentKey, payload)
		pipe.LTrim(ctx, redisRecentKey, 0, redisRecentCap-1)
		return nil
	})
	if err != nil {
		// Ключ уже записан в хеш, поэтому запись считается сохраненной;
		// теряется только строка в списке последних.
		s.log.Warn("Failed to append to recent list",
			slog.String("op", op),
			slog.String("feed", rec.Feed),
			slog.Any("error", err),
		)
	}
	return true, nil
}

func (s *RedisSeenStore) Recent(ctx context.Context, n int) ([]domain.SeenRecord, error) {
	const op = "storage.redis.Recent"
	limit := n
	if limit <= 0 {
		limit = s.defaultLimit
	}
	raw, err := s.client.LRange(ctx, redisRecentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, storeError(op, "failed to read recent list", err)
	}
	records := make([]domain.SeenRecord, 0, len(raw))
	for _, item := range raw {
		var rec domain.SeenRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			s.log.Warn("Skipping malformed recent record", slog.String("op", op), slog.Any("error", err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *RedisSeenStore) Close() {
	if err := s.client.Close(); err != nil {
		s.log.Error("Failed to close redis client", slog.Any("error", err))
	}
}
