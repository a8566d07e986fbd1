package usecase

import (
	"context"
	"newsbot/internal/domain"
)

type recentStore interface {
	Recent(ctx context.Context, limit int) ([]domain.SeenRecord, error)
}

// RecentArticlesUseCase отдает последние отмеченные статьи для HTTP API.
type RecentArticlesUseCase struct {
	store recentStore
}

func NewRecentArticlesUseCase(store recentStore) *RecentArticlesUseCase {
	return &RecentArticlesUseCase{store: store}
}

func (uc *RecentArticlesUseCase) Recent(ctx context.Context, limit int) ([]domain.SeenRecord, error) {
	return uc.store.Recent(ctx, limit)
}
