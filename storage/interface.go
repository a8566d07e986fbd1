package storage

import (
	"context"
	"fmt"
	"newsbot/internal/domain"
)

// SeenStore хранит записи о статьях, которые уже были отправлены.
// Ключом записи служит пара (feed, link); хранилище только растет.
type SeenStore interface {
	// Init создает структуры хранения, если их нет. Повторный вызов ничего не меняет.
	Init(ctx context.Context) error
	// Exists сообщает, сохранена ли запись с точно такой парой (feed, link).
	Exists(ctx context.Context, feed, link string) (bool, error)
	// Insert атомарно добавляет запись. Для уже существующей пары возвращает false без ошибки.
	Insert(ctx context.Context, rec domain.SeenRecord) (bool, error)
	// Recent возвращает последние записи, новые первыми. limit <= 0 означает лимит по умолчанию.
	Recent(ctx context.Context, limit int) ([]domain.SeenRecord, error)
	Close()
}

func storeError(op, msg string, err error) error {
	return &domain.StoreError{Op: op, Err: fmt.Errorf("%s: %w", msg, err)}
}
