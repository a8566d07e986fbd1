package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidEntry возвращается, когда у записи ленты нет ссылки.
var ErrInvalidEntry = errors.New("entry has no link")

// FetchError - ошибка загрузки или разбора одной ленты.
// Обрабатывается локально: цикл опроса пропускает ленту и идет дальше.
type FetchError struct {
	Feed string
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch feed %s (%s): %v", e.Feed, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StoreError - ошибка хранилища просмотренных статей.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// DeliveryError - ошибка доставки одного уведомления одному получателю.
type DeliveryError struct {
	ChatID int64
	Link   string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s to chat %d: %v", e.Link, e.ChatID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
