package usecase

import (
	"context"
	"log/slog"
	"newsbot/internal/domain"
	"newsbot/internal/metrics"
)

// Sender доставляет уведомление о статье одному получателю.
type Sender interface {
	Send(ctx context.Context, chatID int64, article domain.Article) error
}

// DispatchReport подводит итог рассылки за один цикл.
type DispatchReport struct {
	Delivered int
	Failed    int
	Errors    []error
}

// Dispatcher рассылает каждую статью каждому получателю.
// Ошибка доставки не мешает следующим отправкам и не влияет на хранилище:
// статья уже отмечена просмотренной и повторно не отправляется.
type Dispatcher struct {
	sender  Sender
	chatIDs []int64
	log     *slog.Logger
}

func NewDispatcher(sender Sender, chatIDs []int64, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		chatIDs: chatIDs,
		log:     log.With(slog.String("component", "dispatcher")),
	}
}

// Dispatch отправляет статьи по порядку. Отмена контекста прекращает рассылку;
// оставшиеся отправки не выполняются и не считаются ни доставленными, ни проваленными.
func (d *Dispatcher) Dispatch(ctx context.Context, articles []domain.Article) DispatchReport {
	var report DispatchReport
	for _, article := range articles {
		for _, chatID := range d.chatIDs {
			if ctx.Err() != nil {
				d.log.Warn("Dispatch interrupted", slog.Any("error", ctx.Err()))
				return report
			}
			if err := d.sender.Send(ctx, chatID, article); err != nil {
				deliveryErr := &domain.DeliveryError{ChatID: chatID, Link: article.Link, Err: err}
				d.log.Error("Error sending notification",
					slog.String("feed", article.Feed),
					slog.Int64("chat_id", chatID),
					slog.Any("error", deliveryErr),
				)
				report.Failed++
				report.Errors = append(report.Errors, deliveryErr)
				metrics.RecordDelivery(false)
				continue
			}
			report.Delivered++
			metrics.RecordDelivery(true)
		}
	}
	return report
}

// LogSender пишет уведомления в лог вместо отправки.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log.With(slog.String("component", "log-sender"))}
}

func (s *LogSender) Send(_ context.Context, chatID int64, article domain.Article) error {
	s.log.Info("New article",
		slog.Int64("chat_id", chatID),
		slog.String("feed", article.Feed),
		slog.String("title", article.Title),
		slog.String("link", article.Link),
	)
	return nil
}
