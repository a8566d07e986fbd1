package usecase

import (
	"context"
	"log/slog"
	"newsbot/internal/domain"
)

// PollAndNotifyUseCase связывает цикл опроса с рассылкой уведомлений.
// Его вызывают воркер, ручной опрос через HTTP и команда poll.
type PollAndNotifyUseCase struct {
	cycle      *PollCycle
	dispatcher *Dispatcher
	log        *slog.Logger
}

func NewPollAndNotifyUseCase(cycle *PollCycle, dispatcher *Dispatcher, log *slog.Logger) *PollAndNotifyUseCase {
	return &PollAndNotifyUseCase{
		cycle:      cycle,
		dispatcher: dispatcher,
		log:        log.With(slog.String("component", "poll-notify")),
	}
}

// Run выполняет один цикл опроса и рассылает найденные статьи.
// Статьи, найденные до ошибки хранилища, все равно рассылаются:
// они уже отмечены и в следующем цикле не появятся.
func (uc *PollAndNotifyUseCase) Run(ctx context.Context) ([]domain.Article, DispatchReport, error) {
	articles, err := uc.cycle.RunOnce(ctx)
	if len(articles) == 0 {
		return articles, DispatchReport{}, err
	}
	report := uc.dispatcher.Dispatch(ctx, articles)
	uc.log.Info("Notifications dispatched",
		slog.Int("articles", len(articles)),
		slog.Int("delivered", report.Delivered),
		slog.Int("failed", report.Failed),
	)
	return articles, report, err
}

// RunCycle выполняет Run, отбрасывая статьи и отчет; используется воркером.
func (uc *PollAndNotifyUseCase) RunCycle(ctx context.Context) error {
	_, _, err := uc.Run(ctx)
	return err
}

// FeedCount возвращает число опрашиваемых лент.
func (uc *PollAndNotifyUseCase) FeedCount() int { return len(uc.cycle.Feeds()) }
