package worker

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// CycleRunner выполняет один цикл опроса лент.
// Используется для внедрения зависимости в воркер.
type CycleRunner interface {
	RunCycle(ctx context.Context) error
}

// Worker реализует фоновый воркер для периодического опроса RSS-лент.
// Первый цикл запускается сразу после старта, следующие через interval плюс
// случайный сдвиг из [0, jitter). Циклы никогда не перекрываются.
type Worker struct {
	runner   CycleRunner
	interval time.Duration
	jitter   time.Duration
	log      *slog.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New создает воркер. Принимает исполнителя цикла, интервал, максимальный сдвиг и логгер.
func New(runner CycleRunner, interval, jitter time.Duration, log *slog.Logger) *Worker {
	return &Worker{
		runner:   runner,
		interval: interval,
		jitter:   jitter,
		log:      log.With(slog.String("component", "worker")),
	}
}

// Start запускает воркер в отдельной горутине.
func (w *Worker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop отменяет контекст и ждет завершения текущего цикла.
// Повторный вызов безопасен.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

// run выполняет основной цикл работы воркера.
func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	w.log.Info("Feed polling worker started",
		slog.String("interval", w.interval.String()),
		slog.String("jitter", w.jitter.String()),
	)
	for {
		w.runCycle(ctx)
		delay := w.nextDelay()
		w.log.Debug("Next poll scheduled", slog.Duration("delay", delay))
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			w.log.Info("Worker stopping")
			return
		}
	}
}

func (w *Worker) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := w.runner.RunCycle(ctx); err != nil {
		w.log.Error("Poll cycle finished with errors", slog.Any("error", err))
	}
}

func (w *Worker) nextDelay() time.Duration {
	if w.jitter <= 0 {
		return w.interval
	}
	return w.interval + rand.N(w.jitter)
}

// Interval возвращает базовый интервал опроса.
func (w *Worker) Interval() time.Duration { return w.interval }
