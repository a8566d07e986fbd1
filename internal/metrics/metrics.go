// Package metrics содержит метрики Prometheus для опроса лент и рассылки.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "newsbot"

var (
	// CyclesTotal считает циклы опроса по результату.
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_total",
			Help:      "Total number of poll cycles",
		},
		[]string{"status"},
	)

	// CycleDuration измеряет длительность полного цикла опроса.
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_cycle_duration_seconds",
			Help:      "Duration of poll cycles in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// FeedChecksTotal считает проверки лент по результату: ok, fetch_error, store_error.
	FeedChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_checks_total",
			Help:      "Total number of feed checks",
		},
		[]string{"feed", "status"},
	)

	// NewArticlesTotal считает новые статьи по лентам.
	NewArticlesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "new_articles_total",
			Help:      "Total number of newly seen articles",
		},
		[]string{"feed"},
	)

	// DeliveriesTotal считает отправки уведомлений по результату.
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Total number of notification deliveries",
		},
		[]string{"status"},
	)
)

// RecordCycle фиксирует завершенный цикл опроса.
func RecordCycle(status string, seconds float64) {
	CyclesTotal.WithLabelValues(status).Inc()
	CycleDuration.Observe(seconds)
}

// RecordFeedCheck фиксирует результат проверки одной ленты.
func RecordFeedCheck(feed, status string, newArticles int) {
	FeedChecksTotal.WithLabelValues(feed, status).Inc()
	if newArticles > 0 {
		NewArticlesTotal.WithLabelValues(feed).Add(float64(newArticles))
	}
}

// RecordDelivery фиксирует одну отправку уведомления.
func RecordDelivery(ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	DeliveriesTotal.WithLabelValues(status).Inc()
}
