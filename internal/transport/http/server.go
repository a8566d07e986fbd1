package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer создает и настраивает HTTP-роутер с эндпоинтами API и метрик.
// Порядок middleware: CORS, идентификатор запроса, логирование.
func NewServer(log *slog.Logger, h *Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/articles", h.getArticles)
	mux.HandleFunc("/api/poll", h.poll)
	mux.HandleFunc("/api/health", h.healthCheck)
	mux.Handle("/metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = loggingMiddleware(log)(handler)
	handler = requestIDMiddleware()(handler)
	handler = corsMiddleware()(handler)
	return handler
}
