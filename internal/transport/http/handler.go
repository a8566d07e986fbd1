package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"newsbot/internal/domain"
	"newsbot/internal/usecase"
	"strconv"
)

type articlesGetter interface {
	Recent(ctx context.Context, limit int) ([]domain.SeenRecord, error)
}

type poller interface {
	Run(ctx context.Context) ([]domain.Article, usecase.DispatchReport, error)
}

type Handler struct {
	log      *slog.Logger
	articles articlesGetter
	poller   poller
}

func NewHandler(log *slog.Logger, articles articlesGetter, poller poller) *Handler {
	return &Handler{
		log:      log,
		articles: articles,
		poller:   poller,
	}
}

// pollResponse - ответ на ручной запуск цикла опроса.
type pollResponse struct {
	Articles  []domain.Article `json:"articles"`
	Delivered int              `json:"delivered"`
	Failed    int              `json:"failed"`
	Error     string           `json:"error,omitempty"`
}

// getArticles - хендлер для эндпоинта GET /api/articles
func (h *Handler) getArticles(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getArticles"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", getRequestID(r.Context())),
	)
	if r.Method != http.MethodGet {
		log.Warn("method not allowed")
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	var limit int
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			log.Warn("invalid limit parameter", slog.String("limit", limitStr))
			respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
	}

	records, err := h.articles.Recent(r.Context(), limit)
	if err != nil {
		log.Error("Failed to get articles", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if records == nil {
		records = []domain.SeenRecord{}
	}
	respondWithJSON(w, http.StatusOK, records)
}

// poll - хендлер для эндпоинта POST /api/poll: один цикл опроса и рассылка.
// Ошибки хранилища по отдельным лентам не делают ответ неуспешным,
// они возвращаются в поле error вместе с найденными статьями.
func (h *Handler) poll(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/poll"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", getRequestID(r.Context())),
	)
	if r.Method != http.MethodPost {
		log.Warn("method not allowed")
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	articles, report, err := h.poller.Run(r.Context())
	resp := pollResponse{
		Articles:  articles,
		Delivered: report.Delivered,
		Failed:    report.Failed,
	}
	if resp.Articles == nil {
		resp.Articles = []domain.Article{}
	}
	if err != nil {
		log.Warn("Manual poll finished with errors", slog.Any("error", err))
		resp.Error = err.Error()
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// healthCheck - хендлер для проверки состояния сервиса
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Вспомогательные функции для ответов
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
