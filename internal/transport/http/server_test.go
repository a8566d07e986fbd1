package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"newsbot/internal/domain"
	"newsbot/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubArticles struct {
	records   []domain.SeenRecord
	err       error
	lastLimit int
}

func (s *stubArticles) Recent(_ context.Context, limit int) ([]domain.SeenRecord, error) {
	s.lastLimit = limit
	return s.records, s.err
}

type stubPoller struct {
	articles []domain.Article
	report   usecase.DispatchReport
	err      error
	calls    int
}

func (s *stubPoller) Run(context.Context) ([]domain.Article, usecase.DispatchReport, error) {
	s.calls++
	return s.articles, s.report, s.err
}

func newTestServer(articles *stubArticles, poller *stubPoller) http.Handler {
	return NewServer(discardLogger(), NewHandler(discardLogger(), articles, poller))
}

func TestGetArticles(t *testing.T) {
	seenAt := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	articles := &stubArticles{records: []domain.SeenRecord{{Feed: "a", Title: "T1", Link: "u1", SeenAt: seenAt}}}
	srv := newTestServer(articles, &stubPoller{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles?limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	assert.Equal(t, 5, articles.lastLimit)

	var got []domain.SeenRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, articles.records, got)
}

func TestGetArticles_DefaultLimitAndEmptyList(t *testing.T) {
	articles := &stubArticles{}
	srv := newTestServer(articles, &stubPoller{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, articles.lastLimit)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetArticles_InvalidLimit(t *testing.T) {
	srv := newTestServer(&stubArticles{}, &stubPoller{})
	for _, limit := range []string{"abc", "0", "-3"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles?limit="+limit, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
	}
}

func TestGetArticles_StoreError(t *testing.T) {
	srv := newTestServer(&stubArticles{err: errors.New("database is locked")}, &stubPoller{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestGetArticles_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(&stubArticles{}, &stubPoller{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/articles", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPoll(t *testing.T) {
	poller := &stubPoller{
		articles: []domain.Article{{Feed: "a", Title: "T1", Link: "u1"}},
		report:   usecase.DispatchReport{Delivered: 2, Failed: 1},
	}
	srv := newTestServer(&stubArticles{}, poller)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/poll", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, poller.calls)
	assert.JSONEq(t, `{"articles":[{"feed":"a","title":"T1","link":"u1"}],"delivered":2,"failed":1}`, rec.Body.String())
}

func TestPoll_PartialFailure(t *testing.T) {
	srv := newTestServer(&stubArticles{}, &stubPoller{err: errors.New("feed b: database is locked")})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/poll", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"articles":[],"delivered":0,"failed":0,"error":"feed b: database is locked"}`, rec.Body.String())
}

func TestPoll_RequiresPost(t *testing.T) {
	poller := &stubPoller{}
	srv := newTestServer(&stubArticles{}, poller)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/poll", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, 0, poller.calls)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(&stubArticles{}, &stubPoller{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMiddleware_CORSPreflightAndRequestID(t *testing.T) {
	srv := newTestServer(&stubArticles{}, &stubPoller{})

	req := httptest.NewRequest(http.MethodOptions, "/api/poll", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))
}
