package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"newsbot/internal/config"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// New создает логгер приложения на основе конфигурации.
// Если пути к файлам не заданы, обычные сообщения и ошибки пишутся в stderr.
// Сообщения уровня ERROR направляются в отдельный writer.
func New(cfg config.LoggerConfig) (*slog.Logger, error) {
	var logWriter, errorWriter io.Writer = os.Stderr, os.Stderr
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.File, err)
		}
		logWriter = f
	}
	if cfg.ErrorFile != "" {
		f, err := os.OpenFile(cfg.ErrorFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open error log file %s: %w", cfg.ErrorFile, err)
		}
		errorWriter = f
	}
	handler := NewLevelDispatcherHandler(logWriter, errorWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     ParseLevel(cfg.Level),
	})
	return slog.New(handler), nil
}

// ParseLevel преобразует строковое представление уровня логирования в slog.Level.
// Неизвестные значения трактуются как info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelDispatcherHandler реализует slog.Handler с маршрутизацией сообщений по уровням.
// Сообщения уровня ERROR и выше направляются в errorHandler, остальные - в defaultHandler.
type LevelDispatcherHandler struct {
	defaultHandler slog.Handler
	errorHandler   slog.Handler
}

// NewLevelDispatcherHandler создает обработчик логов с маршрутизацией по уровням.
func NewLevelDispatcherHandler(defaultOut, errorOut io.Writer, opts *slog.HandlerOptions) *LevelDispatcherHandler {
	return &LevelDispatcherHandler{
		defaultHandler: NewReadableHandler(defaultOut, opts),
		errorHandler:   NewReadableHandler(errorOut, opts),
	}
}

func (h *LevelDispatcherHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.defaultHandler.Enabled(ctx, level)
}

func (h *LevelDispatcherHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return h.errorHandler.Handle(ctx, r)
	}
	return h.defaultHandler.Handle(ctx, r)
}

func (h *LevelDispatcherHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LevelDispatcherHandler{
		defaultHandler: h.defaultHandler.WithAttrs(attrs),
		errorHandler:   h.errorHandler.WithAttrs(attrs),
	}
}

func (h *LevelDispatcherHandler) WithGroup(name string) slog.Handler {
	return &LevelDispatcherHandler{
		defaultHandler: h.defaultHandler.WithGroup(name),
		errorHandler:   h.errorHandler.WithGroup(name),
	}
}

// ReadableHandler форматирует записи в одну строку:
//
//	[15:04:05.000] INFO [component] (op) <file.go:42>: message | key=value, ...
//
// Атрибуты, добавленные через With, сохраняются и печатаются перед атрибутами записи.
type ReadableHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	opts   *slog.HandlerOptions
	attrs  []slog.Attr
	prefix string
}

// NewReadableHandler создает обработчик с читаемым форматированием.
// Если opts равен nil, используются настройки по умолчанию.
func NewReadableHandler(w io.Writer, opts *slog.HandlerOptions) *ReadableHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ReadableHandler{mu: &sync.Mutex{}, w: w, opts: opts}
}

func (h *ReadableHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *ReadableHandler) Handle(_ context.Context, r slog.Record) error {
	var component, operation string
	var attrParts []string
	collect := func(a slog.Attr) {
		switch a.Key {
		case "component":
			component = a.Value.String()
		case "op":
			operation = a.Value.String()
		default:
			if a.Equal(slog.Attr{}) {
				return
			}
			attrParts = append(attrParts, formatAttr(a))
		}
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		collect(a)
		return true
	})

	var line strings.Builder
	fmt.Fprintf(&line, "[%s] %s", r.Time.Format("15:04:05.000"), formatLevel(r.Level))
	if component != "" {
		fmt.Fprintf(&line, " [%s]", component)
	}
	if operation != "" {
		fmt.Fprintf(&line, " (%s)", operation)
	}
	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		if frame.File != "" {
			fmt.Fprintf(&line, " <%s:%d>", filepath.Base(frame.File), frame.Line)
		}
	}
	line.WriteString(": ")
	line.WriteString(r.Message)
	if len(attrParts) > 0 {
		line.WriteString(" | ")
		line.WriteString(strings.Join(attrParts, ", "))
	}
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line.String())
	return err
}

func (h *ReadableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *ReadableHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func formatLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// formatAttr форматирует атрибут лога; ошибки и заголовки статей берутся в кавычки,
// длинные URL сокращаются до схемы и домена.
func formatAttr(attr slog.Attr) string {
	switch attr.Key {
	case "error", "title":
		return fmt.Sprintf("%s=%q", attr.Key, attr.Value.String())
	case "url", "link":
		return fmt.Sprintf("%s=%s", attr.Key, shortenURL(attr.Value.String()))
	default:
		return fmt.Sprintf("%s=%s", attr.Key, attr.Value.String())
	}
}

func shortenURL(url string) string {
	if len(url) > 80 {
		parts := strings.Split(url, "/")
		if len(parts) >= 3 {
			return fmt.Sprintf("%s//%s/...", parts[0], parts[2])
		}
	}
	return url
}
