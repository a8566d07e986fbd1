package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"newsbot/internal/config"
	"newsbot/internal/domain"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

const requestTimeout = 15 * time.Second

type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender отправляет уведомления о новых статьях в чаты Telegram.
// Частота отправки ограничена, чтобы не упираться в лимиты Bot API.
type Sender struct {
	bot     botAPI
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewSender подключается к Bot API (запрос getMe) и возвращает готовый отправитель.
func NewSender(cfg config.TelegramConfig, log *slog.Logger) (*Sender, error) {
	const op = "telegram.NewSender"
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, cfg.APIEndpoint, &http.Client{Timeout: requestTimeout})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to authorize bot: %w", op, err)
	}
	log.Info("Telegram bot authorized",
		slog.String("component", "telegram"),
		slog.String("username", bot.Self.UserName),
	)
	return newSender(bot, cfg.RatePerSecond, log), nil
}

func newSender(bot botAPI, perSecond float64, log *slog.Logger) *Sender {
	return &Sender{
		bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		log:     log.With(slog.String("component", "telegram")),
	}
}

// Send отправляет одно сообщение о статье в указанный чат.
func (s *Sender) Send(ctx context.Context, chatID int64, article domain.Article) error {
	const op = "telegram.Send"
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.bot.Send(NewArticleMessage(chatID, article)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("Notification sent",
		slog.Int64("chat_id", chatID),
		slog.String("link", article.Link),
	)
	return nil
}

// NewArticleMessage собирает сообщение со ссылкой на статью и кнопкой "Share".
func NewArticleMessage(chatID int64, article domain.Article) tgbotapi.MessageConfig {
	text := fmt.Sprintf("New article from %s:\n%s", strings.ToUpper(article.Feed), article.Title)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("Read More", article.Link)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonSwitch("Share", article.Title)),
	)
	return msg
}
