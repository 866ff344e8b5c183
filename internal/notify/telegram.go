// Package notify delivers review alerts to a Telegram chat.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/inovaitive/revu/internal/core/domain"
	"github.com/inovaitive/revu/internal/platform/config"
	"github.com/inovaitive/revu/internal/platform/observability"
)

const (
	statusSent   = "sent"
	statusFailed = "failed"
)

// Sender is the part of tgbotapi.BotAPI the alerter uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramAlerter posts critical review alerts to one chat.
type TelegramAlerter struct {
	api    Sender
	chatID int64
	logger *zerolog.Logger
}

// NewTelegramAlerter connects to the Bot API with the configured token.
func NewTelegramAlerter(cfg config.AlertConfig, logger *zerolog.Logger) (*TelegramAlerter, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}

	logger.Info().Str("bot", api.Self.UserName).Int64("chat_id", cfg.TelegramChatID).Msg("telegram review alerts enabled")

	return NewTelegramAlerterWithSender(api, cfg.TelegramChatID, logger), nil
}

// NewTelegramAlerterWithSender builds an alerter around an existing sender.
func NewTelegramAlerterWithSender(api Sender, chatID int64, logger *zerolog.Logger) *TelegramAlerter {
	return &TelegramAlerter{api: api, chatID: chatID, logger: logger}
}

// AlertCriticalReview sends one alert for a.
// The Bot API client is not context aware, so ctx is only checked up front.
func (t *TelegramAlerter) AlertCriticalReview(ctx context.Context, fb *domain.Feedback, a *domain.Analysis) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send review alert: %w", err)
	}

	text := truncateUTF16(FormatCriticalReview(fb, a), maxMessageUnits)

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := t.api.Send(msg); err != nil {
		observability.AlertsSent.WithLabelValues(statusFailed).Inc()

		return fmt.Errorf("send review alert: %w", err)
	}

	observability.AlertsSent.WithLabelValues(statusSent).Inc()
	t.logger.Debug().Str("feedback_id", fb.ID).Msg("review alert sent")

	return nil
}
