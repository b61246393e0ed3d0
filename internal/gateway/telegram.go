// Package gateway wraps the Telegram Bot API: outbound sends, attachment
// URL resolution, webhook registration and the classification of raw
// webhook updates into domain updates.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram messages cap at 4096 chars; chunk below that to leave room.
const maxMessageLen = 4000

// Telegram implements domain.Gateway.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

type TelegramConfig struct {
	Token  string
	Logger *slog.Logger
}

func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("telegram bot connected", "username", bot.Self.UserName, "id", bot.Self.ID)
	return &Telegram{bot: bot, logger: logger}, nil
}

// BotUsername returns the authenticated bot's username.
func (t *Telegram) BotUsername() string { return t.bot.Self.UserName }

// Send delivers text to a chat, splitting over the message length limit.
// Delivery is best-effort: one attempt per chunk, no retry policy.
func (t *Telegram) Send(ctx context.Context, chatID int64, text string) error {
	for len(text) > 0 {
		chunk := text
		if len(chunk) > maxMessageLen {
			cutAt := strings.LastIndex(chunk[:maxMessageLen], "\n")
			if cutAt < maxMessageLen/2 {
				cutAt = maxMessageLen
			}
			chunk = text[:cutAt]
			text = text[cutAt:]
		} else {
			text = ""
		}

		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			return fmt.Errorf("telegram send: %w", err)
		}
	}
	return nil
}

// FileURL resolves an attachment file ID to its direct download URL.
func (t *Telegram) FileURL(ctx context.Context, fileID string) (string, error) {
	url, err := t.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("telegram getFile: %w", err)
	}
	if url == "" {
		return "", fmt.Errorf("telegram getFile: no file path for %s", fileID)
	}
	return url, nil
}

// RegisterWebhook points Telegram's update delivery at url.
func (t *Telegram) RegisterWebhook(ctx context.Context, url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("webhook config: %w", err)
	}
	if _, err := t.bot.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	t.logger.Info("webhook registered", "url", url)
	return nil
}

// RemoveWebhook deregisters update delivery.
func (t *Telegram) RemoveWebhook(ctx context.Context) error {
	if _, err := t.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	t.logger.Info("webhook removed")
	return nil
}
