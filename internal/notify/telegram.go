package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier delivers alerts as Telegram messages to a fixed chat
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier creates a Telegram notifier
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

// RequestAuthorization verifies the bot token by asking Telegram who we are
func (n *TelegramNotifier) RequestAuthorization(ctx context.Context) error {
	if _, err := n.api.GetMe(); err != nil {
		return fmt.Errorf("failed to verify bot token: %w", err)
	}
	return nil
}

// Deliver sends the alert as a single message
func (n *TelegramNotifier) Deliver(ctx context.Context, key, title, body string) error {
	msg := tgbotapi.NewMessage(n.chatID, title+"\n"+body)
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

var _ Notifier = (*TelegramNotifier)(nil)
