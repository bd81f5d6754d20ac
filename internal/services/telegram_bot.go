package services

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"taskflow/internal/logging"
)

// TelegramNotifier posts report files to Telegram chats.
type TelegramNotifier struct {
	bot *tgbotapi.BotAPI
	log zerolog.Logger
}

// NewTelegramNotifier authenticates the bot token against the Bot API.
func NewTelegramNotifier(botToken string) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return newTelegramNotifier(bot), nil
}

func newTelegramNotifier(bot *tgbotapi.BotAPI) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, log: logging.Component("telegram")}
}

// SendReport uploads the attachment as a document with caption.
func (t *TelegramNotifier) SendReport(ctx context.Context, chatID int64, caption string, att Attachment) error {
	if t == nil || t.bot == nil || chatID == 0 {
		l := logging.Get()
		l.Debug().Int64("chat_id", chatID).Msg("[tg][skip] bot or chat not configured")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: att.Filename, Bytes: att.Body})
	doc.Caption = caption
	if _, err := t.bot.Send(doc); err != nil {
		t.log.Error().Err(err).Int64("chat_id", chatID).Msg("[tg][send][err]")
		return fmt.Errorf("telegram sendDocument: %w", err)
	}
	t.log.Info().Int64("chat_id", chatID).Str("file", att.Filename).Msg("[tg][send] report delivered")
	return nil
}
