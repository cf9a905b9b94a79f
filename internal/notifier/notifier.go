package notifier

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/market-news-bot/internal/model"
)

// Часть BotAPI, которая нужна для отправки. Позволяет подменить телеграм в тестах
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Отправляет сообщения в один заранее известный чат
type Telegram struct {
	bot BotSender
	// id чата или канала куда постим
	chatID int64
}

func NewTelegram(bot BotSender, chatID int64) *Telegram {
	return &Telegram{
		bot:    bot,
		chatID: chatID,
	}
}

// Текст уже должен быть размечен в MarkdownV2.
// Таймаут самого запроса задается http клиентом бота, контекст дополнительно ограничивает ожидание
func (t *Telegram) Send(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	errCh := make(chan error, 1)

	go func() {
		_, err := t.bot.Send(msg)
		errCh <- err
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", model.ErrDelivery, ctx.Err())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%w: %v", model.ErrDelivery, err)
		}
		return nil
	}
}
