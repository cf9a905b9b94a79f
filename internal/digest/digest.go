package digest

import (
	"context"
	"fmt"
	"strings"

	"github.com/kovalyov-valentin/market-news-bot/internal/metrics"
	"github.com/kovalyov-valentin/market-news-bot/internal/model"
	"github.com/kovalyov-valentin/market-news-bot/internal/notifier"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type SummaryStorage interface {
	Append(ctx context.Context, title, link string) error
	Pending(ctx context.Context) ([]model.SummaryEntry, error)
	Clear(ctx context.Context, upToID int64) (int64, error)
}

type Sender interface {
	Send(ctx context.Context, text string) error
}

// Генерирует короткий обзор дня по заголовкам. Может быть выключен
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Накопитель дневной сводки
type Accumulator struct {
	storage    SummaryStorage
	sender     Sender
	summarizer Summarizer
	log        *zap.Logger
}

// summarizer может быть nil
func New(storage SummaryStorage, sender Sender, summarizer Summarizer, log *zap.Logger) *Accumulator {
	return &Accumulator{
		storage:    storage,
		sender:     sender,
		summarizer: summarizer,
		log:        log,
	}
}

func (a *Accumulator) Append(ctx context.Context, title, link string) error {
	return a.storage.Append(ctx, title, link)
}

// Отправляем все накопленные новости, буфер чистим только после успешной отправки.
// Если что-то сломалось до отправки, записи остаются до следующей сводки
func (a *Accumulator) Flush(ctx context.Context) error {
	entries, err := a.storage.Pending(ctx)
	if err != nil {
		return fmt.Errorf("read pending summary: %w", err)
	}

	if len(entries) == 0 {
		if err := a.sender.Send(ctx, notifier.NoNewsToday); err != nil {
			metrics.NotificationsFailed.WithLabelValues(metrics.KindDigest).Inc()
			return fmt.Errorf("send empty digest: %w", err)
		}

		metrics.NotificationsSent.WithLabelValues(metrics.KindDigest).Inc()
		a.log.Info("empty digest sent")
		return nil
	}

	pages := notifier.FormatDigest(entries, a.headline(ctx, entries))

	// Каждую страницу чистим сразу после отправки. Если упала середина,
	// отправленные страницы не повторятся, а остальные уйдут со следующей сводкой
	var cleared int64
	for i, page := range pages {
		if err := a.sender.Send(ctx, page.Text); err != nil {
			metrics.NotificationsFailed.WithLabelValues(metrics.KindDigest).Inc()
			return fmt.Errorf("send digest page %d/%d: %w", i+1, len(pages), err)
		}
		metrics.NotificationsSent.WithLabelValues(metrics.KindDigest).Inc()

		n, err := a.storage.Clear(ctx, page.LastID)
		if err != nil {
			return fmt.Errorf("clear pending summary: %w", err)
		}
		cleared += n
	}

	a.log.Info(
		"digest sent",
		zap.Int("entries", len(entries)),
		zap.Int("pages", len(pages)),
		zap.Int64("cleared", cleared),
	)

	return nil
}

// Обзор дня не обязателен: при ошибке отправляем сводку без него
func (a *Accumulator) headline(ctx context.Context, entries []model.SummaryEntry) string {
	if a.summarizer == nil {
		return ""
	}

	titles := lo.Map(entries, func(entry model.SummaryEntry, _ int) string {
		return "- " + entry.Title
	})

	headline, err := a.summarizer.Summarize(ctx, strings.Join(titles, "\n"))
	if err != nil {
		a.log.Warn("failed to summarize digest", zap.Error(err))
		return ""
	}

	return headline
}
