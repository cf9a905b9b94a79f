package fetcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/kovalyov-valentin/market-news-bot/internal/metrics"
	"github.com/kovalyov-valentin/market-news-bot/internal/model"
	"github.com/kovalyov-valentin/market-news-bot/internal/notifier"
	"go.uber.org/zap"
)

// Читатель лент. Реализован в пакете source
type FeedReader interface {
	Fetch(ctx context.Context, url string) (model.Feed, error)
}

type Classifier interface {
	Classify(title string, categories ...string) model.Category
}

// Хранилище уже отправленных новостей
type NotifiedStorage interface {
	IsKnown(ctx context.Context, link, title string) (bool, error)
	Record(ctx context.Context, link, title string) error
}

// Буфер дневной сводки
type SummaryAppender interface {
	Append(ctx context.Context, title, link string) error
}

type Sender interface {
	Send(ctx context.Context, text string) error
}

// Один цикл сбора: ленты -> классификация -> дедупликация -> отправка -> запись
type Fetcher struct {
	reader     FeedReader
	classifier Classifier
	notified   NotifiedStorage
	summary    SummaryAppender
	sender     Sender

	// Ленты обходятся строго в этом порядке
	feeds []string
	log   *zap.Logger
}

func NewFetcher(
	reader FeedReader,
	classifier Classifier,
	notified NotifiedStorage,
	summary SummaryAppender,
	sender Sender,
	feeds []string,
	log *zap.Logger,
) *Fetcher {
	return &Fetcher{
		reader:     reader,
		classifier: classifier,
		notified:   notified,
		summary:    summary,
		sender:     sender,
		feeds:      feeds,
		log:        log,
	}
}

// Обходим все ленты последовательно. Упавшая лента не мешает остальным,
// ошибки лент собираются и возвращаются вместе после обхода
func (f *Fetcher) Run(ctx context.Context) error {
	var errs []error

	for _, url := range f.feeds {
		if err := ctx.Err(); err != nil {
			return err
		}

		feed, err := f.reader.Fetch(ctx, url)
		if err != nil {
			metrics.FeedFetchErrors.WithLabelValues(url).Inc()
			f.log.Error("failed to fetch feed", zap.String("feed", url), zap.Error(err))
			errs = append(errs, err)
			continue
		}

		f.processFeed(ctx, url, feed)
	}

	return errors.Join(errs...)
}

func (f *Fetcher) processFeed(ctx context.Context, url string, feed model.Feed) {
	sourceName := feed.Title
	if sourceName == "" {
		sourceName = url
	}

	for _, entry := range feed.Entries {
		if err := f.processEntry(ctx, entry, sourceName); err != nil {
			f.log.Warn(
				"failed to process entry",
				zap.String("feed", url),
				zap.String("title", entry.Title),
				zap.Error(err),
			)
		}
	}
}

func (f *Fetcher) processEntry(ctx context.Context, entry model.Entry, sourceName string) error {
	item, err := model.NewNewsItem(entry, sourceName)
	if err != nil {
		metrics.ItemsSuppressed.WithLabelValues(metrics.ReasonMalformed).Inc()
		return err
	}

	category := f.classifier.Classify(item.Title, item.Categories...)
	metrics.ItemsProcessed.WithLabelValues(category.String()).Inc()

	// Нерелевантные новости не попадают ни в хранилище, ни в чат
	if category == model.Irrelevant {
		metrics.ItemsSuppressed.WithLabelValues(metrics.ReasonIrrelevant).Inc()
		return nil
	}

	known, err := f.notified.IsKnown(ctx, item.NormalizedLink, item.Title)
	if err != nil {
		return err
	}
	if known {
		metrics.ItemsSuppressed.WithLabelValues(metrics.ReasonKnown).Inc()
		return nil
	}

	if err := f.sender.Send(ctx, notifier.FormatItem(item, category)); err != nil {
		metrics.NotificationsFailed.WithLabelValues(metrics.KindNews).Inc()
		return fmt.Errorf("send %q: %w", item.NormalizedLink, err)
	}
	metrics.NotificationsSent.WithLabelValues(metrics.KindNews).Inc()

	// Записываем только после успешной доставки
	if err := f.notified.Record(ctx, item.NormalizedLink, item.Title); err != nil {
		return err
	}

	if err := f.summary.Append(ctx, item.Title, item.RawLink); err != nil {
		return err
	}

	f.log.Info(
		"news notified",
		zap.String("category", category.String()),
		zap.String("source", sourceName),
		zap.String("link", item.NormalizedLink),
	)

	return nil
}
