package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SlyMarbo/rss"
	"github.com/kovalyov-valentin/market-news-bot/internal/model"
	"github.com/samber/lo"
)

// Формат, в котором показываем дату публикации, когда лента отдает ее уже распарсенной
const publishedLayout = "02/01/2006 15:04 MST"

// RSS клиент на базе SlyMarbo/rss
type RSSReader struct {
	client *http.Client
}

func NewRSSReader(timeout time.Duration) *RSSReader {
	return &RSSReader{client: &http.Client{Timeout: timeout}}
}

func (r *RSSReader) Fetch(ctx context.Context, url string) (model.Feed, error) {
	feed, err := r.loadFeed(ctx, url)
	if err != nil {
		return model.Feed{}, fmt.Errorf("%w: %s: %v", model.ErrFetch, url, err)
	}

	return model.Feed{
		Title: feed.Title,
		Entries: lo.Map(feed.Items, func(item *rss.Item, _ int) model.Entry {
			entry := model.Entry{
				Title:      item.Title,
				Link:       item.Link,
				Categories: item.Categories,
			}
			if !item.Date.IsZero() {
				entry.Published = item.Date.Format(publishedLayout)
			}

			return entry
		}),
	}, nil
}

// Библиотека не умеет в контекст, поэтому запускаем загрузку в горутине и ждем либо ее, либо контекст.
// Каналы буферизированные, чтобы горутина не зависла после отмены контекста
func (r *RSSReader) loadFeed(ctx context.Context, url string) (*rss.Feed, error) {
	var (
		feedCh = make(chan *rss.Feed, 1)
		errCh  = make(chan error, 1)
	)

	go func() {
		feed, err := rss.FetchByClient(url, r.client)
		if err != nil {
			errCh <- err
			return
		}

		feedCh <- feed
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-errCh:
		return nil, err
	case feed := <-feedCh:
		return feed, nil
	}
}
