package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kovalyov-valentin/market-news-bot/internal/model"
	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
)

// Альтернативный клиент на gofeed. Понимает RSS, Atom и JSON Feed и умеет работать с контекстом
type GofeedReader struct {
	parser *gofeed.Parser
}

func NewGofeedReader(timeout time.Duration) *GofeedReader {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}

	return &GofeedReader{parser: parser}
}

func (r *GofeedReader) Fetch(ctx context.Context, url string) (model.Feed, error) {
	feed, err := r.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return model.Feed{}, fmt.Errorf("%w: %s: %v", model.ErrFetch, url, err)
	}

	return convertGofeed(feed), nil
}

func convertGofeed(feed *gofeed.Feed) model.Feed {
	return model.Feed{
		Title: feed.Title,
		Entries: lo.Map(feed.Items, func(item *gofeed.Item, _ int) model.Entry {
			// В отличие от SlyMarbo здесь есть исходная строка даты, ее и показываем
			published := item.Published
			if published == "" && item.PublishedParsed != nil {
				published = item.PublishedParsed.Format(publishedLayout)
			}

			return model.Entry{
				Title:      item.Title,
				Link:       item.Link,
				Published:  published,
				Categories: item.Categories,
			}
		}),
	}
}
