package source

import (
	"context"
	"fmt"
	"time"

	"github.com/kovalyov-valentin/market-news-bot/internal/model"
)

const (
	ParserRSS    = "rss"
	ParserGofeed = "gofeed"
)

type Reader interface {
	Fetch(ctx context.Context, url string) (model.Feed, error)
}

// Выбираем реализацию по имени из конфига
func NewReader(parser string, timeout time.Duration) (Reader, error) {
	switch parser {
	case ParserGofeed, "":
		return NewGofeedReader(timeout), nil
	case ParserRSS:
		return NewRSSReader(timeout), nil
	default:
		return nil, fmt.Errorf("unknown feed parser %q", parser)
	}
}

// Одна повторная попытка на случай сетевого сбоя. Каждая попытка ограничена своим таймаутом
type retryReader struct {
	next    Reader
	timeout time.Duration
}

func WithRetry(next Reader, timeout time.Duration) Reader {
	return &retryReader{next: next, timeout: timeout}
}

func (r *retryReader) Fetch(ctx context.Context, url string) (model.Feed, error) {
	var err error

	for attempt := 0; attempt < 2; attempt++ {
		var feed model.Feed

		feed, err = r.fetchOnce(ctx, url)
		if err == nil {
			return feed, nil
		}

		if ctx.Err() != nil {
			return model.Feed{}, err
		}
	}

	return model.Feed{}, err
}

func (r *retryReader) fetchOnce(ctx context.Context, url string) (model.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.next.Fetch(ctx, url)
}
