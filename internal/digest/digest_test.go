package digest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kovalyov-valentin/market-news-bot/internal/model"
	"github.com/kovalyov-valentin/market-news-bot/internal/notifier"
	"github.com/kovalyov-valentin/market-news-bot/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	sent []string
	err  error
	// Если больше нуля, отправка падает после стольких успешных сообщений
	failAfter int
}

func (s *fakeSender) Send(_ context.Context, text string) error {
	if s.err != nil {
		return s.err
	}
	if s.failAfter > 0 && len(s.sent) >= s.failAfter {
		return model.ErrDelivery
	}

	s.sent = append(s.sent, text)
	return nil
}

type fakeSummarizer struct {
	headline string
	err      error
	input    string
}

func (s *fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	s.input = text
	return s.headline, s.err
}

func newSummaryStorage(t *testing.T) *storage.SummaryStorage {
	t.Helper()

	ctx := context.Background()
	db, err := storage.Open(ctx, storage.DriverSQLite, filepath.Join(t.TempDir(), "news.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = storage.Migrate(db, storage.DriverSQLite)
	require.NoError(t, err)

	return storage.NewSummaryStorage(db)
}

func TestAccumulator_FlushCompleteness(t *testing.T) {
	ctx := context.Background()
	store := newSummaryStorage(t)
	sender := &fakeSender{}
	acc := New(store, sender, nil, zap.NewNop())

	const n = 5
	for i := 0; i < n; i++ {
		require.NoError(t, acc.Append(ctx, fmt.Sprintf("Notícia %d", i), fmt.Sprintf("https://x.com/%d", i)))
	}

	require.NoError(t, acc.Flush(ctx))
	require.Len(t, sender.sent, 1)
	for i := 0; i < n; i++ {
		assert.Contains(t, sender.sent[0], fmt.Sprintf("[Notícia %d](https://x.com/%d)", i, i))
	}

	pending, err := store.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Повторная сводка сразу после первой: новостей нет
	require.NoError(t, acc.Flush(ctx))
	require.Len(t, sender.sent, 2)
	assert.Equal(t, notifier.NoNewsToday, sender.sent[1])
}

func appendCoindeskEntries(t *testing.T, acc *Accumulator, n int) []string {
	t.Helper()

	links := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		link := fmt.Sprintf("https://www.coindesk.com/markets/2026/10/15/item-%d", i)
		require.NoError(t, acc.Append(context.Background(), fmt.Sprintf("Bitcoin notícia número %d do dia", i), link))
		links = append(links, link)
	}

	return links
}

func TestAccumulator_FlushLargeDigestLosesNothing(t *testing.T) {
	ctx := context.Background()
	store := newSummaryStorage(t)
	sender := &fakeSender{}
	acc := New(store, sender, nil, zap.NewNop())

	links := appendCoindeskEntries(t, acc, 120)

	require.NoError(t, acc.Flush(ctx))
	require.Greater(t, len(sender.sent), 1)

	all := strings.Join(sender.sent, "\n")
	for _, link := range links {
		assert.Equal(t, 1, strings.Count(all, "("+link+")"), link)
	}

	pending, err := store.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAccumulator_FailedPageStaysPending(t *testing.T) {
	ctx := context.Background()
	store := newSummaryStorage(t)
	sender := &fakeSender{failAfter: 1}
	acc := New(store, sender, nil, zap.NewNop())

	links := appendCoindeskEntries(t, acc, 120)

	require.ErrorIs(t, acc.Flush(ctx), model.ErrDelivery)
	require.Len(t, sender.sent, 1)

	pending, err := store.Pending(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, pending)

	pendingLinks := make(map[string]bool, len(pending))
	for _, entry := range pending {
		pendingLinks[entry.Link] = true
	}

	// Каждая новость либо уже в отправленной странице, либо ждет следующей сводки, но не в обоих местах
	for _, link := range links {
		inSent := strings.Contains(sender.sent[0], "("+link+")")
		assert.True(t, inSent != pendingLinks[link], link)
	}

	// Следующая сводка досылает остаток
	sender.failAfter = 0
	require.NoError(t, acc.Flush(ctx))

	all := strings.Join(sender.sent, "\n")
	for _, link := range links {
		assert.Equal(t, 1, strings.Count(all, "("+link+")"), link)
	}
}

func TestAccumulator_FlushEmpty(t *testing.T) {
	sender := &fakeSender{}
	acc := New(newSummaryStorage(t), sender, nil, zap.NewNop())

	require.NoError(t, acc.Flush(context.Background()))
	assert.Equal(t, []string{notifier.NoNewsToday}, sender.sent)
}

func TestAccumulator_SendFailureKeepsEntries(t *testing.T) {
	ctx := context.Background()
	store := newSummaryStorage(t)
	sender := &fakeSender{err: model.ErrDelivery}
	acc := New(store, sender, nil, zap.NewNop())

	require.NoError(t, acc.Append(ctx, "Fed eleva taxa de juros", "https://x.com/fed"))

	err := acc.Flush(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrDelivery))

	pending, err := store.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

type failingStorage struct {
	cleared bool
}

func (s *failingStorage) Append(context.Context, string, string) error { return nil }

func (s *failingStorage) Pending(context.Context) ([]model.SummaryEntry, error) {
	return nil, errors.New("database is locked")
}

func (s *failingStorage) Clear(context.Context, int64) (int64, error) {
	s.cleared = true
	return 0, nil
}

func TestAccumulator_ReadFailureSendsNothing(t *testing.T) {
	store := &failingStorage{}
	sender := &fakeSender{}
	acc := New(store, sender, nil, zap.NewNop())

	require.Error(t, acc.Flush(context.Background()))
	assert.Empty(t, sender.sent)
	assert.False(t, store.cleared)
}

func TestAccumulator_Headline(t *testing.T) {
	ctx := context.Background()
	store := newSummaryStorage(t)
	sender := &fakeSender{}
	summarizer := &fakeSummarizer{headline: "Dia de juros altos."}
	acc := New(store, sender, summarizer, zap.NewNop())

	require.NoError(t, acc.Append(ctx, "Fed eleva taxa de juros", "https://x.com/fed"))
	require.NoError(t, acc.Flush(ctx))

	assert.Equal(t, "- Fed eleva taxa de juros", summarizer.input)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], `Dia de juros altos\.`)
}

func TestAccumulator_HeadlineFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	store := newSummaryStorage(t)
	sender := &fakeSender{}
	acc := New(store, sender, &fakeSummarizer{err: errors.New("rate limited")}, zap.NewNop())

	require.NoError(t, acc.Append(ctx, "Fed eleva taxa de juros", "https://x.com/fed"))
	require.NoError(t, acc.Flush(ctx))

	require.Len(t, sender.sent, 1)
	assert.True(t, strings.Contains(sender.sent[0], "[Fed eleva taxa de juros](https://x.com/fed)"))
}
