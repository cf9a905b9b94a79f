package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/market-news-bot/internal/model"
	"github.com/kovalyov-valentin/market-news-bot/internal/notifier/markup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	sent  []tgbotapi.MessageConfig
	err   error
	delay time.Duration
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	if b.err != nil {
		return tgbotapi.Message{}, b.err
	}

	b.sent = append(b.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestTelegram_Send(t *testing.T) {
	bot := &fakeBot{}

	require.NoError(t, NewTelegram(bot, 42).Send(context.Background(), "hello"))

	require.Len(t, bot.sent, 1)
	assert.Equal(t, int64(42), bot.sent[0].ChatID)
	assert.Equal(t, "hello", bot.sent[0].Text)
	assert.Equal(t, tgbotapi.ModeMarkdownV2, bot.sent[0].ParseMode)
}

func TestTelegram_SendError(t *testing.T) {
	bot := &fakeBot{err: errors.New("Bad Request: can't parse entities")}

	err := NewTelegram(bot, 42).Send(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrDelivery)
}

func TestTelegram_SendTimeout(t *testing.T) {
	bot := &fakeBot{delay: 200 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := NewTelegram(bot, 42).Send(ctx, "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrDelivery)
}

func TestFormatItem(t *testing.T) {
	item := model.NewsItem{
		Title:      "Guerra eclode no Oriente Médio",
		RawLink:    "https://x.com/guerra?utm=1",
		SourceName: "Reuters",
	}

	msg := FormatItem(item, model.Extraordinary)

	assert.True(t, strings.HasPrefix(msg, "🚨 *ALERTA EXTRAORDINÁRIO*"))
	assert.Contains(t, msg, "Guerra eclode no Oriente Médio")
	assert.Contains(t, msg, "Reuters")
	assert.Contains(t, msg, NoPublishedDate)
	assert.Contains(t, msg, "(https://x.com/guerra?utm=1)")
}

func TestFormatItem_Prefixes(t *testing.T) {
	item := model.NewsItem{Title: "t", RawLink: "https://x.com", PublishedAt: "02/01/2006"}

	assert.True(t, strings.HasPrefix(FormatItem(item, model.Trend), "📈 *TENDÊNCIA DE MERCADO*"))
	assert.True(t, strings.HasPrefix(FormatItem(item, model.General), "📰 *Notícia Relevante*"))
	assert.Contains(t, FormatItem(item, model.General), "02/01/2006")
}

func TestFormatDigest(t *testing.T) {
	entries := []model.SummaryEntry{
		{ID: 1, Title: "Fed eleva taxa de juros", Link: "https://x.com/fed"},
		{ID: 2, Title: "Guerra eclode no Oriente Médio", Link: "https://x.com/guerra"},
	}

	pages := FormatDigest(entries, "")
	require.Len(t, pages, 1)

	msg := pages[0].Text
	assert.Contains(t, msg, "*Resumo do dia*")
	assert.Contains(t, msg, "• [Fed eleva taxa de juros](https://x.com/fed)")
	assert.Contains(t, msg, "• [Guerra eclode no Oriente Médio](https://x.com/guerra)")
	assert.Less(t, strings.Index(msg, "Fed"), strings.Index(msg, "Guerra"))
	assert.Equal(t, int64(2), pages[0].LastID)
}

func TestFormatDigest_Headline(t *testing.T) {
	pages := FormatDigest([]model.SummaryEntry{{ID: 1, Title: "a", Link: "https://x.com"}}, "Dia agitado.")

	require.Len(t, pages, 1)
	assert.Contains(t, pages[0].Text, `Dia agitado\.`)
}

func TestFormatDigest_SplitsIntoPages(t *testing.T) {
	var entries []model.SummaryEntry
	for i := 1; i <= 200; i++ {
		entries = append(entries, model.SummaryEntry{
			ID:    int64(i),
			Title: fmt.Sprintf("Notícia número %d sobre o mercado financeiro", i),
			Link:  fmt.Sprintf("https://www.coindesk.com/markets/2026/10/15/noticia-%d", i),
		})
	}

	pages := FormatDigest(entries, "Dia agitado.")
	require.Greater(t, len(pages), 1)

	var (
		all    strings.Builder
		lastID int64
	)
	for i, page := range pages {
		assert.LessOrEqual(t, utf8.RuneCountInString(page.Text), maxMessageLength)
		assert.Greater(t, page.LastID, lastID)
		lastID = page.LastID

		if i == 0 {
			assert.Contains(t, page.Text, `Dia agitado\.`)
		} else {
			assert.Contains(t, page.Text, "continuação")
			assert.NotContains(t, page.Text, "Dia agitado")
		}
		all.WriteString(page.Text)
	}
	assert.Equal(t, int64(200), lastID)

	// Каждая ссылка ровно в одной странице
	for _, entry := range entries {
		assert.Equal(t, 1, strings.Count(all.String(), "("+entry.Link+")"), entry.Link)
	}
}

func TestFormatDigest_LongTitle(t *testing.T) {
	pages := FormatDigest([]model.SummaryEntry{
		{ID: 1, Title: strings.Repeat("a", 5000), Link: "https://x.com/long"},
	}, "")

	require.Len(t, pages, 1)
	assert.LessOrEqual(t, utf8.RuneCountInString(pages[0].Text), maxMessageLength)
	assert.Contains(t, pages[0].Text, "…](https://x.com/long)")
}

func TestFormatVolatility(t *testing.T) {
	up := FormatVolatility("Bitcoin", 5.234)
	assert.True(t, strings.HasPrefix(up, "📈"))
	assert.Contains(t, up, `Bitcoin subiu 5\.23% nas últimas 24h\.`)

	down := FormatVolatility("Bitcoin", -6.1)
	assert.True(t, strings.HasPrefix(down, "📉"))
	assert.Contains(t, down, `Bitcoin caiu 6\.10% nas últimas 24h\.`)
}

func TestNoNewsToday(t *testing.T) {
	assert.Equal(t, "📭 "+markup.EscapeForMarkdown("Nenhuma notícia relevante hoje."), NoNewsToday)
}

func TestFormatAnnouncement(t *testing.T) {
	assert.Equal(t, `⏰ Abertura B3 \- 10h`, FormatAnnouncement("Abertura B3 - 10h"))
}
