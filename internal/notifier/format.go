package notifier

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/kovalyov-valentin/market-news-bot/internal/model"
	"github.com/kovalyov-valentin/market-news-bot/internal/notifier/markup"
	"github.com/samber/lo"
)

const (
	// Подставляется, когда в ленте нет даты публикации
	NoPublishedDate = "Sem data"

	// Телеграм режет сообщения длиннее 4096 символов
	maxMessageLength = 4096
	// Длина заголовка в строке сводки до экранирования
	maxDigestTitleLength = 300

	// Сводка за день, в которой нет ни одной новости. Текст уже экранирован
	NoNewsToday = "📭 Nenhuma notícia relevante hoje\\."
)

// Префикс сообщения зависит от уровня новости
func CategoryPrefix(category model.Category) string {
	switch category {
	case model.Extraordinary:
		return "🚨 " + markup.Bold("ALERTA EXTRAORDINÁRIO")
	case model.Trend:
		return "📈 " + markup.Bold("TENDÊNCIA DE MERCADO")
	default:
		return "📰 " + markup.Bold("Notícia Relevante")
	}
}

// Сообщение об одной новости. Все, что пришло из ленты, экранируется
func FormatItem(item model.NewsItem, category model.Category) string {
	published := item.PublishedAt
	if published == "" {
		published = NoPublishedDate
	}

	return fmt.Sprintf(
		"%s\n\n%s %s\n%s %s\n%s %s\n\n%s",
		CategoryPrefix(category),
		markup.Bold("Título:"), markup.EscapeForMarkdown(item.Title),
		markup.Bold("Fonte:"), markup.EscapeForMarkdown(item.SourceName),
		markup.Bold("Data:"), markup.EscapeForMarkdown(published),
		markup.Link("🔗 Leia mais", item.RawLink),
	)
}

// Одно сообщение дневной сводки и id последней новости в нем
type DigestPage struct {
	Text   string
	LastID int64
}

// Дневная сводка: по строке со ссылкой на каждую новость.
// Если все не влезает в одно сообщение, сводка делится на несколько страниц, ни одна новость не теряется
func FormatDigest(entries []model.SummaryEntry, headline string) []DigestPage {
	header := "🗞 " + markup.Bold("Resumo do dia")
	if headline != "" {
		header += "\n\n" + markup.EscapeForMarkdown(headline)
	}
	header += "\n"

	var (
		pages  []DigestPage
		b      strings.Builder
		length int
		lastID int64
	)

	startPage := func(h string) {
		b.Reset()
		b.WriteString(h)
		length = utf8.RuneCountInString(h)
	}
	startPage(header)

	lines := lo.Map(entries, func(entry model.SummaryEntry, _ int) string {
		return "\n• " + markup.Link(truncateRunes(entry.Title, maxDigestTitleLength), entry.Link)
	})

	for i, line := range lines {
		lineLength := utf8.RuneCountInString(line)

		if i > 0 && length+lineLength > maxMessageLength {
			pages = append(pages, DigestPage{Text: b.String(), LastID: lastID})
			startPage("🗞 " + markup.Bold("Resumo do dia (continuação)") + "\n")
		}

		b.WriteString(line)
		length += lineLength
		lastID = entries[i].ID
	}

	return append(pages, DigestPage{Text: b.String(), LastID: lastID})
}

// Заголовки из лент бывают огромными, одна строка сводки не должна занимать все сообщение
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit-1]) + "…"
}

// Алерт о волатильности. Направление определяется знаком изменения
func FormatVolatility(assetName string, change float64) string {
	var (
		icon = "📈"
		verb = "subiu"
	)
	if change < 0 {
		icon = "📉"
		verb = "caiu"
	}

	return fmt.Sprintf(
		"%s %s\n\n%s",
		icon,
		markup.Bold("ALERTA DE VOLATILIDADE"),
		markup.EscapeForMarkdown(fmt.Sprintf(
			"%s %s %.2f%% nas últimas 24h.",
			assetName, verb, math.Abs(change),
		)),
	)
}

// Фиксированное объявление из расписания
func FormatAnnouncement(message string) string {
	return "⏰ " + markup.EscapeForMarkdown(message)
}
