package model

import (
	"fmt"
	"net/url"
	"strings"
)

// Уровень важности новости. Порядок констант совпадает с приоритетом проверки
type Category int

const (
	Irrelevant Category = iota
	General
	Trend
	Extraordinary
)

func (c Category) String() string {
	switch c {
	case Extraordinary:
		return "extraordinary"
	case Trend:
		return "trend"
	case General:
		return "general"
	default:
		return "irrelevant"
	}
}

// Запись ленты в том виде, в котором ее отдает читатель фидов
type Entry struct {
	Title string
	Link  string
	// Дата публикации как строка из источника, может быть пустой
	Published  string
	Categories []string
}

// Лента целиком
type Feed struct {
	// Название ленты, используется как имя источника в сообщении
	Title   string
	Entries []Entry
}

// Новость, которая проходит через цикл обработки
type NewsItem struct {
	Title string
	// Ссылка как есть в ленте
	RawLink string
	// Ссылка без query и fragment, ключ для дедупликации
	NormalizedLink string
	PublishedAt    string
	SourceName     string
	Categories     []string
}

// Запись, ожидающая попадания в дневную сводку
type SummaryEntry struct {
	ID    int64
	Title string
	Link  string
}

// Собираем новость из записи ленты. Без заголовка или ссылки запись пропускается
func NewNewsItem(entry Entry, sourceName string) (NewsItem, error) {
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		return NewsItem{}, fmt.Errorf("%w: entry without title (link %q)", ErrEntryParse, entry.Link)
	}

	rawLink := strings.TrimSpace(entry.Link)
	if rawLink == "" {
		return NewsItem{}, fmt.Errorf("%w: entry %q without link", ErrEntryParse, title)
	}

	normalized, err := NormalizeLink(rawLink)
	if err != nil {
		return NewsItem{}, err
	}

	return NewsItem{
		Title:          title,
		RawLink:        rawLink,
		NormalizedLink: normalized,
		PublishedAt:    strings.TrimSpace(entry.Published),
		SourceName:     sourceName,
		Categories:     entry.Categories,
	}, nil
}

// Оставляем от ссылки только scheme, host и path.
// Провайдеры любят дописывать utm метки, из-за них одна и та же новость приходила бы повторно
func NormalizeLink(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: parse link %q: %v", ErrEntryParse, raw, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: link %q is not absolute", ErrEntryParse, raw)
	}

	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + u.EscapedPath(), nil
}
