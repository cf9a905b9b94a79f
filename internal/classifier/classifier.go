package classifier

import (
	"strings"

	"github.com/kovalyov-valentin/market-news-bot/internal/model"
	"github.com/samber/lo"
	"github.com/tomakado/containers/set"
)

// Набор ключевых слов одного уровня важности
type tier struct {
	category model.Category
	keywords []string
}

// Классификатор по ключевым словам.
// Уровни проверяются строго в порядке Extraordinary, Trend, General, побеждает первое совпадение
type Classifier struct {
	tiers []tier
}

func New(extraordinary, trend, general []string) *Classifier {
	return &Classifier{
		tiers: []tier{
			{category: model.Extraordinary, keywords: normalizeKeywords(extraordinary)},
			{category: model.Trend, keywords: normalizeKeywords(trend)},
			{category: model.General, keywords: normalizeKeywords(general)},
		},
	}
}

// Определяем уровень новости по заголовку и тегам категорий из ленты
func (c *Classifier) Classify(title string, categories ...string) model.Category {
	lowerTitle := strings.ToLower(title)

	// Теги ленты сравниваем целиком, поэтому складываем их в сет
	categoriesSet := set.New(lo.Map(categories, func(category string, _ int) string {
		return strings.ToLower(strings.TrimSpace(category))
	})...)

	for _, t := range c.tiers {
		for _, keyword := range t.keywords {
			if strings.Contains(lowerTitle, keyword) || categoriesSet.Contains(keyword) {
				return t.category
			}
		}
	}

	return model.Irrelevant
}

func normalizeKeywords(keywords []string) []string {
	normalized := lo.Map(keywords, func(keyword string, _ int) string {
		return strings.ToLower(strings.TrimSpace(keyword))
	})

	// Пустое ключевое слово совпало бы с любым заголовком
	return lo.Uniq(lo.Compact(normalized))
}
