package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
	"github.com/joho/godotenv"
)

// Хранить в файле будем в формате hcl, переменные окружения с префиксом MNB_.
// Списки в переменных окружения разделяются запятой, поэтому объявления с запятыми в тексте или в cron ("1,3") задаем через hcl
type Config struct {
	TelegramBotToken string `hcl:"telegram_bot_token" env:"TELEGRAM_BOT_TOKEN" required:"true"`
	TelegramChatID   int64  `hcl:"telegram_chat_id" env:"TELEGRAM_CHAT_ID" required:"true"`

	DatabaseDriver string `hcl:"database_driver" env:"DATABASE_DRIVER" default:"sqlite"`
	DatabaseDSN    string `hcl:"database_dsn" env:"DATABASE_DSN" default:"news.db"`

	Timezone     string        `hcl:"timezone" env:"TIMEZONE" default:"America/Sao_Paulo"`
	TickInterval time.Duration `hcl:"tick_interval" env:"TICK_INTERVAL" default:"1m"`
	HTTPTimeout  time.Duration `hcl:"http_timeout" env:"HTTP_TIMEOUT" default:"15s"`

	FeedParser string   `hcl:"feed_parser" env:"FEED_PARSER" default:"gofeed"`
	Feeds      []string `hcl:"feeds" env:"FEEDS" default:"https://br.investing.com/rss/news_285.rss,https://www.reuters.com/rssFeed/topNews,https://www.coindesk.com/arc/outboundfeeds/rss/"`

	ExtraordinaryKeywords []string `hcl:"extraordinary_keywords" env:"EXTRAORDINARY_KEYWORDS" default:"guerra,crise,colapso,ataque,falência,recessão,pandemia,calote"`
	TrendKeywords         []string `hcl:"trend_keywords" env:"TREND_KEYWORDS" default:"tendência,projeção,expectativa,perspectiva,previsão,rali"`
	GeneralKeywords       []string `hcl:"general_keywords" env:"GENERAL_KEYWORDS" default:"Copom,Selic,Payroll,Fed,inflação,PIB,IPCA,ETF,Bitcoin,volatilidade,circuit breaker"`

	// Окно сбора новостей [from, to) в часах локального времени
	ActiveFromHour int `hcl:"active_from_hour" env:"ACTIVE_FROM_HOUR" default:"6"`
	ActiveToHour   int `hcl:"active_to_hour" env:"ACTIVE_TO_HOUR" default:"19"`

	// Строки "<расписание>|<текст>", расписание это cron выражение или "HH:MM"
	Announcements  []string `hcl:"announcements" env:"ANNOUNCEMENTS" default:"08:50|Pré-abertura: atenção à agenda do dia,0 10 * * 1-5|Abertura da B3,30 16 * * 1-5|Fechamento da B3 em 1h30"`
	DigestSchedule string   `hcl:"digest_schedule" env:"DIGEST_SCHEDULE" default:"20:00"`

	MarketAPIURL        string  `hcl:"market_api_url" env:"MARKET_API_URL" default:"https://api.coingecko.com/api/v3"`
	MarketAssetID       string  `hcl:"market_asset_id" env:"MARKET_ASSET_ID" default:"bitcoin"`
	MarketAssetName     string  `hcl:"market_asset_name" env:"MARKET_ASSET_NAME" default:"Bitcoin"`
	MarketCurrency      string  `hcl:"market_currency" env:"MARKET_CURRENCY" default:"usd"`
	VolatilityThreshold float64 `hcl:"volatility_threshold" env:"VOLATILITY_THRESHOLD" default:"5.0"`

	KeepaliveAddr string `hcl:"keepalive_addr" env:"KEEPALIVE_ADDR" default:":8080"`

	LogLevel       string `hcl:"log_level" env:"LOG_LEVEL" default:"info"`
	LogDevelopment bool   `hcl:"log_development" env:"LOG_DEVELOPMENT" default:"false"`

	OpenAIKey    string `hcl:"openai_key" env:"OPENAI_KEY"`
	OpenAIPrompt string `hcl:"openai_prompt" env:"OPENAI_PROMPT"`
}

var defaultFiles = []string{"./config.hcl", "./config.local.hcl"}

var (
	cfg     Config
	loadErr error
	once    sync.Once
)

// Конфиг читается один раз, дальше отдаем тот же инстанс
func Get() (Config, error) {
	once.Do(func() {
		// .env необязателен, секреты можно передать и обычным окружением
		if err := godotenv.Load(); err != nil {
			log.Printf("[INFO] .env not loaded: %v", err)
		}

		cfg, loadErr = load(defaultFiles)
	})

	return cfg, loadErr
}

func load(files []string) (Config, error) {
	var c Config

	loader := aconfig.LoaderFor(&c, aconfig.Config{
		// Префикс, чтобы не пересечься с переменными окружения других программ
		EnvPrefix: "MNB",
		SkipFlags: true,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})

	if err := loader.Load(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return c, nil
}
