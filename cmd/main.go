package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/market-news-bot/internal/classifier"
	"github.com/kovalyov-valentin/market-news-bot/internal/config"
	"github.com/kovalyov-valentin/market-news-bot/internal/digest"
	"github.com/kovalyov-valentin/market-news-bot/internal/fetcher"
	"github.com/kovalyov-valentin/market-news-bot/internal/keepalive"
	"github.com/kovalyov-valentin/market-news-bot/internal/logger"
	"github.com/kovalyov-valentin/market-news-bot/internal/market"
	"github.com/kovalyov-valentin/market-news-bot/internal/notifier"
	"github.com/kovalyov-valentin/market-news-bot/internal/scheduler"
	"github.com/kovalyov-valentin/market-news-bot/internal/source"
	"github.com/kovalyov-valentin/market-news-bot/internal/storage"
	"github.com/kovalyov-valentin/market-news-bot/internal/summary"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Error("bot stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return err
	}

	announcements, err := scheduler.ParseAnnouncements(cfg.Announcements)
	if err != nil {
		return err
	}

	digestSchedule, err := scheduler.ParseSchedule(cfg.DigestSchedule)
	if err != nil {
		return err
	}

	// Подключение к БД одно на весь процесс
	db, err := storage.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := storage.Migrate(db, cfg.DatabaseDriver)
	if err != nil {
		return err
	}

	botAPI, err := tgbotapi.NewBotAPIWithClient(
		cfg.TelegramBotToken,
		tgbotapi.APIEndpoint,
		&http.Client{Timeout: cfg.HTTPTimeout},
	)
	if err != nil {
		return err
	}

	reader, err := source.NewReader(cfg.FeedParser, cfg.HTTPTimeout)
	if err != nil {
		return err
	}

	// Инициализируем зависимости
	var (
		notifiedStorage = storage.NewNotifiedStorage(db)
		telegram        = notifier.NewTelegram(botAPI, cfg.TelegramChatID)
		accumulator     = digest.New(
			storage.NewSummaryStorage(db),
			telegram,
			summary.NewOpenAISummarizer(cfg.OpenAIKey, cfg.OpenAIPrompt, log),
			log,
		)
		newsFetcher = fetcher.NewFetcher(
			source.WithRetry(reader, cfg.HTTPTimeout),
			classifier.New(cfg.ExtraordinaryKeywords, cfg.TrendKeywords, cfg.GeneralKeywords),
			notifiedStorage,
			accumulator,
			telegram,
			cfg.Feeds,
			log,
		)
		checker = market.NewChecker(
			market.NewClient(cfg.MarketAPIURL, cfg.MarketCurrency, cfg.HTTPTimeout),
			telegram,
			cfg.MarketAssetID,
			cfg.MarketAssetName,
			cfg.VolatilityThreshold,
			log,
		)
		sched = scheduler.New(scheduler.Config{
			Location:       location,
			Interval:       cfg.TickInterval,
			ActiveFromHour: cfg.ActiveFromHour,
			ActiveToHour:   cfg.ActiveToHour,
			Announcements:  announcements,
			DigestSchedule: digestSchedule,
		}, scheduler.Jobs{
			Ingest:     newsFetcher.Run,
			Volatility: checker.Check,
			Digest:     accumulator.Flush,
		}, telegram, log)
	)

	known, err := notifiedStorage.Count(ctx)
	if err != nil {
		return err
	}

	log.Info(
		"bot started",
		zap.String("bot", botAPI.Self.UserName),
		zap.String("driver", cfg.DatabaseDriver),
		zap.Uint("schema_version", version),
		zap.Strings("feeds", cfg.Feeds),
		zap.Int64("notified_known", known),
		zap.Int("announcements", len(announcements)),
		zap.Time("next_digest", sched.NextDigest()),
	)

	// Воркер keepalive
	go func(ctx context.Context) {
		if err := keepalive.New(cfg.KeepaliveAddr, log).Run(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Error("failed to run keepalive server", zap.Error(err))
				return
			}

			log.Info("keepalive server stopped")
		}
	}(ctx)

	// Планировщик работает в основной горутине, все тики последовательны
	if err := sched.Start(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			return err
		}

		log.Info("scheduler stopped")
	}

	return nil
}
