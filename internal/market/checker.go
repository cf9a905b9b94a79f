package market

import (
	"context"
	"math"

	"github.com/kovalyov-valentin/market-news-bot/internal/metrics"
	"github.com/kovalyov-valentin/market-news-bot/internal/notifier"
	"go.uber.org/zap"
)

type ChangeSource interface {
	Change24h(ctx context.Context, assetID string) (float64, error)
}

type Sender interface {
	Send(ctx context.Context, text string) error
}

// Проверка волатильности одного актива. За вызов отправляет не больше одного алерта
type Checker struct {
	source ChangeSource
	sender Sender

	assetID   string
	assetName string
	// Порог по модулю изменения в процентах
	threshold float64

	log *zap.Logger
}

func NewChecker(source ChangeSource, sender Sender, assetID, assetName string, threshold float64, log *zap.Logger) *Checker {
	return &Checker{
		source:    source,
		sender:    sender,
		assetID:   assetID,
		assetName: assetName,
		threshold: threshold,
		log:       log,
	}
}

func (c *Checker) Check(ctx context.Context) error {
	change, err := c.source.Change24h(ctx, c.assetID)
	if err != nil {
		return err
	}

	if math.Abs(change) < c.threshold {
		c.log.Debug("volatility below threshold", zap.String("asset", c.assetID), zap.Float64("change", change))
		return nil
	}

	if err := c.sender.Send(ctx, notifier.FormatVolatility(c.assetName, change)); err != nil {
		metrics.NotificationsFailed.WithLabelValues(metrics.KindVolatility).Inc()
		return err
	}
	metrics.NotificationsSent.WithLabelValues(metrics.KindVolatility).Inc()

	c.log.Info("volatility alert sent", zap.String("asset", c.assetID), zap.Float64("change", change))

	return nil
}
