// Счетчики prometheus. Отдаются на /metrics сервером keepalive
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "market_news_bot"

// Типы исходящих сообщений, значение лейбла kind
const (
	KindNews         = "news"
	KindDigest       = "digest"
	KindVolatility   = "volatility"
	KindAnnouncement = "announcement"
)

// Почему новость не ушла в чат, значение лейбла reason
const (
	ReasonIrrelevant = "irrelevant"
	ReasonKnown      = "known"
	ReasonMalformed  = "malformed"
)

var (
	ItemsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_processed_total",
		Help:      "Feed entries seen by the ingestion cycle, by category",
	}, []string{"category"})

	ItemsSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_suppressed_total",
		Help:      "Feed entries that were not notified, by reason",
	}, []string{"reason"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Messages delivered to the chat, by kind",
	}, []string{"kind"})

	NotificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_failed_total",
		Help:      "Messages that could not be delivered, by kind",
	}, []string{"kind"})

	FeedFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_fetch_errors_total",
		Help:      "Failed feed fetches, by feed url",
	}, []string{"feed"})

	JobFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_failures_total",
		Help:      "Scheduler jobs that returned an error or panicked, by job",
	}, []string{"job"})

	// Время последнего тика. По нему видно, что планировщик не завис
	LastTick = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_tick_timestamp_seconds",
		Help:      "Unix time of the last completed scheduler tick",
	})
)
