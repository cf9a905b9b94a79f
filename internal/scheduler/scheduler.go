package scheduler

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/kovalyov-valentin/market-news-bot/internal/metrics"
	"github.com/kovalyov-valentin/market-news-bot/internal/notifier"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Sender interface {
	Send(ctx context.Context, text string) error
}

// Работа, которую планировщик запускает внутри тика
type JobFunc func(ctx context.Context) error

// Фиксированное объявление: срабатывает в минуту, описанную cron выражением
type Announcement struct {
	Spec     string
	Schedule cron.Schedule
	Message  string
}

type Jobs struct {
	// Цикл сбора новостей
	Ingest JobFunc
	// Проверка волатильности
	Volatility JobFunc
	// Отправка дневной сводки
	Digest JobFunc
}

type Config struct {
	// Часовой пояс, в котором считаются все расписания
	Location *time.Location
	Interval time.Duration
	// Окно сбора новостей [ActiveFromHour, ActiveToHour)
	ActiveFromHour int
	ActiveToHour   int
	Announcements  []Announcement
	DigestSchedule cron.Schedule
	// Источник текущего времени, по умолчанию time.Now
	Now func() time.Time
}

// Минутный планировщик. Тики выполняются строго последовательно в одной горутине
type Scheduler struct {
	cfg    Config
	jobs   Jobs
	sender Sender

	// Минута предыдущего тика. Нулевая до первого тика
	lastMinute time.Time

	log *zap.Logger
}

func New(cfg Config, jobs Jobs, sender Sender, log *zap.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Scheduler{
		cfg:    cfg,
		jobs:   jobs,
		sender: sender,
		log:    log,
	}
}

// Первый тик сразу, дальше по тикеру. Возвращается только при отмене контекста
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.Tick(ctx, s.cfg.Now())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx, s.cfg.Now())
		}
	}
}

// Один тик. Никакая ошибка или паника не выходит наружу, каждая работа изолирована от остальных
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	now = now.In(s.cfg.Location)
	minute := now.Truncate(time.Minute)

	// Расписания проверяем на всем отрезке (lastMinute, minute]
	from, ok := s.advance(minute)

	if ok {
		for _, a := range s.cfg.Announcements {
			if !due(a.Schedule, from, minute) {
				continue
			}

			message := a.Message
			s.runJob(ctx, metrics.KindAnnouncement, func(ctx context.Context) error {
				if err := s.sender.Send(ctx, notifier.FormatAnnouncement(message)); err != nil {
					metrics.NotificationsFailed.WithLabelValues(metrics.KindAnnouncement).Inc()
					return err
				}

				metrics.NotificationsSent.WithLabelValues(metrics.KindAnnouncement).Inc()
				return nil
			})
		}
	}

	if s.inActiveWindow(now) {
		s.runJob(ctx, "ingest", s.jobs.Ingest)
		s.runJob(ctx, "volatility", s.jobs.Volatility)
	}

	if ok && due(s.cfg.DigestSchedule, from, minute) {
		s.runJob(ctx, "digest", s.jobs.Digest)
	}

	metrics.LastTick.SetToCurrentTime()
}

// Событие срабатывает, если его ближайшее время после from попало не позже текущей минуты.
// Несколько пропущенных срабатываний одного события схлопываются в одно
func due(schedule cron.Schedule, from, minute time.Time) bool {
	if schedule == nil {
		return false
	}

	return !schedule.Next(from).After(minute)
}

// Сдвигаем lastMinute и возвращаем начало отрезка для проверки расписаний.
// Первый тик проверяет только свою минуту, поэтому простой процесса не догоняется.
// Медленный тик не теряет минуты: следующий тик проверит все пропущенные.
// Второй тик в ту же минуту расписания не проверяет
func (s *Scheduler) advance(minute time.Time) (time.Time, bool) {
	last := s.lastMinute

	if last.IsZero() {
		s.lastMinute = minute
		return minute.Add(-time.Second), true
	}

	if !minute.After(last) {
		return time.Time{}, false
	}

	s.lastMinute = minute
	return last, true
}

func (s *Scheduler) inActiveWindow(now time.Time) bool {
	hour := now.Hour()
	from, to := s.cfg.ActiveFromHour, s.cfg.ActiveToHour

	if from <= to {
		return hour >= from && hour < to
	}

	// Окно через полночь, например 22-6
	return hour >= from || hour < to
}

func (s *Scheduler) runJob(ctx context.Context, name string, job JobFunc) {
	if job == nil {
		return
	}

	defer func() {
		if p := recover(); p != nil {
			metrics.JobFailures.WithLabelValues(name).Inc()
			s.log.Error(
				"panic recovered",
				zap.String("job", name),
				zap.Any("panic", p),
				zap.String("stack", string(debug.Stack())),
			)
		}
	}()

	if err := job(ctx); err != nil {
		metrics.JobFailures.WithLabelValues(name).Inc()
		s.log.Error("job failed", zap.String("job", name), zap.Error(err))
	}
}

// Время следующей сводки, для логов на старте
func (s *Scheduler) NextDigest() time.Time {
	if s.cfg.DigestSchedule == nil {
		return time.Time{}
	}

	return s.cfg.DigestSchedule.Next(s.cfg.Now().In(s.cfg.Location))
}
