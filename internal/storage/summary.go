package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/kovalyov-valentin/market-news-bot/internal/model"
	"github.com/samber/lo"
)

// Буфер новостей для дневной сводки
type SummaryStorage struct {
	db *sqlx.DB
}

func NewSummaryStorage(db *sqlx.DB) *SummaryStorage {
	return &SummaryStorage{db: db}
}

func (s *SummaryStorage) Append(ctx context.Context, title, link string) error {
	if _, err := s.db.ExecContext(
		ctx,
		s.db.Rebind(`INSERT INTO pending_summary (title, link) VALUES (?, ?)`),
		title,
		link,
	); err != nil {
		return fmt.Errorf("append summary entry %q: %w", link, err)
	}

	return nil
}

// Все ожидающие записи в порядке добавления
func (s *SummaryStorage) Pending(ctx context.Context) ([]model.SummaryEntry, error) {
	var entries []dbSummaryEntry
	if err := s.db.SelectContext(
		ctx,
		&entries,
		`SELECT id, title, link FROM pending_summary ORDER BY id`,
	); err != nil {
		return nil, fmt.Errorf("select pending summary: %w", err)
	}

	return lo.Map(entries, func(entry dbSummaryEntry, _ int) model.SummaryEntry {
		return model.SummaryEntry(entry)
	}), nil
}

// Удаляем только то, что уже попало в отправленную сводку.
// Записи, добавленные после чтения, доживут до следующей сводки
func (s *SummaryStorage) Clear(ctx context.Context, upToID int64) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		s.db.Rebind(`DELETE FROM pending_summary WHERE id <= ?`),
		upToID,
	)
	if err != nil {
		return 0, fmt.Errorf("clear pending summary: %w", err)
	}

	return res.RowsAffected()
}

// Внутренняя модель для маппинга колонок таблицы
type dbSummaryEntry struct {
	ID    int64  `db:"id"`
	Title string `db:"title"`
	Link  string `db:"link"`
}
