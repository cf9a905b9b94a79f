package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Хранилище уже отправленных новостей.
// Ссылки и заголовки лежат в отдельных таблицах и никогда не удаляются
type NotifiedStorage struct {
	db *sqlx.DB
}

func NewNotifiedStorage(db *sqlx.DB) *NotifiedStorage {
	return &NotifiedStorage{db: db}
}

// Новость считается известной, если совпала хотя бы нормализованная ссылка или точный заголовок
func (s *NotifiedStorage) IsKnown(ctx context.Context, link, title string) (bool, error) {
	var known bool

	query := s.db.Rebind(`SELECT EXISTS (SELECT 1 FROM notified_links WHERE link = ?)
		OR EXISTS (SELECT 1 FROM notified_titles WHERE title = ?)`)

	if err := s.db.GetContext(ctx, &known, query, link, title); err != nil {
		return false, fmt.Errorf("check notified %q: %w", link, err)
	}

	return known, nil
}

// Записываем оба ключа в одной транзакции. Повторная запись ничего не ломает
func (s *NotifiedStorage) Record(ctx context.Context, link, title string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(
		ctx,
		tx.Rebind(`INSERT INTO notified_links (link) VALUES (?) ON CONFLICT DO NOTHING`),
		link,
	); err != nil {
		return fmt.Errorf("record link %q: %w", link, err)
	}

	if _, err := tx.ExecContext(
		ctx,
		tx.Rebind(`INSERT INTO notified_titles (title) VALUES (?) ON CONFLICT DO NOTHING`),
		title,
	); err != nil {
		return fmt.Errorf("record title %q: %w", title, err)
	}

	return tx.Commit()
}

// Сколько ссылок уже отправлено, нужно для логов на старте
func (s *NotifiedStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notified_links`); err != nil {
		return 0, err
	}

	return count, nil
}
