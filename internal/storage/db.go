package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Миграции лежат отдельно для каждого диалекта: migrations/<driver>/*.sql
//
//go:embed migrations
var migrationsFS embed.FS

// Открываем подключение один раз на весь процесс. Закрывает его вызывающий
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", driver, err)
	}

	// sqlite не любит конкурентную запись
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

// Применяем все миграции и возвращаем текущую версию схемы
func Migrate(db *sqlx.DB, driver string) (uint, error) {
	var (
		dbDriver database.Driver
		err      error
	)

	switch driver {
	case DriverPostgres:
		dbDriver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	case DriverSQLite:
		dbDriver, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	default:
		return 0, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return 0, fmt.Errorf("create %s migration driver: %w", driver, err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return 0, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, dbDriver)
	if err != nil {
		return 0, fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("run migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("get migration version: %w", err)
	}

	return version, nil
}
