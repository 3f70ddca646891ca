package db

import (
	stderrors "errors"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/sstanqq/web-task-manager/internal/domain/errors"
)

// Migration applies all pending migrations from migratePath against the
// database. An up-to-date schema is not an error.
func Migration(dbStr, migratePath string) error {
	if dbStr == "" || migratePath == "" {
		return errors.ErrConfigInvalidFormat
	}

	m, err := migrate.New("file://"+migratePath, dbStr)
	if err != nil {
		log.Println("[ERROR] failed to initialize migrations:", err)
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		log.Println("[ERROR] failed to apply migrations:", err)
		return err
	}
	return nil
}
