package app

import (
	"strings"

	"github.com/shrimpsizemoose/betyg/internal/store"
	"github.com/shrimpsizemoose/betyg/internal/store/postgres"
	"github.com/shrimpsizemoose/betyg/internal/store/sqlite"
)

// NewStore picks the store implementation from the DSN: anything that does
// not look like a postgres URL is treated as a sqlite file path.
func NewStore(dsn, migrationsDir string) (store.GradeStore, error) {
	if strings.HasPrefix(dsn, "postgres") {
		return postgres.NewPostgresStore(dsn, migrationsDir)
	}
	return sqlite.NewSQLiteStore(dsn, migrationsDir)
}
