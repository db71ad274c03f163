package db

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	libdb "docportal/backend/libs/db"
)

// NewPostgres connects to Postgres, retrying for up to connectTimeout while the
// database comes up.
func NewPostgres(dsn string, connectTimeout time.Duration, logger *zap.Logger) (*sql.DB, error) {
	return libdb.NewPostgresDB(dsn, libdb.Options{ConnectTimeout: connectTimeout}, logger)
}
