package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
)

// Open connects to MySQL and verifies the connection.  A failed ping still
// returns the handle together with the error so the caller may keep serving
// and let individual requests fail until the database comes back.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	if !parsed.ParseTime {
		// DATETIME -> time.Time is required by every repository scan
		parsed.ParseTime = true
		dsn = parsed.FormatDSN()
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	log.Info().Str("addr", parsed.Addr).Str("db", parsed.DBName).Str("user", parsed.User).Msg("connecting to mysql")

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return db, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}
