package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const (
	pingTimeout     = time.Second
	connectAttempts = 5
)

type PgDB struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewPostgresDB opens dsn and pings it with exponential backoff until the
// database answers or connectAttempts pings have failed.
func NewPostgresDB(ctx context.Context, log *slog.Logger, dsn string) (*PgDB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	pgDB := &PgDB{
		db:  db,
		log: log,
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), connectAttempts-1),
		ctx,
	)

	if err = backoff.Retry(func() error { return pgDB.pingContext(ctx) }, policy); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres unavailable: %w", err)
	}

	return pgDB, nil
}

func (pg *PgDB) GetDB() *sqlx.DB {
	return pg.db
}

func (pg *PgDB) Close() error {
	return pg.db.Close()
}

func (pg *PgDB) pingContext(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	status := "up"
	if err := pg.db.PingContext(ctx); err != nil {
		status = "down"
		pg.log.Error("database status", slog.String("status", status), slog.String("error", err.Error()))
		return err
	}
	pg.log.Info("database status", slog.String("status", status))

	return nil
}
