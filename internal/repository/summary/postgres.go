package summary

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/jeevanjot011/bevflow/internal/domain/models"
	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

const tableName = "order_summaries"

type Postgres struct {
	log *slog.Logger
	db  *sqlx.DB
}

func NewPostgres(log *slog.Logger, db *sqlx.DB) *Postgres {
	return &Postgres{
		log: log,
		db:  db,
	}
}

func (p *Postgres) Upsert(ctx context.Context, summary models.OrderSummary) error {
	const op = "repository.summary.Postgres.Upsert"

	const query = `
		INSERT INTO order_summaries (
			order_id, product_id, product_name, quantity, customer_id, customer_username,
			customer_area_code, manufacturer_id, manufacturer_username, manufacturer_email,
			manufacturer_area_code, created_at, status
		) VALUES (
			:order_id, :product_id, :product_name, :quantity, :customer_id, :customer_username,
			:customer_area_code, :manufacturer_id, :manufacturer_username, :manufacturer_email,
			:manufacturer_area_code, :created_at, :status
		)
		ON CONFLICT (order_id) DO UPDATE SET
			product_id = EXCLUDED.product_id,
			product_name = EXCLUDED.product_name,
			quantity = EXCLUDED.quantity,
			customer_id = EXCLUDED.customer_id,
			customer_username = EXCLUDED.customer_username,
			customer_area_code = EXCLUDED.customer_area_code,
			manufacturer_id = EXCLUDED.manufacturer_id,
			manufacturer_username = EXCLUDED.manufacturer_username,
			manufacturer_email = EXCLUDED.manufacturer_email,
			manufacturer_area_code = EXCLUDED.manufacturer_area_code,
			created_at = EXCLUDED.created_at,
			status = EXCLUDED.status,
			updated_at = now()`

	if _, err := p.db.NamedExecContext(ctx, query, summary); err != nil {
		p.log.Error(op, slog.String("order_id", summary.OrderID.String()), slog.String("error", err.Error()))
		return fmt.Errorf("%s: execute statement: %w", op, err)
	}

	return nil
}

func (p *Postgres) Get(ctx context.Context, orderID string) (models.OrderSummary, error) {
	const op = "repository.summary.Postgres.Get"

	const query = `
		SELECT order_id, product_id, product_name, quantity, customer_id, customer_username,
			customer_area_code, manufacturer_id, manufacturer_username, manufacturer_email,
			manufacturer_area_code, created_at, status
		FROM order_summaries WHERE order_id = $1`

	var summary models.OrderSummary
	if err := p.db.GetContext(ctx, &summary, query, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.OrderSummary{}, fmt.Errorf("%s: %s: %w", op, orderID, internalErrors.ErrSummaryNotFound)
		}

		p.log.Error(op, slog.String("order_id", orderID), slog.String("error", err.Error()))
		return models.OrderSummary{}, fmt.Errorf("%s: select: %w", op, err)
	}

	summary.CreatedAt = summary.CreatedAt.UTC()

	return summary, nil
}

// EnsureTable applies the embedded migrations.
func (p *Postgres) EnsureTable(_ context.Context) (string, bool, error) {
	const op = "repository.summary.Postgres.EnsureTable"

	changed, err := Migrate(p.db.DB)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	return tableName, changed, nil
}

// Migrate runs every pending up migration and reports whether any was applied.
func Migrate(db *sql.DB) (bool, error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return false, fmt.Errorf("open migrations: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return false, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return false, fmt.Errorf("new migrate: %w", err)
	}

	if err = m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return false, fmt.Errorf("migrate up: %w", err)
	}

	return true, nil
}
