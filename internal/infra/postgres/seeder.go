package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"eco-quiz-engine/internal/domain"
	pgmigrations "eco-quiz-engine/internal/infra/postgres/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// OpenBun opens a bun handle on dsn.
func OpenBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Migrate applies every pending migration and returns the applied group.
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrator init: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return group, nil
}

// Seeder upserts question banks.
type Seeder struct {
	db *bun.DB
}

func NewSeeder(db *bun.DB) *Seeder {
	return &Seeder{db: db}
}

// SaveBank inserts or replaces a bank by id.
func (s *Seeder) SaveBank(ctx context.Context, b domain.Bank) error {
	if b.ID == "" {
		return fmt.Errorf("save bank: empty id")
	}
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal bank: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO question_banks (id, title, data, updated_at) VALUES (?, ?, ?::jsonb, now())
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, data=EXCLUDED.data, updated_at=now()`,
		b.ID, b.Title, string(data))
	if err != nil {
		return fmt.Errorf("save bank %s: %w", b.ID, err)
	}
	return nil
}
