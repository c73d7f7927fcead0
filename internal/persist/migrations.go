package persist

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// RunMigrations applies all pending Postgres migrations.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return migrate(ctx, db, "postgres", "postgres")
}

// runSQLiteMigrations applies all pending SQLite migrations.
func runSQLiteMigrations(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, "sqlite3", "sqlite")
}

func migrate(ctx context.Context, db *sql.DB, dialect, dir string) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, path.Join("migrations", dir)); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
