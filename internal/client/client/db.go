package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/leadgrid/internal/client/migrations"
	"github.com/dmitrijs2005/leadgrid/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the local SQLite database at dsn and applies the
// embedded migrations.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// localTables hold data that is only meaningful together with the device
// secret it was sealed or cached under.
var localTables = []string{"cookies", "metadata", "row_blocks"}

// WipeLocalData empties every local table in one transaction.
func WipeLocalData(ctx context.Context, db *sql.DB) error {
	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, table := range localTables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("wipe %s: %w", table, err)
			}
		}
		return nil
	})
}
