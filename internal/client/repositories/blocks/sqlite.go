package blocks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/leadgrid/internal/dbx"
	"github.com/jonboulle/clockwork"
)

type SQLiteRepository struct {
	db    dbx.DBTX
	clock clockwork.Clock
}

func NewSQLiteRepository(db dbx.DBTX, clock clockwork.Clock) *SQLiteRepository {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SQLiteRepository{db: db, clock: clock}
}

// Put stores b, replacing any earlier snapshot of the same block. FetchedAt
// is set from the repository clock.
func (r *SQLiteRepository) Put(ctx context.Context, b Block) error {
	rows, err := json.Marshal(b.Rows)
	if err != nil {
		return fmt.Errorf("encode block rows: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO row_blocks (query_key, block_index, rows_json, last_row, fetched_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(query_key, block_index) DO UPDATE SET
			rows_json = excluded.rows_json,
			last_row = excluded.last_row,
			fetched_at = excluded.fetched_at
	`, b.QueryKey, b.Index, rows, b.LastRow, r.clock.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put block[%d]: %w", b.Index, err)
	}
	return nil
}

// Get returns (nil, nil) when no snapshot exists.
func (r *SQLiteRepository) Get(ctx context.Context, queryKey string, index int) (*Block, error) {
	var (
		raw       []byte
		lastRow   int
		fetchedAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT rows_json, last_row, fetched_at FROM row_blocks WHERE query_key = ? AND block_index = ?
	`, queryKey, index).Scan(&raw, &lastRow, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get block[%d]: %w", index, err)
	}

	b := &Block{QueryKey: queryKey, Index: index, LastRow: lastRow, FetchedAt: time.UnixMilli(fetchedAt).UTC()}
	if err := json.Unmarshal(raw, &b.Rows); err != nil {
		return nil, fmt.Errorf("decode block[%d]: %w", index, err)
	}
	return b, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM row_blocks`); err != nil {
		return fmt.Errorf("clear blocks: %w", err)
	}
	return nil
}
