// Package blocks keeps snapshots of loaded grid row blocks so the last
// seen pages can be shown while the backend is unreachable.
package blocks

import (
	"context"
	"time"

	"github.com/dmitrijs2005/leadgrid/internal/client/models"
)

// Block is one cached row block for a given query.
type Block struct {
	QueryKey  string
	Index     int
	Rows      []models.Lead
	LastRow   int
	FetchedAt time.Time
}

type Repository interface {
	Put(ctx context.Context, b Block) error
	Get(ctx context.Context, queryKey string, index int) (*Block, error)
	Clear(ctx context.Context) error
}
