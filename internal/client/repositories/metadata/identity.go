package metadata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/leadgrid/internal/client/models"
)

const keyLastIdentity = "last_identity"

// SaveIdentity remembers who was last signed in, so the CLI can show it
// while the backend is unreachable. A nil user forgets it.
func SaveIdentity(ctx context.Context, r Repository, u *models.User) error {
	if u == nil {
		return r.Delete(ctx, keyLastIdentity)
	}
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	return r.Set(ctx, keyLastIdentity, b)
}

// LoadIdentity returns the identity stored by SaveIdentity, or nil.
func LoadIdentity(ctx context.Context, r Repository) (*models.User, error) {
	b, err := r.Get(ctx, keyLastIdentity)
	if err != nil || b == nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	return &u, nil
}
