// Package cookies persists the session cookies of the credential scope in
// the local database. Cookie contents are sealed before they are written.
package cookies

import (
	"context"
	"net/http"
	"time"
)

type Repository interface {
	Load(ctx context.Context, host string, now time.Time) ([]*http.Cookie, error)
	Save(ctx context.Context, host string, c *http.Cookie) error
	Delete(ctx context.Context, host, name string) error
	Clear(ctx context.Context) error
}

// Sealer encrypts cookie records at rest. *cryptox.Sealer satisfies it.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}
