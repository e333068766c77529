package cookies

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/leadgrid/internal/dbx"
)

type record struct {
	Name     string        `json:"name"`
	Value    string        `json:"value"`
	Path     string        `json:"path,omitempty"`
	Domain   string        `json:"domain,omitempty"`
	Expires  time.Time     `json:"expires,omitempty"`
	Secure   bool          `json:"secure,omitempty"`
	HttpOnly bool          `json:"http_only,omitempty"`
	SameSite http.SameSite `json:"same_site,omitempty"`
}

type SQLiteRepository struct {
	db     dbx.DBTX
	sealer Sealer
}

func NewSQLiteRepository(db dbx.DBTX, sealer Sealer) *SQLiteRepository {
	return &SQLiteRepository{db: db, sealer: sealer}
}

// Load returns the cookies stored for host that have not expired at now.
// Rows that can no longer be opened are skipped.
func (r *SQLiteRepository) Load(ctx context.Context, host string, now time.Time) ([]*http.Cookie, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sealed FROM cookies
		WHERE host = ? AND (expires_at = 0 OR expires_at > ?)
		ORDER BY name
	`, host, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("load cookies: %w", err)
	}
	defer rows.Close()

	var out []*http.Cookie
	for rows.Next() {
		var sealed []byte
		if err := rows.Scan(&sealed); err != nil {
			return nil, fmt.Errorf("scan cookie row: %w", err)
		}
		plain, err := r.sealer.Open(sealed)
		if err != nil {
			continue
		}
		var rec record
		if err := json.Unmarshal(plain, &rec); err != nil {
			continue
		}
		out = append(out, &http.Cookie{
			Name:     rec.Name,
			Value:    rec.Value,
			Path:     rec.Path,
			Domain:   rec.Domain,
			Expires:  rec.Expires,
			Secure:   rec.Secure,
			HttpOnly: rec.HttpOnly,
			SameSite: rec.SameSite,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cookie rows: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, host string, c *http.Cookie) error {
	plain, err := json.Marshal(record{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
		SameSite: c.SameSite,
	})
	if err != nil {
		return fmt.Errorf("encode cookie: %w", err)
	}
	sealed, err := r.sealer.Seal(plain)
	if err != nil {
		return fmt.Errorf("seal cookie: %w", err)
	}

	var expires int64
	if !c.Expires.IsZero() {
		expires = c.Expires.Unix()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO cookies (host, name, sealed, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(host, name) DO UPDATE SET sealed = excluded.sealed, expires_at = excluded.expires_at
	`, host, c.Name, sealed, expires)
	if err != nil {
		return fmt.Errorf("save cookie[%s]: %w", c.Name, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, host, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cookies WHERE host = ? AND name = ?`, host, name); err != nil {
		return fmt.Errorf("delete cookie[%s]: %w", name, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cookies`); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	return nil
}
