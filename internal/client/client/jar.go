package client

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/leadgrid/internal/logging"
)

// CredentialScope is the credential channel handed to the transport. It
// stores whatever the backend sets and replays it on later requests; the
// rest of the client never sees the values.
type CredentialScope interface {
	http.CookieJar
	Forget(ctx context.Context) error
}

// CookieStore persists cookies between runs.
type CookieStore interface {
	Load(ctx context.Context, host string, now time.Time) ([]*http.Cookie, error)
	Save(ctx context.Context, host string, c *http.Cookie) error
	Delete(ctx context.Context, host, name string) error
	Clear(ctx context.Context) error
}

// PersistentJar is a cookie jar for a single backend that mirrors every
// cookie the backend sets into a CookieStore. A nil store keeps cookies in
// memory only.
type PersistentJar struct {
	mu    sync.Mutex
	inner *cookiejar.Jar
	base  *url.URL
	store CookieStore
	log   logging.Logger
	now   func() time.Time
}

// NewPersistentJar builds a jar scoped to baseURL and restores cookies
// previously saved in store.
func NewPersistentJar(ctx context.Context, baseURL string, store CookieStore, log logging.Logger) (*PersistentJar, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Discard()
	}

	j := &PersistentJar{inner: inner, base: base, store: store, log: log, now: time.Now}

	if store != nil {
		saved, err := store.Load(ctx, base.Hostname(), j.now())
		if err != nil {
			return nil, err
		}
		if len(saved) > 0 {
			inner.SetCookies(base, saved)
			log.Debug(ctx, "restored cookies", "count", len(saved))
		}
	}

	return j, nil
}

func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.inner.SetCookies(u, cookies)

	if j.store == nil {
		return
	}

	ctx := context.Background()
	host := u.Hostname()
	for _, c := range cookies {
		var err error
		if c.MaxAge < 0 || (!c.Expires.IsZero() && !c.Expires.After(j.now())) {
			err = j.store.Delete(ctx, host, c.Name)
		} else {
			saved := *c
			if c.MaxAge > 0 {
				saved.Expires = j.now().Add(time.Duration(c.MaxAge) * time.Second)
				saved.MaxAge = 0
			}
			err = j.store.Save(ctx, host, &saved)
		}
		if err != nil {
			j.log.Warn(ctx, "failed to persist cookie", "name", c.Name, "error", err)
		}
	}
}

func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

// Forget drops every cookie held in memory and in the store.
func (j *PersistentJar) Forget(ctx context.Context) error {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return err
	}

	j.mu.Lock()
	j.inner = inner
	j.mu.Unlock()

	if j.store != nil {
		return j.store.Clear(ctx)
	}
	return nil
}
