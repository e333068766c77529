package services

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dmitrijs2005/leadgrid/internal/client/client"
	"github.com/dmitrijs2005/leadgrid/internal/client/fakeapi"
	"github.com/dmitrijs2005/leadgrid/internal/client/models"
	"github.com/dmitrijs2005/leadgrid/internal/client/repositories/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- fake client ----

type fakeAuthClient struct {
	mu sync.Mutex

	MeRet  *models.User
	MeErr  error
	MeHits int

	LoginRet *models.User
	LoginErr error

	RegisterRet *models.Account
	RegisterErr error

	LogoutErr  error
	LogoutHits int
}

func (f *fakeAuthClient) Me(context.Context) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MeHits++
	return f.MeRet, f.MeErr
}

func (f *fakeAuthClient) Login(context.Context, string, string) (*models.User, error) {
	return f.LoginRet, f.LoginErr
}

func (f *fakeAuthClient) Register(context.Context, string, string) (*models.Account, error) {
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeAuthClient) Logout(context.Context) error {
	f.LogoutHits++
	return f.LogoutErr
}

func setupMetadata(t *testing.T) metadata.Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL);`)
	require.NoError(t, err)
	return metadata.NewSQLiteRepository(db)
}

// ---- tests ----

func TestSession_StartsBootstrapping(t *testing.T) {
	s := NewSession(&fakeAuthClient{})
	assert.Equal(t, State{Status: Bootstrapping}, s.State())
}

func TestBootstrap_Authenticated(t *testing.T) {
	u := &models.User{ID: "1", Email: "ann@acme.io"}
	fc := &fakeAuthClient{MeRet: u}
	s := NewSession(fc)

	st := s.Bootstrap(context.Background())
	assert.Equal(t, Authenticated, st.Status)
	assert.Equal(t, u, st.Identity)
}

func TestBootstrap_FailureIsAnonymousAndRunsOnce(t *testing.T) {
	fc := &fakeAuthClient{MeErr: client.ErrUnauthorized}
	s := NewSession(fc)

	st := s.Bootstrap(context.Background())
	assert.Equal(t, State{Status: Anonymous}, st)

	fc.MeErr = nil
	fc.MeRet = &models.User{ID: "1"}
	st = s.Bootstrap(context.Background())
	assert.Equal(t, Anonymous, st.Status)
	assert.Equal(t, 1, fc.MeHits)
}

func TestBootstrap_ConcurrentCallsAskOnce(t *testing.T) {
	fc := &fakeAuthClient{MeRet: &models.User{ID: "1"}}
	s := NewSession(fc)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, Authenticated, s.Bootstrap(context.Background()).Status)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, fc.MeHits)
}

func TestLogin_Success(t *testing.T) {
	u := &models.User{ID: "7", Email: "ann@acme.io"}
	cache := setupMetadata(t)
	s := NewSession(&fakeAuthClient{MeErr: client.ErrUnauthorized, LoginRet: u}, WithIdentityCache(cache))
	ctx := context.Background()
	s.Bootstrap(ctx)

	got, err := s.Login(ctx, "ann@acme.io", "pw")
	require.NoError(t, err)
	assert.Equal(t, u, got)
	assert.Equal(t, State{Status: Authenticated, Identity: u}, s.State())

	cached, err := metadata.LoadIdentity(ctx, cache)
	require.NoError(t, err)
	assert.Equal(t, u, cached)
}

func TestLogin_FailureLeavesStateUnchanged(t *testing.T) {
	cause := &client.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials", Err: client.ErrUnauthorized}
	s := NewSession(&fakeAuthClient{MeErr: client.ErrUnauthorized, LoginErr: cause})
	ctx := context.Background()
	s.Bootstrap(ctx)

	_, err := s.Login(ctx, "ann@acme.io", "bad")
	require.ErrorIs(t, err, ErrAuthentication)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, "login failed", err.Error())
	assert.Equal(t, "Invalid credentials", DisplayMessage(err))
	assert.Equal(t, State{Status: Anonymous}, s.State())
}

func TestRegister_NoStateChange(t *testing.T) {
	fc := &fakeAuthClient{MeErr: client.ErrUnauthorized, RegisterRet: &models.Account{Email: "a@b.c", Message: "ok"}}
	s := NewSession(fc)
	ctx := context.Background()
	s.Bootstrap(ctx)

	acc, err := s.Register(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "ok", acc.Message)
	assert.Equal(t, Anonymous, s.State().Status)

	fc.RegisterErr = errors.New("duplicate")
	_, err = s.Register(ctx, "a@b.c", "pw")
	require.ErrorIs(t, err, ErrRegistration)
	assert.Equal(t, "registration failed", err.Error())
	assert.Equal(t, Anonymous, s.State().Status)
}

func TestLogout_AlwaysAnonymous(t *testing.T) {
	for _, logoutErr := range []error{nil, client.ErrUnavailable, &client.APIError{Status: 500}} {
		u := &models.User{ID: "1"}
		fc := &fakeAuthClient{MeRet: u, LogoutErr: logoutErr}
		cache := setupMetadata(t)
		s := NewSession(fc, WithIdentityCache(cache))
		ctx := context.Background()
		require.Equal(t, Authenticated, s.Bootstrap(ctx).Status)

		s.Logout(ctx)
		assert.Equal(t, State{Status: Anonymous}, s.State())
		assert.Equal(t, 1, fc.LogoutHits)

		cached, err := metadata.LoadIdentity(ctx, cache)
		require.NoError(t, err)
		assert.Nil(t, cached)
	}
}

func TestExpire_OnlyFromAuthenticated(t *testing.T) {
	fc := &fakeAuthClient{MeErr: client.ErrUnauthorized}
	s := NewSession(fc)

	var seen []State
	unsubscribe := s.Subscribe(func(st State) { seen = append(seen, st) })
	defer unsubscribe()

	s.Expire()
	assert.Equal(t, Bootstrapping, s.State().Status)
	assert.Empty(t, seen)

	s.Bootstrap(context.Background())
	fc.LoginRet = &models.User{ID: "1"}
	_, err := s.Login(context.Background(), "a", "b")
	require.NoError(t, err)

	s.Expire()
	assert.Equal(t, State{Status: Anonymous}, s.State())
	s.Expire()

	require.Len(t, seen, 3)
	assert.Equal(t, []Status{Anonymous, Authenticated, Anonymous}, []Status{seen[0].Status, seen[1].Status, seen[2].Status})
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	s := NewSession(&fakeAuthClient{MeErr: client.ErrUnauthorized})
	calls := 0
	unsubscribe := s.Subscribe(func(State) { calls++ })
	unsubscribe()
	unsubscribe()

	s.Bootstrap(context.Background())
	assert.Zero(t, calls)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "bootstrapping", Bootstrapping.String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "anonymous", Anonymous.String())
	assert.Equal(t, "unknown", Status(9).String())
}

// ---- end to end over the fake backend ----

func newWiredSession(t *testing.T) (*fakeapi.Server, *client.HTTPClient, Session) {
	t.Helper()
	api := fakeapi.New()
	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)

	jar, err := client.NewPersistentJar(context.Background(), ts.URL, nil, nil)
	require.NoError(t, err)
	c, err := client.NewHTTPClient(ts.URL, jar)
	require.NoError(t, err)

	s := NewSession(c)
	c.SetUnauthorizedHook(s.Expire)
	return api, c, s
}

func TestSessionOverHTTP(t *testing.T) {
	api, c, s := newWiredSession(t)
	ctx := context.Background()

	assert.Equal(t, State{Status: Anonymous}, s.Bootstrap(ctx))

	_, err := s.Register(ctx, "ann@acme.io", "pw")
	require.NoError(t, err)
	assert.Equal(t, Anonymous, s.State().Status)

	_, err = s.Login(ctx, "ann@acme.io", "wrong")
	require.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, Anonymous, s.State().Status)

	u, err := s.Login(ctx, "ann@acme.io", "pw")
	require.NoError(t, err)
	assert.Equal(t, u, s.State().Identity)

	api.RevokeSessions()
	_, err = c.ListLeads(ctx, nil)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, State{Status: Anonymous}, s.State())

	_, err = s.Login(ctx, "ann@acme.io", "pw")
	require.NoError(t, err)
	api.FailWith(http.MethodPost, "/api/auth/logout", http.StatusInternalServerError, "boom")
	s.Logout(ctx)
	assert.Equal(t, State{Status: Anonymous}, s.State())
}
