// Package services contains the application services of the leads client:
// the authentication session and lead mutations.
package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/leadgrid/internal/client/models"
	"github.com/dmitrijs2005/leadgrid/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/leadgrid/internal/logging"
)

type Status int

const (
	Bootstrapping Status = iota
	Authenticated
	Anonymous
)

func (s Status) String() string {
	switch s {
	case Bootstrapping:
		return "bootstrapping"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session. Identity is non-nil exactly when
// Status is Authenticated.
type State struct {
	Status   Status
	Identity *models.User
}

// AuthClient is the part of the transport the session needs.
type AuthClient interface {
	Me(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, email, password string) (*models.Account, error)
	Logout(ctx context.Context) error
}

// Session owns the current identity of the running client.
//
// Contract:
//   - Bootstrap: ask the backend once; never fails, absence of a session
//     yields Anonymous.
//   - Login: Authenticated on success, state untouched on failure.
//   - Register: no state change.
//   - Logout: Anonymous whatever the backend answers.
//   - Expire: Anonymous after the transport saw the session rejected.
//   - Subscribe: observe every transition after it is applied.
type Session interface {
	Bootstrap(ctx context.Context) State
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, email, password string) (*models.Account, error)
	Logout(ctx context.Context)
	Expire()
	State() State
	Subscribe(fn func(State)) (unsubscribe func())
}

type SessionOption func(*session)

func WithSessionLogger(l logging.Logger) SessionOption {
	return func(s *session) { s.log = l }
}

// WithIdentityCache remembers the last signed-in identity in repo so it can
// be shown offline.
func WithIdentityCache(repo metadata.Repository) SessionOption {
	return func(s *session) { s.cache = repo }
}

type session struct {
	client AuthClient
	log    logging.Logger
	cache  metadata.Repository

	bootOnce sync.Once

	mu    sync.Mutex
	state State
	subs  listeners[State]
}

// NewSession returns a Session in the Bootstrapping state.
func NewSession(c AuthClient, opts ...SessionOption) Session {
	s := &session{
		client: c,
		log:    logging.Discard(),
		state:  State{Status: Bootstrapping},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *session) Subscribe(fn func(State)) func() {
	return s.subs.add(fn)
}

// set applies next and notifies listeners. When only is non-nil the
// transition happens only if the current status is one of only.
func (s *session) set(next State, only ...Status) bool {
	s.mu.Lock()
	if len(only) > 0 && !contains(only, s.state.Status) {
		s.mu.Unlock()
		return false
	}
	s.state = next
	s.mu.Unlock()

	s.subs.notify(next)
	return true
}

func contains(list []Status, st Status) bool {
	for _, v := range list {
		if v == st {
			return true
		}
	}
	return false
}

func (s *session) Bootstrap(ctx context.Context) State {
	s.bootOnce.Do(func() {
		u, err := s.client.Me(ctx)
		if err != nil || u == nil {
			s.log.Debug(ctx, "no active session", "error", err)
			s.set(State{Status: Anonymous}, Bootstrapping)
			return
		}
		if s.set(State{Status: Authenticated, Identity: u}, Bootstrapping) {
			s.remember(ctx, u)
		}
	})
	return s.State()
}

func (s *session) Login(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.log.Info(ctx, "login rejected", "error", err)
		return nil, &opError{kind: ErrAuthentication, cause: err}
	}

	s.set(State{Status: Authenticated, Identity: u})
	s.remember(ctx, u)
	s.log.Info(ctx, "logged in", "user_id", u.ID.String())
	return u, nil
}

func (s *session) Register(ctx context.Context, email, password string) (*models.Account, error) {
	acc, err := s.client.Register(ctx, email, password)
	if err != nil {
		s.log.Info(ctx, "registration rejected", "error", err)
		return nil, &opError{kind: ErrRegistration, cause: err}
	}
	return acc, nil
}

func (s *session) Logout(ctx context.Context) {
	if err := s.client.Logout(ctx); err != nil {
		s.log.Warn(ctx, "logout request failed", "error", err)
	}
	s.set(State{Status: Anonymous})
	s.remember(ctx, nil)
}

func (s *session) Expire() {
	if s.set(State{Status: Anonymous}, Authenticated) {
		s.log.Info(context.Background(), "session expired")
	}
}

func (s *session) remember(ctx context.Context, u *models.User) {
	if s.cache == nil {
		return
	}
	if err := metadata.SaveIdentity(ctx, s.cache, u); err != nil {
		s.log.Warn(ctx, "failed to cache identity", "error", err)
	}
}
