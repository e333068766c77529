// Package fakeapi is an in-process implementation of the leads REST backend.
// It keeps users and leads in memory and is meant for tests and local runs
// of the CLI.
package fakeapi

import (
	"crypto/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/leadgrid/internal/client/models"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	sessionName      = "leads_session"
	sessionKeyUserID = "user_id"
	sessionKeyEpoch  = "epoch"
)

type user struct {
	id           string
	email        string
	passwordHash []byte
}

type override struct {
	status  int
	message string
}

// Server is the fake backend. It implements http.Handler.
type Server struct {
	echo  *echo.Echo
	store *sessions.CookieStore
	now   func() time.Time

	mu        sync.RWMutex
	users     map[string]*user
	leads     []models.Lead
	nextID    int
	epoch     int
	overrides map[string]override
	queries   []url.Values
}

type Option func(*Server)

// WithClock sets the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(opts ...Option) *Server {
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)

	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:      e,
		store:     store,
		now:       time.Now,
		users:     make(map[string]*user),
		nextID:    1,
		overrides: make(map[string]override),
	}
	for _, o := range opts {
		o(s)
	}

	e.Use(s.overrideMiddleware)
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.HEAD("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	s.echo.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	s.echo.POST("/api/auth/register", s.handleRegister)
	s.echo.POST("/api/auth/login", s.handleLogin)
	s.echo.POST("/api/auth/logout", s.handleLogout)
	s.echo.GET("/api/auth/me", s.handleMe, s.requireAuth)

	s.echo.GET("/leads", s.handleListLeads, s.requireAuth)
	s.echo.POST("/leads", s.handleCreateLead, s.requireAuth)
	s.echo.PUT("/leads/:id", s.handleUpdateLead, s.requireAuth)
	s.echo.DELETE("/leads/:id", s.handleDeleteLead, s.requireAuth)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// FailWith makes every later request to method+path answer with status
// and message until Reset is called.
func (s *Server) FailWith(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" "+path] = override{status: status, message: message}
}

// Reset clears all failures set with FailWith.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = make(map[string]override)
}

// RevokeSessions invalidates every session issued so far.
func (s *Server) RevokeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
}

// LeadQueries returns the query strings of every GET /leads request seen.
func (s *Server) LeadQueries() []url.Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]url.Values, len(s.queries))
	copy(out, s.queries)
	return out
}

func (s *Server) overrideMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.RLock()
		o, ok := s.overrides[c.Request().Method+" "+c.Request().URL.Path]
		s.mu.RUnlock()
		if ok {
			return c.JSON(o.status, message(o.message))
		}
		return next(c)
	}
}

func message(msg string) map[string]string {
	return map[string]string{"message": msg}
}
