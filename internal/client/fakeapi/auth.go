package fakeapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/leadgrid/internal/client/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, err := s.store.Get(c.Request(), sessionName)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, message("Not authenticated"))
		}

		id, ok := session.Values[sessionKeyUserID].(string)
		if !ok {
			return c.JSON(http.StatusUnauthorized, message("Not authenticated"))
		}
		epoch, _ := session.Values[sessionKeyEpoch].(int)

		s.mu.RLock()
		u := s.userByID(id)
		current := s.epoch
		s.mu.RUnlock()

		if u == nil || epoch != current {
			return c.JSON(http.StatusUnauthorized, message("Session expired"))
		}

		c.Set("user", u)
		return next(c)
	}
}

func (s *Server) userByID(id string) *user {
	for _, u := range s.users {
		if u.id == id {
			return u
		}
	}
	return nil
}

func (s *Server) handleRegister(c echo.Context) error {
	var in models.Credentials
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid request body"))
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return c.JSON(http.StatusBadRequest, message("Email and password are required"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
	if err != nil {
		return c.JSON(http.StatusBadRequest, message("Password is not acceptable"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[email]; exists {
		return c.JSON(http.StatusConflict, message("User already exists"))
	}
	u := &user{id: uuid.NewString(), email: email, passwordHash: hash}
	s.users[email] = u

	return c.JSON(http.StatusCreated, models.Account{
		ID:      models.LeadID(u.id),
		Email:   u.email,
		Message: "User registered successfully",
	})
}

func (s *Server) handleLogin(c echo.Context) error {
	var in models.Credentials
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid request body"))
	}

	s.mu.RLock()
	u := s.users[strings.ToLower(strings.TrimSpace(in.Email))]
	epoch := s.epoch
	s.mu.RUnlock()

	if u == nil || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(in.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, message("Invalid credentials"))
	}

	session, _ := s.store.Get(c.Request(), sessionName)
	session.Values[sessionKeyUserID] = u.id
	session.Values[sessionKeyEpoch] = epoch
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return c.JSON(http.StatusInternalServerError, message("Failed to save session"))
	}

	return c.JSON(http.StatusOK, models.User{ID: models.LeadID(u.id), Email: u.email})
}

func (s *Server) handleLogout(c echo.Context) error {
	session, _ := s.store.Get(c.Request(), sessionName)
	session.Options.MaxAge = -1
	delete(session.Values, sessionKeyUserID)
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return c.JSON(http.StatusInternalServerError, message("Failed to clear session"))
	}
	return c.JSON(http.StatusOK, message("Logged out"))
}

func (s *Server) handleMe(c echo.Context) error {
	u := c.Get("user").(*user)
	return c.JSON(http.StatusOK, models.User{ID: models.LeadID(u.id), Email: u.email})
}
