package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/leadgrid/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/leadgrid/internal/client/services"
)

var errNotSignedIn = errors.New("not signed in")

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) credentials() (string, []byte, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// Register prompts for an email and password and creates an account.
// It does not sign the user in.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer clear(password)

	acc, err := a.session.Register(ctx, email, string(password))
	if err != nil {
		a.printf("Registration failed: %s\n", services.DisplayMessage(err))
		return err
	}

	if acc != nil && acc.Message != "" {
		a.println(acc.Message)
	}
	a.println("Success! Use 'login' to sign in.")
	return nil
}

// Login prompts for credentials and signs in. On failure the backend's
// message is shown and the session is left as it was.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer clear(password)

	u, err := a.session.Login(ctx, email, string(password))
	if err != nil {
		a.printf("Login failed: %s\n", services.DisplayMessage(err))
		return err
	}

	a.mu.Lock()
	a.page = 0
	a.mu.Unlock()

	a.printf("Signed in as %s\n", u.Email)
	return nil
}

// Logout ends the session and drops every cached page of the grid. When a
// user was signed in the pages go through onSessionChange.
func (a *App) Logout(ctx context.Context) error {
	signedIn := a.isLoggedIn()
	a.session.Logout(ctx)
	if !signedIn {
		a.dropPages(ctx)
	}
	a.println("Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	st := a.session.State()
	if st.Identity != nil {
		a.printf("%s (id %s)\n", st.Identity.Email, st.Identity.ID)
		return nil
	}
	if a.identity != nil {
		if u, err := metadata.LoadIdentity(ctx, a.identity); err == nil && u != nil {
			a.printf("Not signed in (last: %s)\n", u.Email)
			return nil
		}
	}
	a.println("Not signed in")
	return nil
}

func (a *App) requireLogin() error {
	if a.isLoggedIn() {
		return nil
	}
	a.println("Please log in first.")
	return errNotSignedIn
}
