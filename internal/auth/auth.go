// Package auth gates access to the app.
//
// LocalGate is not authentication. It only checks the shape of the
// credentials and remembers a local "logged in" flag, so a single user on
// one machine sees a login step. A real multi-user deployment would plug
// a different AuthProvider in behind the same interface.
package auth

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/studyplan/internal/apperr"
	"github.com/abhisek/studyplan/internal/store"
)

// MinPasswordLength is the shortest password LocalGate accepts.
const MinPasswordLength = 6

// AuthProvider is the login boundary used by the TUI and CLI.
type AuthProvider interface {
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	IsAuthenticated(ctx context.Context) (bool, error)
}

// LocalGate accepts any non-empty email with a password of at least
// MinPasswordLength characters and persists the result as the store's
// auth flag. Credentials are never stored.
type LocalGate struct {
	settings store.SettingsRepo
}

var _ AuthProvider = (*LocalGate)(nil)

// NewLocalGate creates a LocalGate backed by settings.
func NewLocalGate(settings store.SettingsRepo) *LocalGate {
	return &LocalGate{settings: settings}
}

// CheckCredentials applies the LocalGate shape check without touching
// the store.
func CheckCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return apperr.Validation("email", "please enter your email")
	}
	if len([]rune(password)) < MinPasswordLength {
		return apperr.Validation("password", "must be at least %d characters", MinPasswordLength)
	}
	return nil
}

func (g *LocalGate) Login(ctx context.Context, email, password string) error {
	if err := CheckCredentials(email, password); err != nil {
		return err
	}
	if err := g.settings.SetAuthFlag(ctx, true); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	zap.L().Info("logged in")
	return nil
}

func (g *LocalGate) Logout(ctx context.Context) error {
	if err := g.settings.SetAuthFlag(ctx, false); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	zap.L().Info("logged out")
	return nil
}

func (g *LocalGate) IsAuthenticated(ctx context.Context) (bool, error) {
	return g.settings.GetAuthFlag(ctx)
}
