package userauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Anglius/userauth/internal/throttle"
)

// Manager is the request-scoped front door of the service. It carries the
// caller's source address and, after a successful Authenticate or
// registration, the resolved current user and session token.
//
// A Manager is cheap to create and must not be shared across requests.
type Manager struct {
	service *Service

	ip    string
	user  *User
	token string
}

// User returns the current user resolved by this Manager, or nil.
func (m *Manager) User() *User {
	return m.user
}

// SetUser overrides the current user, for transports that restore identity
// from their own session mechanism before calling back into the service.
func (m *Manager) SetUser(u *User) {
	m.user = u
}

// SessionToken returns the token minted by the last successful login on
// this Manager, or "".
func (m *Manager) SessionToken() string {
	return m.token
}

// Authenticate resolves credentials to a user, enforcing throttling and the
// activation gate, and establishes a session on success.
//
// The generic "login" credential key is rewritten into the configured login
// attribute. Failed resolutions are counted against the (login, source
// address) pair; a pair inside a lockout window fails fast with
// [ErrLockedOut] before any store lookup.
func (m *Manager) Authenticate(ctx context.Context, creds Credentials, remember bool) (*User, error) {
	if !m.service.ready() {
		return nil, ErrServiceNotReady
	}

	loginName, err := m.service.settings.LoginAttribute(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve login attribute: %w", err)
	}

	login, ok := creds[loginName]
	if !ok {
		login = creds[CredentialLogin]
	}
	if login == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, loginName)
	}
	if creds[CredentialPassword] == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, CredentialPassword)
	}

	// Work on a copy so the generic key rewrite never mutates the caller's
	// map.
	resolved := make(Credentials, len(creds))
	for k, v := range creds {
		if k == CredentialLogin {
			continue
		}
		resolved[k] = v
	}
	resolved[loginName] = login

	useThrottle, err := m.service.settings.UseThrottle(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve throttle setting: %w", err)
	}

	if useThrottle {
		if err := m.service.throttle.Check(ctx, login, m.ip); err != nil {
			if errors.Is(err, throttle.ErrLocked) {
				m.service.emitAudit(ctx, auditEventLoginLocked, false, "", login, ErrLockedOut, nil)
				return nil, ErrLockedOut
			}
			return nil, fmt.Errorf("throttle check: %w", err)
		}
	}

	user, err := m.FindUserByCredentials(ctx, resolved)
	if err != nil {
		var throttleErr error
		if useThrottle && isAuthFailure(err) {
			throttleErr = m.service.throttle.AddLoginAttempt(ctx, login, m.ip)
		}
		m.service.emitAudit(ctx, auditEventLoginFailure, false, "", login, err, func() map[string]string {
			if throttleErr == nil {
				return nil
			}
			return map[string]string{"throttle_error": throttleErr.Error()}
		})
		return nil, err
	}

	if useThrottle {
		if err := m.service.throttle.ClearLoginAttempts(ctx, login, m.ip); err != nil {
			return nil, fmt.Errorf("clear login attempts: %w", err)
		}
	}

	user.ClearResetPassword()

	if err := m.login(ctx, user, remember); err != nil {
		return nil, err
	}

	m.service.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, user.Email, nil, func() map[string]string {
		return map[string]string{"remember": fmt.Sprintf("%t", remember)}
	})

	return user, nil
}

// login finalizes authentication for an already-verified user: activation
// gate, last-login stamp, persistence, session establishment.
func (m *Manager) login(ctx context.Context, user *User, remember bool) error {
	required, err := m.service.settings.RequireActivation(ctx)
	if err != nil {
		return fmt.Errorf("resolve activation setting: %w", err)
	}
	if required && !user.IsActivated {
		m.service.emitAudit(ctx, auditEventLoginFailure, false, user.ID, user.Email, ErrUserNotActivated, nil)
		return fmt.Errorf("%w: %s", ErrUserNotActivated, user.Email)
	}

	now := time.Now().UTC()
	user.LastLogin = &now

	if err := m.service.users.Save(ctx, user, SaveOptions{SkipPasswordValidation: true}); err != nil {
		return fmt.Errorf("persist login state: %w", err)
	}

	token, err := m.service.sessions.Login(ctx, user.ID, user.Email, remember)
	if err != nil {
		return fmt.Errorf("establish session: %w", err)
	}

	m.user = user
	m.token = token
	return nil
}

// isAuthFailure reports whether err is a credential failure that should
// count against the throttle, as opposed to an infrastructure error.
func isAuthFailure(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrMissingField)
}
