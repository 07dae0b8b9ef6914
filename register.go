package userauth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Anglius/userauth/settings"
)

// Register creates a new member account from submitted attributes.
//
// If a guest account already exists under the submitted email, the guest is
// converted in place instead of creating a duplicate. When activate is
// false, the activation mode setting still decides the outcome: auto mode
// activates immediately, user mode leaves a pending activation code for the
// out-of-band flow, admin mode leaves the account inactive with no code.
//
// With autoLogin, the new user becomes this Manager's current user; a
// session is established only when the account is usable (activated, or
// activation not required).
func (m *Manager) Register(ctx context.Context, creds Credentials, activate, autoLogin bool) (*User, error) {
	if !m.service.ready() {
		return nil, ErrServiceNotReady
	}

	allowed, err := m.service.settings.AllowRegistration(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve registration setting: %w", err)
	}
	if !allowed {
		return nil, ErrRegistrationDisabled
	}

	mode, err := m.service.settings.ActivateMode(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve activation mode: %w", err)
	}
	if mode == settings.ActivateAuto {
		activate = true
	}

	if email := creds["email"]; email != "" {
		guest, gerr := m.FindGuestUser(ctx, email)
		if gerr != nil {
			return nil, fmt.Errorf("find guest: %w", gerr)
		}
		if guest != nil {
			user, cerr := m.ConvertGuestToUser(ctx, guest, creds, activate)
			if cerr != nil {
				return nil, cerr
			}
			return m.finishRegistration(ctx, user, autoLogin)
		}
	}

	if creds[CredentialPassword] == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, CredentialPassword)
	}
	if err := m.requireLoginFields(ctx, creds); err != nil {
		return nil, err
	}

	user := &User{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := m.fillUser(user, creds); err != nil {
		return nil, err
	}
	user.UpdatedAt = user.CreatedAt

	if activate {
		now := time.Now().UTC()
		user.IsActivated = true
		user.ActivatedAt = &now
	} else if mode == settings.ActivateUser {
		user.GetActivationCode()
	}

	if err := m.service.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	m.service.emitAudit(ctx, auditEventUserRegistered, true, user.ID, user.Email, nil, func() map[string]string {
		return map[string]string{"activated": fmt.Sprintf("%t", user.IsActivated)}
	})

	return m.finishRegistration(ctx, user, autoLogin)
}

// requireLoginFields enforces presence of the configured login attribute in
// a registration payload. In combined mode either attribute satisfies it.
func (m *Manager) requireLoginFields(ctx context.Context, creds Credentials) error {
	attr, err := m.service.settings.LoginAttribute(ctx)
	if err != nil {
		return fmt.Errorf("resolve login attribute: %w", err)
	}
	if attr == settings.LoginBoth {
		if creds[settings.LoginEmail] == "" && creds[settings.LoginUsername] == "" {
			return fmt.Errorf("%w: email or username", ErrMissingField)
		}
		return nil
	}
	if creds[attr] == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, attr)
	}
	return nil
}

func (m *Manager) finishRegistration(ctx context.Context, user *User, autoLogin bool) (*User, error) {
	if !autoLogin {
		return user, nil
	}

	m.user = user

	required, err := m.service.settings.RequireActivation(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve activation setting: %w", err)
	}
	if !user.IsActivated && required {
		return user, nil
	}

	token, err := m.service.sessions.Login(ctx, user.ID, user.Email, false)
	if err != nil {
		return nil, fmt.Errorf("establish session: %w", err)
	}
	m.token = token
	return user, nil
}
