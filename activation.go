package userauth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GetActivationCode returns the user's pending activation code, generating
// and storing one on the record if none exists. The caller is responsible
// for persisting the record afterwards.
func (u *User) GetActivationCode() string {
	if u.ActivationCode == "" {
		u.ActivationCode = uuid.NewString()
	}
	return u.ActivationCode
}

// AttemptActivation activates the user when code matches the pending
// activation code. It mutates the record only; persistence is the caller's
// concern.
func (u *User) AttemptActivation(code string) error {
	if u.IsActivated {
		return ErrUserAlreadyActivated
	}
	if code == "" || code != u.ActivationCode {
		return ErrInvalidActivationCode
	}

	now := time.Now().UTC()
	u.IsActivated = true
	u.ActivatedAt = &now
	u.ActivationCode = ""
	return nil
}

// AttemptActivation activates a user by code and persists the result.
func (m *Manager) AttemptActivation(ctx context.Context, user *User, code string) error {
	if !m.service.ready() {
		return ErrServiceNotReady
	}
	if user == nil {
		return fmt.Errorf("%w: user", ErrMissingField)
	}

	if err := user.AttemptActivation(code); err != nil {
		m.service.emitAudit(ctx, auditEventActivationFailed, false, user.ID, user.Email, err, nil)
		return err
	}

	if err := m.service.users.Save(ctx, user, SaveOptions{SkipPasswordValidation: true}); err != nil {
		return fmt.Errorf("persist activation: %w", err)
	}

	m.service.emitAudit(ctx, auditEventUserActivated, true, user.ID, user.Email, nil, nil)
	return nil
}
