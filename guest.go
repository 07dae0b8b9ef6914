package userauth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FindGuestUser looks up a guest account by email, including soft-deleted
// records. It returns (nil, nil) when no guest with that email exists.
func (m *Manager) FindGuestUser(ctx context.Context, email string) (*User, error) {
	if email == "" {
		return nil, nil
	}
	guest := true
	return m.service.users.FindOne(ctx, Query{
		Predicates:     []Predicate{{Field: "email", Value: email}},
		IsGuest:        &guest,
		IncludeTrashed: true,
	})
}

// RegisterGuest creates a guest account, or refreshes the existing one when
// a guest with the same email is already present. Guests are placed in the
// configured guest group and are never activated.
func (m *Manager) RegisterGuest(ctx context.Context, creds Credentials) (*User, error) {
	if !m.service.ready() {
		return nil, ErrServiceNotReady
	}

	email := creds["email"]
	if email == "" {
		return nil, fmt.Errorf("%w: email", ErrMissingField)
	}

	user, err := m.FindGuestUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find guest: %w", err)
	}

	isNew := user == nil
	if isNew {
		user = &User{
			ID:        uuid.NewString(),
			CreatedAt: time.Now().UTC(),
		}
	}

	passwordSet, err := m.fillUser(user, creds)
	if err != nil {
		return nil, err
	}
	user.IsGuest = true
	user.UpdatedAt = time.Now().UTC()

	if isNew {
		if code, gerr := m.guestGroupCode(ctx); gerr != nil {
			return nil, gerr
		} else if code != "" {
			user.AddGroup(code)
		}
		if err := m.service.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create guest: %w", err)
		}
	} else {
		opts := SaveOptions{SkipPasswordValidation: !passwordSet}
		if err := m.service.users.Save(ctx, user, opts); err != nil {
			return nil, fmt.Errorf("save guest: %w", err)
		}
	}

	m.user = user
	m.service.emitAudit(ctx, auditEventGuestRegistered, true, user.ID, user.Email, nil, nil)
	return user, nil
}

// ConvertGuestToUser upgrades a guest into a full member in place,
// preserving the record's identity and any history attached to it. The
// guest group membership is removed, the submitted attributes are merged,
// and the account is activated when activate is true.
func (m *Manager) ConvertGuestToUser(ctx context.Context, user *User, creds Credentials, activate bool) (*User, error) {
	if !m.service.ready() {
		return nil, ErrServiceNotReady
	}
	if user == nil || !user.IsGuest {
		return nil, fmt.Errorf("%w: guest user", ErrMissingField)
	}

	passwordSet, err := m.fillUser(user, creds)
	if err != nil {
		return nil, err
	}
	user.IsGuest = false
	user.UpdatedAt = time.Now().UTC()

	if code, gerr := m.guestGroupCode(ctx); gerr != nil {
		return nil, gerr
	} else if code != "" {
		user.RemoveGroup(code)
	}

	if activate && !user.IsActivated {
		if err := user.AttemptActivation(user.GetActivationCode()); err != nil {
			return nil, err
		}
	}

	opts := SaveOptions{SkipPasswordValidation: !passwordSet}
	if err := m.service.users.Save(ctx, user, opts); err != nil {
		return nil, fmt.Errorf("save converted user: %w", err)
	}

	m.user = user
	m.service.emitAudit(ctx, auditEventGuestConverted, true, user.ID, user.Email, nil, func() map[string]string {
		return map[string]string{"activated": fmt.Sprintf("%t", user.IsActivated)}
	})
	return user, nil
}

func (m *Manager) guestGroupCode(ctx context.Context) (string, error) {
	if m.service.groups == nil {
		return "", nil
	}
	group, err := m.service.groups.GuestGroup(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve guest group: %w", err)
	}
	if group == nil {
		return "", nil
	}
	return group.Code, nil
}

// fillUser merges submitted attributes into the user record, hashing the
// password when one is present. It reports whether a password was set.
func (m *Manager) fillUser(user *User, creds Credentials) (bool, error) {
	if v, ok := creds["email"]; ok && v != "" {
		user.Email = v
	}
	if v, ok := creds["username"]; ok && v != "" {
		user.Username = v
	}
	if v, ok := creds["name"]; ok && v != "" {
		user.Name = v
	}
	if v, ok := creds["surname"]; ok && v != "" {
		user.Surname = v
	}

	plain := creds[CredentialPassword]
	if plain == "" {
		return false, nil
	}
	hash, err := m.service.hasher.Hash(plain)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	user.Password = hash
	return true, nil
}
