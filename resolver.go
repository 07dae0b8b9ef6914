package userauth

import (
	"context"
	"fmt"
	"sort"

	"github.com/Anglius/userauth/settings"
)

// FindUserByLogin looks a user up by the configured login attribute alone,
// without credential verification. It returns (nil, nil) when no user
// matches.
func (m *Manager) FindUserByLogin(ctx context.Context, login string) (*User, error) {
	if login == "" {
		return nil, nil
	}

	attr, err := m.service.settings.LoginAttribute(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve login attribute: %w", err)
	}

	q := Query{IncludeTrashed: true}
	if attr == settings.LoginBoth {
		q.Or = &OrGroup{Fields: []string{settings.LoginEmail, settings.LoginUsername}, Value: login}
	} else {
		q.Predicates = []Predicate{{Field: attr, Value: login}}
	}

	return m.service.users.FindOne(ctx, q)
}

// FindUserByCredentials resolves and verifies a user from a full credential
// set. Plain fields become query predicates; hashable fields are verified
// against the stored hashes after the record is fetched.
//
// A password mismatch yields [ErrInvalidCredentials]; a mismatch on any
// other hashable field, or no matching record at all, yields
// [ErrUserNotFound]. Callers facing untrusted clients must collapse the two
// before responding.
func (m *Manager) FindUserByCredentials(ctx context.Context, creds Credentials) (*User, error) {
	loginName, err := m.service.settings.LoginAttribute(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve login attribute: %w", err)
	}

	if _, ok := creds[loginName]; !ok {
		if _, both := creds[settings.LoginBoth]; !both {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, loginName)
		}
	}

	fields := make([]string, 0, len(creds))
	for field := range creds {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	q := Query{IncludeTrashed: true}
	hashed := make([]string, 0, 1)

	for _, field := range fields {
		value := creds[field]
		switch {
		case m.service.isHashable(field):
			hashed = append(hashed, field)
		case field == settings.LoginBoth:
			q.Or = &OrGroup{Fields: []string{settings.LoginEmail, settings.LoginUsername}, Value: value}
		default:
			q.Predicates = append(q.Predicates, Predicate{Field: field, Value: value})
		}
	}

	user, err := m.service.users.FindOne(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	for _, field := range hashed {
		stored := user.hashedAttribute(field)
		ok := false
		if stored != "" {
			ok, err = m.service.hasher.Verify(creds[field], stored)
			if err != nil {
				ok = false
			}
		}
		if ok {
			continue
		}
		if field == CredentialPassword {
			return nil, ErrInvalidCredentials
		}
		return nil, ErrUserNotFound
	}

	return user, nil
}
