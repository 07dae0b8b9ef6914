package userauth

import (
	"context"
	"time"
)

// Credentials is the raw per-call credential set submitted by a caller,
// mapping field name to value. The key "login" is accepted as a generic
// alias for the configured login attribute, and the key "both" targets
// email OR username in one lookup.
type Credentials map[string]string

// CredentialLogin is the generic fallback key rewritten into the configured
// login attribute before resolution.
const CredentialLogin = "login"

// CredentialPassword is the password field name. It is always hashable and
// its mismatch is reported as [ErrInvalidCredentials] rather than
// [ErrUserNotFound].
const CredentialPassword = "password"

// User is a guest or registered account record.
type User struct {
	ID       string
	Email    string
	Username string
	Name     string
	Surname  string

	// Password and PersistCode hold PHC-encoded hashes, never plaintext.
	Password    string
	PersistCode string

	ActivationCode string
	IsActivated    bool
	ActivatedAt    *time.Time

	IsGuest bool

	ResetPasswordCode string
	LastLogin         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time

	// Groups holds the codes of the user's group memberships.
	Groups []string
}

// Trashed reports whether the user is soft-deleted.
func (u *User) Trashed() bool {
	return u.DeletedAt != nil
}

// InGroup reports membership in the group with the given code.
func (u *User) InGroup(code string) bool {
	for _, g := range u.Groups {
		if g == code {
			return true
		}
	}
	return false
}

// AddGroup adds a group membership. Adding an existing membership is a no-op.
func (u *User) AddGroup(code string) {
	if code == "" || u.InGroup(code) {
		return
	}
	u.Groups = append(u.Groups, code)
}

// RemoveGroup removes a group membership. Removing an absent membership is a
// no-op.
func (u *User) RemoveGroup(code string) {
	for i, g := range u.Groups {
		if g == code {
			u.Groups = append(u.Groups[:i], u.Groups[i+1:]...)
			return
		}
	}
}

// ClearResetPassword discards any pending password-reset code.
func (u *User) ClearResetPassword() {
	u.ResetPasswordCode = ""
}

// Attribute returns a plain (non-hashed) queryable attribute by field name.
func (u *User) Attribute(field string) (string, bool) {
	switch field {
	case "email":
		return u.Email, true
	case "username":
		return u.Username, true
	case "name":
		return u.Name, true
	case "surname":
		return u.Surname, true
	}
	return "", false
}

// hashedAttribute returns the stored hash for a hashable field.
func (u *User) hashedAttribute(field string) string {
	switch field {
	case CredentialPassword:
		return u.Password
	case "persist_code":
		return u.PersistCode
	}
	return ""
}

// Group is a user group. A group with the distinguished guest code holds
// anonymous guest accounts until conversion.
type Group struct {
	ID   string
	Code string
	Name string
}

// SaveOptions controls how [UserStore.Save] treats the record.
type SaveOptions struct {
	// SkipPasswordValidation tells the store not to re-validate or re-derive
	// the password field for this save. Set whenever the save does not touch
	// the password (reset-code clearing, last-login updates, guest merges).
	SkipPasswordValidation bool
}

// UserStore is the credential-store boundary. FindOne executes a [Query]
// with zero-or-one semantics, returning (nil, nil) when no record matches.
type UserStore interface {
	FindOne(ctx context.Context, q Query) (*User, error)
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User, opts SaveOptions) error
}

// GroupStore resolves the distinguished guest group. GuestGroup returns
// (nil, nil) when no guest group is configured; guest-group membership
// operations then become no-ops.
type GroupStore interface {
	GuestGroup(ctx context.Context) (*Group, error)
}

// SessionEstablisher is invoked only after successful authentication. It
// returns an opaque session token for the caller's transport layer.
type SessionEstablisher interface {
	Login(ctx context.Context, userID, email string, remember bool) (string, error)
}

// HashVerifier is the pluggable one-way hash capability used for hashable
// credential fields.
type HashVerifier interface {
	Hash(plain string) (string, error)
	Verify(plain, encodedHash string) (bool, error)
}
