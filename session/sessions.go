package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid is returned for tokens that fail signature or claims checks.
var ErrTokenInvalid = errors.New("invalid session token")

// Config holds session lifetime and token signing parameters.
type Config struct {
	Lifetime         time.Duration // default 2h
	RememberLifetime time.Duration // default 720h
	SigningKey       []byte        // HS256; required
	Issuer           string
}

// Claims is the JWT payload carried by session tokens.
type Claims struct {
	UID string `json:"uid"`
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// Manager creates, validates, and revokes login sessions. It stores a
// [Record] per login and hands the caller an HS256-signed token that
// references it; revoking the record invalidates the token regardless of
// its expiry.
type Manager struct {
	store  *Store
	config Config

	// SingleSession, when set and returning true, makes Login evict the
	// user's other sessions before creating the new one.
	SingleSession func(ctx context.Context) (bool, error)

	now func() time.Time
}

// NewManager validates cfg and returns a session [Manager].
func NewManager(store *Store, cfg Config) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store required")
	}
	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("session signing key required")
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = 2 * time.Hour
	}
	if cfg.RememberLifetime <= 0 {
		cfg.RememberLifetime = 720 * time.Hour
	}

	return &Manager{
		store:  store,
		config: cfg,
		now:    time.Now,
	}, nil
}

// Login creates a session for the user and returns its signed token.
// With remember set, the session uses the long remember lifetime.
func (m *Manager) Login(ctx context.Context, userID, email string, remember bool) (string, error) {
	if userID == "" {
		return "", errors.New("user id required")
	}

	if m.SingleSession != nil {
		single, err := m.SingleSession(ctx)
		if err != nil {
			return "", err
		}
		if single {
			if _, err := m.store.DeleteAllForUser(ctx, userID); err != nil {
				return "", err
			}
		}
	}

	lifetime := m.config.Lifetime
	if remember {
		lifetime = m.config.RememberLifetime
	}

	now := m.now()
	rec := &Record{
		SessionID: uuid.NewString(),
		UserID:    userID,
		Email:     email,
		Remember:  remember,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(lifetime).Unix(),
	}

	if err := m.store.Save(ctx, rec, lifetime); err != nil {
		return "", err
	}

	token, err := m.signToken(rec, now, lifetime)
	if err != nil {
		// Roll back the orphaned record; a failed signature must not leave
		// a live session behind.
		_ = m.store.Delete(ctx, rec.UserID, rec.SessionID)
		return "", err
	}
	return token, nil
}

// Validate verifies the token signature and claims, then confirms the
// referenced session record still exists. Revoked sessions fail with
// [ErrNotFound] even when the token itself has not expired.
func (m *Manager) Validate(ctx context.Context, token string) (*Record, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.config.SigningKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.UID == "" || claims.SID == "" {
		return nil, ErrTokenInvalid
	}
	if m.config.Issuer != "" && claims.Issuer != m.config.Issuer {
		return nil, ErrTokenInvalid
	}

	rec, err := m.store.Get(ctx, claims.SID)
	if err != nil {
		return nil, err
	}
	if rec.UserID != claims.UID {
		return nil, ErrTokenInvalid
	}
	return rec, nil
}

// Logout revokes the session referenced by the token. Unknown or already
// revoked sessions are a no-op.
func (m *Manager) Logout(ctx context.Context, token string) error {
	rec, err := m.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrTokenInvalid) {
			return nil
		}
		return err
	}
	return m.store.Delete(ctx, rec.UserID, rec.SessionID)
}

func (m *Manager) signToken(rec *Record, now time.Time, lifetime time.Duration) (string, error) {
	claims := Claims{
		UID: rec.UserID,
		SID: rec.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   rec.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.SigningKey)
}
