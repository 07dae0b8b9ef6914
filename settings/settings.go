package settings

import (
	"context"
	"strconv"
	"sync"
)

// Activation modes.
const (
	ActivateAuto  = "auto"
	ActivateUser  = "user"
	ActivateAdmin = "admin"
)

// Login attribute values. LoginBoth doubles as the combined-login
// credential key accepted by the credential resolver.
const (
	LoginEmail    = "email"
	LoginUsername = "username"
	LoginBoth     = "both"
)

// Setting keys.
const (
	KeyUseThrottle       = "use_throttle"
	KeyRequireActivation = "require_activation"
	KeyActivateMode      = "activate_mode"
	KeyLoginAttribute    = "login_attribute"
	KeyBlockPersistence  = "block_persistence"
	KeyAllowRegistration = "allow_registration"
)

// Store is the key-value persistence boundary for settings.
// Get reports absence via the second return value.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type cached struct {
	value   string
	present bool
}

// Provider reads settings through a [Store], caching each key for the
// process lifetime. Admin mutation goes through [Provider.Set], which
// writes through and refreshes the cache; [Provider.Invalidate] drops
// the cache entirely.
type Provider struct {
	store Store

	mu    sync.RWMutex
	cache map[string]cached
}

func NewProvider(store Store) *Provider {
	return &Provider{
		store: store,
		cache: make(map[string]cached),
	}
}

func (p *Provider) get(ctx context.Context, key string) (string, bool, error) {
	p.mu.RLock()
	c, ok := p.cache[key]
	p.mu.RUnlock()
	if ok {
		return c.value, c.present, nil
	}

	value, present, err := p.store.Get(ctx, key)
	if err != nil {
		return "", false, err
	}

	p.mu.Lock()
	p.cache[key] = cached{value: value, present: present}
	p.mu.Unlock()

	return value, present, nil
}

// Set writes a setting through to the store and refreshes the cache.
func (p *Provider) Set(ctx context.Context, key, value string) error {
	if err := p.store.Set(ctx, key, value); err != nil {
		return err
	}

	p.mu.Lock()
	p.cache[key] = cached{value: value, present: true}
	p.mu.Unlock()

	return nil
}

// Invalidate drops all cached values so the next read hits the store.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.cache = make(map[string]cached)
	p.mu.Unlock()
}

func (p *Provider) getBool(ctx context.Context, key string, fallback bool) (bool, error) {
	value, present, err := p.get(ctx, key)
	if err != nil {
		return false, err
	}
	if !present {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, nil
	}
	return parsed, nil
}

// UseThrottle reports whether failed logins are throttled. Default true.
func (p *Provider) UseThrottle(ctx context.Context) (bool, error) {
	return p.getBool(ctx, KeyUseThrottle, true)
}

// RequireActivation reports whether unactivated users may sign in. Default true.
func (p *Provider) RequireActivation(ctx context.Context) (bool, error) {
	return p.getBool(ctx, KeyRequireActivation, true)
}

// BlockPersistence reports whether a login evicts the user's other sessions.
// Default false.
func (p *Provider) BlockPersistence(ctx context.Context) (bool, error) {
	return p.getBool(ctx, KeyBlockPersistence, false)
}

// AllowRegistration reports whether self-registration is open. Default true.
func (p *Provider) AllowRegistration(ctx context.Context) (bool, error) {
	return p.getBool(ctx, KeyAllowRegistration, true)
}

// ActivateMode returns the account activation mode. It never returns an
// empty value: absent or empty stored values fall back to [ActivateAuto].
func (p *Provider) ActivateMode(ctx context.Context) (string, error) {
	value, present, err := p.get(ctx, KeyActivateMode)
	if err != nil {
		return "", err
	}
	if !present || value == "" {
		return ActivateAuto, nil
	}
	switch value {
	case ActivateAuto, ActivateUser, ActivateAdmin:
		return value, nil
	}
	return ActivateAuto, nil
}

// LoginAttribute returns which user field is the login identifier:
// [LoginEmail], [LoginUsername], or [LoginBoth]. Default email.
func (p *Provider) LoginAttribute(ctx context.Context) (string, error) {
	value, present, err := p.get(ctx, KeyLoginAttribute)
	if err != nil {
		return "", err
	}
	if !present || value == "" {
		return LoginEmail, nil
	}
	switch value {
	case LoginEmail, LoginUsername, LoginBoth:
		return value, nil
	}
	return LoginEmail, nil
}
