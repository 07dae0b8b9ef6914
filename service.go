package userauth

import (
	"context"

	internalaudit "github.com/Anglius/userauth/internal/audit"
	"github.com/Anglius/userauth/internal/throttle"
	"github.com/Anglius/userauth/settings"
)

// Service is the shared, immutable authentication engine. It carries no
// per-request state; request-scoped work (and the resolved "current user")
// happens on a [Manager] obtained from [Service.Manager].
type Service struct {
	config   Config
	users    UserStore
	groups   GroupStore
	settings *settings.Provider
	throttle *throttle.Tracker
	sessions SessionEstablisher
	hasher   HashVerifier
	audit    *internalaudit.Dispatcher
	hashable map[string]struct{}
}

// Manager returns a request-scoped [Manager] bound to the caller's source
// address from ctx (see [WithClientIP]). Create one per inbound request;
// Managers must not be shared across concurrent requests.
func (s *Service) Manager(ctx context.Context) *Manager {
	return &Manager{
		service: s,
		ip:      clientIPFromContext(ctx),
	}
}

// Settings exposes the settings provider, primarily for admin mutation and
// cache invalidation.
func (s *Service) Settings() *settings.Provider {
	return s.settings
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (s *Service) AuditDropped() uint64 {
	if s == nil {
		return 0
	}
	return s.audit.Dropped()
}

// Close flushes and stops the audit dispatcher.
func (s *Service) Close() {
	if s == nil {
		return
	}
	if s.audit != nil {
		s.audit.Close()
	}
}

func (s *Service) isHashable(field string) bool {
	_, ok := s.hashable[field]
	return ok
}

func (s *Service) ready() bool {
	return s != nil && s.users != nil && s.hasher != nil && s.settings != nil
}
