package userauth

import (
	"errors"

	internalaudit "github.com/Anglius/userauth/internal/audit"
	"github.com/Anglius/userauth/internal/throttle"
	"github.com/Anglius/userauth/password"
	"github.com/Anglius/userauth/session"
	"github.com/Anglius/userauth/settings"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a [Service]. Configure it during initialization, call
// Build once, and discard it; a Builder is not safe for concurrent use.
type Builder struct {
	config Config
	redis  *redis.Client

	users         UserStore
	groups        GroupStore
	settingsStore settings.Store
	sessions      SessionEstablisher
	hasher        HashVerifier
	auditSink     AuditSink

	built bool
}

// New returns a Builder preloaded with [defaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration. The config is cloned, so
// later mutation of cfg by the caller has no effect.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the redis client backing throttling, settings, and the
// default session store.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the user persistence backend. Required.
func (b *Builder) WithUserStore(us UserStore) *Builder {
	b.users = us
	return b
}

// WithGroupStore sets the group lookup backend. Optional; without it guest
// registration proceeds but no guest group membership is recorded.
func (b *Builder) WithGroupStore(gs GroupStore) *Builder {
	b.groups = gs
	return b
}

// WithSettingsStore overrides the settings backend. Without it, settings
// live in a redis hash under Config.SettingsKey.
func (b *Builder) WithSettingsStore(st settings.Store) *Builder {
	b.settingsStore = st
	return b
}

// WithSessions overrides the session establisher. Without it, Build wires a
// JWT-backed [session.Manager] on redis, which requires
// Config.Session.SigningKey to be set.
func (b *Builder) WithSessions(se SessionEstablisher) *Builder {
	b.sessions = se
	return b
}

// WithHashVerifier overrides the password hasher. The default is argon2id
// parameterized by Config.Password.
func (b *Builder) WithHashVerifier(h HashVerifier) *Builder {
	b.hasher = h
	return b
}

// WithAuditSink sets the audit destination and enables audit dispatch.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// Build validates the configuration, wires defaults for any component not
// explicitly provided, and returns the assembled Service.
func (b *Builder) Build() (*Service, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.users == nil {
		return nil, errors.New("user store required")
	}

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	hasher := b.hasher
	if hasher == nil {
		a2, err := password.NewArgon2(password.Config{
			Memory:      cfg.Password.Memory,
			Time:        cfg.Password.Time,
			Parallelism: cfg.Password.Parallelism,
			SaltLength:  cfg.Password.SaltLength,
			KeyLength:   cfg.Password.KeyLength,
		})
		if err != nil {
			return nil, err
		}
		hasher = a2
	}

	settingsStore := b.settingsStore
	if settingsStore == nil {
		settingsStore = settings.NewRedisStore(b.redis, cfg.SettingsKey)
	}
	provider := settings.NewProvider(settingsStore)

	sessions := b.sessions
	if sessions == nil {
		if len(cfg.Session.SigningKey) == 0 {
			return nil, errors.New("session signing key required when no session establisher is provided")
		}
		mgr, err := session.NewManager(
			session.NewStore(b.redis, cfg.Session.KeyPrefix),
			session.Config{
				Lifetime:         cfg.Session.Lifetime,
				RememberLifetime: cfg.Session.RememberLifetime,
				SigningKey:       cfg.Session.SigningKey,
				Issuer:           cfg.Session.Issuer,
			},
		)
		if err != nil {
			return nil, err
		}
		mgr.SingleSession = provider.BlockPersistence
		sessions = mgr
	}

	var sink internalaudit.Sink = internalaudit.NoOpSink{}
	if b.auditSink != nil {
		sink = b.auditSink
	}
	dispatcher := internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, sink)

	hashable := make(map[string]struct{}, len(cfg.HashableFields))
	for _, f := range cfg.HashableFields {
		hashable[f] = struct{}{}
	}

	svc := &Service{
		config:   cfg,
		users:    b.users,
		groups:   b.groups,
		settings: provider,
		throttle: throttle.New(b.redis, throttle.Config{
			MaxAttempts:   cfg.Throttle.MaxAttempts,
			AttemptWindow: cfg.Throttle.AttemptWindow,
			LockoutWindow: cfg.Throttle.LockoutWindow,
			KeyPrefix:     cfg.Throttle.KeyPrefix,
		}),
		sessions: sessions,
		hasher:   hasher,
		audit:    dispatcher,
		hashable: hashable,
	}

	b.built = true
	return svc, nil
}
