package userauth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Anglius/userauth/settings"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

// memoryUserStore implements UserStore by scanning with Query.Matches.
type memoryUserStore struct {
	mu    sync.Mutex
	users map[string]*User

	findCalls   int
	createCalls int
	saveCalls   int

	lastSaveOpts SaveOptions
	createErr    error
	saveErr      error
}

func newMemoryUserStore(users ...*User) *memoryUserStore {
	s := &memoryUserStore{users: map[string]*User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memoryUserStore) FindOne(ctx context.Context, q Query) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	for _, u := range s.users {
		if q.Matches(u) {
			copied := *u
			copied.Groups = append([]string(nil), u.Groups...)
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memoryUserStore) Create(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.createErr != nil {
		return s.createErr
	}
	if u.ID == "" {
		return fmt.Errorf("create without id")
	}
	copied := *u
	s.users[u.ID] = &copied
	return nil
}

func (s *memoryUserStore) Save(ctx context.Context, u *User, opts SaveOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	s.lastSaveOpts = opts
	if s.saveErr != nil {
		return s.saveErr
	}
	copied := *u
	s.users[u.ID] = &copied
	return nil
}

func (s *memoryUserStore) add(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *memoryUserStore) get(id string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

type staticGroupStore struct {
	guest *Group
	err   error
}

func (g *staticGroupStore) GuestGroup(ctx context.Context) (*Group, error) {
	return g.guest, g.err
}

// recordingSessions implements SessionEstablisher and records login calls.
type recordingSessions struct {
	mu     sync.Mutex
	logins []sessionLogin
	err    error
}

type sessionLogin struct {
	userID   string
	email    string
	remember bool
}

func (r *recordingSessions) Login(ctx context.Context, userID, email string, remember bool) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.logins = append(r.logins, sessionLogin{userID: userID, email: email, remember: remember})
	return fmt.Sprintf("token-%d", len(r.logins)), nil
}

func (r *recordingSessions) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.logins)
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.Throttle.MaxAttempts = 3
	cfg.Throttle.AttemptWindow = time.Minute
	cfg.Throttle.LockoutWindow = time.Minute
	cfg.Session.SigningKey = []byte("test-signing-key")
	return cfg
}

type testEnv struct {
	service  *Service
	users    *memoryUserStore
	sessions *recordingSessions
	mr       *miniredis.Miniredis
}

func newTestService(t *testing.T, cfg Config, users *memoryUserStore) *testEnv {
	t.Helper()

	mr, rdb := newTestRedis(t)
	t.Cleanup(mr.Close)

	sessions := &recordingSessions{}
	svc, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserStore(users).
		WithGroupStore(&staticGroupStore{guest: &Group{ID: "g1", Code: "guest", Name: "Guest"}}).
		WithSessions(sessions).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(svc.Close)

	return &testEnv{service: svc, users: users, sessions: sessions, mr: mr}
}

func (e *testEnv) manager(ip string) *Manager {
	return e.service.Manager(WithClientIP(context.Background(), ip))
}

func (e *testEnv) setSetting(t *testing.T, key, value string) {
	t.Helper()
	if err := e.service.Settings().Set(context.Background(), key, value); err != nil {
		t.Fatalf("settings.Set(%s) failed: %v", key, err)
	}
}

func hashFor(t *testing.T, svc *Service, plain string) string {
	t.Helper()
	h, err := svc.hasher.Hash(plain)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	return h
}

func activatedUser(t *testing.T, svc *Service, id, email, username, plain string) *User {
	t.Helper()
	now := time.Now().UTC()
	return &User{
		ID:          id,
		Email:       email,
		Username:    username,
		Password:    hashFor(t, svc, plain),
		IsActivated: true,
		ActivatedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// settingsKeys re-exported for readability in tests.
const (
	keyUseThrottle       = settings.KeyUseThrottle
	keyRequireActivation = settings.KeyRequireActivation
	keyActivateMode      = settings.KeyActivateMode
	keyLoginAttribute    = settings.KeyLoginAttribute
	keyAllowRegistration = settings.KeyAllowRegistration
)
