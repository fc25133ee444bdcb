package auth

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps users, roles and refresh tokens in process memory. It
// backs tests and local runs without a database. Returned records are copies.
type MemoryStore struct {
	mu          sync.RWMutex
	now         func() time.Time
	users       map[int64]*User
	emails      map[string]int64
	roles       map[string]*Role
	tokens      map[string]*RefreshToken
	lastUserID  int64
	lastRoleID  int64
	lastTokenID int64
}

type MemoryStoreOption func(*MemoryStore)

// WithSeedRoles replaces the default USER and ADMIN roles.
func WithSeedRoles(names ...string) MemoryStoreOption {
	return func(m *MemoryStore) {
		m.roles = make(map[string]*Role, len(names))
		m.lastRoleID = 0
		for _, n := range names {
			m.addRole(n)
		}
	}
}

func WithMemoryStoreClock(now func() time.Time) MemoryStoreOption {
	return func(m *MemoryStore) {
		m.now = now
	}
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	m := &MemoryStore{
		now:    time.Now,
		users:  make(map[int64]*User),
		emails: make(map[string]int64),
		roles:  make(map[string]*Role),
		tokens: make(map[string]*RefreshToken),
	}
	m.addRole(RoleUser)
	m.addRole(RoleAdmin)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryStore) addRole(name string) {
	m.lastRoleID++
	m.roles[name] = &Role{ID: m.lastRoleID, Name: name}
}

func cloneUser(u *User) *User {
	c := *u
	c.Roles = slices.Clone(u.Roles)
	return &c
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emails[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(m.users[id]), nil
}

func (m *MemoryStore) GetUserByID(_ context.Context, id int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (m *MemoryStore) CreateUser(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.emails[user.Email]; ok {
		return ErrEmailAlreadyExists
	}
	for _, r := range user.Roles {
		if _, ok := m.roles[r]; !ok {
			return ErrRoleNotFound
		}
	}
	m.lastUserID++
	now := m.now()
	user.ID = m.lastUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = cloneUser(user)
	m.emails[user.Email] = user.ID
	return nil
}

func (m *MemoryStore) UpdatePasswordHash(_ context.Context, userID int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = m.now()
	return nil
}

// SetUserEnabled toggles the enabled flag.
func (m *MemoryStore) SetUserEnabled(_ context.Context, userID int64, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Enabled = enabled
	u.UpdatedAt = m.now()
	return nil
}

// GrantRole adds a role to the user. Granting a held role is a no-op.
func (m *MemoryStore) GrantRole(_ context.Context, userID int64, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if _, ok := m.roles[role]; !ok {
		return ErrRoleNotFound
	}
	if !slices.Contains(u.Roles, role) {
		u.Roles = append(u.Roles, role)
		u.UpdatedAt = m.now()
	}
	return nil
}

func (m *MemoryStore) GetRoleByName(_ context.Context, name string) (*Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.roles[name]
	if !ok {
		return nil, ErrRoleNotFound
	}
	c := *r
	return &c, nil
}

func (m *MemoryStore) CreateRefreshToken(_ context.Context, token *RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[token.UserID]; !ok {
		return ErrUserNotFound
	}
	m.lastTokenID++
	token.ID = m.lastTokenID
	token.CreatedAt = m.now()
	c := *token
	m.tokens[token.Token] = &c
	return nil
}

func (m *MemoryStore) GetRefreshToken(_ context.Context, token string) (*RefreshToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tokens[token]
	if !ok {
		return nil, ErrRefreshTokenNotFound
	}
	c := *t
	return &c, nil
}

func (m *MemoryStore) RevokeRefreshToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[token]; ok {
		t.Revoked = true
	}
	return nil
}

func (m *MemoryStore) DeleteExpiredRefreshTokens(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, t := range m.tokens {
		if t.ExpiresAt.Before(before) {
			delete(m.tokens, k)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) DeleteRefreshTokensByUser(_ context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, k)
			n++
		}
	}
	return n, nil
}

// RefreshTokenCount returns the number of stored refresh tokens.
func (m *MemoryStore) RefreshTokenCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tokens)
}

// UserCount returns the number of stored users.
func (m *MemoryStore) UserCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

var _ Storage = (*MemoryStore)(nil)
