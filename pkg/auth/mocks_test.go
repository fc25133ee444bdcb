package auth

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockUserStorage is a mock implementation of UserStorage.
type MockUserStorage struct {
	mock.Mock
}

func (m *MockUserStorage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserStorage) GetUserByID(ctx context.Context, id int64) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserStorage) CreateUser(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStorage) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	args := m.Called(ctx, userID, hash)
	return args.Error(0)
}

// MockRefreshTokenStorage is a mock implementation of RefreshTokenStorage.
type MockRefreshTokenStorage struct {
	mock.Mock
}

func (m *MockRefreshTokenStorage) CreateRefreshToken(ctx context.Context, token *RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenStorage) GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenStorage) RevokeRefreshToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenStorage) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRefreshTokenStorage) DeleteRefreshTokensByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockProviderAdapter is a mock implementation of ProviderAdapter.
type MockProviderAdapter struct {
	mock.Mock
}

func (m *MockProviderAdapter) Provider() Provider {
	args := m.Called()
	return args.Get(0).(Provider)
}

func (m *MockProviderAdapter) CheckConfig() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockProviderAdapter) DefaultRedirectURI() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockProviderAdapter) AuthCodeURL(state, redirectURI string) string {
	args := m.Called(state, redirectURI)
	return args.String(0)
}

func (m *MockProviderAdapter) ExchangeCode(ctx context.Context, code, redirectURI string) (string, error) {
	args := m.Called(ctx, code, redirectURI)
	return args.String(0), args.Error(1)
}

func (m *MockProviderAdapter) FetchProfile(ctx context.Context, accessToken string) (UserInfo, error) {
	args := m.Called(ctx, accessToken)
	return args.Get(0).(UserInfo), args.Error(1)
}

// MockLocker is a mock implementation of Locker.
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLocker) Unlock(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

var (
	_ UserStorage         = (*MockUserStorage)(nil)
	_ RefreshTokenStorage = (*MockRefreshTokenStorage)(nil)
	_ ProviderAdapter     = (*MockProviderAdapter)(nil)
	_ Locker              = (*MockLocker)(nil)
)
