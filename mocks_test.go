package auth_test

import (
	"context"
	"time"

	auth "github.com/StefanOctavian/fridge-app-auth"
	"github.com/stretchr/testify/mock"
)

// MockUserStore implements auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) CreateUser(ctx context.Context, record *auth.CreateUserRecord) (*auth.User, error) {
	args := m.Called(ctx, record)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) CreateActivationToken(ctx context.Context, userID string, token auth.CreateActivationToken) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *MockUserStore) FindUserByActivationToken(ctx context.Context, token string) (*auth.User, error) {
	args := m.Called(ctx, token)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) PatchUser(ctx context.Context, userID string, patch auth.UserPatch) error {
	args := m.Called(ctx, userID, patch)
	return args.Error(0)
}

func (m *MockUserStore) DeleteUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockMailer implements auth.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendMail(ctx context.Context, msg auth.MailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockTokenService implements auth.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Generate(user *auth.CleanUser) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) GenerateAt(user *auth.CleanUser, issuedAt time.Time, ttl time.Duration) (string, error) {
	args := m.Called(user, issuedAt, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(tokenString string) (auth.AuthClaims, error) {
	args := m.Called(tokenString)
	if c := args.Get(0); c != nil {
		return c.(auth.AuthClaims), args.Error(1)
	}
	return nil, args.Error(1)
}

// testConfig implements auth.Config
type testConfig struct {
	signingKey      string
	tokenExpiration int
	issuer          string
	audience        []string
	userStoreURL    string
	mailOrigin      string
}

func (c testConfig) GetSigningKey() string   { return c.signingKey }
func (c testConfig) GetTokenExpiration() int { return c.tokenExpiration }
func (c testConfig) GetIssuer() string       { return c.issuer }
func (c testConfig) GetAudience() []string   { return c.audience }
func (c testConfig) GetUserStoreURL() string { return c.userStoreURL }
func (c testConfig) GetMailOrigin() string   { return c.mailOrigin }
