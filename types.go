package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Authenticator holds the credential lifecycle operations.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, msg RegisterUserMessage) error
	VerifyEmail(ctx context.Context, token string) error
}

// TokenService issues and validates the signed session credential.
type TokenService interface {
	Generate(user *CleanUser) (string, error)
	GenerateAt(user *CleanUser, issuedAt time.Time, ttl time.Duration) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// UserStore is the remote user record store. Implementations report a
// missing record as a CategoryNotFound error so callers can discriminate
// with goerrors.IsNotFound; any other failure is re-raised with the remote
// status preserved.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, record *CreateUserRecord) (*User, error)
	CreateActivationToken(ctx context.Context, userID string, token CreateActivationToken) error
	FindUserByActivationToken(ctx context.Context, token string) (*User, error)
	PatchUser(ctx context.Context, userID string, patch UserPatch) error
	DeleteUser(ctx context.Context, userID string) error
}

// MailMessage is a rendered mail ready for dispatch.
type MailMessage struct {
	To         string
	Subject    string
	HTMLBody   string
	SenderName string
}

// Mailer delivers a mail synchronously; any failure is treated uniformly by
// the orchestrator.
type Mailer interface {
	SendMail(ctx context.Context, msg MailMessage) error
}

// Config holds auth options. Implementations are immutable after startup and
// safe to share across requests.
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetUserStoreURL() string
	GetMailOrigin() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
