package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// LoginResult is what a successful login returns to the boundary.
type LoginResult struct {
	Token string     `json:"token"`
	User  *CleanUser `json:"user"`
}

// RegisterUserMessage carries a registration request.
type RegisterUserMessage struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Auther orchestrates the credential lifecycle against the remote user
// store. It holds no cache and no lock; the store is the sole arbiter of
// concurrent mutation ordering.
type Auther struct {
	store        UserStore
	mailer       Mailer
	templates    *MailTemplates
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store UserStore, mailer Mailer, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		store:        store,
		mailer:       mailer,
		templates:    NewMailTemplates(opts.GetMailOrigin()),
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// WithTokenService overrides the token issuer.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	s.tokenService = ts
	return s
}

// WithMailTemplates overrides the mail template set.
func (s *Auther) WithMailTemplates(t *MailTemplates) *Auther {
	s.templates = t
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login authenticates a verified user and issues a session token. It never
// mutates state on any path.
func (s *Auther) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("Login user lookup error", "error", err)
		return nil, err
	}

	// Pending accounts are rejected before the password check so the
	// outcome does not depend on credential correctness.
	if !user.IsVerified {
		return nil, ErrEmailNotVerified
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash, user.PasswordSalt); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeInvalidCreds {
			return nil, ErrWrongPassword
		}
		s.logger.Error("Login password verification error", "error", err)
		return nil, err
	}

	clean := user.Clean()

	token, err := s.tokenService.Generate(clean)
	if err != nil {
		s.logger.Error("Login token generation error", "error", err)
		return nil, err
	}

	return &LoginResult{Token: token, User: clean}, nil
}

// Register creates a pending user record, attaches a one day activation
// token, and mails the activation link. The step ordering is load bearing:
// existence check, secret derivation, record creation, token creation,
// notification. A mail failure rolls back the record creation so no pending
// account exists without a reachable inbox.
func (s *Auther) Register(ctx context.Context, msg RegisterUserMessage) error {
	existing, err := s.store.FindUserByEmail(ctx, msg.Email)
	if err != nil && !goerrors.IsNotFound(err) {
		s.logger.Error("Register user lookup error", "error", err)
		return err
	}
	if existing != nil {
		return ErrUserAlreadyExists
	}

	hash, salt, err := HashPassword(msg.Password)
	if err != nil {
		return err
	}

	user, err := s.store.CreateUser(ctx, &CreateUserRecord{
		FirstName: msg.FirstName,
		LastName:  msg.LastName,
		Email:     msg.Email,
		Password:  hash,
		Salt:      salt,
		Role:      RoleUser,
	})
	if err != nil {
		s.logger.Error("Register user creation error", "error", err)
		return goerrors.Wrap(err, ErrUserNotCreated.Category, ErrUserNotCreated.Message).
			WithTextCode(ErrUserNotCreated.TextCode)
	}

	activation := CreateActivationToken{
		Token:          NewActivationToken(),
		ExpirationDate: time.Now().Add(ActivationTokenLifetime),
	}

	// No compensation here: a failure leaves the pending record in place
	// and propagates the store error unchanged.
	if err := s.store.CreateActivationToken(ctx, user.ID.String(), activation); err != nil {
		s.logger.Error("Register activation token creation error", "error", err)
		return err
	}

	if err := s.sendVerificationMail(ctx, msg, activation.Token); err != nil {
		return s.rollbackRegistration(ctx, user, err)
	}

	return nil
}

func (s *Auther) sendVerificationMail(ctx context.Context, msg RegisterUserMessage, token string) error {
	body, err := s.templates.VerificationMail(msg.FirstName, token)
	if err != nil {
		return err
	}

	return s.mailer.SendMail(ctx, MailMessage{
		To:         msg.Email,
		Subject:    "Welcome to FridgeApp!",
		HTMLBody:   body,
		SenderName: "FridgeApp Team",
	})
}

// rollbackRegistration undoes the record creation after a notification
// failure. The activation token record has no safe inverse and is left
// behind; it resolves through the deleted user and can never verify anyone.
func (s *Auther) rollbackRegistration(ctx context.Context, user *User, cause error) error {
	s.logger.Error("Register verification mail error, rolling back user", "user_id", user.ID, "error", cause)

	if err := s.store.DeleteUser(ctx, user.ID.String()); err != nil {
		s.logger.Error("Register rollback delete failed", "user_id", user.ID, "error", err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to roll back user creation").
			WithMetadata(map[string]any{"mail_error": cause.Error()})
	}

	return mailSendError(cause)
}

// VerifyEmail consumes an activation token by flipping the owning record to
// verified. The transition is terminal; re-presenting the token is an error.
func (s *Auther) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.store.FindUserByActivationToken(ctx, token)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrWrongActivationToken
		}
		s.logger.Error("VerifyEmail token lookup error", "error", err)
		return err
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	verified := true
	if err := s.store.PatchUser(ctx, user.ID.String(), UserPatch{IsVerified: &verified}); err != nil {
		s.logger.Error("VerifyEmail patch error", "user_id", user.ID, "error", err)
		return err
	}

	return nil
}
