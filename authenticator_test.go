package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	auth "github.com/StefanOctavian/fridge-app-auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func notFoundErr() error {
	return goerrors.New("record not found", goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound)
}

func storedUser(t *testing.T, password string, verified bool) *auth.User {
	t.Helper()

	hash, salt, err := auth.HashPassword(password)
	require.NoError(t, err)

	return &auth.User{
		ID:           uuid.New(),
		FirstName:    "Pepe",
		LastName:     "Rone",
		Email:        "pepe.rone@example.com",
		PasswordHash: hash,
		PasswordSalt: salt,
		Role:         auth.RoleUser,
		IsVerified:   verified,
		CreatedAt:    time.Now().Add(-time.Hour),
		UpdatedAt:    time.Now(),
	}
}

func newTestAuther(store *MockUserStore, mailer *MockMailer) *auth.Auther {
	return auth.NewAuthenticator(store, mailer, testConfig{
		signingKey: testSigningKey,
		issuer:     "fridge-app-auth",
		audience:   []string{"fridge-app"},
		mailOrigin: "fridgeapp.example.com",
	})
}

func TestAutherLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email", func(t *testing.T) {
		store := new(MockUserStore)
		auther := newTestAuther(store, new(MockMailer))

		store.On("FindUserByEmail", ctx, "ghost@example.com").Return(nil, notFoundErr()).Once()

		result, err := auther.Login(ctx, "ghost@example.com", "whatever")

		assert.Nil(t, result)
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
		store.AssertExpectations(t)
	})

	t.Run("unverified user is forbidden regardless of password", func(t *testing.T) {
		store := new(MockUserStore)
		auther := newTestAuther(store, new(MockMailer))
		user := storedUser(t, "correct_password", false)

		store.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Twice()

		_, err := auther.Login(ctx, user.Email, "correct_password")
		assert.ErrorIs(t, err, auth.ErrEmailNotVerified)

		_, err = auther.Login(ctx, user.Email, "wrong_password")
		assert.ErrorIs(t, err, auth.ErrEmailNotVerified)

		store.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		store := new(MockUserStore)
		auther := newTestAuther(store, new(MockMailer))
		user := storedUser(t, "correct_password", true)

		store.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()

		result, err := auther.Login(ctx, user.Email, "wrong_password")

		assert.Nil(t, result)
		assert.ErrorIs(t, err, auth.ErrWrongPassword)
		store.AssertExpectations(t)
	})

	t.Run("successful login issues a seven day token", func(t *testing.T) {
		store := new(MockUserStore)
		auther := newTestAuther(store, new(MockMailer))
		user := storedUser(t, "correct_password", true)

		store.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()

		result, err := auther.Login(ctx, user.Email, "correct_password")
		require.NoError(t, err)
		require.NotNil(t, result)

		// the result only ever carries the clean projection
		assert.Equal(t, user.ID, result.User.ID)
		assert.Equal(t, user.Email, result.User.Email)
		assert.Equal(t, user.Role, result.User.Role)

		claims, err := auther.TokenService().Validate(result.Token)
		require.NoError(t, err)

		assert.Equal(t, user.ID.String(), claims.Subject())
		assert.Equal(t, "Pepe Rone", claims.Name())
		assert.Equal(t, user.Email, claims.Email())
		assert.Equal(t, auth.RoleUser, claims.Role())
		assert.Equal(t, auth.TokenLifetime, claims.Expires().Sub(claims.IssuedAt()))

		store.AssertExpectations(t)
	})

	t.Run("store errors propagate unchanged", func(t *testing.T) {
		store := new(MockUserStore)
		auther := newTestAuther(store, new(MockMailer))
		boom := goerrors.New("store exploded", goerrors.CategoryOperation)

		store.On("FindUserByEmail", ctx, "pepe.rone@example.com").Return(nil, boom).Once()

		_, err := auther.Login(ctx, "pepe.rone@example.com", "whatever")

		assert.ErrorIs(t, err, boom)
		store.AssertExpectations(t)
	})
}

func registerMessage() auth.RegisterUserMessage {
	return auth.RegisterUserMessage{
		FirstName: "Pepe",
		LastName:  "Rone",
		Email:     "pepe.rone@example.com",
		Password:  "correct_password",
	}
}

func TestAutherRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate email performs no mutation", func(t *testing.T) {
		store := new(MockUserStore)
		auther := newTestAuther(store, new(MockMailer))
		existing := storedUser(t, "other_password", true)

		store.On("FindUserByEmail", ctx, existing.Email).Return(existing, nil).Once()

		err := auther.Register(ctx, registerMessage())

		assert.ErrorIs(t, err, auth.ErrUserAlreadyExists)
		store.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		store.AssertExpectations(t)
	})

	t.Run("store creation failure stops the flow", func(t *testing.T) {
		store := new(MockUserStore)
		mailer := new(MockMailer)
		auther := newTestAuther(store, mailer)

		store.On("FindUserByEmail", ctx, "pepe.rone@example.com").Return(nil, notFoundErr()).Once()
		store.On("CreateUser", ctx, mock.Anything).Return(nil, goerrors.New("insert failed", goerrors.CategoryOperation)).Once()

		err := auther.Register(ctx, registerMessage())

		var richErr *goerrors.Error
		require.ErrorAs(t, err, &richErr)
		assert.Equal(t, auth.TextCodeUserNotCreated, richErr.TextCode)
		assert.Equal(t, goerrors.CategoryOperation, richErr.Category)

		store.AssertNotCalled(t, "CreateActivationToken", mock.Anything, mock.Anything, mock.Anything)
		mailer.AssertNotCalled(t, "SendMail", mock.Anything, mock.Anything)
		store.AssertExpectations(t)
	})

	t.Run("success creates one pending user, one token, one mail", func(t *testing.T) {
		store := new(MockUserStore)
		mailer := new(MockMailer)
		auther := newTestAuther(store, mailer)

		msg := registerMessage()
		created := storedUser(t, msg.Password, false)

		var capturedToken string

		store.On("FindUserByEmail", ctx, msg.Email).Return(nil, notFoundErr()).Once()
		store.On("CreateUser", ctx, mock.MatchedBy(func(r *auth.CreateUserRecord) bool {
			return r.Email == msg.Email &&
				r.Role == auth.RoleUser &&
				r.Password != "" &&
				r.Password != msg.Password && // never the plaintext
				r.Salt != ""
		})).Return(created, nil).Once()
		store.On("CreateActivationToken", ctx, created.ID.String(), mock.MatchedBy(func(tok auth.CreateActivationToken) bool {
			capturedToken = tok.Token
			remaining := time.Until(tok.ExpirationDate)
			return tok.Token != "" && remaining > 23*time.Hour && remaining <= 24*time.Hour
		})).Return(nil).Once()
		mailer.On("SendMail", ctx, mock.MatchedBy(func(m auth.MailMessage) bool {
			return m.To == msg.Email &&
				m.Subject == "Welcome to FridgeApp!" &&
				m.SenderName == "FridgeApp Team" &&
				strings.Contains(m.HTMLBody, "Pepe")
		})).Return(nil).Once()

		err := auther.Register(ctx, msg)
		require.NoError(t, err)

		// the mailed link must carry the activation token that was stored
		require.NotEmpty(t, capturedToken)
		sent := mailer.Calls[0].Arguments.Get(1).(auth.MailMessage)
		assert.Contains(t, sent.HTMLBody, capturedToken)

		store.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
		store.AssertExpectations(t)
		mailer.AssertExpectations(t)
	})

	t.Run("mail failure rolls back the user record", func(t *testing.T) {
		store := new(MockUserStore)
		mailer := new(MockMailer)
		auther := newTestAuther(store, mailer)

		msg := registerMessage()
		created := storedUser(t, msg.Password, false)

		store.On("FindUserByEmail", ctx, msg.Email).Return(nil, notFoundErr()).Once()
		store.On("CreateUser", ctx, mock.Anything).Return(created, nil).Once()
		store.On("CreateActivationToken", ctx, created.ID.String(), mock.Anything).Return(nil).Once()
		mailer.On("SendMail", ctx, mock.Anything).Return(goerrors.New("smtp refused", goerrors.CategoryOperation)).Once()
		store.On("DeleteUser", ctx, created.ID.String()).Return(nil).Once()

		err := auther.Register(ctx, msg)

		var richErr *goerrors.Error
		require.ErrorAs(t, err, &richErr)
		assert.Equal(t, auth.TextCodeMailNotSent, richErr.TextCode)
		assert.Equal(t, goerrors.CategoryOperation, richErr.Category)

		store.AssertExpectations(t)
		mailer.AssertExpectations(t)
	})

	t.Run("rollback delete failure supersedes the mail error", func(t *testing.T) {
		store := new(MockUserStore)
		mailer := new(MockMailer)
		auther := newTestAuther(store, mailer)

		msg := registerMessage()
		created := storedUser(t, msg.Password, false)

		store.On("FindUserByEmail", ctx, msg.Email).Return(nil, notFoundErr()).Once()
		store.On("CreateUser", ctx, mock.Anything).Return(created, nil).Once()
		store.On("CreateActivationToken", ctx, created.ID.String(), mock.Anything).Return(nil).Once()
		mailer.On("SendMail", ctx, mock.Anything).Return(goerrors.New("smtp refused", goerrors.CategoryOperation)).Once()
		store.On("DeleteUser", ctx, created.ID.String()).Return(goerrors.New("delete failed", goerrors.CategoryOperation)).Once()

		err := auther.Register(ctx, msg)

		var richErr *goerrors.Error
		require.ErrorAs(t, err, &richErr)
		assert.Equal(t, goerrors.CategoryInternal, richErr.Category)
		assert.NotEqual(t, auth.TextCodeMailNotSent, richErr.TextCode)

		store.AssertExpectations(t)
	})

	t.Run("activation token failure propagates without compensation", func(t *testing.T) {
		store := new(MockUserStore)
		mailer := new(MockMailer)
		auther := newTestAuther(store, mailer)

		msg := registerMessage()
		created := storedUser(t, msg.Password, false)
		boom := goerrors.New("token insert failed", goerrors.CategoryOperation)

		store.On("FindUserByEmail", ctx, msg.Email).Return(nil, notFoundErr()).Once()
		store.On("CreateUser", ctx, mock.Anything).Return(created, nil).Once()
		store.On("CreateActivationToken", ctx, created.ID.String(), mock.Anything).Return(boom).Once()

		err := auther.Register(ctx, msg)

		assert.ErrorIs(t, err, boom)
		mailer.AssertNotCalled(t, "SendMail", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
		store.AssertExpectations(t)
	})

	t.Run("empty password rejected before any store call", func(t *testing.T) {
		store := new(MockUserStore)
		auther := newTestAuther(store, new(MockMailer))

		msg := registerMessage()
		msg.Password = ""

		store.On("FindUserByEmail", ctx, msg.Email).Return(nil, notFoundErr()).Once()

		err := auther.Register(ctx, msg)

		assert.ErrorIs(t, err, auth.ErrNoEmptyString)
		store.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})
}

func TestAutherVerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown token", func(t *testing.T) {
		store := new(MockUserStore)
		auther := newTestAuther(store, new(MockMailer))

		store.On("FindUserByActivationToken", ctx, "bogus").Return(nil, notFoundErr()).Once()

		err := auther.VerifyEmail(ctx, "bogus")

		assert.ErrorIs(t, err, auth.ErrWrongActivationToken)
		store.AssertExpectations(t)
	})

	t.Run("already verified is rejected, record untouched", func(t *testing.T) {
		store := new(MockUserStore)
		auther := newTestAuther(store, new(MockMailer))
		user := storedUser(t, "correct_password", true)

		store.On("FindUserByActivationToken", ctx, "spent-token").Return(user, nil).Once()

		err := auther.VerifyEmail(ctx, "spent-token")

		assert.ErrorIs(t, err, auth.ErrAlreadyVerified)
		store.AssertNotCalled(t, "PatchUser", mock.Anything, mock.Anything, mock.Anything)
		store.AssertExpectations(t)
	})

	t.Run("pending token flips the record", func(t *testing.T) {
		store := new(MockUserStore)
		auther := newTestAuther(store, new(MockMailer))
		user := storedUser(t, "correct_password", false)

		store.On("FindUserByActivationToken", ctx, "fresh-token").Return(user, nil).Once()
		store.On("PatchUser", ctx, user.ID.String(), mock.MatchedBy(func(p auth.UserPatch) bool {
			return p.IsVerified != nil && *p.IsVerified
		})).Return(nil).Once()

		err := auther.VerifyEmail(ctx, "fresh-token")

		assert.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("second verification attempt fails", func(t *testing.T) {
		store := new(MockUserStore)
		auther := newTestAuther(store, new(MockMailer))
		user := storedUser(t, "correct_password", false)

		store.On("FindUserByActivationToken", ctx, "fresh-token").Return(user, nil).Once()
		store.On("PatchUser", ctx, user.ID.String(), mock.Anything).Return(nil).Once()

		require.NoError(t, auther.VerifyEmail(ctx, "fresh-token"))

		// the store has flipped the record by now
		verified := *user
		verified.IsVerified = true
		store.On("FindUserByActivationToken", ctx, "fresh-token").Return(&verified, nil).Once()

		err := auther.VerifyEmail(ctx, "fresh-token")
		assert.ErrorIs(t, err, auth.ErrAlreadyVerified)

		store.AssertExpectations(t)
	})
}
