package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

// Stable text codes surfaced next to error messages at the boundary.
const (
	TextCodeUserNotFound         = "USER_NOT_FOUND"
	TextCodeWrongPassword        = "WRONG_PASSWORD"
	TextCodeEmailNotVerified     = "EMAIL_NOT_VERIFIED"
	TextCodeUserAlreadyExists    = "USER_ALREADY_EXISTS"
	TextCodeUserNotCreated       = "USER_NOT_CREATED"
	TextCodeMailNotSent          = "VERIFICATION_MAIL_NOT_SENT"
	TextCodeWrongActivationToken = "WRONG_ACTIVATION_TOKEN"
	TextCodeAlreadyVerified      = "ALREADY_VERIFIED"
	TextCodeInvalidCreds         = "INVALID_CREDENTIALS"
	TextCodeEmptyPassword        = "EMPTY_PASSWORD"
	TextCodeUnknownError         = "UNKNOWN_ERROR"
	TextCodeTokenExpired         = "TOKEN_EXPIRED"
	TextCodeTokenMalformed       = "TOKEN_MALFORMED"
)

// ErrTokenExpired is returned when a presented token is past its expiry.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned when a presented token cannot be parsed or
// fails signature verification.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserNotFound is returned when login references an unknown email.
var ErrUserNotFound = goerrors.New("User doesn't exist!", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrWrongPassword is returned when the presented password does not match
// the stored digest.
var ErrWrongPassword = goerrors.New("Wrong password.", goerrors.CategoryBadInput).
	WithTextCode(TextCodeWrongPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrEmailNotVerified blocks logins for accounts still pending verification.
var ErrEmailNotVerified = goerrors.New("Please verify your email before logging in.", goerrors.CategoryAuthz).
	WithTextCode(TextCodeEmailNotVerified).
	WithCode(goerrors.CodeForbidden)

// ErrUserAlreadyExists is returned when registering an email that already
// owns a record.
var ErrUserAlreadyExists = goerrors.New("A user with this email already exists.", goerrors.CategoryConflict).
	WithTextCode(TextCodeUserAlreadyExists).
	WithCode(goerrors.CodeConflict)

// ErrUserNotCreated is returned when the record store rejects the new user.
var ErrUserNotCreated = goerrors.New("User couldn't be created.", goerrors.CategoryOperation).
	WithTextCode(TextCodeUserNotCreated)

// ErrWrongActivationToken is returned when an activation token resolves to
// no user record.
var ErrWrongActivationToken = goerrors.New(
	"Wrong activation token. Please check that you have entered the correct url from the email.",
	goerrors.CategoryNotFound).
	WithTextCode(TextCodeWrongActivationToken).
	WithCode(goerrors.CodeNotFound)

// ErrAlreadyVerified rejects re-verification; the activation token is spent
// once the record flips to verified.
var ErrAlreadyVerified = goerrors.New("This account is already verified.", goerrors.CategoryBadInput).
	WithTextCode(TextCodeAlreadyVerified).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the password module's mismatch result.
// Login translates it into ErrWrongPassword before it reaches a caller.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrNoEmptyString rejects empty passwords before any key derivation runs.
var ErrNoEmptyString = goerrors.New("value cannot be an empty string", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrUnknown covers failures outside the closed taxonomy.
var ErrUnknown = goerrors.New("An unknown error occurred, contact the technical support!", goerrors.CategoryInternal).
	WithTextCode(TextCodeUnknownError)

// mailSendError wraps a mail collaborator failure. The cause stays attached
// for server side logging and never crosses the boundary.
func mailSendError(cause error) *goerrors.Error {
	return goerrors.Wrap(cause, goerrors.CategoryOperation, "Failed to send verification email.").
		WithTextCode(TextCodeMailNotSent)
}
