package auth

import (
	"time"

	"github.com/google/uuid"
)

// UserRole is the user's role as stored by the record store.
type UserRole = string

const (
	// RoleUser is the default role assigned on registration.
	RoleUser UserRole = "User"
	// RoleAdmin can manage other accounts.
	RoleAdmin UserRole = "Admin"
)

// Token lifetimes. The issued JWT is the sole session credential, there is
// no revocation, so its lifetime bounds the blast radius after issuance.
const (
	// TokenLifetime is how long an issued login token stays valid.
	TokenLifetime = 7 * 24 * time.Hour
	// ActivationTokenLifetime is how long an activation link stays usable.
	ActivationTokenLifetime = 24 * time.Hour
)

// User is the record owned by the remote store. The hash and salt fields are
// secret material and must never travel past this package; use Clean before
// embedding user data in a token or a response.
type User struct {
	ID           uuid.UUID `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password"`
	PasswordSalt string    `json:"salt"`
	Role         UserRole  `json:"role"`
	IsVerified   bool      `json:"isVerified"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Clean projects the record to its secret-free shape.
func (u *User) Clean() *CleanUser {
	return &CleanUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// CleanUser is the only user shaped data ever embedded in an issued token or
// returned to a caller.
type CleanUser struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Name is the display name stamped into token claims.
func (u *CleanUser) Name() string {
	return u.FirstName + " " + u.LastName
}

// CreateUserRecord is the payload for UserStore.CreateUser. Password and
// Salt carry the derived digest, never plaintext.
type CreateUserRecord struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Salt      string   `json:"salt"`
	Role      UserRole `json:"role"`
}

// CreateActivationToken is the payload for UserStore.CreateActivationToken.
type CreateActivationToken struct {
	Token          string    `json:"token"`
	ExpirationDate time.Time `json:"expirationDate"`
}

// UserPatch carries the mutable subset of a user record. Pointer fields are
// omitted when nil so a patch only touches what it names.
type UserPatch struct {
	IsVerified *bool `json:"isVerified,omitempty"`
}

// NewActivationToken returns a fresh opaque activation token.
func NewActivationToken() string {
	return uuid.NewString()
}
