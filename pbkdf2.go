package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 over HMAC-SHA256. Iteration count trades login latency for brute
// force resistance; the salt is regenerated on every hash so equal passwords
// never share a digest.
const (
	pbkdf2Iterations = 10_000
	saltLength       = 16
	digestLength     = 32
)

// HashPassword derives a digest from the password under a fresh random salt.
// Both values come back base64 encoded, ready to store next to the user
// record. Plaintext is never persisted anywhere.
func HashPassword(password string) (hash, salt string, err error) {
	if password == "" {
		return "", "", ErrNoEmptyString
	}

	rawSalt := make([]byte, saltLength)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate password salt")
	}

	digest := pbkdf2.Key([]byte(password), rawSalt, pbkdf2Iterations, digestLength, sha256.New)

	return base64.StdEncoding.EncodeToString(digest),
		base64.StdEncoding.EncodeToString(rawSalt),
		nil
}

// ComparePasswordAndHash re-derives the digest with the stored salt and
// checks it against the stored hash in constant time. A mismatch returns
// ErrMismatchedHashAndPassword.
func ComparePasswordAndHash(password, storedHash, storedSalt string) error {
	rawSalt, err := base64.StdEncoding.DecodeString(storedSalt)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "stored salt is not valid base64")
	}

	rawHash, err := base64.StdEncoding.DecodeString(storedHash)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "stored hash is not valid base64")
	}

	digest := pbkdf2.Key([]byte(password), rawSalt, pbkdf2Iterations, digestLength, sha256.New)

	if subtle.ConstantTimeCompare(digest, rawHash) != 1 {
		return ErrMismatchedHashAndPassword
	}

	return nil
}
