// Package password wraps bcrypt hashing for directory credentials.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor. 12 keeps interactive logins in the low
// hundreds of milliseconds while staying expensive for offline attacks.
// Changing it only affects newly hashed passwords.
const Cost = 12

var (
	// ErrMismatch means the password simply does not match the hash.
	ErrMismatch = errors.New("password does not match")
	// ErrMalformedHash means the stored hash could not be parsed at all.
	// This is a data problem, not a wrong password.
	ErrMalformedHash = errors.New("malformed password hash")
)

// Hash derives a salted bcrypt hash from the plaintext. The plaintext is
// never logged or stored.
func Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Verify compares the plaintext against a stored hash. bcrypt compares the
// derived digest in constant time, so mismatch position leaks nothing.
func Verify(plaintext, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}
