// Package auth resolves usernames and passwords to identities and keeps
// the session table of the web UI.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password storage modes.
const (
	// ModePlain stores passwords verbatim, compatible with existing
	// account documents.
	ModePlain = "plain"
	// ModeBcrypt stores bcrypt hashes.
	ModeBcrypt = "bcrypt"
)

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateSessionToken returns a random 256-bit hex token.
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// PasswordPolicy converts passwords to their stored form and checks them.
type PasswordPolicy interface {
	Seal(password string) (string, error)
	Match(password, stored string) bool
}

// NewPasswordPolicy returns the policy for mode.
func NewPasswordPolicy(mode string) (PasswordPolicy, error) {
	switch mode {
	case ModePlain, "":
		return PlainPasswords{}, nil
	case ModeBcrypt:
		return BcryptPasswords{}, nil
	}
	return nil, fmt.Errorf("unknown password mode %q", mode)
}

// PlainPasswords stores passwords as-is and compares them exactly.
type PlainPasswords struct{}

func (PlainPasswords) Seal(password string) (string, error) { return password, nil }

func (PlainPasswords) Match(password, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}

// BcryptPasswords stores bcrypt hashes.
type BcryptPasswords struct{}

func (BcryptPasswords) Seal(password string) (string, error) { return HashPassword(password) }

func (BcryptPasswords) Match(password, stored string) bool { return CheckPassword(password, stored) }
