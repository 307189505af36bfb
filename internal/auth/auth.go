// Package auth generates candidate login credentials.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	// PasswordAlphabet is the character set of generated passwords.
	PasswordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%&*?"
	PasswordLength   = 10
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// GeneratePassword returns a random password of n characters drawn uniformly
// from PasswordAlphabet.
func GeneratePassword(n int) (string, error) {
	if n <= 0 {
		n = PasswordLength
	}
	limit := big.NewInt(int64(len(PasswordAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		out[i] = PasswordAlphabet[idx.Int64()]
	}
	return string(out), nil
}

// HashPassword returns the bcrypt hash stored in place of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword returns ErrInvalidCredentials when password does not match hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
