package application

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for new hashes. Existing
// hashes keep the cost they were created with.
const PasswordCost = 10

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// PasswordHasher turns a plain password into a stored hash.
type PasswordHasher func(password string) (string, error)

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// HashPassword hashes password with bcrypt at PasswordCost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports ErrInvalidCredentials when password does not match
// hashedPassword.
func VerifyPassword(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return fmt.Errorf("verify password: %w", err)
}
