// ABOUTME: Password hashing with bcrypt at a fixed cost
// ABOUTME: Verification never errors; any mismatch or malformed hash is simply false

package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for all stored passwords.
const PasswordCost = 10

// MinPasswordLength is the shortest password registration accepts.
const MinPasswordLength = 6

// HashPassword returns a salted bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches hash. Malformed hashes
// report false.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
