package helpers

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// timingHash is compared against when no user matched, so unknown usernames
// cost the same as wrong passwords.
var timingHash, _ = bcrypt.GenerateFromPassword([]byte("staylo-timing-equalizer"), bcrypt.DefaultCost)

// HashPassword hashes the plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	if len(plain) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password. An
// empty hash never matches but still pays for a comparison.
func CompareHashAndPassword(hash string, plain string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(timingHash, []byte(plain))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
