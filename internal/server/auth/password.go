package auth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/blogapi/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for stored password hashes.
const PasswordCost = 10

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// HashPassword returns a bcrypt hash. Passwords longer than MaxPasswordBytes
// fail with an error matching both common.ErrValidation and
// common.ErrPasswordTooLong.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %w: at most %d bytes", common.ErrValidation, common.ErrPasswordTooLong, MaxPasswordBytes)
		}
		return "", err
	}
	return string(b), nil
}

// ComparePassword returns common.ErrInvalidCredentials on mismatch.
func ComparePassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return common.ErrInvalidCredentials
	}
	return err
}

var dummyHash = sync.OnceValue(func() []byte {
	b, _ := bcrypt.GenerateFromPassword([]byte("blogapi-dummy-password"), PasswordCost)
	return b
})

// DummyCompare spends the same bcrypt work as ComparePassword against a
// throwaway hash. Login calls it for unknown emails so the response time
// does not reveal whether an account exists.
func DummyCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
}
