package pkg

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordHashCost is used when the config does not set a cost.
const DefaultPasswordHashCost = 12

// MaxPasswordBytes is the longest input bcrypt hashes.
const MaxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password longer than 72 bytes")

// HashPassword returns a salted bcrypt digest of the password.
// A cost outside bcrypt's range falls back to DefaultPasswordHashCost.
func HashPassword(password string, cost int) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordHashCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return BytesToString(bytes), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
