package security

import (
	"crypto/subtle"
	"errors"
)

var (
	ErrInvalidUsername = errors.New("Invalid username")
	ErrInvalidPassword = errors.New("Invalid password")
)

// Credentials is the single operator account of the web UI. When
// PasswordHash is set it takes precedence over the plaintext Password.
type Credentials struct {
	Username     string
	Password     string
	PasswordHash string
}

func (c Credentials) Check(username, password string) error {
	if c.Username == "" || subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) != 1 {
		return ErrInvalidUsername
	}

	if c.PasswordHash != "" {
		ok, err := VerifyPassword(password, []byte(c.PasswordHash))
		if err != nil || !ok {
			return ErrInvalidPassword
		}
		return nil
	}

	if c.Password == "" || subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) != 1 {
		return ErrInvalidPassword
	}
	return nil
}
