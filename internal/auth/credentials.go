package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Credentials holds the single admin account.
type Credentials struct {
	username []byte
	hash     []byte
}

// NewCredentials uses passwordHash when set, otherwise hashes password.
func NewCredentials(username, password, passwordHash string) (*Credentials, error) {
	if username == "" {
		return nil, errors.New("admin username is required")
	}
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		return &Credentials{username: []byte(username), hash: []byte(passwordHash)}, nil
	}
	if password == "" {
		return nil, errors.New("admin password or password hash is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &Credentials{username: []byte(username), hash: hash}, nil
}

// Verify compares both values without short-circuiting on the username.
func (c *Credentials) Verify(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), c.username) == 1
	passErr := bcrypt.CompareHashAndPassword(c.hash, []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (c *Credentials) Username() string { return string(c.username) }
