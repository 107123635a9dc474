package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// ServiceAccount is the single fixed account allowed to obtain tokens.
// The password is only kept as a bcrypt hash.
type ServiceAccount struct {
	username string
	hash     []byte
}

// NewServiceAccount hashes password. An empty password yields a disabled account.
func NewServiceAccount(username, password string) (*ServiceAccount, error) {
	acct := &ServiceAccount{username: username}
	if password == "" {
		return acct, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash service password: %w", err)
	}
	acct.hash = hash
	return acct, nil
}

// Enabled reports whether a password is configured.
func (a *ServiceAccount) Enabled() bool {
	return len(a.hash) > 0
}

// Verify checks username and password.
func (a *ServiceAccount) Verify(username, password string) error {
	if !a.Enabled() {
		return ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.hash, []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}
