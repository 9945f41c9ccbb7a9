package usecases

import (
	"errors"
	"strings"

	"github.com/example/visa-watch/internal/domain/account"
	"github.com/example/visa-watch/internal/internaltypes"
)

// PasswordStore is the subset of the keyring the service needs.
type PasswordStore interface {
	SetPassword(email, password string) error
	Password(email string) (string, error)
	DeletePassword(email string) error
}

type CredentialsService struct {
	Store PasswordStore
}

// Resolve prefers the password from the environment and falls back to the
// store. A store miss leaves the password empty so config validation reports
// it with the other missing keys.
func (s CredentialsService) Resolve(email, envPassword string) (account.Credentials, error) {
	c := account.Credentials{Email: strings.TrimSpace(email)}
	if envPassword != "" {
		c.Password = envPassword
		c.Source = "env"
		return c, nil
	}
	if s.Store == nil || c.Email == "" {
		return c, nil
	}
	pw, err := s.Store.Password(c.Email)
	if errors.Is(err, internaltypes.ErrNotFound) {
		return c, nil
	}
	if err != nil {
		return c, err
	}
	c.Password = pw
	c.Source = "keyring"
	return c, nil
}

func (s CredentialsService) Save(email, password string) error {
	return s.Store.SetPassword(email, password)
}

func (s CredentialsService) Forget(email string) error {
	return s.Store.DeletePassword(email)
}
