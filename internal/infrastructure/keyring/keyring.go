// Package keyring stores the portal password in the operating system's
// keyring, keyed by account email.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/visa-watch/internal/internaltypes"
	"github.com/zalando/go-keyring"
)

const DefaultService = "visawatch"

// seams for tests
var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
)

type Store struct {
	Service string
}

func New() *Store {
	return &Store{Service: DefaultService}
}

func (s *Store) SetPassword(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}
	if password == "" {
		return errors.New("password is empty")
	}
	if err := keyringSet(s.Service, email, password); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

// Password returns internaltypes.ErrNotFound when nothing is stored for email.
func (s *Store) Password(email string) (string, error) {
	pw, err := keyringGet(s.Service, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", internaltypes.ErrNotFound
		}
		return "", fmt.Errorf("keyring get: %w", err)
	}
	return pw, nil
}

func (s *Store) DeletePassword(email string) error {
	err := keyringDelete(s.Service, strings.TrimSpace(email))
	if errors.Is(err, keyring.ErrNotFound) {
		return internaltypes.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}
