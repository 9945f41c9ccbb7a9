package usecases

import (
	"crypto/subtle"
	"strings"

	"github.com/example/visa-watch/internal/internaltypes"
	"golang.org/x/crypto/bcrypt"
)

// OperatorAuth guards the status dashboard with a single configured user.
type OperatorAuth struct {
	Username     string
	PasswordHash []byte
}

func (a OperatorAuth) VerifyPassword(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(a.Username)) == 1
	// always run bcrypt so a wrong username costs the same as a wrong password
	pwErr := bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password))
	if !userOK || pwErr != nil {
		return internaltypes.ErrUnauthorized
	}
	return nil
}

func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}
