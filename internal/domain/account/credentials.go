package account

// Credentials log into the appointment portal.
type Credentials struct {
	Email    string
	Password string

	// Source records where Password came from ("env" or "keyring").
	Source string
}

func (c Credentials) Complete() bool {
	return c.Email != "" && c.Password != ""
}

// Redacted is safe to log.
func (c Credentials) Redacted() string {
	if c.Password == "" {
		return c.Email + " (no password)"
	}
	return c.Email + " (password from " + c.Source + ")"
}
