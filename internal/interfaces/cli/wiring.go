package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/example/visa-watch/internal/application/scheduler"
	"github.com/example/visa-watch/internal/application/usecases"
	"github.com/example/visa-watch/internal/ctxlog"
	"github.com/example/visa-watch/internal/domain/account"
	"github.com/example/visa-watch/internal/domain/attempt"
	"github.com/example/visa-watch/internal/domain/portal"
	"github.com/example/visa-watch/internal/infrastructure/alarm"
	"github.com/example/visa-watch/internal/infrastructure/chrome"
	"github.com/example/visa-watch/internal/infrastructure/config"
	"github.com/example/visa-watch/internal/infrastructure/keyring"
	"github.com/example/visa-watch/internal/infrastructure/memory"
	"github.com/example/visa-watch/internal/infrastructure/postgres"
	"github.com/example/visa-watch/internal/infrastructure/sqlite"
)

// seams for tests
var (
	newBrowser = func(cfg config.Config) portal.Browser { return chrome.New(cfg) }
	newAlarm   = func(cfg config.Config) scheduler.Alarm { return alarm.New(cfg.AlarmFile) }
	newStore   = func() usecases.PasswordStore { return keyring.New() }
	pauses     = usecases.DefaultPauses
)

// loadConfig reads the environment, fills the password from the keyring
// when PASSWORD is unset and validates the result.
func loadConfig(ctx context.Context) (config.Config, account.Credentials, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, account.Credentials{}, err
	}
	creds, err := usecases.CredentialsService{Store: newStore()}.Resolve(cfg.Email, cfg.Password)
	if err != nil {
		// an unusable keyring is the same as an empty one
		ctxlog.FromContext(ctx).Debug("keyring lookup failed", "err", err)
	}
	cfg.Password = creds.Password
	if err := cfg.Validate(); err != nil {
		return cfg, creds, err
	}
	return cfg, creds, nil
}

func newCheck(cfg config.Config, creds account.Credentials) usecases.CheckAvailability {
	return usecases.CheckAvailability{
		Browser:            newBrowser(cfg),
		Credentials:        creds,
		LoginURL:           cfg.LoginURL,
		Language:           cfg.Language,
		MultipleApplicants: cfg.HasMultipleApplicants,
		MaxCalendarPages:   cfg.MaxCalendarPages,
		CalendarWait:       cfg.CalendarWait,
		Pauses:             pauses(),
	}
}

// openJournal picks the backend from the DSN: postgres URLs go to
// PostgreSQL, any other value is a SQLite path, empty keeps attempts in
// memory.
func openJournal(ctx context.Context, dsn string) (attempt.Journal, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return memory.New(memory.DefaultCapacity), nil
	case postgres.IsDSN(dsn):
		j, err := postgres.OpenJournal(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return j, nil
	default:
		j, err := sqlite.Open(ctx, strings.TrimPrefix(dsn, "sqlite://"))
		if err != nil {
			return nil, err
		}
		return j, nil
	}
}

// readSecret reads the first line of r.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty input on stdin")
	}
	return line, nil
}
