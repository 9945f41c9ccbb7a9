package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/visa-watch/internal/domain/appointment"
	"github.com/example/visa-watch/internal/domain/portal"
	"github.com/joho/godotenv"
)

const DefaultLoginURL = "https://ais.usvisa-info.com/en-ca/niv/users/sign_in"

// ErrMissing wraps the list of required keys that were not set.
var ErrMissing = errors.New("missing required configuration")

type Config struct {
	Email          string
	Password       string
	RegisteredDate appointment.Date
	LoginURL       string

	// minutes
	RetryInterval         int
	RunInBackground       bool
	HasMultipleApplicants bool
	Language              string

	MaxCalendarPages int
	CalendarWait     time.Duration
	KeyDelay         time.Duration
	AlarmFile        string

	JournalDSN string

	// status dashboard
	StatusAddr         string
	StatusUser         string
	StatusPasswordHash []byte
	SessionHashKey     []byte // base64, optional
	SessionBlockKey    []byte // base64, optional

	LogLevel  string
	LogFormat string
}

// LoadDotEnv loads the given files (".env" when none) into the environment
// without overriding variables that are already set. Missing files are
// ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv parses the environment. It reports malformed values; missing
// required values are reported by Validate so a password can still be
// resolved from the keyring in between.
func FromEnv() (Config, error) {
	cfg := Config{
		Email:      strings.TrimSpace(os.Getenv("EMAIL")),
		Password:   os.Getenv("PASSWORD"),
		LoginURL:   envDefault("LOGIN_URL", DefaultLoginURL),
		Language:   envDefault("LANGUAGE", portal.DefaultLanguage),
		AlarmFile:  envDefault("ALARM_FILE", "alarm.mp3"),
		JournalDSN: strings.TrimSpace(os.Getenv("JOURNAL_DSN")),
		StatusAddr: strings.TrimSpace(os.Getenv("STATUS_ADDR")),
		StatusUser: strings.TrimSpace(os.Getenv("STATUS_USER")),
		LogLevel:   envDefault("LOG_LEVEL", "info"),
		LogFormat:  envDefault("LOG_FORMAT", "text"),
	}

	if v := strings.TrimSpace(os.Getenv("REGISTERED_DATE")); v != "" {
		d, err := appointment.ParseDate(v)
		if err != nil {
			return cfg, fmt.Errorf("REGISTERED_DATE: %w", err)
		}
		cfg.RegisteredDate = d
	}

	var err error
	if cfg.RetryInterval, err = envInt("RETRY_INTERVAL", 10, 1); err != nil {
		return cfg, err
	}
	if cfg.MaxCalendarPages, err = envInt("MAX_CALENDAR_PAGES", 24, 0); err != nil {
		return cfg, err
	}
	waitMS, err := envInt("CALENDAR_WAIT_MS", 1000, 1)
	if err != nil {
		return cfg, err
	}
	cfg.CalendarWait = time.Duration(waitMS) * time.Millisecond
	delayMS, err := envInt("KEY_DELAY_MS", 100, 0)
	if err != nil {
		return cfg, err
	}
	cfg.KeyDelay = time.Duration(delayMS) * time.Millisecond

	if cfg.RunInBackground, err = envBool("RUN_IN_BACKGROUND"); err != nil {
		return cfg, err
	}
	if cfg.HasMultipleApplicants, err = envBool("HAS_MULTIPLE_APPLICANTS"); err != nil {
		return cfg, err
	}

	if cfg.StatusAddr != "" {
		hash := strings.TrimSpace(os.Getenv("STATUS_PASSWORD_BCRYPT"))
		if cfg.StatusUser == "" || hash == "" {
			return cfg, fmt.Errorf("STATUS_USER and STATUS_PASSWORD_BCRYPT are required when STATUS_ADDR is set")
		}
		cfg.StatusPasswordHash = []byte(hash)
		if cfg.SessionHashKey, err = optB64("SESSION_HASH_KEY"); err != nil {
			return cfg, err
		}
		if cfg.SessionBlockKey, err = optB64("SESSION_BLOCK_KEY"); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// Validate reports every missing required key at once.
func (c Config) Validate() error {
	var missing []string
	if c.Email == "" {
		missing = append(missing, "EMAIL")
	}
	if c.Password == "" {
		missing = append(missing, "PASSWORD")
	}
	if strings.TrimSpace(c.LoginURL) == "" {
		missing = append(missing, "LOGIN_URL")
	}
	if c.RegisteredDate.IsZero() {
		missing = append(missing, "REGISTERED_DATE")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return nil
}

func envDefault(k, d string) string {
	v, ok := os.LookupEnv(k)
	if !ok {
		return d
	}
	return strings.TrimSpace(v)
}

func envInt(k string, d, min int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		return 0, fmt.Errorf("invalid %s (want integer >= %d)", k, min)
	}
	return n, nil
}

func envBool(k string) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s (want true or false)", k)
	}
	return b, nil
}

func optB64(k string) ([]byte, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return nil, nil
	}
	if b, err := base64.StdEncoding.DecodeString(v); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}
