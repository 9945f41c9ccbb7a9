package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"EMAIL", "PASSWORD", "REGISTERED_DATE", "LOGIN_URL", "RETRY_INTERVAL",
	"RUN_IN_BACKGROUND", "HAS_MULTIPLE_APPLICANTS", "LANGUAGE",
	"MAX_CALENDAR_PAGES", "CALENDAR_WAIT_MS", "KEY_DELAY_MS", "ALARM_FILE",
	"JOURNAL_DSN", "STATUS_ADDR", "STATUS_USER", "STATUS_PASSWORD_BCRYPT",
	"SESSION_HASH_KEY", "SESSION_BLOCK_KEY", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv unsets every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("EMAIL", "me@example.com")
	t.Setenv("PASSWORD", "secret")
	t.Setenv("REGISTERED_DATE", "2025-09-01")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, DefaultLoginURL, cfg.LoginURL)
	require.Equal(t, 10, cfg.RetryInterval)
	require.False(t, cfg.RunInBackground)
	require.False(t, cfg.HasMultipleApplicants)
	require.Equal(t, "en", cfg.Language)
	require.Equal(t, 24, cfg.MaxCalendarPages)
	require.Equal(t, time.Second, cfg.CalendarWait)
	require.Equal(t, 100*time.Millisecond, cfg.KeyDelay)
	require.Equal(t, "alarm.mp3", cfg.AlarmFile)
	require.Equal(t, "2025-09-01", cfg.RegisteredDate.String())
	require.Empty(t, cfg.StatusAddr)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("EMAIL", "me@example.com")
	t.Setenv("PASSWORD", "secret")
	t.Setenv("REGISTERED_DATE", "2025-09-01T10:00:00")
	t.Setenv("LOGIN_URL", "https://ais.usvisa-info.com/es-mx/niv/users/sign_in")
	t.Setenv("RETRY_INTERVAL", "3")
	t.Setenv("RUN_IN_BACKGROUND", "true")
	t.Setenv("HAS_MULTIPLE_APPLICANTS", "1")
	t.Setenv("LANGUAGE", "es")
	t.Setenv("MAX_CALENDAR_PAGES", "6")
	t.Setenv("CALENDAR_WAIT_MS", "250")
	t.Setenv("KEY_DELAY_MS", "0")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, 3, cfg.RetryInterval)
	require.True(t, cfg.RunInBackground)
	require.True(t, cfg.HasMultipleApplicants)
	require.Equal(t, "es", cfg.Language)
	require.Equal(t, 6, cfg.MaxCalendarPages)
	require.Equal(t, 250*time.Millisecond, cfg.CalendarWait)
	require.Zero(t, cfg.KeyDelay)
	require.Equal(t, "2025-09-01", cfg.RegisteredDate.String())
}

func TestValidateListsEveryMissingKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOGIN_URL", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	err = cfg.Validate()
	require.ErrorIs(t, err, ErrMissing)
	require.EqualError(t, err, "missing required configuration: EMAIL, PASSWORD, LOGIN_URL, REGISTERED_DATE")
}

func TestFromEnvRejectsMalformedValues(t *testing.T) {
	cases := map[string]string{
		"REGISTERED_DATE":    "next tuesday",
		"RETRY_INTERVAL":     "0",
		"CALENDAR_WAIT_MS":   "soon",
		"RUN_IN_BACKGROUND":  "maybe",
		"MAX_CALENDAR_PAGES": "-1",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(k, v)
			_, err := FromEnv()
			require.Error(t, err)
			require.Contains(t, err.Error(), k)
		})
	}
}

func TestFromEnvStatusDashboard(t *testing.T) {
	clearEnv(t)
	t.Setenv("STATUS_ADDR", ":8080")

	_, err := FromEnv()
	require.ErrorContains(t, err, "STATUS_PASSWORD_BCRYPT")

	t.Setenv("STATUS_USER", "admin")
	t.Setenv("STATUS_PASSWORD_BCRYPT", "$2a$10$abcdefghijklmnopqrstuv")
	t.Setenv("SESSION_HASH_KEY", "c2VjcmV0LWhhc2gta2V5")
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "admin", cfg.StatusUser)
	require.Equal(t, []byte("secret-hash-key"), cfg.SessionHashKey)
	require.Nil(t, cfg.SessionBlockKey)

	t.Setenv("SESSION_BLOCK_KEY", "%%%")
	_, err = FromEnv()
	require.ErrorContains(t, err, "SESSION_BLOCK_KEY")
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	p := filepath.Join(dir, "visa.env")
	require.NoError(t, os.WriteFile(p, []byte("EMAIL=dot@example.com\nRETRY_INTERVAL=4\n"), 0o600))
	t.Setenv("RETRY_INTERVAL", "7")

	require.NoError(t, LoadDotEnv(p, filepath.Join(dir, "missing.env")))
	t.Cleanup(func() { _ = os.Unsetenv("EMAIL") })

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "dot@example.com", cfg.Email)
	require.Equal(t, 7, cfg.RetryInterval)
}
