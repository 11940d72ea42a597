package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/spend/internal/common"
	"github.com/Veraticus/spend/internal/tui/themes"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyAPIBaseURL       = "api.base_url"
	KeyAPITimeout       = "api.timeout"
	KeySessionBackend   = "session.backend"
	KeySessionPath      = "session.path"
	KeyPageSize         = "list.page_size"
	KeyNearEndThreshold = "list.near_end_threshold"
	KeyHideEmptyDays    = "list.hide_empty_days"
	KeyTheme            = "ui.theme"
	KeyLogLevel         = "logging.level"
	KeyLogFormat        = "logging.format"
)

// EnvPrefix prefixes every environment variable read by the client.
const EnvPrefix = "SPEND"

// Session backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

const (
	defaultPageSize     = 20
	defaultNearEnd      = 5
	defaultAPITimeout   = 30 * time.Second
	maxPageSize         = 200
	maxNearEndThreshold = 100
	sessionFileName     = "session.json"
	sessionDatabaseName = "spend.db"
)

// Config is the resolved client configuration.
type Config struct {
	APIBaseURL       string
	SessionBackend   string
	SessionPath      string
	Theme            string
	LogLevel         string
	LogFormat        string
	APITimeout       time.Duration
	PageSize         int
	NearEndThreshold int
	HideEmptyDays    bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPITimeout, defaultAPITimeout)
	v.SetDefault(KeySessionBackend, BackendFile)
	v.SetDefault(KeyPageSize, defaultPageSize)
	v.SetDefault(KeyNearEndThreshold, defaultNearEnd)
	v.SetDefault(KeyHideEmptyDays, true)
	v.SetDefault(KeyTheme, "default")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// LoadDotEnv loads variables from the given .env files (default ".env") into
// the process environment. Missing files are ignored; existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// BindEnv makes v read SPEND_* variables, e.g. SPEND_API_BASE_URL.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// FromViper resolves a Config from v. It does not validate.
func FromViper(v *viper.Viper) Config {
	return Config{
		APIBaseURL:       strings.TrimRight(v.GetString(KeyAPIBaseURL), "/"),
		APITimeout:       v.GetDuration(KeyAPITimeout),
		SessionBackend:   v.GetString(KeySessionBackend),
		SessionPath:      ExpandPath(v.GetString(KeySessionPath)),
		PageSize:         v.GetInt(KeyPageSize),
		NearEndThreshold: v.GetInt(KeyNearEndThreshold),
		HideEmptyDays:    v.GetBool(KeyHideEmptyDays),
		Theme:            v.GetString(KeyTheme),
		LogLevel:         v.GetString(KeyLogLevel),
		LogFormat:        v.GetString(KeyLogFormat),
	}
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var problems []string

	if c.APIBaseURL == "" {
		problems = append(problems, fmt.Sprintf("%s is required (or set %s_API_BASE_URL)", KeyAPIBaseURL, EnvPrefix))
	} else if u, err := url.Parse(c.APIBaseURL); err != nil {
		problems = append(problems, fmt.Sprintf("invalid %s %q: %v", KeyAPIBaseURL, c.APIBaseURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		problems = append(problems, fmt.Sprintf("invalid %s scheme %q: must be http or https", KeyAPIBaseURL, u.Scheme))
	}

	if c.APITimeout <= 0 {
		problems = append(problems, fmt.Sprintf("%s must be positive", KeyAPITimeout))
	}

	if c.SessionBackend != BackendFile && c.SessionBackend != BackendSQLite {
		problems = append(problems, fmt.Sprintf("invalid %s %q: must be one of [%s %s]", KeySessionBackend, c.SessionBackend, BackendFile, BackendSQLite))
	}

	if c.PageSize < 1 || c.PageSize > maxPageSize {
		problems = append(problems, fmt.Sprintf("%s must be between 1 and %d, got %d", KeyPageSize, maxPageSize, c.PageSize))
	}

	if c.NearEndThreshold < 0 || c.NearEndThreshold > maxNearEndThreshold {
		problems = append(problems, fmt.Sprintf("%s must be between 0 and %d, got %d", KeyNearEndThreshold, maxNearEndThreshold, c.NearEndThreshold))
	}

	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}

	if _, err := common.ParseFormat(c.LogFormat); err != nil {
		problems = append(problems, err.Error())
	}

	if c.Theme != "" {
		if _, ok := themes.Lookup(c.Theme); !ok {
			problems = append(problems, fmt.Sprintf("invalid %s %q: must be one of %v", KeyTheme, c.Theme, themes.Names()))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  - %s", common.ErrInvalidConfig, strings.Join(problems, "\n  - "))
	}
	return nil
}

// ResolveSessionPath returns the session file or database path, defaulting to
// the data directory for the selected backend.
func (c Config) ResolveSessionPath() (string, error) {
	if c.SessionPath != "" {
		return c.SessionPath, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve data directory: %w", err)
	}
	if c.SessionBackend == BackendSQLite {
		return filepath.Join(dir, sessionDatabaseName), nil
	}
	return filepath.Join(dir, sessionFileName), nil
}
