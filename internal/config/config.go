// Package config handles loading and resolving ezdota configuration.
// Resolution order (first non-empty value wins):
//  1. CLI flags (applied by the caller after Load)
//  2. Environment variables (EZDOTA_*, OPENDOTA_API_KEY)
//  3. .env in the current working directory
//  4. config.json in the current working directory
//  5. Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/derickschaefer/ezdota/internal/opendota"
	"github.com/derickschaefer/ezdota/internal/window"
)

const (
	DefaultConfigFile = "config.json"
	DefaultEnvFile    = ".env"
	DefaultFormat     = "table"
	DefaultTimeout    = 30 * time.Second
	DefaultRate       = 1.0
	DefaultListenAddr = "127.0.0.1:8080"
)

// Environment variable names.
const (
	EnvPlayerID     = "EZDOTA_PLAYER_ID"
	EnvAPIKey       = "OPENDOTA_API_KEY"
	EnvFormat       = "EZDOTA_FORMAT"
	EnvDBPath       = "EZDOTA_DB_PATH"
	EnvArchivePath  = "EZDOTA_ARCHIVE_PATH"
	EnvMatchLimit   = "EZDOTA_MATCH_LIMIT"
	EnvMode         = "EZDOTA_MODE"
	EnvWorkdayStart = "EZDOTA_WORKDAY_START"
	EnvWorkdayEnd   = "EZDOTA_WORKDAY_END"
	EnvWorkdays     = "EZDOTA_WORKDAYS"
	EnvTimezone     = "EZDOTA_TZ"
	EnvListenAddr   = "EZDOTA_LISTEN_ADDR"
	EnvBaseURL      = "EZDOTA_BASE_URL"
)

// File is the on-disk representation of config.json. Workday hours are
// pointers because 0 is a valid start hour.
type File struct {
	PlayerID      int64   `json:"player_id"`
	APIKey        string  `json:"api_key"`
	DefaultFormat string  `json:"default_format"`
	Timeout       string  `json:"timeout"`
	Rate          float64 `json:"rate"`
	BaseURL       string  `json:"base_url"`
	DBPath        string  `json:"db_path"`
	ArchivePath   string  `json:"archive_path"`
	MatchLimit    int     `json:"match_limit"`
	FilterMode    string  `json:"filter_mode"`
	WorkdayStart  *int    `json:"workday_start,omitempty"`
	WorkdayEnd    *int    `json:"workday_end,omitempty"`
	Workdays      string  `json:"workdays"`
	Timezone      string  `json:"timezone"`
	ListenAddr    string  `json:"listen_addr"`
}

// Config is the fully-resolved runtime configuration.
// All callers use this struct; the File is only read during loading.
type Config struct {
	PlayerID    int64
	APIKey      string
	Format      string
	Timeout     time.Duration
	Rate        float64
	BaseURL     string
	DBPath      string
	ArchivePath string
	MatchLimit  int
	Mode        window.Mode
	Policy      window.Policy
	Timezone    string
	ListenAddr  string
	ConfigPath  string // path of the config.json that was loaded (empty if none found)
	EnvPath     string // path of the .env that was loaded (empty if none found)

	// Runtime overrides set from CLI flags after Load()
	NoCache bool
	Refresh bool
	Quiet   bool
	Verbose bool
	Debug   bool
}

// Load resolves configuration from config.json, .env and the environment
// in the current working directory.
func Load() (*Config, error) {
	return LoadDir(".")
}

// LoadDir resolves configuration reading config.json and .env from dir.
func LoadDir(dir string) (*Config, error) {
	cfg := &Config{
		PlayerID:   opendota.DefaultPlayerID,
		Format:     DefaultFormat,
		Timeout:    DefaultTimeout,
		Rate:       DefaultRate,
		BaseURL:    opendota.DefaultBaseURL,
		MatchLimit: opendota.DefaultMatchLimit,
		Mode:       window.ModeWorkday,
		Policy:     window.DefaultPolicy(),
		ListenAddr: DefaultListenAddr,
	}

	// Layer 1: config.json (lowest priority)
	f, path, err := loadFile(dir)
	switch {
	case err == nil:
		if err := applyFile(cfg, f, path); err != nil {
			return nil, err
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	// Layers 2 and 3: .env, then the real environment
	dotenv, envPath, err := loadDotEnv(dir)
	if err != nil {
		return nil, err
	}
	cfg.EnvPath = envPath
	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	// Set default DB paths if still unset
	if cfg.DBPath == "" || cfg.ArchivePath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			if cfg.DBPath == "" {
				cfg.DBPath = filepath.Join(home, ".ezdota", "cache.db")
			}
			if cfg.ArchivePath == "" {
				cfg.ArchivePath = filepath.Join(home, ".ezdota", "archive.db")
			}
		}
	}

	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
		cfg.Policy.Location = loc
	}
	return cfg, nil
}

// Validate returns an error if the resolved configuration is unusable.
func (c *Config) Validate() error {
	if c.PlayerID <= 0 {
		return errors.New(
			"player id not set.\n\n" +
				"Set it one of these ways:\n" +
				"  1. CLI flag:        ezdota --player 425817633 ...\n" +
				"  2. Environment:     export EZDOTA_PLAYER_ID=425817633\n" +
				"  3. config.json:     {\"player_id\": 425817633}\n\n" +
				"The id is the SteamID32 shown in your OpenDota profile URL.",
		)
	}
	if c.MatchLimit < 1 {
		return fmt.Errorf("match limit must be positive, got %d", c.MatchLimit)
	}
	if c.Rate <= 0 {
		return fmt.Errorf("rate must be positive, got %g", c.Rate)
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("workday policy: %w", err)
	}
	return nil
}

// RedactedAPIKey returns the API key with most characters replaced by asterisks.
// Safe for logging and display.
func (c *Config) RedactedAPIKey() string {
	if c.APIKey == "" {
		return ""
	}
	if len(c.APIKey) <= 4 {
		return "****"
	}
	return c.APIKey[:2] + "****" + c.APIKey[len(c.APIKey)-2:]
}

// loadFile attempts to read config.json from dir. A missing file returns
// an error wrapping os.ErrNotExist.
func loadFile(dir string) (*File, string, error) {
	path, err := filepath.Abs(filepath.Join(dir, DefaultConfigFile))
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("config.json not found at %s: %w", path, os.ErrNotExist)
		}
		return nil, "", fmt.Errorf("reading config.json: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("parsing config.json: %w", err)
	}
	return &f, path, nil
}

// loadDotEnv reads dir/.env without touching the process environment.
func loadDotEnv(dir string) (map[string]string, string, error) {
	path, err := filepath.Abs(filepath.Join(dir, DefaultEnvFile))
	if err != nil {
		return nil, "", err
	}
	vals, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, "", nil
		}
		return nil, "", fmt.Errorf("reading .env: %w", err)
	}
	return vals, path, nil
}

// applyFile copies values from a parsed File into cfg,
// skipping any fields that are zero/empty.
func applyFile(cfg *Config, f *File, path string) error {
	cfg.ConfigPath = path
	if f.PlayerID != 0 {
		cfg.PlayerID = f.PlayerID
	}
	if f.APIKey != "" {
		cfg.APIKey = f.APIKey
	}
	if f.DefaultFormat != "" {
		cfg.Format = f.DefaultFormat
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err == nil {
			cfg.Timeout = d
		}
	}
	if f.Rate > 0 {
		cfg.Rate = f.Rate
	}
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.DBPath != "" {
		cfg.DBPath = f.DBPath
	}
	if f.ArchivePath != "" {
		cfg.ArchivePath = f.ArchivePath
	}
	if f.MatchLimit > 0 {
		cfg.MatchLimit = f.MatchLimit
	}
	if f.WorkdayStart != nil {
		cfg.Policy.StartHour = *f.WorkdayStart
	}
	if f.WorkdayEnd != nil {
		cfg.Policy.EndHour = *f.WorkdayEnd
	}
	if f.Timezone != "" {
		cfg.Timezone = f.Timezone
	}
	if f.ListenAddr != "" {
		cfg.ListenAddr = f.ListenAddr
	}
	if f.FilterMode != "" {
		m, err := window.ParseMode(f.FilterMode)
		if err != nil {
			return fmt.Errorf("config.json: %w", err)
		}
		cfg.Mode = m
	}
	if f.Workdays != "" {
		days, err := window.ParseWeekdays(f.Workdays)
		if err != nil {
			return fmt.Errorf("config.json: %w", err)
		}
		cfg.Policy.Weekdays = days
	}
	return nil
}

// applyEnv copies non-empty values returned by lookup into cfg.
func applyEnv(cfg *Config, lookup func(string) string) error {
	if v := lookup(EnvPlayerID); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid player id %q", EnvPlayerID, v)
		}
		cfg.PlayerID = id
	}
	if v := lookup(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := lookup(EnvFormat); v != "" {
		cfg.Format = v
	}
	if v := lookup(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := lookup(EnvArchivePath); v != "" {
		cfg.ArchivePath = v
	}
	if v := lookup(EnvMatchLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid number %q", EnvMatchLimit, v)
		}
		cfg.MatchLimit = n
	}
	if v := lookup(EnvMode); v != "" {
		m, err := window.ParseMode(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMode, err)
		}
		cfg.Mode = m
	}
	if v := lookup(EnvWorkdayStart); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid hour %q", EnvWorkdayStart, v)
		}
		cfg.Policy.StartHour = h
	}
	if v := lookup(EnvWorkdayEnd); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid hour %q", EnvWorkdayEnd, v)
		}
		cfg.Policy.EndHour = h
	}
	if v := lookup(EnvWorkdays); v != "" {
		days, err := window.ParseWeekdays(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkdays, err)
		}
		cfg.Policy.Weekdays = days
	}
	if v := lookup(EnvTimezone); v != "" {
		cfg.Timezone = v
	}
	if v := lookup(EnvListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := lookup(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	return nil
}

// Get returns the resolved value of a config.json key as a display
// string. ok is false for unknown keys.
func (c *Config) Get(key string) (value string, ok bool) {
	switch strings.ToLower(key) {
	case "player_id":
		return strconv.FormatInt(c.PlayerID, 10), true
	case "api_key":
		return c.RedactedAPIKey(), true
	case "default_format":
		return c.Format, true
	case "timeout":
		return c.Timeout.String(), true
	case "rate":
		return strconv.FormatFloat(c.Rate, 'g', -1, 64), true
	case "base_url":
		return c.BaseURL, true
	case "db_path":
		return c.DBPath, true
	case "archive_path":
		return c.ArchivePath, true
	case "match_limit":
		return strconv.Itoa(c.MatchLimit), true
	case "filter_mode":
		return string(c.Mode), true
	case "workday_start":
		return strconv.Itoa(c.Policy.StartHour), true
	case "workday_end":
		return strconv.Itoa(c.Policy.EndHour), true
	case "workdays":
		return c.Policy.String(), true
	case "timezone":
		if c.Timezone == "" {
			return "Local", true
		}
		return c.Timezone, true
	case "listen_addr":
		return c.ListenAddr, true
	}
	return "", false
}

// Keys lists every key accepted by Get, in config.json order.
func Keys() []string {
	return []string{
		"player_id", "api_key", "default_format", "timeout", "rate", "base_url",
		"db_path", "archive_path", "match_limit", "filter_mode", "workday_start",
		"workday_end", "workdays", "timezone", "listen_addr",
	}
}

// Template returns a File populated with sensible defaults, suitable for
// writing an initial config.json via `ezdota config init`.
func Template() File {
	start, end := window.DefaultStartHour, window.DefaultEndHour
	return File{
		PlayerID:      opendota.DefaultPlayerID,
		APIKey:        "",
		DefaultFormat: DefaultFormat,
		Timeout:       "30s",
		Rate:          DefaultRate,
		BaseURL:       opendota.DefaultBaseURL,
		MatchLimit:    opendota.DefaultMatchLimit,
		FilterMode:    string(window.ModeWorkday),
		WorkdayStart:  &start,
		WorkdayEnd:    &end,
		Workdays:      "mon,tue,wed,thu,fri",
		ListenAddr:    DefaultListenAddr,
	}
}

// WriteFile serialises a File to the given path.
func WriteFile(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}
