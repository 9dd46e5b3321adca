// Package config loads the court configuration: defaults, then the JWCC
// file .court/config.json, then COURT_* environment overrides.
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

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
)

// Archive store kinds.
const (
	ArchiveStoreChannel    = "channel"
	ArchiveStoreFilesystem = "filesystem"
)

// FileName is the config file location relative to the work directory.
var FileName = filepath.Join(".court", "config.json")

var (
	errConfigInvalid  = errors.New("invalid config")
	errConfigNotFound = errors.New("config file not found")
	errConfigExists   = errors.New("config file already exists")
)

// Config represents the court configuration.
type Config struct {
	Token      string `json:"token,omitempty"`
	GuildID    int64  `json:"guild_id,omitempty"`
	PublicKey  string `json:"public_key,omitempty"` // hex Ed25519 key for interactions
	APIBaseURL string `json:"api_base_url,omitempty"`

	DBPath    string `json:"db_path"`
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"` // console or json
	Timezone  string `json:"timezone"`
	Listen    string `json:"listen"`

	CourtName       string   `json:"court_name"`
	IntakeCategory  string   `json:"intake_category"`
	ArchiveCategory string   `json:"archive_category"`
	JudgeRoleID     int64    `json:"judge_role_id,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`

	Archive ArchiveConfig `json:"archive"`

	SweepSchedule      string `json:"sweep_schedule"`
	AuditRetentionDays int    `json:"audit_retention_days"`
}

// ArchiveConfig selects where exported transcripts are stored.
type ArchiveConfig struct {
	Store          string `json:"store"`
	LogChannelID   int64  `json:"log_channel_id,omitempty"`
	LogChannelName string `json:"log_channel_name"`
	Dir            string `json:"dir"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		DBPath:          filepath.Join(".court", "court.db"),
		LogLevel:        "info",
		LogFormat:       "console",
		Timezone:        "Europe/Oslo",
		Listen:          ":8080",
		CourtName:       "Court",
		IntakeCategory:  "Saker",
		ArchiveCategory: "Arkiv",
		Archive: ArchiveConfig{
			Store:          ArchiveStoreChannel,
			LogChannelName: "arkiv-logg",
			Dir:            filepath.Join(".court", "archive"),
		},
		SweepSchedule:      "* * * * *",
		AuditRetentionDays: 90,
	}
}

// Load reads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Config file (explicitPath, or .court/config.json under workDir if present)
// 3. Environment (COURT_*)
// It returns the path of the file that was read, empty when none.
func Load(workDir, explicitPath string, env []string) (Config, string, error) {
	cfg := Default()

	path := explicitPath
	mustExist := path != ""
	if path == "" {
		path = filepath.Join(workDir, FileName)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	loaded := ""
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := parse(data, &cfg); err != nil {
			return Config{}, "", fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
		}
		loaded = path
	case os.IsNotExist(err) && !mustExist:
	case os.IsNotExist(err):
		return Config{}, "", fmt.Errorf("%w: %s", errConfigNotFound, path)
	default:
		return Config{}, "", fmt.Errorf("failed to read config: %w", err)
	}

	if err := applyEnv(&cfg, env); err != nil {
		return Config{}, "", err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, loaded, nil
}

// parse decodes JWCC (JSON with comments and trailing commas) over cfg.
func parse(data []byte, cfg *Config) error {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("invalid JWCC: %w", err)
	}
	if err := json.Unmarshal(standardized, cfg); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func lookup(env []string, key string) (string, bool) {
	for i := len(env) - 1; i >= 0; i-- {
		if after, ok := strings.CutPrefix(env[i], key+"="); ok {
			return after, true
		}
	}
	return "", false
}

func applyEnv(cfg *Config, env []string) error {
	strs := map[string]*string{
		"COURT_TOKEN":         &cfg.Token,
		"COURT_PUBLIC_KEY":    &cfg.PublicKey,
		"COURT_API_BASE_URL":  &cfg.APIBaseURL,
		"COURT_DB_PATH":       &cfg.DBPath,
		"COURT_LOG_LEVEL":     &cfg.LogLevel,
		"COURT_LOG_FORMAT":    &cfg.LogFormat,
		"COURT_TIMEZONE":      &cfg.Timezone,
		"COURT_LISTEN":        &cfg.Listen,
		"COURT_ARCHIVE_STORE": &cfg.Archive.Store,
		"COURT_ARCHIVE_DIR":   &cfg.Archive.Dir,
	}
	for key, dst := range strs {
		if v, ok := lookup(env, key); ok {
			*dst = v
		}
	}

	ids := map[string]*int64{
		"COURT_GUILD_ID":           &cfg.GuildID,
		"COURT_JUDGE_ROLE_ID":      &cfg.JudgeRoleID,
		"COURT_ARCHIVE_CHANNEL_ID": &cfg.Archive.LogChannelID,
	}
	for key, dst := range ids {
		v, ok := lookup(env, key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a numeric id: %q", errConfigInvalid, key, v)
		}
		*dst = n
	}
	return nil
}

// Validate checks values that have a fixed domain.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level must be debug, info, warn or error, got %q", errConfigInvalid, c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log_format must be console or json, got %q", errConfigInvalid, c.LogFormat)
	}
	switch c.Archive.Store {
	case ArchiveStoreChannel, ArchiveStoreFilesystem:
	default:
		return fmt.Errorf("%w: archive.store must be channel or filesystem, got %q", errConfigInvalid, c.Archive.Store)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone: %w", errConfigInvalid, err)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path is empty", errConfigInvalid)
	}
	if c.AuditRetentionDays < 0 {
		return fmt.Errorf("%w: audit_retention_days must not be negative", errConfigInvalid)
	}
	return nil
}

// RequirePlatform checks the settings every chat platform call needs.
func (c Config) RequirePlatform() error {
	if c.Token == "" {
		return fmt.Errorf("%w: no bot token (set token or COURT_TOKEN)", errConfigInvalid)
	}
	if c.GuildID == 0 {
		return fmt.Errorf("%w: no guild id (set guild_id or COURT_GUILD_ID)", errConfigInvalid)
	}
	return nil
}

// Location returns the configured time zone. Validate has already checked it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Template is the commented file court init writes.
const Template = `// court configuration (JSON with comments and trailing commas).
// Every value can be overridden with a COURT_* environment variable.
{
  // Bot token and guild. Prefer COURT_TOKEN over storing the token here.
  // "token": "",
  "guild_id": 0,
  // Hex Ed25519 public key of the application, for court serve.
  // "public_key": "",

  "db_path": ".court/court.db",
  "log_level": "info",
  "log_format": "console",
  "timezone": "Europe/Oslo",
  "listen": ":8080",

  "court_name": "Court",
  "intake_category": "Saker",
  "archive_category": "Arkiv",
  // Role granted to appointed judges.
  // "judge_role_id": 0,

  // Bot embed titles containing one of these words are kept in transcripts.
  "keywords": ["tildelt", "lukket", "arkivert", "bevis", "assigned", "closed", "archived", "evidence"],

  "archive": {
    // "channel" uploads to the log channel, "filesystem" writes to dir.
    "store": "channel",
    "log_channel_name": "arkiv-logg",
    "dir": ".court/archive",
  },

  "sweep_schedule": "* * * * *",
  "audit_retention_days": 90,
}
`

// WriteTemplate writes Template to .court/config.json under dir.
func WriteTemplate(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", errConfigExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(Template)); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return "", fmt.Errorf("failed to set config permissions: %w", err)
	}
	return path, nil
}
