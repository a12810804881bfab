package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/commitleak/internal/detect"
)

// Config represents the commitleak configuration.
type Config struct {
	Keywords             []string     `json:"keywords" yaml:"keywords" validate:"min=1,dive,required"`
	IncludeTestResources bool         `json:"includeTestResources" yaml:"includeTestResources"`
	SuppressLocal        bool         `json:"suppressLocal" yaml:"suppressLocal"`
	Dedupe               bool         `json:"dedupe" yaml:"dedupe"`
	Format               string       `json:"format" yaml:"format" validate:"oneof=text json markdown sarif"`
	FailOnFindings       bool         `json:"failOnFindings" yaml:"failOnFindings"`
	Exclude              []string     `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Concurrency          int          `json:"concurrency" yaml:"concurrency" validate:"min=1,max=32"`
	ShowSecrets          bool         `json:"showSecrets" yaml:"showSecrets"`
	RedactPaths          []string     `json:"redactPaths,omitempty" yaml:"redactPaths,omitempty"`
	LocalLimit           int          `json:"localLimit" yaml:"localLimit" validate:"min=0"`
	GitHub               GitHubConfig `json:"github" yaml:"github"`
	Cache                CacheConfig  `json:"cache" yaml:"cache"`
	Log                  LogConfig    `json:"log" yaml:"log"`
}

// GitHubConfig controls the GitHub commit source.
type GitHubConfig struct {
	APIURL         string `json:"apiUrl,omitempty" yaml:"apiUrl,omitempty" validate:"omitempty,url"`
	PerPage        int    `json:"perPage" yaml:"perPage" validate:"min=1,max=100"`
	MaxPages       int    `json:"maxPages" yaml:"maxPages" validate:"min=1"`
	MaxRetries     int    `json:"maxRetries" yaml:"maxRetries" validate:"min=0,max=10"`
	MemoTTLSeconds int    `json:"memoTtlSeconds" yaml:"memoTtlSeconds" validate:"min=0"`
}

// CacheConfig controls caching of commit file lists.
type CacheConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Dir        string `json:"dir,omitempty" yaml:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds" yaml:"ttlSeconds" validate:"min=0"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level      string `json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format     string `json:"format" yaml:"format" validate:"oneof=console json"`
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"maxSizeMb" yaml:"maxSizeMb" validate:"min=0"`
	MaxBackups int    `json:"maxBackups" yaml:"maxBackups" validate:"min=0"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Keywords:      append([]string(nil), detect.DefaultKeywords...),
		SuppressLocal: true,
		Dedupe:        true,
		Format:        "text",
		Concurrency:   4,
		RedactPaths:   []string{".env", "*secrets*"},
		GitHub: GitHubConfig{
			PerPage:        100,
			MaxPages:       10,
			MaxRetries:     3,
			MemoTTLSeconds: 600,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 7 * 86400,
		},
		Log: LogConfig{
			Level:      "warn",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for commitleak.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "commitleak"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "commitleak"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "commitleak"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "commitleak"), nil
	default:
		return filepath.Join(home, ".config", "commitleak"), nil
	}
}

// configNames are tried in order; the first existing file wins.
var configNames = []string{"config.yaml", "config.yml", "config.json"}

// ConfigPath returns the config file in use, or the path config.yaml would
// have when none exists yet.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	for _, name := range configNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return filepath.Join(dir, configNames[0]), nil
}

// LoadFile decodes the config file on top of cfg. A missing file leaves cfg
// unchanged.
func LoadFile(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := decode(path, data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func decode(path string, data []byte, cfg *Config) error {
	if filepath.Ext(path) == ".json" {
		return json.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// Save writes the config to the config file, in YAML unless the existing
// file is JSON.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	var data []byte
	if filepath.Ext(path) == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
// Environment values that fail to parse are skipped and returned as warnings
// so the caller can report them once logging is configured.
func Load(overrides map[string]string) (Config, []error, error) {
	cfg := Default()

	if err := LoadFile(&cfg); err != nil {
		return Config{}, nil, err
	}
	warnings := mergeEnv(&cfg)
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, warnings, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, warnings, err
	}
	return cfg, warnings, nil
}

// envKeys maps environment variables to SetField keys.
var envKeys = []struct {
	env string
	key string
}{
	{"COMMITLEAK_KEYWORDS", "keywords"},
	{"COMMITLEAK_FORMAT", "format"},
	{"COMMITLEAK_EXCLUDE", "exclude"},
	{"COMMITLEAK_CONCURRENCY", "concurrency"},
	{"COMMITLEAK_INCLUDE_TEST_RESOURCES", "includeTestResources"},
	{"COMMITLEAK_SUPPRESS_LOCAL", "suppressLocal"},
	{"COMMITLEAK_FAIL_ON_FINDINGS", "failOnFindings"},
	{"COMMITLEAK_SHOW_SECRETS", "showSecrets"},
	{"COMMITLEAK_LOG_LEVEL", "log.level"},
	{"COMMITLEAK_LOG_FORMAT", "log.format"},
	{"COMMITLEAK_LOG_FILE", "log.file"},
}

// mergeEnv applies environment variables. Unparseable values leave the field
// unchanged and are reported in the returned slice.
func mergeEnv(cfg *Config) []error {
	var warnings []error
	for _, e := range envKeys {
		v := os.Getenv(e.env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, e.key, v); err != nil {
			warnings = append(warnings, fmt.Errorf("ignoring %s=%q: %w", e.env, v, err))
		}
	}
	return warnings
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return fmt.Errorf("flag %s: %w", key, err)
		}
	}
	return nil
}

// Keys lists the keys accepted by SetField.
func Keys() []string {
	return []string{
		"keywords", "includeTestResources", "suppressLocal", "dedupe", "format",
		"failOnFindings", "exclude", "concurrency", "showSecrets", "redactPaths",
		"localLimit", "github.apiUrl", "github.perPage", "github.maxPages",
		"github.maxRetries", "github.memoTtlSeconds", "cache.enabled", "cache.dir",
		"cache.ttlSeconds", "log.level", "log.format", "log.file",
		"log.maxSizeMb", "log.maxBackups",
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
// List values are comma separated.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "keywords":
		cfg.Keywords = splitList(value)
	case "exclude":
		cfg.Exclude = splitList(value)
	case "redactPaths":
		cfg.RedactPaths = splitList(value)
	case "format":
		cfg.Format = value
	case "github.apiUrl":
		cfg.GitHub.APIURL = value
	case "cache.dir":
		cfg.Cache.Dir = value
	case "log.level":
		cfg.Log.Level = strings.ToLower(value)
	case "log.format":
		cfg.Log.Format = strings.ToLower(value)
	case "log.file":
		cfg.Log.File = value
	case "includeTestResources":
		return setBool(&cfg.IncludeTestResources, key, value)
	case "suppressLocal":
		return setBool(&cfg.SuppressLocal, key, value)
	case "dedupe":
		return setBool(&cfg.Dedupe, key, value)
	case "failOnFindings":
		return setBool(&cfg.FailOnFindings, key, value)
	case "showSecrets":
		return setBool(&cfg.ShowSecrets, key, value)
	case "cache.enabled":
		return setBool(&cfg.Cache.Enabled, key, value)
	case "concurrency":
		return setInt(&cfg.Concurrency, key, value)
	case "localLimit":
		return setInt(&cfg.LocalLimit, key, value)
	case "github.perPage":
		return setInt(&cfg.GitHub.PerPage, key, value)
	case "github.maxPages":
		return setInt(&cfg.GitHub.MaxPages, key, value)
	case "github.maxRetries":
		return setInt(&cfg.GitHub.MaxRetries, key, value)
	case "github.memoTtlSeconds":
		return setInt(&cfg.GitHub.MemoTTLSeconds, key, value)
	case "cache.ttlSeconds":
		return setInt(&cfg.Cache.TTLSeconds, key, value)
	case "log.maxSizeMb":
		return setInt(&cfg.Log.MaxSizeMB, key, value)
	case "log.maxBackups":
		return setInt(&cfg.Log.MaxBackups, key, value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(s string) []string {
	var result []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
