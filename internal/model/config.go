package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backend names.
const (
	StorageSQLite  = "sqlite"
	StorageKeyring = "keyring"
)

// StorageConfig selects and configures the blob store.
type StorageConfig struct {
	// Backend is "sqlite" (local storage) or "keyring" (secure storage).
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the SQLite database file.
	Path string `mapstructure:"path" yaml:"path"`

	// KeyringDir is where the file keyring backend keeps its data when no
	// OS keychain is available.
	KeyringDir string `mapstructure:"keyring_dir" yaml:"keyring_dir"`
}

// SchedulerConfig holds the due-reminder poll loop settings.
type SchedulerConfig struct {
	PollIntervalSec int    `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
	DueWindowSec    int    `mapstructure:"due_window_sec" yaml:"due_window_sec"`
	Timezone        string `mapstructure:"timezone" yaml:"timezone"`
}

// PollInterval returns the poll period as a duration.
func (c SchedulerConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

// DueWindow returns the due-check window as a duration.
func (c SchedulerConfig) DueWindow() time.Duration {
	return time.Duration(c.DueWindowSec) * time.Second
}

// Location resolves Timezone, falling back to the local zone.
func (c SchedulerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// MailboxConfig configures the IMAP mailbox notification deliverer.
// The password is read from the keyring under PasswordKey.
type MailboxConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	Host        string `mapstructure:"host" yaml:"host"`
	Port        string `mapstructure:"port" yaml:"port"`
	Username    string `mapstructure:"username" yaml:"username"`
	PasswordKey string `mapstructure:"password_key" yaml:"password_key"`
	TLS         bool   `mapstructure:"tls" yaml:"tls"`
	Mailbox     string `mapstructure:"mailbox" yaml:"mailbox"`
	From        string `mapstructure:"from" yaml:"from"`
}

// ServerConfig holds the HTTP API listen address.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	Session   User            `mapstructure:"session" yaml:"session"`
	Mailbox   MailboxConfig   `mapstructure:"mailbox" yaml:"mailbox"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// configDir returns ~/.config/carereminder, or the working directory
// when no home directory is available.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "carereminder")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/carereminder/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dir := configDir()
	return &AppConfig{
		Storage: StorageConfig{
			Backend:    StorageSQLite,
			Path:       filepath.Join(dir, "reminders.db"),
			KeyringDir: filepath.Join(dir, "keyring"),
		},
		Scheduler: SchedulerConfig{
			PollIntervalSec: 60,
			DueWindowSec:    60,
			Timezone:        "Local",
		},
		Session: User{Role: RoleCaregiver},
		Mailbox: MailboxConfig{
			Port:        "993",
			TLS:         true,
			Mailbox:     "INBOX",
			PasswordKey: "mailbox-password",
		},
		Server: ServerConfig{Addr: "127.0.0.1:3000"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.keyring_dir", d.Storage.KeyringDir)
	v.SetDefault("scheduler.poll_interval_sec", d.Scheduler.PollIntervalSec)
	v.SetDefault("scheduler.due_window_sec", d.Scheduler.DueWindowSec)
	v.SetDefault("scheduler.timezone", d.Scheduler.Timezone)
	v.SetDefault("session.role", string(d.Session.Role))
	v.SetDefault("mailbox.port", d.Mailbox.Port)
	v.SetDefault("mailbox.tls", d.Mailbox.TLS)
	v.SetDefault("mailbox.mailbox", d.Mailbox.Mailbox)
	v.SetDefault("mailbox.password_key", d.Mailbox.PasswordKey)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with CAREREMINDER_ override file values
// (CAREREMINDER_STORAGE_BACKEND overrides storage.backend). If the file
// does not exist, defaults and environment are used.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CAREREMINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Scheduler.PollIntervalSec <= 0 {
		cfg.Scheduler.PollIntervalSec = 60
	}
	if cfg.Scheduler.DueWindowSec <= 0 {
		cfg.Scheduler.DueWindowSec = 60
	}

	return cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c *AppConfig) Validate() error {
	switch c.Storage.Backend {
	case StorageSQLite, StorageKeyring:
	default:
		return fmt.Errorf("unknown storage backend %q (supported: %s, %s)",
			c.Storage.Backend, StorageSQLite, StorageKeyring)
	}

	switch c.Session.Role {
	case RoleElderly, RoleCaregiver:
	default:
		return fmt.Errorf("unknown session role %q", c.Session.Role)
	}

	if c.Mailbox.Enabled && (c.Mailbox.Host == "" || c.Mailbox.Username == "") {
		return fmt.Errorf("mailbox host and username are required when the mailbox is enabled")
	}

	if _, err := c.Scheduler.Location(); err != nil {
		return err
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("scheduler", cfg.Scheduler)
	v.Set("session", cfg.Session)
	v.Set("mailbox", cfg.Mailbox)
	v.Set("server", cfg.Server)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
