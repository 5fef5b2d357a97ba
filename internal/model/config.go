package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DatabaseConfig locates the journal database.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// UserConfig identifies the acting user of this client.
type UserConfig struct {
	ID   string `mapstructure:"id" yaml:"id"`
	Name string `mapstructure:"name" yaml:"name"`

	// Role is one of player, trusted, assistant, gamemaster.
	Role string `mapstructure:"role" yaml:"role"`
}

// LogConfig controls the structured log file.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	Path  string `mapstructure:"path" yaml:"path"`
}

// TrackerConfig bounds the tracker panel, in terminal cells.
type TrackerConfig struct {
	MinWidth  int `mapstructure:"min_width" yaml:"min_width"`
	MaxWidth  int `mapstructure:"max_width" yaml:"max_width"`
	MinHeight int `mapstructure:"min_height" yaml:"min_height"`
	MaxHeight int `mapstructure:"max_height" yaml:"max_height"`
}

// NotifyConfig controls how often other clients' refresh signals are polled.
type NotifyConfig struct {
	PollIntervalMS int `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	User     UserConfig     `mapstructure:"user" yaml:"user"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Tracker  TrackerConfig  `mapstructure:"tracker" yaml:"tracker"`
	Notify   NotifyConfig   `mapstructure:"notify" yaml:"notify"`
}

// ActingUser converts the configured user into a User.
func (c *AppConfig) ActingUser() (User, error) {
	role, err := ParseRole(c.User.Role)
	if err != nil {
		return User{}, err
	}
	return User{ID: c.User.ID, Name: c.User.Name, Role: role}, nil
}

// DefaultConfigDir returns ~/.config/questlog.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "questlog")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/questlog/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	dir := DefaultConfigDir()
	return &AppConfig{
		Database: DatabaseConfig{Path: filepath.Join(dir, "journal.db")},
		User:     UserConfig{ID: "gm", Name: "Game Master", Role: "gamemaster"},
		Log:      LogConfig{Level: "info", Path: filepath.Join(dir, "questlog.log")},
		Tracker: TrackerConfig{
			MinWidth:  28,
			MaxWidth:  100,
			MinHeight: 6,
			MaxHeight: 60,
		},
		Notify: NotifyConfig{PollIntervalMS: 1000},
	}
}

func newViper(path string) *viper.Viper {
	def := DefaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("QUESTLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("database.path", def.Database.Path)
	v.SetDefault("user.id", def.User.ID)
	v.SetDefault("user.name", def.User.Name)
	v.SetDefault("user.role", def.User.Role)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.path", def.Log.Path)
	v.SetDefault("tracker.min_width", def.Tracker.MinWidth)
	v.SetDefault("tracker.max_width", def.Tracker.MaxWidth)
	v.SetDefault("tracker.min_height", def.Tracker.MinHeight)
	v.SetDefault("tracker.max_height", def.Tracker.MaxHeight)
	v.SetDefault("notify.poll_interval_ms", def.Notify.PollIntervalMS)
	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return DefaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	return decodeConfig(v, path)
}

func decodeConfig(v *viper.Viper, path string) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Tracker.MaxWidth < cfg.Tracker.MinWidth {
		cfg.Tracker.MaxWidth = cfg.Tracker.MinWidth
	}
	if cfg.Tracker.MaxHeight < cfg.Tracker.MinHeight {
		cfg.Tracker.MaxHeight = cfg.Tracker.MinHeight
	}
	return cfg, nil
}

// WatchConfig calls fn with the re-read configuration whenever the file
// at path changes. It returns an error when the file cannot be read initially.
func WatchConfig(path string, fn func(*AppConfig)) error {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decodeConfig(v, path)
		if err != nil {
			return
		}
		fn(cfg)
	})
	v.WatchConfig()
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

	v.Set("database", cfg.Database)
	v.Set("user", cfg.User)
	v.Set("log", cfg.Log)
	v.Set("tracker", cfg.Tracker)
	v.Set("notify", cfg.Notify)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
