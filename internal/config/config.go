// Package config resolves runtime settings from defaults, an optional YAML
// file and TASKMASTER_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/taskmaster/internal/view"
	"github.com/spf13/viper"
)

const EnvPrefix = "TASKMASTER"

var ErrInvalidConfig = errors.New("config: invalid value")

type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

func (b Backend) IsValid() bool {
	switch b {
	case BackendFile, BackendSQLite, BackendMemory:
		return true
	default:
		return false
	}
}

type Config struct {
	Backend              Backend
	DataDir              string
	Slot                 string
	DefaultView          view.Category
	DefaultSort          view.SortKey
	DesktopNotifications bool
	NotificationTTL      time.Duration
	DueAlerts            bool
	SchedulerBuffer      int
	LogFile              string
	LogLevel             log.Level
	// ConfigFile is the file that was read, empty when none was found.
	ConfigFile string
}

func Default() Config {
	return Config{
		Backend:              BackendFile,
		DataDir:              defaultDataDir(),
		Slot:                 "todos",
		DefaultView:          view.CategoryAll,
		DefaultSort:          view.SortCreated,
		DesktopNotifications: false,
		NotificationTTL:      4 * time.Second,
		DueAlerts:            true,
		SchedulerBuffer:      64,
		LogLevel:             log.InfoLevel,
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "taskmaster")
	}
	return ".taskmaster"
}

// Load reads path when given; otherwise it looks for config.yaml in the
// working directory and the default data directory. A missing file is not an
// error unless path was named explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("backend", string(cfg.Backend))
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("slot", cfg.Slot)
	v.SetDefault("default_view", string(cfg.DefaultView))
	v.SetDefault("default_sort", string(cfg.DefaultSort))
	v.SetDefault("desktop_notifications", cfg.DesktopNotifications)
	v.SetDefault("notification_ttl", cfg.NotificationTTL)
	v.SetDefault("due_alerts", cfg.DueAlerts)
	v.SetDefault("scheduler_buffer", cfg.SchedulerBuffer)
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", cfg.LogLevel.String())

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(cfg.DataDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	} else {
		cfg.ConfigFile = v.ConfigFileUsed()
	}

	cfg.Backend = Backend(strings.ToLower(strings.TrimSpace(v.GetString("backend"))))
	cfg.DataDir = strings.TrimSpace(v.GetString("data_dir"))
	cfg.Slot = strings.TrimSpace(v.GetString("slot"))
	cfg.DesktopNotifications = v.GetBool("desktop_notifications")
	cfg.NotificationTTL = v.GetDuration("notification_ttl")
	cfg.DueAlerts = v.GetBool("due_alerts")
	cfg.SchedulerBuffer = v.GetInt("scheduler_buffer")
	cfg.LogFile = strings.TrimSpace(v.GetString("log_file"))

	var err error
	if cfg.DefaultView, err = view.ParseCategory(v.GetString("default_view")); err != nil {
		return Config{}, fmt.Errorf("%w: default_view: %v", ErrInvalidConfig, err)
	}
	if cfg.DefaultSort, err = view.ParseSortKey(v.GetString("default_sort")); err != nil {
		return Config{}, fmt.Errorf("%w: default_sort: %v", ErrInvalidConfig, err)
	}
	if cfg.LogLevel, err = log.ParseLevel(v.GetString("log_level")); err != nil {
		return Config{}, fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case !c.Backend.IsValid():
		return fmt.Errorf("%w: backend %q (want file, sqlite or memory)", ErrInvalidConfig, c.Backend)
	case c.DataDir == "" && c.Backend != BackendMemory:
		return fmt.Errorf("%w: data_dir is required", ErrInvalidConfig)
	case c.Slot == "" || strings.ContainsAny(c.Slot, `/\`):
		return fmt.Errorf("%w: slot %q", ErrInvalidConfig, c.Slot)
	case c.NotificationTTL <= 0:
		return fmt.Errorf("%w: notification_ttl must be positive", ErrInvalidConfig)
	case c.SchedulerBuffer <= 0:
		return fmt.Errorf("%w: scheduler_buffer must be positive", ErrInvalidConfig)
	}
	return nil
}

// FilePath is where the file backend keeps the slot.
func (c Config) FilePath() string {
	return filepath.Join(c.DataDir, c.Slot+".json")
}

// DatabasePath is the SQLite database shared by every slot.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "taskmaster.db")
}

func (c Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "taskmaster.log")
}
