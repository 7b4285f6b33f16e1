// Package config manages application configuration from default values,
// config.yaml, and ROOMLOG_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration. Values can be set via
// environment variables prefixed with ROOMLOG_ (e.g. ROOMLOG_DB_PATH) or
// through config.yaml in the working directory.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Profanity  ProfanityConfig  `mapstructure:"profanity"`
	LiveLog    LiveLogConfig    `mapstructure:"livelog"`
	Export     ExportConfig     `mapstructure:"export"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DBConfig controls the chat history database.
type DBConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ProfanityConfig controls the word matcher.
type ProfanityConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	WordsPath string        `mapstructure:"words_path" validate:"required"`
	Debounce  time.Duration `mapstructure:"debounce"   validate:"min=10ms,max=5s"`
}

// LiveLogConfig controls the in-memory chat view.
type LiveLogConfig struct {
	Retention time.Duration `mapstructure:"retention" validate:"min=1m,max=24h"`
}

// ExportConfig controls where history exports are written.
type ExportConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// ModerationConfig controls deferred moderation persistence.
type ModerationConfig struct {
	DeferredPath string `mapstructure:"deferred_path" validate:"required"`
}

// SchedulerConfig holds per-task schedules keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a named background task and sets how often it runs.
type TaskConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// Load loads and validates configuration from:
// 1. Default values
// 2. config.yaml file
// 3. ROOMLOG_* environment variables
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ROOMLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine, defaults and env cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against the struct validation tags and
// the per-task interval floor.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for name, task := range c.Scheduler.Tasks {
		if task.Enabled && task.Interval < time.Minute {
			return fmt.Errorf("invalid configuration: task %q interval %s is below 1m", name, task.Interval)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", true)

	v.SetDefault("db.path", "roomlog.db")

	v.SetDefault("profanity.enabled", true)
	v.SetDefault("profanity.words_path", "custom_words.json")
	v.SetDefault("profanity.debounce", 150*time.Millisecond)

	v.SetDefault("livelog.retention", time.Hour)

	v.SetDefault("export.dir", "exports")

	v.SetDefault("moderation.deferred_path", "deferred.json")

	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.interval", 24*time.Hour)
	v.SetDefault("scheduler.tasks.livelog_prune.enabled", true)
	v.SetDefault("scheduler.tasks.livelog_prune.interval", 5*time.Minute)
}
