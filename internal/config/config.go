package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type BudgetConfig struct {
	// DefaultLimit is the monthly expense limit (VND) used for months
	// without an explicit budget row. 0 disables the budget check.
	DefaultLimit int64 `mapstructure:"default_limit"`
}

type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Cron expressions (robfig/cron, standard 5-field format).
	RecurrenceSpec   string `mapstructure:"recurrence_spec"`
	BudgetSpec       string `mapstructure:"budget_spec"`
	DebtReminderSpec string `mapstructure:"debt_reminder_spec"`
}

type AppSubConfig struct {
	PageSize            int `mapstructure:"page_size"`
	ReminderHorizonDays int `mapstructure:"reminder_horizon_days"`
	DebtWindowDays      int `mapstructure:"debt_window_days"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Budget    BudgetConfig    `mapstructure:"budget"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	App       AppSubConfig    `mapstructure:"app"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		// environment overrides, e.g. EXM_SERVER_PORT=9000
		v.SetEnvPrefix("EXM")
		v.AutomaticEnv()

		setDefaults(v)

		if err = v.ReadInConfig(); err != nil {
			err = fmt.Errorf("read config: %w", err)
			return
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "data/expense.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("scheduler.enabled", true)
	// every 6 hours; the engine catches up missed periods so a late or
	// skipped tick is harmless
	v.SetDefault("scheduler.recurrence_spec", "0 */6 * * *")
	v.SetDefault("scheduler.budget_spec", "30 */6 * * *")
	v.SetDefault("scheduler.debt_reminder_spec", "0 8 * * *")
	v.SetDefault("app.page_size", 20)
	v.SetDefault("app.reminder_horizon_days", 3)
	v.SetDefault("app.debt_window_days", 3)
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
