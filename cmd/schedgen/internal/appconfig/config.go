// Package appconfig loads the schedgen configuration file.
package appconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/meenmo/moschedule/dates"
	genconfig "github.com/meenmo/moschedule/schedule/config"
)

// Config represents application configuration
type Config struct {
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
}

// CalendarConfig sets the window every calendar is built for and any extra
// holiday files.
type CalendarConfig struct {
	StartYear    int      `mapstructure:"start_year"`
	EndYear      int      `mapstructure:"end_year"`
	Default      string   `mapstructure:"default"`
	HolidayFiles []string `mapstructure:"holiday_files"`
}

// GeneratorConfig mirrors schedule/config.Config.
type GeneratorConfig struct {
	Parallelism int `mapstructure:"parallelism"`
	MinChunk    int `mapstructure:"min_chunk"`
	MaxPeriods  int `mapstructure:"max_periods"`
}

// LogConfig selects the log level and an optional rotated log file.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	MaxBatch        int           `mapstructure:"max_batch"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func setDefaults(v *viper.Viper) {
	d := genconfig.DefaultConfig
	v.SetDefault("calendar.start_year", 2000)
	v.SetDefault("calendar.end_year", 2080)
	v.SetDefault("calendar.default", "TARGET")
	v.SetDefault("generator.parallelism", d.Parallelism)
	v.SetDefault("generator.min_chunk", d.MinChunk)
	v.SetDefault("generator.max_periods", d.MaxPeriods)
	v.SetDefault("log.level", "info")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_batch", 10000)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// Load reads configuration from configPath. With an empty path the usual
// locations are searched and a missing file is not an error. Environment
// variables such as SCHEDGEN_SERVER_ADDR override file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("schedgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.schedgen")
		v.AddConfigPath("/etc/schedgen")
	}

	v.SetEnvPrefix("SCHEDGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Calendar.StartYear < dates.MinYear || c.Calendar.EndYear > dates.MaxYear {
		return fmt.Errorf("calendar years must be within %d..%d", dates.MinYear, dates.MaxYear)
	}
	if c.Calendar.StartYear > c.Calendar.EndYear {
		return fmt.Errorf("calendar.start_year %d is after calendar.end_year %d", c.Calendar.StartYear, c.Calendar.EndYear)
	}
	if c.Calendar.Default == "" {
		return fmt.Errorf("calendar.default is required")
	}
	if c.Generator.Parallelism < 0 || c.Generator.MinChunk < 0 || c.Generator.MaxPeriods < 0 {
		return fmt.Errorf("generator settings must not be negative")
	}
	if c.Server.MaxBatch <= 0 {
		return fmt.Errorf("server.max_batch must be positive")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	return nil
}

// GeneratorSettings converts the generator section for schedule/config.
func (c *Config) GeneratorSettings() genconfig.Config {
	return genconfig.Config{
		Parallelism: c.Generator.Parallelism,
		MinChunk:    c.Generator.MinChunk,
		MaxPeriods:  c.Generator.MaxPeriods,
	}
}
