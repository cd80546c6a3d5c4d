package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/interview-scheduler/")
	v.AddConfigPath("$HOME/.interview-scheduler")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("SCHEDULER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.listen_address", "0.0.0.0:3009")

	// Mail defaults
	v.SetDefault("mail.sender", "recruiter@company.com")
	v.SetDefault("mail.gmail.user", "me")
	v.SetDefault("mail.gmail.credentials_file", "")
	v.SetDefault("mail.gmail.token_file", "")
	v.SetDefault("mail.gmail.label", "")
	v.SetDefault("mail.smtp.address", "localhost:587")
	v.SetDefault("mail.smtp.hello_hostname", "")

	// Engine defaults
	v.SetDefault("engine.base_url", "http://localhost:8000")
	v.SetDefault("engine.timeout", "5s")
	v.SetDefault("engine.max_body_size", 4096)

	// Scheduler defaults
	v.SetDefault("scheduler.interval", "30s")
	v.SetDefault("scheduler.batch_size", 10)
	v.SetDefault("scheduler.call_timeout", "5s")
	v.SetDefault("scheduler.auto_start", false)

	// Calendar defaults
	v.SetDefault("calendar.id", "primary")
	v.SetDefault("calendar.event_location", "Virtual Interview")

	// History archive defaults
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.type", "memory")
	v.SetDefault("history.sqlite_path", "/data/scheduler_history.db")
	v.SetDefault("history.mysql_dsn", "user:password@tcp(localhost:3306)/scheduler")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
