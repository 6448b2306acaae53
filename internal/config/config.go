package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"
)

// Config holds server configuration values.
type Config struct {
	Port               int           `mapstructure:"port" yaml:"port"`
	AdminCode          string        `mapstructure:"admin_code" yaml:"admin_code"`
	Rooms              []string      `mapstructure:"rooms" yaml:"rooms"`
	DefaultRoom        string        `mapstructure:"default_room" yaml:"default_room"`
	HistoryLimit       int           `mapstructure:"history_limit" yaml:"history_limit"`
	RateLimitInterval  time.Duration `mapstructure:"rate_limit_interval" yaml:"rate_limit_interval"`
	UploadDir          string        `mapstructure:"upload_dir" yaml:"upload_dir"`
	UploadTTL          time.Duration `mapstructure:"upload_ttl" yaml:"upload_ttl"`
	MaxUploadBytes     int64         `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
	PublicDir          string        `mapstructure:"public_dir" yaml:"public_dir"`
	DatabasePath       string        `mapstructure:"database_path" yaml:"database_path"`
	MaxFramesPerMinute int           `mapstructure:"max_frames_per_minute" yaml:"max_frames_per_minute"`
	ReadHeaderTimeout  time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel           string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat          string        `mapstructure:"log_format" yaml:"log_format"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Port:               3000,
		Rooms:              []string{"General", "Random", "Tech", "Test"},
		DefaultRoom:        "General",
		HistoryLimit:       25,
		RateLimitInterval:  2 * time.Second,
		UploadDir:          "uploads",
		UploadTTL:          5 * time.Minute,
		MaxUploadBytes:     10 << 20,
		PublicDir:          "public",
		DatabasePath:       "relay.db",
		MaxFramesPerMinute: 600,
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           "info",
		LogFormat:          "console",
	}
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Validate reports configuration that the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if len(c.Rooms) == 0 {
		errs = append(errs, errors.New("no rooms configured"))
	} else if !slices.Contains(c.Rooms, c.DefaultRoom) {
		errs = append(errs, fmt.Errorf("default room %q is not a configured room", c.DefaultRoom))
	}
	if c.HistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("history limit must be positive, got %d", c.HistoryLimit))
	}
	if c.RateLimitInterval < 0 {
		errs = append(errs, errors.New("rate limit interval must not be negative"))
	}
	if c.UploadDir == "" {
		errs = append(errs, errors.New("upload dir is empty"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max upload bytes must be positive"))
	}
	if len(c.AdminCode) > 72 {
		errs = append(errs, errors.New("admin code longer than 72 bytes"))
	}
	return errors.Join(errs...)
}
