// Package config provides Viper-based configuration loading for the rules engine host.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for the host store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is a zap sink such as "stderr", "stdout" or a file path.
	Output string `mapstructure:"output"`
}

// RulesConfig holds the tunable rule constants.
type RulesConfig struct {
	// CriticalThreshold is the excess successes needed for a critical when a
	// weapon or spell does not set its own.
	CriticalThreshold int `mapstructure:"critical_threshold"`
	// SuccessSingle is the lowest d12 face that counts one success.
	SuccessSingle int `mapstructure:"success_single"`
	// SuccessDouble is the lowest d12 face that counts two successes.
	SuccessDouble    int `mapstructure:"success_double"`
	CarryBase        int `mapstructure:"carry_base"`
	CarryPerPhysique int `mapstructure:"carry_per_physique"`
	SinBase          int `mapstructure:"sin_base"`
	// LuaInstructionLimit bounds each macro run; 0 uses the scripting default.
	LuaInstructionLimit int `mapstructure:"lua_instruction_limit"`
}

// ContentConfig locates YAML content and Lua macros.
type ContentConfig struct {
	// Dir holds species/, paths/ and items/ subdirectories. Empty disables content loading.
	Dir string `mapstructure:"dir"`
	// ScriptsDir holds .lua macro files. Empty disables macro preloading.
	ScriptsDir string `mapstructure:"scripts_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Content  ContentConfig  `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRules(c.Rules); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", l.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", l.Format))
	}
	if l.Output == "" {
		errs = append(errs, "logging.output must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRules(r RulesConfig) error {
	var errs []string
	if r.CriticalThreshold < 1 {
		errs = append(errs, fmt.Sprintf("rules.critical_threshold must be >= 1, got %d", r.CriticalThreshold))
	}
	if r.SuccessSingle < 1 || r.SuccessSingle > 12 {
		errs = append(errs, fmt.Sprintf("rules.success_single must be 1-12, got %d", r.SuccessSingle))
	}
	if r.SuccessDouble < r.SuccessSingle || r.SuccessDouble > 12 {
		errs = append(errs, fmt.Sprintf("rules.success_double must be between rules.success_single and 12, got %d", r.SuccessDouble))
	}
	if r.CarryBase < 0 || r.CarryPerPhysique < 0 || r.SinBase < 0 {
		errs = append(errs, "rules.carry_base, rules.carry_per_physique and rules.sin_base must not be negative")
	}
	if r.LuaInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("rules.lua_instruction_limit must be >= 0, got %d", r.LuaInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Precondition: path is empty or a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and RULEFORGE_ environment
// overrides installed, ready for flag bindings.
//
// Postcondition: Returns a non-nil *viper.Viper.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("RULEFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "ruleforge")
	v.SetDefault("database.password", "ruleforge")
	v.SetDefault("database.name", "ruleforge")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("rules.critical_threshold", 4)
	v.SetDefault("rules.success_single", 8)
	v.SetDefault("rules.success_double", 12)
	v.SetDefault("rules.carry_base", 10)
	v.SetDefault("rules.carry_per_physique", 5)
	v.SetDefault("rules.sin_base", 3)
	v.SetDefault("rules.lua_instruction_limit", 100000)

	v.SetDefault("content.dir", "")
	v.SetDefault("content.scripts_dir", "")
}
