package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"       validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database"     validate:"required"`
	Auth         AuthConfig         `mapstructure:"auth"         validate:"required"`
	Registration RegistrationConfig `mapstructure:"registration" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// ShutdownTimeout is the grace period for in-flight requests on shutdown.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DatabaseConfig selects and configures the document store backend.
type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"       validate:"required,oneof=postgres memory"`
	URL         string `mapstructure:"url"          validate:"required_if=Driver postgres"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BCryptCost           int    `mapstructure:"bcrypt_cost"            validate:"required,gte=4,lte=31"`
}

// TokenLifetime is how long an issued access token stays valid.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// RegistrationConfig tunes the optimistic read-check-write loop used for
// participant lists, newsletter subscribers and reviews.
type RegistrationConfig struct {
	MaxAttempts        int `mapstructure:"max_attempts"         validate:"required,gte=1,lte=20"`
	BaseDelayMS        int `mapstructure:"base_delay_ms"        validate:"required,gt=0"`
	JitterPercent      int `mapstructure:"jitter_percent"       validate:"gte=0,lte=100"`
	OperationTimeoutMS int `mapstructure:"operation_timeout_ms" validate:"required,gt=0"`
}

// BaseDelay is the first backoff interval between attempts.
func (c RegistrationConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMS) * time.Millisecond
}

// OperationTimeout bounds every individual store call.
func (c RegistrationConfig) OperationTimeout() time.Duration {
	return time.Duration(c.OperationTimeoutMS) * time.Millisecond
}
