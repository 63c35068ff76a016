package config

import "time"

type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// Production switches the session cookie to Secure with SameSite=None.
	Production      bool          `mapstructure:"production"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" validate:"required,min=1,dive,url"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"required,gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`
}

type DatabaseConfig struct {
	URL         string `mapstructure:"url" validate:"required,url"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type AuthConfig struct {
	TokenSecret string        `mapstructure:"token_secret" validate:"required,min=32"`
	TokenTTL    time.Duration `mapstructure:"token_ttl" validate:"required,gt=0"`
}
