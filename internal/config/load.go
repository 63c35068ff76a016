package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"strings"
)

const envPrefix = "VOLUNTEER"

// bindings lists the environment variables read for each key, in precedence order.
// The unprefixed names are the ones older deployments already export.
var bindings = []struct {
	key  string
	envs []string
}{
	{"server.port", []string{"VOLUNTEER_SERVER_PORT", "PORT"}},
	{"server.log_level", []string{"VOLUNTEER_SERVER_LOG_LEVEL"}},
	{"server.production", []string{"VOLUNTEER_SERVER_PRODUCTION"}},
	{"server.allowed_origins", []string{"VOLUNTEER_SERVER_ALLOWED_ORIGINS"}},
	{"server.request_timeout", []string{"VOLUNTEER_SERVER_REQUEST_TIMEOUT"}},
	{"server.shutdown_timeout", []string{"VOLUNTEER_SERVER_SHUTDOWN_TIMEOUT"}},
	{"database.url", []string{"VOLUNTEER_DATABASE_URL", "DATABASE_URL"}},
	{"database.auto_migrate", []string{"VOLUNTEER_DATABASE_AUTO_MIGRATE"}},
	{"auth.token_secret", []string{"VOLUNTEER_AUTH_TOKEN_SECRET", "ACCESS_TOKEN_SECRET"}},
	{"auth.token_ttl", []string{"VOLUNTEER_AUTH_TOKEN_TTL"}},
	{"environment", []string{"NODE_ENV"}},
}

// Load reads configuration from the optional YAML file at path and from the
// environment. Environment variables take precedence over the file.
// An empty path looks for config.yaml in the working directory and tolerates its absence.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.production", false)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.request_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("auth.token_ttl", "168h")

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "failed to read config file")
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, b := range bindings {
		args := append([]string{b.key}, b.envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, errors.Wrapf(err, "failed to bind env for %s", b.key)
		}
	}

	if v.GetString("environment") == "production" {
		v.Set("server.production", true)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return &cfg, nil
}
