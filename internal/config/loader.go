package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// secrets are bound explicitly so APP_* overrides work even when the file omits the key.
var secrets = []string{"database.dsn", "database.user", "database.password", "database.dbname"}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	for _, key := range secrets {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	v.SetDefault("database.driver", "pgx")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10)

	var config Config
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validator.New().Struct(config.Server); err != nil {
		return nil, fmt.Errorf("server config validation error: %w", err)
	}
	if err := validator.New().Struct(config.Database); err != nil {
		return nil, fmt.Errorf("database config validation error: %w", err)
	}
	if err := validator.New().Struct(config.Classifier); err != nil {
		return nil, fmt.Errorf("classifier config validation error: %w", err)
	}
	return &config, nil
}
