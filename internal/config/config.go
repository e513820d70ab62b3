package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/maxviazov/persistence-guard/internal/logger"
)

type Config struct {
	Logger     logger.LoggerConfig `mapstructure:"logger"`
	Server     ServerConfig        `mapstructure:"server"`
	Database   DatabaseConfig      `mapstructure:"database"`
	Classifier ClassifierConfig    `mapstructure:"classifier"`
}

// ServerConfig is only read by the serve command.
type ServerConfig struct {
	Addr            string `mapstructure:"addr" validate:"required"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// DatabaseConfig selects the backend. Driver "pgx" goes through pgxpool, the rest through database/sql.
type DatabaseConfig struct {
	Driver            string `mapstructure:"driver" validate:"oneof=pgx postgres mysql sqlite"`
	DSN               string `mapstructure:"dsn" validate:"required_if=Driver mysql,required_if=Driver sqlite"`
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"dbname"`
	SSLMode           string `mapstructure:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns          int32  `mapstructure:"max_conns" validate:"gte=0"`
	MinConns          int32  `mapstructure:"min_conns" validate:"gte=0"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime" validate:"gte=0"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time" validate:"gte=0"`
	HealthCheckPeriod int    `mapstructure:"health_check_period" validate:"gte=0"`
}

// ClassifierConfig extends (or, with DisableDefaults, replaces) the built-in duplicate allow-list.
type ClassifierConfig struct {
	SQLStates       []string `mapstructure:"sqlstates" validate:"dive,len=2|len=5"`
	MySQLNumbers    []uint16 `mapstructure:"mysql_numbers"`
	SQLiteCodes     []int    `mapstructure:"sqlite_codes" validate:"dive,gt=0"`
	Markers         []string `mapstructure:"markers" validate:"dive,required"`
	DisableDefaults bool     `mapstructure:"disable_defaults"`
}

// ConnString returns DSN when set, otherwise builds a postgres URL from the discrete fields.
func (d DatabaseConfig) ConnString() (string, error) {
	if d.DSN != "" {
		return d.DSN, nil
	}
	if d.Driver != "pgx" && d.Driver != "postgres" {
		return "", fmt.Errorf("database.dsn is required for driver %q", d.Driver)
	}
	if d.Host == "" || d.DBName == "" {
		return "", errors.New("database.host and database.dbname are required when dsn is empty")
	}
	port := d.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", d.Host, port),
		Path:   d.DBName,
	}
	if d.User != "" || d.Password != "" {
		u.User = url.UserPassword(d.User, d.Password)
	}
	q := u.Query()
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
