package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileEnv names the environment variable holding an optional YAML config file.
const FileEnv = "STATIONWATCH_CONFIG"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration
	// SQLiteLogSQL logs every statement at debug level.
	SQLiteLogSQL bool

	MQTTBroker   string
	MQTTPort     int
	MQTTTopic    string
	MQTTClientID string
}

// raw mirrors the file and environment keys before validation.
type raw struct {
	AppEnv          string `koanf:"app_env"`
	LogLevel        string `koanf:"log_level"`
	HTTPAddr        string `koanf:"http_addr"`
	DBDriver        string `koanf:"db_driver"`
	DBDSN           string `koanf:"db_dsn"`
	SQLitePath      string `koanf:"sqlite_path"`
	MaxOpenConns    int    `koanf:"db_max_open_conns"`
	MaxIdleConns    int    `koanf:"db_max_idle_conns"`
	ConnMaxLifetime string `koanf:"db_conn_max_lifetime"`
	LogSQL          bool   `koanf:"db_log_sql"`
	MQTTBroker      string `koanf:"mqtt_broker"`
	MQTTPort        int    `koanf:"mqtt_port"`
	MQTTTopic       string `koanf:"mqtt_topic"`
	MQTTClientID    string `koanf:"mqtt_client_id"`
}

func defaults() raw {
	return raw{
		AppEnv:          "dev",
		LogLevel:        "info",
		HTTPAddr:        ":8080",
		DBDriver:        "sqlite3",
		SQLitePath:      "../dev/sqlite/app.db",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: "0s",
		MQTTBroker:      "localhost",
		MQTTPort:        1883,
		MQTTTopic:       "stations/+/telemetry",
		MQTTClientID:    "stationwatch",
	}
}

// knownKeys limits the environment provider to the variables above.
var knownKeys = map[string]bool{
	"app_env": true, "log_level": true, "http_addr": true,
	"db_driver": true, "db_dsn": true, "sqlite_path": true,
	"db_max_open_conns": true, "db_max_idle_conns": true,
	"db_conn_max_lifetime": true, "db_log_sql": true,
	"mqtt_broker": true, "mqtt_port": true, "mqtt_topic": true, "mqtt_client_id": true,
}

// Load layers defaults, the YAML file named by STATIONWATCH_CONFIG (if set)
// and environment variables, in that order of precedence, then validates.
func Load() (Config, error) {
	k := koanf.New(".")

	if path := strings.TrimSpace(os.Getenv(FileEnv)); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	// Blank variables fall back to the lower layers, as unset ones do.
	envProvider := env.ProviderWithValue("", ".", func(name, value string) (string, interface{}) {
		key := strings.ToLower(name)
		value = strings.TrimSpace(value)
		if !knownKeys[key] || value == "" {
			return "", nil
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	r := defaults()
	if err := k.UnmarshalWithConf("", &r, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return r.validate()
}

func (r raw) validate() (Config, error) {
	appEnv := strings.TrimSpace(r.AppEnv)
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("%w: invalid APP_ENV %q (allowed: dev, prod)", ErrInvalidConfig, appEnv)
	}

	level, err := parseLogLevel(r.LogLevel)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(r.HTTPAddr)
	if httpAddr == "" {
		return Config{}, fmt.Errorf("%w: HTTP_ADDR must not be empty", ErrInvalidConfig)
	}

	connMaxLifetime, err := time.ParseDuration(strings.TrimSpace(r.ConnMaxLifetime))
	if err != nil {
		return Config{}, fmt.Errorf("%w: invalid DB_CONN_MAX_LIFETIME %q: %v", ErrInvalidConfig, r.ConnMaxLifetime, err)
	}

	if r.MQTTPort < 1 || r.MQTTPort > 65535 {
		return Config{}, fmt.Errorf("%w: MQTT_PORT %d out of range (1-65535)", ErrInvalidConfig, r.MQTTPort)
	}
	if strings.TrimSpace(r.MQTTTopic) == "" {
		return Config{}, fmt.Errorf("%w: MQTT_TOPIC must not be empty", ErrInvalidConfig)
	}

	return Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		HTTPAddr:              httpAddr,
		SQLiteDriver:          strings.TrimSpace(r.DBDriver),
		SQLiteDSN:             strings.TrimSpace(r.DBDSN),
		SQLitePath:            strings.TrimSpace(r.SQLitePath),
		SQLiteMaxOpenConns:    r.MaxOpenConns,
		SQLiteMaxIdleConns:    r.MaxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
		SQLiteLogSQL:          r.LogSQL,
		MQTTBroker:            strings.TrimSpace(r.MQTTBroker),
		MQTTPort:              r.MQTTPort,
		MQTTTopic:             strings.TrimSpace(r.MQTTTopic),
		MQTTClientID:          strings.TrimSpace(r.MQTTClientID),
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", ErrInvalidConfig, s)
	}
}
