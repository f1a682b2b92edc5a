// Package config загружает конфигурацию сервисов IFS.
//
// Источники в порядке приоритета:
//  1. переменные окружения
//  2. YAML-файл (путь из флага или IFS_CONFIG)
//  3. значения по умолчанию
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/shaiso/ifs/internal/domain"
)

// Драйверы хранилища.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config — конфигурация сервиса.
type Config struct {
	// DB — настройки хранилища.
	DB DBConfig `yaml:"db"`

	// Interval — период тиков. Игнорируется, если задан Schedule.
	Interval time.Duration `yaml:"interval"`

	// Schedule — cron-выражение или дескриптор ("@every 10s").
	Schedule string `yaml:"schedule"`

	// Windows — окна упреждения, обрабатываются по порядку.
	Windows []domain.Window `yaml:"windows"`

	// Seed — заполнять пустую таблицу демо-рейсами перед первым тиком.
	Seed bool `yaml:"seed"`

	// InstanceID — идентификатор инстанса, пишется в claimed_by.
	InstanceID string `yaml:"instance_id"`

	// RabbitMQURL — брокер для flight.claimed. Пусто — только лог.
	RabbitMQURL string `yaml:"rabbitmq_url"`

	// WebhookURL — куда отправлять захваченные рейсы POST-запросом. Пусто — не отправлять.
	WebhookURL string `yaml:"webhook_url"`

	// Port — порт HTTP (/healthz, /metrics, /api/v1).
	Port string `yaml:"port"`
}

// DBConfig — настройки хранилища.
type DBConfig struct {
	Driver     string `yaml:"driver"`
	URL        string `yaml:"url"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	return Config{
		DB: DBConfig{
			Driver:     DriverPostgres,
			SQLitePath: "ifs.db",
		},
		Interval: 5 * time.Second,
		Windows:  domain.DefaultWindows(),
		Seed:     true,
		Port:     "8081",
	}
}

// Load читает YAML (если path не пуст), применяет переменные окружения
// и проверяет результат.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("IFS_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = defaultInstanceID()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DB_DRIVER"); v != "" {
		c.DB.Driver = v
	}
	if v := os.Getenv("DB_URL"); v != "" {
		c.DB.URL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.DB.SQLitePath = v
	}
	if v := os.Getenv("IFS_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("IFS_INTERVAL: %w", err)
		}
		c.Interval = d
	}
	if v := os.Getenv("IFS_SCHEDULE"); v != "" {
		c.Schedule = v
	}
	if v := os.Getenv("IFS_SEED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("IFS_SEED: %w", err)
		}
		c.Seed = b
	}
	if v := os.Getenv("IFS_INSTANCE_ID"); v != "" {
		c.InstanceID = v
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		c.RabbitMQURL = v
	}
	if v := os.Getenv("IFS_WEBHOOK_URL"); v != "" {
		c.WebhookURL = v
	}
	if v := os.Getenv("IFS_PORT"); v != "" {
		c.Port = v
	}
	return nil
}

// Validate проверяет конфигурацию.
func (c Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case DriverPostgres:
	case DriverSQLite:
		if c.DB.SQLitePath == "" {
			errs = append(errs, errors.New("db.sqlite_path is required for sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown db.driver %q", c.DB.Driver))
	}

	if c.Schedule == "" && c.Interval < time.Second {
		errs = append(errs, fmt.Errorf("interval must be at least 1s, got %s", c.Interval))
	}
	if len(c.Windows) == 0 {
		errs = append(errs, errors.New("at least one window is required"))
	}
	for _, w := range c.Windows {
		if err := w.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func defaultInstanceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "ifs"
	}
	return host + "-" + uuid.NewString()[:8]
}
