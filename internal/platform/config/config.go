package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	Booking BookingConfig
}

type ServerConfig struct {
	Port         string        `envconfig:"PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"120s"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:""`
	DBName   string `envconfig:"DB_NAME" default:"staybooking"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type RedisConfig struct {
	Host string `envconfig:"REDIS_HOST" default:"localhost"`
	Port string `envconfig:"REDIS_PORT" default:"6379"`
}

type BookingConfig struct {
	// WindowDays is how many AVAILABLE days a newly published stay opens,
	// starting tomorrow.
	WindowDays int `envconfig:"BOOKING_WINDOW_DAYS" default:"30"`
	// TxMaxRetries bounds serialization-failure retries before a
	// transaction surfaces a timeout.
	TxMaxRetries int           `envconfig:"BOOKING_TX_MAX_RETRIES" default:"3"`
	CacheTTL     time.Duration `envconfig:"BOOKING_CACHE_TTL" default:"30s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
