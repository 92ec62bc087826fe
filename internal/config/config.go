package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// ErrInvalidConfig возвращается при некорректных значениях конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server         ServerConfig        `toml:"server"`
	Database       DatabaseConfig      `toml:"database"`
	Logs           LogsConfig          `toml:"logs"`
	Metrics        MetricsConfig       `toml:"metrics"`
	Redis          RedisConfig         `toml:"redis"`
	CatalogService ServiceClientConfig `toml:"catalog_service"`
	Engine         EngineConfig        `toml:"engine"`
	Booking        BookingConfig       `toml:"booking"`
	RateLimit      RateLimitConfig     `toml:"rate_limit"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN возвращает строку подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// RedisConfig настройки Redis (хранилище ключей идемпотентности)
type RedisConfig struct {
	Enabled            bool   `toml:"enabled"`
	Addr               string `toml:"addr"`
	Password           string `toml:"password"`
	DB                 int    `toml:"db"`
	IdempotencyTTLSecs int    `toml:"idempotency_ttl"`
}

// ServiceClientConfig настройки HTTP клиента внешнего сервиса
type ServiceClientConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// EngineConfig настройки движка доступности
type EngineConfig struct {
	// Границы рабочего дня для исключений "доступен весь день"
	DefaultDayStart string `toml:"default_day_start"`
	DefaultDayEnd   string `toml:"default_day_end"`
	// Шаг сетки слотов в минутах
	SlotGranularityMinutes int `toml:"slot_granularity_minutes"`
}

// BookingConfig бизнес-ограничения на бронирование
type BookingConfig struct {
	AdvanceBookingDays      int `toml:"advance_booking_days"` // 0 = без ограничений
	MinBookingNoticeMinutes int `toml:"min_booking_notice_minutes"`
	MaxCalendarDays         int `toml:"max_calendar_days"`
}

// RateLimitConfig ограничение частоты создания бронирований на пользователя
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	IdleTTLSeconds    int     `toml:"idle_ttl_seconds"`
}

// Load загружает конфигурацию из TOML файла
// Перед загрузкой подхватывает .env (если есть), секреты можно переопределить переменными окружения
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "barber",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			ServiceName: "barber-service",
			Path:        "/metrics",
		},
		Redis: RedisConfig{
			Addr:               "localhost:6379",
			IdempotencyTTLSecs: 86400,
		},
		CatalogService: ServiceClientConfig{
			URL:     "http://localhost:8081",
			Timeout: 5,
		},
		Engine: EngineConfig{
			DefaultDayStart:        "08:00",
			DefaultDayEnd:          "18:00",
			SlotGranularityMinutes: 30,
		},
		Booking: BookingConfig{
			AdvanceBookingDays:      60,
			MinBookingNoticeMinutes: 60,
			MaxCalendarDays:         62,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 1,
			Burst:             5,
			IdleTTLSeconds:    600,
		},
	}
}

// applyEnv переопределяет значения переменными окружения
func applyEnv(cfg *Config) error {
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: DB_PORT: %v", ErrInvalidConfig, err)
		}
		cfg.Database.Port = port
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.DBName = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("CATALOG_SERVICE_URL"); v != "" {
		cfg.CatalogService.URL = v
	}
	return nil
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("%w: server.http_port must be positive", ErrInvalidConfig)
	}

	start, err := types.NewTimeStringFromString(c.Engine.DefaultDayStart)
	if err != nil {
		return fmt.Errorf("%w: engine.default_day_start: %v", ErrInvalidConfig, err)
	}
	end, err := types.NewTimeStringFromString(c.Engine.DefaultDayEnd)
	if err != nil {
		return fmt.Errorf("%w: engine.default_day_end: %v", ErrInvalidConfig, err)
	}
	if !start.IsBefore(end) {
		return fmt.Errorf("%w: engine.default_day_start must be before default_day_end", ErrInvalidConfig)
	}
	if c.Engine.SlotGranularityMinutes <= 0 {
		return fmt.Errorf("%w: engine.slot_granularity_minutes must be positive", ErrInvalidConfig)
	}

	if c.Booking.AdvanceBookingDays < 0 || c.Booking.MinBookingNoticeMinutes < 0 {
		return fmt.Errorf("%w: booking limits must not be negative", ErrInvalidConfig)
	}
	if c.Booking.MaxCalendarDays <= 0 {
		return fmt.Errorf("%w: booking.max_calendar_days must be positive", ErrInvalidConfig)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 || c.RateLimit.IdleTTLSeconds <= 0) {
		return fmt.Errorf("%w: rate_limit requires positive requests_per_second, burst and idle_ttl_seconds", ErrInvalidConfig)
	}

	return nil
}
