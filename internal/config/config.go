package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/shopspring/decimal"
)

const envPrefix = "PHOTOBOOTH_"

type Config struct {
	Primary    Primary          `koanf:"primary"`
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	HitPay     HitPayConfig     `koanf:"hitpay"`
	SecureLink SecureLinkConfig `koanf:"secure_link"`
	Storage    StorageConfig    `koanf:"storage"`
	Admin      AdminConfig      `koanf:"admin"`
	Logger     LoggerConfig     `koanf:"logger"`
	Worker     WorkerConfig     `koanf:"worker"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Frames     []FrameConfig    `koanf:"frames" validate:"dive"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	BaseURL      string        `koanf:"base_url" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
	// AllowedIPs restricts the kiosk routes. Empty allows every client.
	AllowedIPs []string `koanf:"allowed_ips"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

type RedisConfig struct {
	Addr       string        `koanf:"addr" validate:"required"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	SessionTTL time.Duration `koanf:"session_ttl" validate:"required"`
}

type HitPayConfig struct {
	BaseURL    string        `koanf:"base_url" validate:"required"`
	APIKey     string        `koanf:"api_key" validate:"required"`
	Salt       string        `koanf:"salt" validate:"required"`
	Currency   string        `koanf:"currency" validate:"required"`
	Timeout    time.Duration `koanf:"timeout" validate:"required"`
	PaymentTTL time.Duration `koanf:"payment_ttl" validate:"required"`
}

type SecureLinkConfig struct {
	Secret string `koanf:"secret" validate:"required"`
}

type StorageConfig struct {
	OriginalDir string `koanf:"original_dir" validate:"required"`
	PreviewDir  string `koanf:"preview_dir" validate:"required"`
	AIDir       string `koanf:"ai_dir" validate:"required"`
}

type AdminConfig struct {
	Username     string        `koanf:"username" validate:"required"`
	PasswordHash string        `koanf:"password_hash" validate:"required"`
	TokenSecret  string        `koanf:"token_secret" validate:"required"`
	TokenTTL     time.Duration `koanf:"token_ttl" validate:"required"`
}

type WorkerConfig struct {
	Interval     time.Duration `koanf:"interval" validate:"required"`
	AbandonAfter time.Duration `koanf:"abandon_after" validate:"required"`
	BatchSize    int           `koanf:"batch_size" validate:"required"`
}

type MetricsConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type FrameConfig struct {
	Key    string `koanf:"key" validate:"required"`
	Label  string `koanf:"label" validate:"required"`
	Price  string `koanf:"price" validate:"required"`
	Width  int    `koanf:"width" validate:"required"`
	Height int    `koanf:"height" validate:"required"`
}

type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func (c LoggerConfig) NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// FrameCatalog builds the catalog from configuration, falling back to the
// built-in sizes when none are configured.
func (c *Config) FrameCatalog() (domain.FrameCatalog, error) {
	if len(c.Frames) == 0 {
		return domain.DefaultFrameCatalog(), nil
	}

	frames := make([]domain.Frame, 0, len(c.Frames))
	for _, f := range c.Frames {
		price, err := decimal.NewFromString(f.Price)
		if err != nil {
			return nil, fmt.Errorf("frame %s: invalid price %q: %w", f.Key, f.Price, err)
		}
		frames = append(frames, domain.Frame{
			Key:    f.Key,
			Label:  f.Label,
			Price:  price,
			Width:  f.Width,
			Height: f.Height,
		})
	}
	return domain.NewFrameCatalog(frames...), nil
}

func defaults() map[string]any {
	return map[string]any{
		"primary.env":                 "development",
		"server.port":                 "5000",
		"server.read_timeout":         "15s",
		"server.write_timeout":        "15s",
		"server.idle_timeout":         "60s",
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     10,
		"database.max_idle_conns":     2,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"redis.session_ttl":           "24h",
		"hitpay.base_url":             "https://api.sandbox.hit-pay.com",
		"hitpay.currency":             "SGD",
		"hitpay.timeout":              "10s",
		"hitpay.payment_ttl":          "10m",
		"storage.original_dir":        "images/full",
		"storage.preview_dir":         "images/preview",
		"storage.ai_dir":              "images/ai",
		"admin.token_ttl":             "8h",
		"logger.level":                "info",
		"logger.format":               "text",
		"worker.interval":             "1m",
		"worker.abandon_after":        "1h",
		"worker.batch_size":           50,
		"metrics.path":                "/metrics",
	}
}

// LoadConfig layers built-in defaults, an optional YAML file and
// PHOTOBOOTH_SECTION__KEY environment variables, in that order.
func LoadConfig(path string) (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		logger.Error("failed to load defaults", "error", err)
		return nil, err
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			logger.Error("failed to load config file", "path", path, "error", err)
			return nil, err
		}
	}

	err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		key = strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(key, envPrefix)),
			"__",
			".",
		)
		if key == "server.allowed_ips" {
			return key, splitList(value)
		}
		return key, value
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
