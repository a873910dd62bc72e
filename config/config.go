package config

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Port               string            `mapstructure:"PORT" validate:"required"`
	InternalAuthHeader string            `mapstructure:"INTERNAL_AUTH_HEADER" validate:"required"`
	Db                 DbConfig          `mapstructure:",squash"`
	Jwt                JwtConfig         `mapstructure:",squash"`
	Nats               NatsConfig        `mapstructure:",squash"`
	Reservation        ReservationConfig `mapstructure:",squash"`
}

type DbConfig struct {
	Host     string `mapstructure:"DB_HOST" validate:"required"`
	Port     string `mapstructure:"DB_PORT" validate:"required"`
	Username string `mapstructure:"DB_USERNAME" validate:"required"`
	Password string `mapstructure:"DB_PASSWORD" validate:"required"`
	DbName   string `mapstructure:"DB_DBNAME" validate:"required"`
	SSLMode  string `mapstructure:"DB_SSLMODE"`
}

type JwtConfig struct {
	SecretKey string `mapstructure:"JWT_SECRETKEY" validate:"required"`
}

type NatsConfig struct {
	Url        string `mapstructure:"NATS_URL" validate:"required"`
	StreamName string `mapstructure:"NATS_STREAM_NAME" validate:"required"`
}

type ReservationConfig struct {
	// WindowMinutes is how long a reservation holds stock before lapsing.
	// The window slides: every successful reserve resets it.
	WindowMinutes int64 `mapstructure:"RESERVATION_WINDOW_MINUTES" validate:"required,gt=0"`
	// SweepIntervalSeconds is how often the reclaimer purges expired rows.
	SweepIntervalSeconds int64 `mapstructure:"SWEEP_INTERVAL_SECONDS" validate:"required,gt=0"`
}

func (r ReservationConfig) Window() time.Duration {
	return time.Duration(r.WindowMinutes) * time.Minute
}

func (r ReservationConfig) SweepInterval() time.Duration {
	return time.Duration(r.SweepIntervalSeconds) * time.Second
}

func InitConfig(ctx context.Context) (*Config, error) {
	var cfg Config

	viper.Reset()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetConfigType("env")

	// Try to load from .env file if it exists
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}

	_, err := os.Stat(envFile)
	if !os.IsNotExist(err) {
		viper.SetConfigFile(envFile)

		if err := viper.ReadInConfig(); err != nil {
			slog.WarnContext(ctx, "[InitConfig] ReadInConfig warning, continuing with env vars only", "error", err)
		} else {
			slog.InfoContext(ctx, "[InitConfig] Successfully loaded config file", "file", envFile)
		}
	} else {
		slog.InfoContext(ctx, "[InitConfig] No config file found, using environment variables")
	}

	viper.AutomaticEnv()

	viper.SetDefault("RESERVATION_WINDOW_MINUTES", 30)
	viper.SetDefault("SWEEP_INTERVAL_SECONDS", 60)

	envVars := []string{
		"PORT",
		"DB_HOST",
		"DB_PORT",
		"DB_USERNAME",
		"DB_PASSWORD",
		"DB_DBNAME",
		"DB_SSLMODE",
		"JWT_SECRETKEY",
		"NATS_URL",
		"NATS_STREAM_NAME",
		"INTERNAL_AUTH_HEADER",
		"RESERVATION_WINDOW_MINUTES",
		"SWEEP_INTERVAL_SECONDS",
	}

	// Bind environment variables explicitly to ensure they're mapped correctly
	for _, key := range envVars {
		viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		slog.ErrorContext(ctx, "[InitConfig] Unmarshal", "failed bind config", err)
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if ok {
			for _, validationErr := range validationErrs {
				slog.ErrorContext(ctx, "[InitConfig] Validation error",
					"field", validationErr.Field(),
					"namespace", validationErr.Namespace(),
					"tag", validationErr.Tag(),
					"value", validationErr.Value())
			}
		} else {
			slog.ErrorContext(ctx, "[InitConfig] Validation", "error", err)
		}
		return nil, err
	}

	slog.InfoContext(ctx, "[InitConfig] Config loaded successfully",
		"PORT", cfg.Port,
		"DB_HOST", cfg.Db.Host,
		"DB_DBNAME", cfg.Db.DbName,
		"NATS_STREAM_NAME", cfg.Nats.StreamName,
		"RESERVATION_WINDOW_MINUTES", cfg.Reservation.WindowMinutes,
		"SWEEP_INTERVAL_SECONDS", cfg.Reservation.SweepIntervalSeconds)
	return &cfg, nil
}
