package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ecolocker/internal/core/application/usecases/commands"
	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/jobs"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort   string
	LogLevel   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RabbitURL              string
	KafkaBrokers           []string
	KafkaOrderChangedTopic string
	RedisAddr              string
	MongoURI               string
	MongoDatabase          string
	RewardsBaseURL         string
	OTelEndpoint           string

	Orders    commands.Settings
	Schedules jobs.Schedules
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return configFromEnv(os.Getenv)
}

func configFromEnv(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}
	p := parser{env: env}
	defaults := commands.DefaultSettings()

	cfg := Config{
		HTTPPort:   env("HTTP_PORT", "8080"),
		LogLevel:   env("LOG_LEVEL", "info"),
		DBHost:     env("DB_HOST", "localhost"),
		DBPort:     env("DB_PORT", "5432"),
		DBUser:     env("DB_USER", "postgres"),
		DBPassword: env("DB_PASSWORD", ""),
		DBName:     env("DB_NAME", "ecolocker"),
		DBSslMode:  env("DB_SSLMODE", "disable"),

		RabbitURL:              env("RABBIT_URL", ""),
		KafkaBrokers:           splitList(env("KAFKA_BROKERS", "")),
		KafkaOrderChangedTopic: env("KAFKA_ORDER_CHANGED_TOPIC", "ecolocker.order.status_changed"),
		RedisAddr:              env("REDIS_ADDR", ""),
		MongoURI:               env("MONGO_URI", ""),
		MongoDatabase:          env("MONGO_DATABASE", "ecolocker"),
		RewardsBaseURL:         env("REWARDS_BASE_URL", ""),
		OTelEndpoint:           env("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		Orders: commands.Settings{
			DeliveryFee:      p.money("DELIVERY_FEE", defaults.DeliveryFee),
			PaymentWindow:    p.duration("PAYMENT_WINDOW", defaults.PaymentWindow),
			PickupWindow:     p.duration("PICKUP_WINDOW", defaults.PickupWindow),
			DropOffPoints:    p.integer("DROP_OFF_POINTS", defaults.DropOffPoints),
			RequeueThreshold: p.duration("REQUEUE_THRESHOLD", defaults.RequeueThreshold),
			RequeueRetries:   uint64(p.integer("REQUEUE_MAX_RETRIES", int(defaults.RequeueRetries))), //nolint:gosec // checked non-negative
			SweepBatchSize:   p.integer("SWEEP_BATCH_SIZE", defaults.SweepBatchSize),
		},
		Schedules: jobs.Schedules{
			ReservationTimeout:   env("RESERVATION_SWEEP_SCHEDULE", ""),
			PickupExpiry:         env("PICKUP_EXPIRY_SWEEP_SCHEDULE", ""),
			CompartmentReconcile: env("COMPARTMENT_RECONCILE_SCHEDULE", ""),
		},
	}
	return cfg, p.err
}

func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// parser collects every malformed key instead of stopping at the first.
type parser struct {
	env func(key, fallback string) string
	err error
}

func (p *parser) fail(key, raw string, err error) {
	p.err = errors.Join(p.err, fmt.Errorf("%s=%q: %w", key, raw, err))
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := p.env(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err == nil && d <= 0 {
		err = errors.New("must be positive")
	}
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return d
}

func (p *parser) integer(key string, fallback int) int {
	raw := p.env(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err == nil && n < 0 {
		err = errors.New("must not be negative")
	}
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return n
}

func (p *parser) money(key string, fallback kernel.Money) kernel.Money {
	raw := p.env(key, "")
	if raw == "" {
		return fallback
	}
	m, err := kernel.MoneyFromString(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return m
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
