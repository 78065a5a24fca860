package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"cncraft/internal/database"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Config struct {
	Port string
	DB   DB

	Redis    Redis
	Kafka    Kafka
	Stripe   Stripe
	Delivery Delivery
}

type DB struct {
	database.Config
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Kafka struct {
	Brokers    []string
	EmailTopic string
}

type Stripe struct {
	PublicKey     string
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration
}

// Delivery carries the storefront pricing knobs. They are explicit
// configuration, not ambient globals: the totals calculator receives them
// on every call.
type Delivery struct {
	FreeDeliveryThreshold      decimal.Decimal
	StandardDeliveryPercentage decimal.Decimal
	Currency                   string
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Port: getEnv("APP_PORT", log),
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnv("DB_SSLMODE", log),
			},
		},
		Redis: Redis{
			Addr:     getEnv("REDIS_ADDR", log),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       atoiDefault(os.Getenv("REDIS_DB"), 0),
		},
		Kafka: Kafka{
			Brokers:    splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			EmailTopic: envDefault("KAFKA_TOPIC_EMAIL", "email-notifications"),
		},
		Stripe: Stripe{
			PublicKey:     os.Getenv("STRIPE_PUBLIC_KEY"),
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WH_SECRET"),
			Timeout:       time.Duration(atoiDefault(os.Getenv("STRIPE_TIMEOUT_SECONDS"), 15)) * time.Second,
		},
		Delivery: Delivery{
			FreeDeliveryThreshold:      decimalDefault(os.Getenv("FREE_DELIVERY_THRESHOLD"), "100"),
			StandardDeliveryPercentage: decimalDefault(os.Getenv("STANDARD_DELIVERY_PERCENTAGE"), "10"),
			Currency:                   envDefault("CURRENCY", "usd"),
		},
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("required environment variable is not set", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func envDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return def
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func decimalDefault(s, def string) decimal.Decimal {
	if s != "" {
		if d, err := decimal.NewFromString(s); err == nil {
			return d
		}
	}
	return decimal.RequireFromString(def)
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
