// README: Config loader with env defaults for HTTP, DB, Redis, Kafka,
// dispatch, notification, and payment settings.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type DispatchConfig struct {
	RadiusKm float64
}

type Config struct {
	HTTP struct {
		Addr            string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	Kafka struct {
		Brokers []string
		Topic   string
		GroupID string
	}
	Dispatch DispatchConfig
	FCM      struct {
		Endpoint string
		Key      string
	}
	Stripe struct {
		Key      string
		Currency string
	}
	Maps struct {
		APIKey string
	}
	Log struct {
		Level string
	}
}

func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = envOrDefault("RIDE_HTTP_ADDR", ":8080")
	cfg.HTTP.ReadTimeout = envOrDefaultDuration("RIDE_HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.HTTP.WriteTimeout = envOrDefaultDuration("RIDE_HTTP_WRITE_TIMEOUT", 15*time.Second)
	cfg.HTTP.ShutdownTimeout = envOrDefaultDuration("RIDE_HTTP_SHUTDOWN_TIMEOUT", 10*time.Second)
	cfg.DB.DSN = envOrDefault("RIDE_DB_DSN", "")
	cfg.Redis.Addr = envOrDefault("RIDE_REDIS_ADDR", "")
	cfg.Kafka.Brokers = envOrDefaultList("RIDE_KAFKA_BROKERS", nil)
	cfg.Kafka.Topic = envOrDefault("RIDE_KAFKA_TOPIC", "driver-locations")
	cfg.Kafka.GroupID = envOrDefault("RIDE_KAFKA_GROUP", "ride-dispatch")
	cfg.Dispatch.RadiusKm = envOrDefaultFloat("RIDE_DISPATCH_RADIUS_KM", 5.0)
	cfg.FCM.Endpoint = envOrDefault("RIDE_FCM_ENDPOINT", "")
	cfg.FCM.Key = envOrDefault("RIDE_FCM_KEY", "")
	cfg.Stripe.Key = envOrDefault("RIDE_STRIPE_KEY", "")
	cfg.Stripe.Currency = envOrDefault("RIDE_STRIPE_CURRENCY", "inr")
	cfg.Maps.APIKey = envOrDefault("RIDE_MAPS_API_KEY", "")
	cfg.Log.Level = envOrDefault("RIDE_LOG_LEVEL", "info")
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
