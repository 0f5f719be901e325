package config

import (
	"os"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
}

// Postgres captures the member store configuration. An empty DSN selects
// the in-memory store.
type Postgres struct {
	DSN string
}

// Redis captures the custom message queue configuration. An empty URL
// selects the in-memory queue.
type Redis struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka captures the notification fan-out configuration. No brokers means
// fan-out is disabled and feeds are served from the API only.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Config is the full runtime configuration for the service.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("KINDRED_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	topic := os.Getenv("KINDRED_KAFKA_TOPIC")
	if topic == "" {
		topic = "kindred.notifications"
	}

	var brokers []string
	if raw := os.Getenv("KINDRED_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Config{
		Server: Server{Addr: addr},
		Postgres: Postgres{
			DSN: os.Getenv("KINDRED_POSTGRES_DSN"),
		},
		Redis: Redis{
			URL:          os.Getenv("KINDRED_REDIS_URL"),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{
			Brokers: brokers,
			Topic:   topic,
		},
	}
}
