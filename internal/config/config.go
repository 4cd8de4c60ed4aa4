package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go-hrflow/internal/shared/connection"
)

type Config struct {
	Port     string
	Postgres connection.PostgresConfig

	RedisAddr   string
	KafkaBroker string
	JWTSecret   string

	ProbationConfigPath string
	ProbationSweepCron  string
	ScheduleMaxEdits    int

	OutboxPollInterval time.Duration
	ConnectRetries     int
}

// Load reads the process environment. godotenv.Load is expected to have run already.
func Load() (Config, error) {
	cfg := Config{
		Port: getEnv("PORT", "3000"),
		Postgres: connection.PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			Port:     getEnv("DB_PORT", "5432"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		KafkaBroker:         os.Getenv("KAFKA_BROKER"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		ProbationConfigPath: getEnv("PROBATION_CONFIG", "config/probation.yaml"),
		ProbationSweepCron:  getEnv("PROBATION_SWEEP_CRON", "0 6 * * *"),
		ScheduleMaxEdits:    2,
		OutboxPollInterval:  3 * time.Second,
		ConnectRetries:      5,
	}

	if v := os.Getenv("SCHEDULE_MAX_EDITS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid SCHEDULE_MAX_EDITS %q", v)
		}
		cfg.ScheduleMaxEdits = n
	}
	if v := os.Getenv("OUTBOX_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OUTBOX_POLL_INTERVAL %q: %w", v, err)
		}
		cfg.OutboxPollInterval = d
	}

	return cfg, nil
}

func (c Config) RequireKafka() error {
	if c.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
