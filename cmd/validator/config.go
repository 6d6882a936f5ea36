package main

import (
	"os"
	"strconv"
	"time"
)

// config holds the validator service's runtime settings, read from
// environment variables with sensible defaults. Grounded on the
// teacher's own config layer, which reads every setting from the
// environment rather than a config file.
type config struct {
	ListenAddr      string
	DgraphAddr      string
	MySQLDSN        string
	RateLimit       int
	RateWindow      time.Duration
	ReplayRetention time.Duration
	WorkerCount     int
}

func loadConfig() config {
	return config{
		ListenAddr:      getEnv("VALIDATOR_LISTEN_ADDR", ":8080"),
		DgraphAddr:      getEnv("VALIDATOR_DGRAPH_ADDR", "localhost:9080"),
		MySQLDSN:        getEnv("VALIDATOR_MYSQL_DSN", ""),
		RateLimit:       getEnvInt("VALIDATOR_RATE_LIMIT", 30),
		RateWindow:      getEnvDuration("VALIDATOR_RATE_WINDOW", time.Minute),
		ReplayRetention: getEnvDuration("VALIDATOR_REPLAY_RETENTION", 10*time.Minute),
		WorkerCount:     getEnvInt("VALIDATOR_WORKER_COUNT", 4),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
