package config

import "os"

// Config carries everything read from the environment. cmd/main.go
// loads .env first, so a local file is enough for development.
type Config struct {
	Addr          string
	DBDSN         string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
}

func Load() Config {
	return Config{
		Addr:          getenv("APP_ADDR", ":8080"),
		DBDSN:         getenv("DB_DSN", "host=localhost user=user password=password dbname=wegochat port=5432 sslmode=disable"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     getenv("JWT_SECRET", "dev-only-secret"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
