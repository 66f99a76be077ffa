package config

import "os"

// Config holds all environment-driven settings
type Config struct {
	Port         string
	DatabaseURL  string
	JWTSecret    string
	RedisURL     string // optional, enables Redis-backed rate limiting
	AllowOrigins string
}

// Load reads configuration from environment variables
func Load() Config {
	return Config{
		Port:         getenv("PORT", "8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		RedisURL:     os.Getenv("REDIS_URL"),
		AllowOrigins: getenv("ALLOW_ORIGINS", "http://localhost:3000"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
