package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from the process environment. An
// optional .env file in the working directory is loaded first; variables
// already exported win over the file.
//
// Recognized variables:
//
//	APP_ENV              development | production | test
//	ADDRESS              HTTP bind address, e.g. ":3000"
//	DATABASE_DSN         PostgreSQL DSN
//	DB_POOL_SIZE         max open connections
//	REDIS_URL            counter-store URL
//	FRONTEND_URL         allowed CORS origin
//	JWT_SECRET           access-token signing secret
//	JWT_REFRESH_SECRET   refresh-token signing secret
//	ACCESS_TOKEN_TTL     Go duration, e.g. "15m"
//	REFRESH_TOKEN_TTL    Go duration, e.g. "168h"
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString(&config.Env, "APP_ENV")
	setString(&config.EndpointAddrHTTP, "ADDRESS")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setInt(&config.DBMaxOpenConns, "DB_POOL_SIZE")
	setString(&config.RedisURL, "REDIS_URL")
	setString(&config.FrontendURL, "FRONTEND_URL")
	setString(&config.AccessTokenSecret, "JWT_SECRET")
	setString(&config.RefreshTokenSecret, "JWT_REFRESH_SECRET")
	setDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	setDuration(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_TTL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
