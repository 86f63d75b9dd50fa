package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string

	ServerPort int

	DatabaseURL string
	DBLogLevel  string

	JWTSecret      []byte
	AccessTokenTTL time.Duration
	BcryptCost     int

	KafkaBrokers []string
	EventBuffer  int

	LoginRatePerMinute int
	CORSOrigins        []string

	LogLevel string
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBLogLevel:  EnvDefault("DB_LOG_LEVEL", "warn"),

		JWTSecret:      []byte(os.Getenv("JWT_SECRET")),
		AccessTokenTTL: time.Duration(EnvIntDefault("ACCESS_TOKEN_TTL_MINUTES", 30)) * time.Minute,
		BcryptCost:     EnvIntDefault("BCRYPT_COST", 0),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		EventBuffer:  EnvIntDefault("EVENT_BUFFER", 256),

		LoginRatePerMinute: EnvIntDefault("LOGIN_RATE_PER_MINUTE", 5),
		CORSOrigins:        CSV(os.Getenv("CORS_ORIGINS")),

		LogLevel: EnvDefault("LOG_LEVEL", "info"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
