package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// GatingPolicy decides how NFT ownership maps to purchasable quantity.
type GatingPolicy string

const (
	// GatingBoolean: holding any token from the collection unlocks any quantity.
	GatingBoolean GatingPolicy = "boolean"
	// GatingPerUnit: one owned token unlocks one unit.
	GatingPerUnit GatingPolicy = "per-unit"
)

type Config struct {
	Port           string
	DBDSN          string
	AMQPURL        string
	ChainAPIURL    string
	PaymentAPIURL  string
	OracleTimeout  time.Duration
	PaymentTimeout time.Duration
	OracleCacheTTL time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration
	Gating         GatingPolicy
	LogFile        string
}

func Load() Config {
	cfg := Config{
		Port:           env("PORT", "8080"),
		DBDSN:          env("DB_DSN", "mintmart.db"),
		AMQPURL:        env("AMQP_URL", ""), // empty -> events disabled
		ChainAPIURL:    env("CHAIN_API_URL", ""),
		PaymentAPIURL:  env("PAYMENT_API_URL", ""),
		OracleTimeout:  envMillis("ORACLE_TIMEOUT_MS", 3000),
		PaymentTimeout: envMillis("PAYMENT_TIMEOUT_MS", 5000),
		OracleCacheTTL: envMillis("ORACLE_CACHE_TTL_MS", 2000),
		RetryAttempts:  envInt("RETRY_MAX_ATTEMPTS", 3),
		RetryBaseDelay: envMillis("RETRY_BASE_DELAY_MS", 100),
		Gating:         GatingBoolean,
		LogFile:        env("LOG_FILE", "./mintmart.log"),
	}
	if os.Getenv("GATING_POLICY") == string(GatingPerUnit) {
		cfg.Gating = GatingPerUnit
	}
	log.Printf("[config] PORT=%s DB_DSN=%s GATING_POLICY=%s RETRY_MAX_ATTEMPTS=%d",
		cfg.Port, cfg.DBDSN, cfg.Gating, cfg.RetryAttempts)
	return cfg
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envMillis(key string, def int) time.Duration {
	return time.Duration(envInt(key, def)) * time.Millisecond
}
