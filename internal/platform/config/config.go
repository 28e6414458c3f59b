// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	id "cubemint/pkg/domain"
)

// Config is the full process configuration.
type Config struct {
	Server    Server
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Sale      SaleConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	JWTSigningKey   string
	JWTIssuer       string
	JWTAudience     string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
	// AuditBuffer is the async publisher queue size.
	AuditBuffer int
}

// SaleConfig seeds the sale on first start. Once a sale row exists in the
// database it wins over these values.
type SaleConfig struct {
	Administrator id.Identity
	// PublicPhaseStart is zero when unset; the sale then starts presale now
	// and goes public after the default presale duration.
	PublicPhaseStart time.Time
	UnitPrice        *big.Int
	MetadataBase     string
	FreeSupplyCap    uint64
	MaxSupply        uint64
	WhitelistHasher  string
}

type RateLimitConfig struct {
	// MintPerMinute is the mint attempts allowed per caller per minute.
	// Zero disables the limiter.
	MintPerMinute int
}

const (
	defaultAddr          = ":8080"
	defaultSigningKey    = "dev-secret-key-change-in-production"
	defaultFreeSupplyCap = 1000
	defaultMaxSupply     = 10000
	defaultMintPerMinute = 10
)

// FromEnv builds the configuration from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []error
	p := parser{errs: &errs}

	cfg := Config{
		Server: Server{
			Addr:            p.str("CUBEMINT_ADDR", defaultAddr),
			JWTSigningKey:   p.str("JWT_SIGNING_KEY", defaultSigningKey),
			JWTIssuer:       p.str("JWT_ISSUER", "cubemint"),
			JWTAudience:     p.str("JWT_AUDIENCE", "cubemint-api"),
			ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    p.int("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    p.int("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: p.duration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     p.int("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.int("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic:  p.str("KAFKA_AUDIT_TOPIC", "cubemint.audit"),
			AuditBuffer: p.int("AUDIT_BUFFER", 1024),
		},
		Sale: SaleConfig{
			MetadataBase:    p.str("SALE_METADATA_BASE", "ipfs://"),
			FreeSupplyCap:   p.uint("SALE_FREE_SUPPLY_CAP", defaultFreeSupplyCap),
			MaxSupply:       p.uint("SALE_MAX_SUPPLY", defaultMaxSupply),
			WhitelistHasher: os.Getenv("WHITELIST_HASHER"),
		},
		RateLimit: RateLimitConfig{
			MintPerMinute: p.int("MINT_RATE_LIMIT_PER_MINUTE", defaultMintPerMinute),
		},
		LogLevel: p.str("LOG_LEVEL", "info"),
	}

	if raw := os.Getenv("SALE_ADMIN"); raw == "" {
		errs = append(errs, errors.New("SALE_ADMIN is required"))
	} else if admin, err := id.ParseIdentity(raw); err != nil {
		errs = append(errs, fmt.Errorf("SALE_ADMIN: %w", err))
	} else {
		cfg.Sale.Administrator = admin
	}

	if raw := os.Getenv("SALE_PUBLIC_PHASE_START"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("SALE_PUBLIC_PHASE_START: %w", err))
		}
		cfg.Sale.PublicPhaseStart = t.UTC()
	}

	if raw := os.Getenv("SALE_UNIT_PRICE"); raw != "" {
		price, err := id.ParseAmount(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("SALE_UNIT_PRICE: %w", err))
		}
		cfg.Sale.UnitPrice = price
	}

	if cfg.Sale.FreeSupplyCap > cfg.Sale.MaxSupply {
		errs = append(errs, fmt.Errorf("SALE_FREE_SUPPLY_CAP (%d) exceeds SALE_MAX_SUPPLY (%d)", cfg.Sale.FreeSupplyCap, cfg.Sale.MaxSupply))
	}
	if cfg.RateLimit.MintPerMinute < 0 {
		errs = append(errs, errors.New("MINT_RATE_LIMIT_PER_MINUTE must not be negative"))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parser collects every malformed variable instead of stopping at the first.
type parser struct {
	errs *[]error
}

func (p parser) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (p parser) int(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func (p parser) uint(key string, def uint64) uint64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func (p parser) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
