package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=notification_reconciler_db;Username=postgres;Password=R3conc1le!;Timeout=30;CommandTimeout=30"
const defaultInternalID = "OrderDesk"
const defaultInternalKey = "OrderDeskKey001"
const defaultOrderGatewayURL = "http://localhost:8081"

type Config struct {
	DatabaseDSN         string
	MigrationsDir       string
	HTTPAddr            string
	InternalID          string
	InternalKey         string
	OrderGatewayURL     string
	OrderGatewayID      string
	OrderGatewayKey     string
	OrderGatewayTimeout time.Duration
	DedupeWindow        time.Duration
	SweepInterval       time.Duration
	SweepBatchSize      int
	MatchTolerance      decimal.Decimal
	MatchClockSkew      time.Duration
	PreferPayerHint     bool
	PreferOldest        bool
	BankProfileFile     string
}

func Load() (Config, error) {
	gatewayTimeout, err := envInt("ORDER_GATEWAY_TIMEOUT_SECONDS", 5)
	if err != nil {
		return Config{}, err
	}
	dedupeWindow, err := envInt("DEDUPE_WINDOW_MINUTES", 3)
	if err != nil {
		return Config{}, err
	}
	sweepInterval, err := envInt("SWEEP_INTERVAL_SECONDS", 30)
	if err != nil {
		return Config{}, err
	}
	sweepBatchSize, err := envInt("SWEEP_BATCH_SIZE", 100)
	if err != nil {
		return Config{}, err
	}
	clockSkew, err := envInt("MATCH_CLOCK_SKEW_SECONDS", 120)
	if err != nil {
		return Config{}, err
	}
	preferPayerHint, err := envBool("MATCH_PREFER_PAYER_HINT", true)
	if err != nil {
		return Config{}, err
	}
	preferOldest, err := envBool("MATCH_PREFER_OLDEST", true)
	if err != nil {
		return Config{}, err
	}

	tolerance, err := decimal.NewFromString(envString("MATCH_TOLERANCE", "0.00"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MATCH_TOLERANCE: %w", err)
	}
	if tolerance.IsNegative() {
		return Config{}, fmt.Errorf("MATCH_TOLERANCE cannot be negative")
	}

	if gatewayTimeout <= 0 || dedupeWindow < 0 || sweepInterval <= 0 || sweepBatchSize <= 0 || clockSkew < 0 {
		return Config{}, fmt.Errorf("timeouts, sweep settings and skew must be positive")
	}

	return Config{
		DatabaseDSN:         normalizeConnectionString(envString("DATABASE_DSN", defaultConnectionString)),
		MigrationsDir:       envString("MIGRATIONS_DIR", "migrations"),
		HTTPAddr:            envString("HTTP_ADDR", ":8080"),
		InternalID:          envString("INTERNAL_ID", defaultInternalID),
		InternalKey:         envString("INTERNAL_KEY", defaultInternalKey),
		OrderGatewayURL:     strings.TrimRight(envString("ORDER_GATEWAY_URL", defaultOrderGatewayURL), "/"),
		OrderGatewayID:      envString("ORDER_GATEWAY_ID", defaultInternalID),
		OrderGatewayKey:     envString("ORDER_GATEWAY_KEY", defaultInternalKey),
		OrderGatewayTimeout: time.Duration(gatewayTimeout) * time.Second,
		DedupeWindow:        time.Duration(dedupeWindow) * time.Minute,
		SweepInterval:       time.Duration(sweepInterval) * time.Second,
		SweepBatchSize:      sweepBatchSize,
		MatchTolerance:      tolerance,
		MatchClockSkew:      time.Duration(clockSkew) * time.Second,
		PreferPayerHint:     preferPayerHint,
		PreferOldest:        preferOldest,
		BankProfileFile:     envString("BANK_PROFILE_FILE", ""),
	}, nil
}

func envString(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, nil
}

func envBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, nil
}

func normalizeConnectionString(raw string) string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
