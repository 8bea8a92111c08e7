package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// PlatformConfig carries every money-affecting constant for the booking and
// reconciliation engine. It is built once at startup and passed into services;
// nothing below reads the environment after load, which keeps fee computation
// and the auditor's recomputation deterministic for the life of the process.
type PlatformConfig struct {
	Currency string

	// Platform commission in basis points per provider tier. The schedule
	// must be non-increasing from starter to elite.
	FeeBpsStarter  int64
	FeeBpsStandard int64
	FeeBpsPro      int64
	FeeBpsElite    int64

	// GST in basis points, applied only to tax-registered providers.
	TaxBps int64

	// Customer fee schedule (all amounts in cents).
	CustomerFeeLowThreshold int64
	CustomerFeeMidThreshold int64
	CustomerFeeSmallFlat    int64
	CustomerFeeLargeFlat    int64
	CustomerFeePctBps       int64
	CustomerFeeMin          int64
	CustomerFeeMax          int64

	// Smallest amount the processor will accept for a charge, in cents.
	MinChargeAmount int64

	// Idempotency TTL classes. Payment-affecting mutations keep their
	// records for hours, everything else for minutes.
	IdempotencyTTLPayment time.Duration
	IdempotencyTTLDefault time.Duration

	// Fixed-window rate limits per actor and operation class.
	RateLimitWindow  time.Duration
	RateLimitDefault int
	RateLimitPayment int

	// Webhook and processor credentials.
	WebhookSecret      string
	ProcessorBaseURL   string
	ProcessorSecretKey string

	// Payout list sync cadence and lookback window.
	PayoutSyncInterval time.Duration
	PayoutSyncLookback time.Duration

	// Outbound notification transport. Empty AMQPURL falls back to log-only.
	AMQPURL        string
	NotifyExchange string

	// Checkout QR hand-off lifetime.
	CheckoutQRTTL time.Duration
}

func LoadPlatformConfig() *PlatformConfig {
	return &PlatformConfig{
		Currency: getEnv("PLATFORM_CURRENCY", "NZD"),

		FeeBpsStarter:  getEnvAsInt64("FEE_BPS_STARTER", 1500),
		FeeBpsStandard: getEnvAsInt64("FEE_BPS_STANDARD", 1000),
		FeeBpsPro:      getEnvAsInt64("FEE_BPS_PRO", 700),
		FeeBpsElite:    getEnvAsInt64("FEE_BPS_ELITE", 500),

		TaxBps: getEnvAsInt64("GST_BPS", 1500),

		CustomerFeeLowThreshold: getEnvAsInt64("CUSTOMER_FEE_LOW_THRESHOLD", 2000),
		CustomerFeeMidThreshold: getEnvAsInt64("CUSTOMER_FEE_MID_THRESHOLD", 10000),
		CustomerFeeSmallFlat:    getEnvAsInt64("CUSTOMER_FEE_SMALL_FLAT", 200),
		CustomerFeeLargeFlat:    getEnvAsInt64("CUSTOMER_FEE_LARGE_FLAT", 500),
		CustomerFeePctBps:       getEnvAsInt64("CUSTOMER_FEE_PCT_BPS", 500),
		CustomerFeeMin:          getEnvAsInt64("CUSTOMER_FEE_MIN", 500),
		CustomerFeeMax:          getEnvAsInt64("CUSTOMER_FEE_MAX", 5000),

		MinChargeAmount: getEnvAsInt64("MIN_CHARGE_AMOUNT", 100),

		IdempotencyTTLPayment: getEnvAsDuration("IDEMPOTENCY_TTL_PAYMENT", 6*time.Hour),
		IdempotencyTTLDefault: getEnvAsDuration("IDEMPOTENCY_TTL_DEFAULT", 15*time.Minute),

		RateLimitWindow:  getEnvAsDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
		RateLimitDefault: getEnvAsInt("RATE_LIMIT_DEFAULT", 20),
		RateLimitPayment: getEnvAsInt("RATE_LIMIT_PAYMENT", 5),

		WebhookSecret:      getEnv("PROCESSOR_WEBHOOK_SECRET", ""),
		ProcessorBaseURL:   getEnv("PROCESSOR_BASE_URL", "https://api.processor.example"),
		ProcessorSecretKey: getEnv("PROCESSOR_SECRET_KEY", ""),

		PayoutSyncInterval: getEnvAsDuration("PAYOUT_SYNC_INTERVAL", 1*time.Hour),
		PayoutSyncLookback: getEnvAsDuration("PAYOUT_SYNC_LOOKBACK", 30*24*time.Hour),

		AMQPURL:        getEnv("AMQP_URL", ""),
		NotifyExchange: getEnv("NOTIFY_EXCHANGE", "localpros.notifications"),

		CheckoutQRTTL: getEnvAsDuration("CHECKOUT_QR_TTL", 15*time.Minute),
	}
}

// Validate rejects configurations that would corrupt the ledger: commission
// must not increase with tier, rates must stay inside [0, 10000] bps, and the
// customer-fee clamp band must be ordered.
func (c *PlatformConfig) Validate() error {
	if c.FeeBpsStarter < c.FeeBpsStandard || c.FeeBpsStandard < c.FeeBpsPro || c.FeeBpsPro < c.FeeBpsElite {
		return fmt.Errorf("tier commission schedule must be non-increasing: starter=%d standard=%d pro=%d elite=%d",
			c.FeeBpsStarter, c.FeeBpsStandard, c.FeeBpsPro, c.FeeBpsElite)
	}
	for _, bps := range []int64{c.FeeBpsStarter, c.FeeBpsStandard, c.FeeBpsPro, c.FeeBpsElite, c.TaxBps, c.CustomerFeePctBps} {
		if bps < 0 || bps > 10000 {
			return fmt.Errorf("basis points out of range: %d", bps)
		}
	}
	if c.CustomerFeeMin > c.CustomerFeeMax {
		return fmt.Errorf("customer fee clamp inverted: min=%d max=%d", c.CustomerFeeMin, c.CustomerFeeMax)
	}
	if c.CustomerFeeLowThreshold > c.CustomerFeeMidThreshold {
		return fmt.Errorf("customer fee thresholds inverted: low=%d mid=%d", c.CustomerFeeLowThreshold, c.CustomerFeeMidThreshold)
	}
	return nil
}

// TierBps maps a provider subscription tier to its commission rate. Unknown
// tiers fall back to the starter rate, the highest commission in the schedule.
func (c *PlatformConfig) TierBps(tier string) int64 {
	switch tier {
	case "elite":
		return c.FeeBpsElite
	case "pro":
		return c.FeeBpsPro
	case "standard":
		return c.FeeBpsStandard
	default:
		return c.FeeBpsStarter
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.ParseInt(val, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}
