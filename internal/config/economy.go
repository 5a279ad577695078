package config

import (
	"os"
	"strconv"
	"time"
)

// EconomyConfig collects the tunable knobs of the transaction engine. Fees and
// cooldowns are configuration, not logic; defaults reproduce the live balance.
type EconomyConfig struct {
	WelcomeCoins         int64
	DefaultBankCapacity  int64
	WithdrawFeeRate      float64
	TransferFeeRate      float64
	TransferFeeThreshold int64
	TransferMinimum      int64
	RobMaxBetRate        float64
	InterestDailyRate    float64
	InterestMaxDays      int
	Cooldowns            map[string]time.Duration
}

// LoadEconomyConfig reads overrides from the environment. Cooldown overrides
// use COOLDOWN_<ACTION> with Go duration syntax, e.g. COOLDOWN_WORK=45m.
func LoadEconomyConfig() *EconomyConfig {
	cfg := &EconomyConfig{
		WelcomeCoins:         getEnvAsInt64("ECONOMY_WELCOME_COINS", 500),
		DefaultBankCapacity:  getEnvAsInt64("ECONOMY_BANK_CAPACITY", 10000),
		WithdrawFeeRate:      getEnvAsFloat("ECONOMY_WITHDRAW_FEE_RATE", 0.01),
		TransferFeeRate:      getEnvAsFloat("ECONOMY_TRANSFER_FEE_RATE", 0.05),
		TransferFeeThreshold: getEnvAsInt64("ECONOMY_TRANSFER_FEE_THRESHOLD", 1000),
		TransferMinimum:      getEnvAsInt64("ECONOMY_TRANSFER_MINIMUM", 10),
		RobMaxBetRate:        getEnvAsFloat("ECONOMY_ROB_MAX_BET_RATE", 0.2),
		InterestDailyRate:    getEnvAsFloat("ECONOMY_INTEREST_DAILY_RATE", 0.005),
		InterestMaxDays:      getEnvAsInt("ECONOMY_INTEREST_MAX_DAYS", 7),
		Cooldowns:            map[string]time.Duration{},
	}

	defaults := map[string]time.Duration{
		"daily":     24 * time.Hour,
		"work":      30 * time.Minute,
		"beg":       5 * time.Minute,
		"search":    15 * time.Minute,
		"rob":       2 * time.Hour,
		"freemium":  10 * time.Second,
		"fish":      10 * time.Minute,
		"mine":      20 * time.Minute,
		"vote":      12 * time.Hour,
		"adventure": time.Hour,
		"crime":     45 * time.Minute,
		"hunt":      25 * time.Minute,
		"dig":       15 * time.Minute,
		"postmeme":  10 * time.Minute,
		"stream":    40 * time.Minute,
		"scratch":   5 * time.Minute,
	}
	for action, d := range defaults {
		key := "COOLDOWN_" + toEnvKey(action)
		cfg.Cooldowns[action] = getEnvAsDuration(key, d)
	}

	return cfg
}

func toEnvKey(action string) string {
	out := make([]byte, len(action))
	for i := 0; i < len(action); i++ {
		c := action[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
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

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
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
