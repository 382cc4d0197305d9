package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	DatabasePath       string
	CORSAllowedOrigins []string

	// Scheduling parameters. The slot grid itself is fixed (see the
	// availability package); these bound the forward scans.
	SlotScanHorizonDays int
	SuggestDaysDefault  int
	SuggestLimitDefault int

	// AssistantTransport selects how assistant replies reach the caller:
	// "webhook" (synchronous HTTP body) or "websocket" (relayed over the
	// live event channel in addition to the HTTP body).
	AssistantTransport string

	// DemoSeedEnabled mounts the /demo sample-data routes. Never enable in
	// a real practice deployment.
	DemoSeedEnabled bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", "3005"),
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DatabasePath:        getEnv("DATABASE_PATH", "dental_calendar.db"),
		CORSAllowedOrigins:  getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		SlotScanHorizonDays: getEnvAsInt("SLOT_SCAN_HORIZON_DAYS", 30),
		SuggestDaysDefault:  getEnvAsInt("SUGGEST_DAYS_DEFAULT", 7),
		SuggestLimitDefault: getEnvAsInt("SUGGEST_LIMIT_DEFAULT", 5),
		AssistantTransport:  strings.ToLower(strings.TrimSpace(getEnv("ASSISTANT_TRANSPORT", "webhook"))),
		DemoSeedEnabled:     getEnvAsBool("DEMO_SEED_ENABLED", false),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice splits a comma-separated environment variable.
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
