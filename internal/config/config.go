package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application runtime configuration.
type Config struct {
	Env         string
	HTTPPort    string
	LogLevel    string
	DatabaseURL string
	JWTSecret   string

	AccessTokenTTL  time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	DBMaxOpenConns int
	DBMaxIdleConns int

	CORSAllowedOrigins []string
	RateLimitPerMinute int

	WSAuthTimeout  time.Duration
	WSWriteTimeout time.Duration
	OutboxBuffer   int
	OutboxWorkers  int

	SMTPHost           string
	SMTPPort           string
	SMTPUsername       string
	SMTPPassword       string
	EmailFrom          string
	EmailRatePerMinute int

	MonthlyReportCron     string
	NotificationPurgeCron string

	BusinessName    string
	BusinessPhone   string
	BusinessAddress string
	CurrencySymbol  string
}

// Load reads environment variables and .env (if present).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:         getEnv("APP_ENV", "development"),
		HTTPPort:    getEnv("APP_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		ReadTimeout:     getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:     getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),

		DBMaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 5),

		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 200),

		WSAuthTimeout:  getDuration("WS_AUTH_TIMEOUT", 10*time.Second),
		WSWriteTimeout: getDuration("WS_WRITE_TIMEOUT", 10*time.Second),
		OutboxBuffer:   getInt("OUTBOX_BUFFER", 256),
		OutboxWorkers:  getInt("OUTBOX_WORKERS", 2),

		SMTPHost:           os.Getenv("SMTP_HOST"),
		SMTPPort:           getEnv("SMTP_PORT", "587"),
		SMTPUsername:       os.Getenv("SMTP_USERNAME"),
		SMTPPassword:       os.Getenv("SMTP_PASSWORD"),
		EmailFrom:          getEnv("EMAIL_FROM", "PrintPress Suite <no-reply@printpress.local>"),
		EmailRatePerMinute: getInt("EMAIL_RATE_PER_MINUTE", 30),

		MonthlyReportCron:     getEnv("MONTHLY_REPORT_CRON", "0 8 1 * *"),
		NotificationPurgeCron: getEnv("NOTIFICATION_PURGE_CRON", "@daily"),

		BusinessName:    getEnv("BUSINESS_NAME", "PrintPress Suite"),
		BusinessPhone:   getEnv("BUSINESS_PHONE", "+234 123 456 7890"),
		BusinessAddress: getEnv("BUSINESS_ADDRESS", "123 Printing Street, Your City"),
		CurrencySymbol:  getEnv("CURRENCY_SYMBOL", "₦"),
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c Config) IsProduction() bool { return c.Env == "production" }

func getEnv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		// Support seconds as integer without suffix.
		if secs, convErr := strconv.Atoi(val); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		return fallback
	}
	return d
}
