package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port       string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	AlphaVantageKey string
	AlphaVantageURL string
	FinnhubKey      string
	FinnhubURL      string
	NewsAPIKey      string
	NewsAPIURL      string

	QuoteWindow   string // "HH:MM" UTC
	IndicatorTime string // "HH:MM" UTC
	NewsTime      string // "HH:MM" UTC

	Environment string
}

// LoadConfig loads environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Port:       getEnv("PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "stocktracker_db"),

		AlphaVantageKey: getEnv("ALPHAVANTAGE_API_KEY", ""),
		AlphaVantageURL: getEnv("ALPHAVANTAGE_URL", ""),
		FinnhubKey:      getEnv("FINNHUB_API_KEY", ""),
		FinnhubURL:      getEnv("FINNHUB_URL", ""),
		NewsAPIKey:      getEnv("NEWSAPI_KEY", ""),
		NewsAPIURL:      getEnv("NEWSAPI_URL", ""),

		QuoteWindow:   getEnv("QUOTE_WINDOW_UTC", "22:00"),
		IndicatorTime: getEnv("INDICATOR_TIME_UTC", "23:00"),
		NewsTime:      getEnv("NEWS_TIME_UTC", "07:00"),

		Environment: getEnv("ENVIRONMENT", "development"),
	}

	return config, nil
}

// InitDB initializes database connection
func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
	)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	log.Println("Database connection verified successfully")
	return db, nil
}

// ParseClockTime parses an "HH:MM" string into an hour and minute pair.
func ParseClockTime(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	min, err := strconv.Atoi(parts[1])
	if err != nil || min < 0 || min > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, min, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
