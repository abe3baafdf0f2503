package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	scrapererrors "sjsage522/productscraper/pkg/errors"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config represents the application configuration
type Config struct {
	// HTTP API configuration
	ListenAddr     string
	AllowedOrigins []string

	// Fetch configuration
	UserAgent            string
	AcceptLanguage       string
	FetchTimeout         time.Duration
	MaxConcurrentFetches int
	FetchesPerSecond     float64
	RateLimitBlockTime   time.Duration

	// Extraction thresholds
	MinPrice             float64
	MaxPrice             float64
	MinTitleLength       int
	MinDescriptionLength int

	// Directory with rule table overrides; empty uses the embedded tables
	RulesDir string

	// Redis configuration; empty address disables publishing
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int
	StreamTrimInterval   time.Duration

	// Memcache configuration; empty address keeps rate-limit cooldowns in
	// process memory
	MemcacheAddr string

	// PostgreSQL DSN; empty selects the in-memory store
	DatabaseURL string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	redisStreamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))
	trimInterval, _ := strconv.Atoi(getEnv("REDIS_TRIM_INTERVAL_SECONDS", "60"))
	fetchTimeout, _ := strconv.Atoi(getEnv("FETCH_TIMEOUT_SECONDS", "15"))
	maxConcurrent, _ := strconv.Atoi(getEnv("MAX_CONCURRENT_FETCHES", "4"))
	fetchesPerSecond, _ := strconv.ParseFloat(getEnv("FETCHES_PER_SECOND", "1"), 64)
	blockTime, _ := strconv.Atoi(getEnv("RATE_LIMIT_BLOCK_SECONDS", "300"))
	minPrice, _ := strconv.ParseFloat(getEnv("MIN_PRICE", "1"), 64)
	maxPrice, _ := strconv.ParseFloat(getEnv("MAX_PRICE", "5000000"), 64)
	minTitleLength, _ := strconv.Atoi(getEnv("MIN_TITLE_LENGTH", "10"))
	minDescriptionLength, _ := strconv.Atoi(getEnv("MIN_DESCRIPTION_LENGTH", "20"))

	return &Config{
		ListenAddr:           getEnv("LISTEN_ADDR", ":8080"),
		AllowedOrigins:       splitList(getEnv("ALLOWED_ORIGINS", "*")),
		UserAgent:            getEnv("SCRAPER_USER_AGENT", defaultUserAgent),
		AcceptLanguage:       getEnv("SCRAPER_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
		FetchTimeout:         time.Duration(fetchTimeout) * time.Second,
		MaxConcurrentFetches: maxConcurrent,
		FetchesPerSecond:     fetchesPerSecond,
		RateLimitBlockTime:   time.Duration(blockTime) * time.Second,
		MinPrice:             minPrice,
		MaxPrice:             maxPrice,
		MinTitleLength:       minTitleLength,
		MinDescriptionLength: minDescriptionLength,
		RulesDir:             os.Getenv("RULES_DIR"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "products"),
		RedisStreamCount:     redisStreamCount,
		RedisStreamMaxLength: redisStreamMaxLength,
		StreamTrimInterval:   time.Duration(trimInterval) * time.Second,
		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		Environment:          getEnv("SCRAPER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	var problems []string

	if c.ListenAddr == "" {
		problems = append(problems, "LISTEN_ADDR must not be empty")
	}
	if c.FetchTimeout <= 0 {
		problems = append(problems, "FETCH_TIMEOUT_SECONDS must be positive")
	}
	if c.MaxConcurrentFetches < 1 {
		problems = append(problems, "MAX_CONCURRENT_FETCHES must be at least 1")
	}
	if c.FetchesPerSecond <= 0 {
		problems = append(problems, "FETCHES_PER_SECOND must be positive")
	}
	if c.MinPrice < 0 || c.MaxPrice <= c.MinPrice {
		problems = append(problems, "price bounds must satisfy 0 <= MIN_PRICE < MAX_PRICE")
	}
	if c.MinTitleLength < 0 || c.MinDescriptionLength < 0 {
		problems = append(problems, "minimum text lengths must not be negative")
	}
	if c.RedisAddr != "" && c.RedisStreamCount < 1 {
		problems = append(problems, "REDIS_STREAM_COUNT must be at least 1")
	}

	if len(problems) > 0 {
		return scrapererrors.NewConfiguration(strings.Join(problems, "; "), nil)
	}
	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// String renders the non-secret parts of the configuration for startup logs
func (c *Config) String() string {
	return fmt.Sprintf("env=%s listen=%s concurrency=%d rate=%.2f/s redis=%t memcache=%t postgres=%t",
		c.Environment, c.ListenAddr, c.MaxConcurrentFetches, c.FetchesPerSecond,
		c.RedisAddr != "", c.MemcacheAddr != "", c.DatabaseURL != "")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
