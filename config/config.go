package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// DefaultSchema is the postgres schema holding the mall tables.
const DefaultSchema = "morpheus"

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBSchema   string

	JWTAccessSecret    string
	JWTRefreshSecret   string
	JWTAccessTTLHours  int
	JWTRefreshTTLHours int

	// Redis backs the query cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Kafka carries registration/assignment events
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	AllowedOrigins     []string
	RateLimitPerMinute int64

	JaegerEndpoint string
	LogLevel       string
	LogFormat      string
}

// fileOverlay is the optional YAML file pointed to by CONFIG_FILE. Only list
// values live there; they are awkward to express as env vars.
type fileOverlay struct {
	AllowedOrigins     []string `yaml:"allowed_origins"`
	KafkaBrokers       []string `yaml:"kafka_brokers"`
	KafkaTopic         string   `yaml:"kafka_topic"`
	KafkaGroupID       string   `yaml:"kafka_group_id"`
	RateLimitPerMinute int64    `yaml:"rate_limit_per_minute"`
	CacheTTLSeconds    int      `yaml:"cache_ttl_seconds"`
}

// Load reads environment variables and returns a Config object
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file, using environment variables")
	}

	accessTTL, _ := strconv.Atoi(getEnv("JWT_ACCESS_TTL_HOURS", "2"))
	refreshTTL, _ := strconv.Atoi(getEnv("JWT_REFRESH_TTL_HOURS", "168"))
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	cacheSeconds, err := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "30"))
	if err != nil || cacheSeconds < 0 {
		return nil, fmt.Errorf("invalid CACHE_TTL_SECONDS %q", os.Getenv("CACHE_TTL_SECONDS"))
	}
	rateLimit, err := strconv.ParseInt(getEnv("RATE_LIMIT_PER_MINUTE", "100"), 10, 64)
	if err != nil || rateLimit <= 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE %q", os.Getenv("RATE_LIMIT_PER_MINUTE"))
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBSchema:   getEnv("DB_SCHEMA", DefaultSchema),

		JWTAccessSecret:    os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret:   os.Getenv("JWT_REFRESH_SECRET"),
		JWTAccessTTLHours:  accessTTL,
		JWTRefreshTTLHours: refreshTTL,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		CacheTTL:      time.Duration(cacheSeconds) * time.Second,

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "morpheus.participation"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "morpheus-admin"),

		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		RateLimitPerMinute: rateLimit,

		JaegerEndpoint: os.Getenv("JAEGER_ENDPOINT"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var overlay fileOverlay
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if len(overlay.AllowedOrigins) > 0 {
		c.AllowedOrigins = overlay.AllowedOrigins
	}
	if len(overlay.KafkaBrokers) > 0 {
		c.KafkaBrokers = overlay.KafkaBrokers
	}
	if overlay.KafkaTopic != "" {
		c.KafkaTopic = overlay.KafkaTopic
	}
	if overlay.KafkaGroupID != "" {
		c.KafkaGroupID = overlay.KafkaGroupID
	}
	if overlay.RateLimitPerMinute > 0 {
		c.RateLimitPerMinute = overlay.RateLimitPerMinute
	}
	if overlay.CacheTTLSeconds > 0 {
		c.CacheTTL = time.Duration(overlay.CacheTTLSeconds) * time.Second
	}
	return nil
}

// DSN builds the libpq connection string handed to the gorm postgres driver.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode, c.DBSchema,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
