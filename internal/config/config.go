package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort           string
	OrdersAPIURL       string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	MongoURI                    string
	MongoDBName                 string
	MongoConnectTimeout         time.Duration
	MongoServerSelectionTimeout time.Duration
	MongoMaxPoolSize            uint64
	MongoMinPoolSize            uint64

	RedisAddr       string
	RedisPassword   string
	ConfirmationTTL time.Duration

	AddressDBPath  string
	MigrationsPath string

	KafkaBrokers []string

	JWTSecret string
	LogLevel  string

	CartNamespace       string
	ConfirmationTimeout time.Duration
}

// Load reads an optional .env file and then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		OrdersAPIURL:       getEnv("ORDERS_API_URL", "http://localhost:5000"),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: 1 << 20, // 1MB

		MongoURI:                    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:                 getEnv("MONGO_DB_NAME", "storefront"),
		MongoConnectTimeout:         getDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		MongoServerSelectionTimeout: getDuration("MONGO_SERVER_SELECTION_TIMEOUT", 5*time.Second),
		MongoMaxPoolSize:            getUint("MONGO_MAX_POOL_SIZE", 50),
		MongoMinPoolSize:            getUint("MONGO_MIN_POOL_SIZE", 5),

		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		ConfirmationTTL: getDuration("CONFIRMATION_TTL", 30*time.Minute),

		AddressDBPath:  getEnv("ADDRESS_DB_PATH", "./addresses.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/addressbook/migrations"),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),

		JWTSecret: getEnv("JWT_SECRET", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		CartNamespace:       getEnv("CART_NAMESPACE", "swiftbuyz-cart"),
		ConfirmationTimeout: getDuration("CONFIRMATION_TIMEOUT", 5*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getUint(key string, defaultValue uint64) uint64 {
	n, err := strconv.ParseUint(os.Getenv(key), 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
