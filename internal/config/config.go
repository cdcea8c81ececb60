package config

import (
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

type Config struct {
	Port string

	// --- Database ---
	StoreDriver    string
	DBDSN          string
	DBMaxOpenConns int
	DBAutoMigrate  bool

	// --- Auth ---
	JWTSecret string
	JWTTTL    time.Duration

	CORSAllowedOrigins []string

	// --- RabbitMQ (empty URL disables events) ---
	RabbitMQURL     string
	OrderExchange   string
	OrderQueue      string
	DeadLetterQueue string

	// --- Overdue order worker ---
	OverdueScanInterval time.Duration
	PendingOrderTTL     time.Duration
}

// Load reads the configuration from the environment.
// Call godotenv.Load() first if a .env file should be honoured.
func Load() *Config {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", StoreMySQL)),
		DBDSN:               getEnv("DB_DSN_PRIMARY", ""),
		DBMaxOpenConns:      getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBAutoMigrate:       getEnvBool("DB_AUTO_MIGRATE", false),
		JWTSecret:           getEnvFromFile("JWT_SECRET_FILE", "JWT_SECRET", ""),
		JWTTTL:              getEnvDuration("JWT_TTL", 72*time.Hour),
		CORSAllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		RabbitMQURL:         getEnv("RABBITMQ_URL", ""),
		OrderExchange:       getEnv("ORDER_EXCHANGE", "orders_exchange"),
		OrderQueue:          getEnv("ORDER_QUEUE", "orders_queue"),
		DeadLetterQueue:     getEnv("DEAD_LETTER_QUEUE", "dead_letter_queue"),
		OverdueScanInterval: getEnvDuration("OVERDUE_SCAN_INTERVAL", time.Hour),
		PendingOrderTTL:     getEnvDuration("PENDING_ORDER_TTL", 72*time.Hour),
	}

	if cfg.DBDSN == "" {
		dsn := mysql.NewConfig()
		dsn.User = getEnv("DB_USER", "root")
		dsn.Passwd = getEnvFromFile("DB_PASSWORD_FILE", "DB_PASSWORD", "")
		dsn.Net = "tcp"
		dsn.Addr = net.JoinHostPort(getEnv("DB_HOST", "127.0.0.1"), getEnv("DB_PORT", "3306"))
		dsn.DBName = getEnv("DB_NAME", "medistore")
		dsn.ParseTime = true
		dsn.Loc = time.UTC
		cfg.DBDSN = dsn.FormatDSN()
	} else if cfg.StoreDriver == StoreMySQL {
		cfg.DBDSN = withParseTime(cfg.DBDSN)
	}

	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is not set. Using an insecure development secret.")
		cfg.JWTSecret = "medistore-dev-secret-change-me"
	}

	return cfg
}

// withParseTime turns on parseTime, which every DATETIME scan relies on.
func withParseTime(raw string) string {
	dsn, err := mysql.ParseDSN(raw)
	if err != nil {
		log.Printf("WARNING: could not parse DB_DSN_PRIMARY: %v", err)
		return raw
	}
	if dsn.ParseTime {
		return raw
	}
	dsn.ParseTime = true
	return dsn.FormatDSN()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFromFile prefers the contents of the file named by fileKey (docker secrets).
func getEnvFromFile(fileKey, envKey, defaultValue string) string {
	if filePath := os.Getenv(fileKey); filePath != "" {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
		log.Printf("WARNING: could not read %s=%s, falling back to %s", fileKey, filePath, envKey)
	}
	return getEnv(envKey, defaultValue)
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using %t", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Printf("WARNING: invalid %s=%q, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
