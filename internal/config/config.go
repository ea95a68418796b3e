package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	GinMode   string
	TZ        string
	LogLevel  string
	LogFormat string

	DBDriver    string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPass      string
	DBName      string
	DBSSLMode   string
	DatabaseURL string

	// DBConnectMaxAttempts caps the startup wait for the database; 0 waits forever.
	DBConnectMaxAttempts int
	DBConnectRetryDelay  time.Duration

	APIAddr      string
	APIRateLimit float64
	APIRateBurst int

	WebAddr    string
	WebUseAPI  bool
	APIURL     string
	APITimeout time.Duration
}

func Load() *Config {
	envFile := getenv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("warning: could not load %s: %v", envFile, err)
		}
	} else {
		log.Printf("loaded %s", envFile)
	}

	return &Config{
		GinMode:   getenv("GIN_MODE", "debug"),
		TZ:        getenv("TZ", "UTC"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		DBDriver:    strings.ToLower(getenv("DB_DRIVER", DriverPostgres)),
		DBHost:      getenv("DB_HOST", "localhost"),
		DBPort:      getenv("DB_PORT", "5432"),
		DBUser:      getenv("DB_USER", "postgres"),
		DBPass:      getenv("DB_PASS", ""),
		DBName:      getenv("DB_NAME", "catalog"),
		DBSSLMode:   getenv("DB_SSLMODE", "disable"),
		DatabaseURL: getenv("DATABASE_URL", ""),

		DBConnectMaxAttempts: getint("DB_CONNECT_MAX_ATTEMPTS", 0),
		DBConnectRetryDelay:  getduration("DB_CONNECT_RETRY_DELAY", 2*time.Second),

		APIAddr:      getenv("API_ADDR", ":8000"),
		APIRateLimit: getfloat("API_RATE_LIMIT", 0),
		APIRateBurst: getint("API_RATE_BURST", 10),

		WebAddr:    getenv("WEB_ADDR", ":5000"),
		WebUseAPI:  getbool("WEB_USE_API", false),
		APIURL:     strings.TrimRight(getenv("API_URL", "http://localhost:8000"), "/"),
		APITimeout: getduration("API_TIMEOUT", 5*time.Second),
	}
}

// DSN returns DATABASE_URL when set, otherwise a connection string built
// from the individual settings. For sqlite DB_NAME is the database file.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	if c.DBDriver == DriverSQLite {
		return c.DBName
	}

	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost,
		c.DBUser,
		c.DBPass,
		c.DBName,
		c.DBPort,
		c.DBSSLMode,
		c.TZ,
	)
}

// Redacted is DSN with the password masked, for logs.
func (c *Config) Redacted() string {
	dsn := c.DSN()
	if c.DBPass != "" {
		dsn = strings.ReplaceAll(dsn, "password="+c.DBPass, "password=***")
	}

	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getfloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getduration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
