package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Modes accepted in APP_ENV. Anything other than development is treated as
// production.
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// DBConfig selects and addresses the relational store.
type DBConfig struct {
	Driver string // sqlite3 | mysql | postgres
	Path   string // sqlite3 database file
	User   string // mysql user
	Pass   string // mysql password (optional)
	Host   string // mysql host
	Port   string // mysql port
	Name   string // mysql database name
	URL    string // postgres connection string
}

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env           string        // development | production
	Port          string        // HTTP port to listen on
	LogFile       string        // log destination; empty means stderr
	LogLevel      string        // debug | info | warn | error
	DB            DBConfig      // store selection
	JWTSecret     string        // secret used to sign tokens
	TokenTTL      time.Duration // lifetime written into exp at login and refresh
	BcryptCost    int           // bcrypt cost for password hashing
	CookieSecure  bool          // mark the token cookie Secure
	AdminPassword string        // password of the seeded admin user
}

// Load reads an optional .env file and then the environment. JWT_SECRET is
// required; a missing value stops the program.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}
	return Config{
		Env:      strings.ToLower(envStr("APP_ENV", ModeProduction)),
		Port:     envStr("APP_PORT", "8080"),
		LogFile:  os.Getenv("LOG_FILE"),
		LogLevel: envStr("LOG_LEVEL", "info"),
		DB: DBConfig{
			Driver: envStr("DB_DRIVER", "sqlite3"),
			Path:   envStr("DB_PATH", "data/appregistry.db"),
			User:   os.Getenv("DB_USER"),
			Pass:   os.Getenv("DB_PASS"),
			Host:   envStr("DB_HOST", "127.0.0.1"),
			Port:   envStr("DB_PORT", "3306"),
			Name:   os.Getenv("DB_NAME"),
			URL:    os.Getenv("DATABASE_URL"),
		},
		JWTSecret:     must("JWT_SECRET"),
		TokenTTL:      envDur("TOKEN_TTL", time.Hour),
		BcryptCost:    envInt("BCRYPT_COST", 10),
		CookieSecure:  envBool("COOKIE_SECURE", false),
		AdminPassword: envStr("ADMIN_PASSWORD", "administrator"),
	}
}

// Development reports whether error details may be returned to clients.
func (c Config) Development() bool { return c.Env == ModeDevelopment }

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
