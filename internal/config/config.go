package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Database settings are optional: when
// DB_HOST is unset the service starts in degraded mode where read
// endpoints return empty collections and write endpoints fail with a
// "database not available" error instead of crashing at boot.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username (empty disables the database)
	DBPass         string // database password (optional)
	DBHost         string // database host address (empty disables the database)
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	OwnerEmail     string // email that is promoted to admin on registration
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            getenvDefault("APP_ENV", "dev"),
		Port:           getenvDefault("APP_PORT", "8080"),
		DBUser:         os.Getenv("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         getenvDefault("DB_PORT", "3306"),
		DBName:         getenvDefault("DB_NAME", "powerleave"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   intDefault("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays: intDefault("REFRESH_TOKEN_TTL_DAYS", 30),
		BcryptCost:     intDefault("BCRYPT_COST", 10),
		OwnerEmail:     os.Getenv("OWNER_EMAIL"),
	}
}

// DatabaseConfigured reports whether enough settings are present to
// open a connection.
func (c Config) DatabaseConfigured() bool {
	return c.DBHost != "" && c.DBUser != ""
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenvDefault returns the variable's value, or def when unset.
func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intDefault parses an integer variable, falling back to def when the
// variable is unset and exiting when it is set but malformed.
func intDefault(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
