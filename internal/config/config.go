package config // package config loads application configuration from environment variables

import (
	"log"     // log reports configuration errors and halts execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses duration values
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Database fields are optional: when DB_HOST
// is unset the engine runs on its in-process stores.
type Config struct {
	Env           string        // application environment (e.g. "dev", "prod")
	Port          string        // HTTP port to listen on
	DBUser        string        // database username (optional)
	DBPass        string        // database password (optional)
	DBHost        string        // database host; empty selects in-process stores
	DBPort        string        // database port number
	DBName        string        // database name
	JWTSecret     string        // secret used to verify identity-module tokens
	HoldTTL       time.Duration // default seat hold time-to-live
	CleanupBuffer time.Duration // buffer added after each movie's runtime
	SweepInterval time.Duration // how often the expiry sweep runs
	AMQPURL       string        // RabbitMQ URL; empty disables the event forwarder
	AuditLogPath  string        // path of the audit event log file
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),    // environment (dev/test/prod)
		Port:          must("APP_PORT"),   // port to bind the HTTP server
		DBUser:        os.Getenv("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        envStr("DB_PORT", "3306"),
		DBName:        os.Getenv("DB_NAME"),
		JWTSecret:     must("JWT_SECRET"), // signing key shared with the identity module
		HoldTTL:       envDur("HOLD_TTL", 5*time.Minute),
		CleanupBuffer: envDur("CLEANUP_BUFFER", 15*time.Minute),
		SweepInterval: envDur("HOLD_SWEEP_INTERVAL", time.Second),
		AMQPURL:       envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
		AuditLogPath:  os.Getenv("AUDIT_LOG_PATH"),
	}
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

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
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
