package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced at load time; the
// rest fall back to defaults suitable for local development.
type Config struct {
	Env      string // application environment (e.g. "dev", "prod")
	Port     string // HTTP port to listen on
	DBDriver string // "mysql" or "sqlite3"
	DBDSN    string // full DSN, used by sqlite3 (and mysql when set)
	DBUser   string // database username
	DBPass   string // database password (optional)
	DBHost   string // database host address
	DBPort   string // database port number
	DBName   string // database name
	Migrate  bool   // create tables at startup

	JWTSecret string         // secret used to verify identity provider tokens
	Location  *time.Location // zone used to compute slot start times

	AMQPURL           string // broker URL; empty disables notifications
	EventsQueue       string // queue receiving booking events
	BookingLogEnabled bool   // run the in-process booking log consumer

	AdminOverride bool // allow admins to force a status outside the transition graph
}

// Load reads configuration values from environment variables and returns a
// Config.  Missing required values cause the program to exit with a fatal
// log message.
func Load() Config {
	cfg := Config{
		Env:               envStr("APP_ENV", "dev"),
		Port:              envStr("APP_PORT", "8080"),
		DBDriver:          envStr("DB_DRIVER", "mysql"),
		DBDSN:             os.Getenv("DB_DSN"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		Migrate:           envBool("DB_MIGRATE", false),
		JWTSecret:         must("JWT_SECRET"),
		Location:          mustLocation(envStr("APP_TIMEZONE", "UTC")),
		AMQPURL:           amqpURL(),
		EventsQueue:       envStr("BOOKING_EVENTS_QUEUE", "booking.events"),
		BookingLogEnabled: envBool("BOOKING_LOG_CONSUMER", false),
		AdminOverride:     envBool("ADMIN_OVERRIDE_ENABLED", true),
	}
	if cfg.DBDriver == "mysql" && cfg.DBDSN == "" {
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	}
	if cfg.DBDriver == "sqlite3" && cfg.DBDSN == "" {
		cfg.DBDSN = "file:booking.db?_busy_timeout=5000"
	}
	return cfg
}

// amqpURL accepts either RABBITMQ_URL or AMQP_URL.
func amqpURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
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

// mustLocation resolves an IANA zone name or exits.
func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("invalid APP_TIMEZONE %q: %v", name, err)
	}
	return loc
}
