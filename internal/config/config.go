package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits the CORS allow-list
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in
// the application: strings for identifiers, secrets and URLs, ints for
// durations and costs.
type Config struct {
	Env                string   // application environment (e.g. "dev", "prod")
	Host               string   // HTTP host to bind
	Port               string   // HTTP port to listen on
	DBUser             string   // database username
	DBPass             string   // database password (optional)
	DBHost             string   // database host address
	DBPort             string   // database port number
	DBName             string   // database name
	AIServiceURL       string   // base URL of the AI analytics service
	MotorAPIBase       string   // base URL of the motor control service
	PipelineAPIBase    string   // base URL of the streaming pipeline service
	AccessSecret       string   // secret used to sign access JWTs
	RefreshSecret      string   // secret used to sign refresh JWTs
	AccessTTLMin       int      // access token time-to-live in minutes
	RefreshTTLDays     int      // refresh token time-to-live in days
	BatchCacheTTLMin   int      // TTL for cached batch detail documents
	UserBatchesTTLMin  int      // TTL for cached per-user batch lists (shorter)
	BcryptCost         int      // bcrypt cost for password hashing
	CORSOrigins        []string // allowed CORS origins; empty means allow all
	SentryDSN          string   // Sentry DSN; empty disables error reporting
	RabbitURL          string   // AMQP URL; empty disables event publishing
	AuthRateLimit      int      // max auth requests per window per client IP
	AuthRateWindowSec  int      // rate-limit window length in seconds
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. Upstream URLs and
// tunables fall back to the defaults the rest of the deployment assumes.
func Load() Config {
	return Config{
		Env:               getenv("APP_ENV", "dev"),
		Host:              getenv("DASHBOARD_HOST", "0.0.0.0"),
		Port:              getenv("DASHBOARD_PORT", "8010"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		AIServiceURL:      getenv("AI_SERVICE_URL", "http://127.0.0.1:8000"),
		MotorAPIBase:      getenv("MOTOR_API_BASE", "http://127.0.0.1:8005"),
		PipelineAPIBase:   getenv("PIPELINE_API_BASE", "http://127.0.0.1:8000"),
		AccessSecret:      must("JWT_ACCESS_SECRET"),
		RefreshSecret:     must("JWT_REFRESH_SECRET"),
		AccessTTLMin:      getenvInt("ACCESS_TOKEN_TTL_MIN", 30),
		RefreshTTLDays:    getenvInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BatchCacheTTLMin:  getenvInt("BATCH_CACHE_TTL_MIN", 30),
		UserBatchesTTLMin: getenvInt("USER_BATCHES_CACHE_TTL_MIN", 2),
		BcryptCost:        getenvInt("BCRYPT_COST", 10),
		CORSOrigins:       splitList(os.Getenv("CORS_ORIGINS")),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		RabbitURL:         os.Getenv("RABBITMQ_URL"),
		AuthRateLimit:     getenvInt("AUTH_RATE_LIMIT", 30),
		AuthRateWindowSec: getenvInt("AUTH_RATE_WINDOW_SEC", 60),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns the value of an optional variable or a default.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvInt is like getenv but converts the value into an integer. An
// unparsable value is fatal; silently falling back would hide typos in
// TTL settings.
func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

// splitList parses a comma-separated env value into a trimmed slice.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
