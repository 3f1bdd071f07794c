package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "time"    // time provides duration parsing for timeouts
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for
// timeouts.
type Config struct {
    Env          string        // application environment (e.g. "dev", "prod")
    Port         string        // HTTP port to listen on
    DBUser       string        // database username
    DBPass       string        // database password (optional)
    DBHost       string        // database host address
    DBPort       string        // database port number
    DBName       string        // database name
    JWTSecret    string        // secret used to verify JWTs issued by the auth service
    DailyBaseURL string        // base URL of the video-room provider API
    DailyAPIKey  string        // bearer key for the video-room provider
    DailyTimeout time.Duration // per-request timeout for provider calls
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The Daily key is
// intentionally not required: without it provisioning fails per room and
// matches still form, which is the degraded mode the pairing design
// allows.
func Load() Config {
    return Config{
        Env:          must("APP_ENV"),    // environment (dev/test/prod)
        Port:         must("APP_PORT"),   // port to bind the HTTP server
        DBUser:       must("DB_USER"),    // database user
        DBPass:       os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:       must("DB_HOST"),    // database host
        DBPort:       must("DB_PORT"),    // database port
        DBName:       must("DB_NAME"),    // database name
        JWTSecret:    must("JWT_SECRET"), // secret used for verifying JWTs
        DailyBaseURL: envStr("DAILY_BASE_URL", "https://api.daily.co/v1"),
        DailyAPIKey:  os.Getenv("DAILY_API_KEY"),
        DailyTimeout: envDur("DAILY_TIMEOUT", 10*time.Second),
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

// envStr returns the value of an optional environment variable or the
// provided default when unset.
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
