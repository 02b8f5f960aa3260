package config // package config loads application configuration from environment variables

import (
    "crypto/rand"   // crypto/rand generates a throwaway signing secret for development
    "encoding/hex"  // hex encodes the generated secret
    "errors"        // errors aggregates configuration problems
    "fmt"           // fmt formats error messages
    "os"            // os provides access to environment variables
    "strings"       // strings normalises list values
    "time"          // time parses duration settings
    _ "time/tzdata" // REMINDER_TIMEZONE must resolve in images without zoneinfo

    "github.com/joho/godotenv" // godotenv loads an optional .env file
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Durations are parsed with time.ParseDuration.
type Config struct {
    Env       string // application environment (development, test, production)
    Port      string // HTTP port to listen on
    APIPrefix string // path prefix for the REST surface

    DBDriver   string        // sqlite, postgres or mysql
    DBDSN      string        // full DSN; overrides the discrete fields below
    DBUser     string        // database username
    DBPass     string        // database password (optional)
    DBHost     string        // database host address
    DBPort     string        // database port number
    DBName     string        // database name
    SQLitePath string        // database file for the sqlite driver
    DBTimeout  time.Duration // upper bound for every store call

    JWTSecret  string        // secret used to sign bearer tokens
    TokenTTL   time.Duration // bearer token lifetime
    BcryptCost int           // bcrypt cost for password hashing

    CORSOrigins []string // allowed browser origins

    RabbitMQURL     string // broker for reminder notifications; empty disables publishing
    ReminderLogDir  string // directory the notification consumer appends to
    ConsumerEnabled bool   // run the notification consumer in-process

    Reminder ReminderConfig

    LogLevel  string // logrus level name
    LogFormat string // json or text

    SecretGenerated bool // JWTSecret was generated because none was configured
}

// ReminderConfig controls the server-side reminder poller.
type ReminderConfig struct {
    Enabled  bool
    Interval time.Duration
    Cooldown time.Duration
    Snooze   time.Duration
    Location *time.Location
}

// IsProduction reports whether the service runs with production safeguards.
func (c Config) IsProduction() bool {
    return c.Env == "production" || c.Env == "prod"
}

const minProductionBcryptCost = 12

// knownSecrets are values that circulate in examples and must never sign
// production tokens.
var knownSecrets = map[string]bool{
    "default_secret": true,
    "secret":         true,
    "changeme":       true,
    "your_jwt_secret": true,
}

// Load reads configuration values from the environment (and an optional
// .env file) and returns a Config.  All problems are reported together.
func Load() (Config, error) {
    _ = godotenv.Load() // a missing .env file is not an error

    var errs []error
    cfg := Config{
        Env:        envStr("APP_ENV", "development"),
        Port:       envStr("APP_PORT", "3000"),
        APIPrefix:  strings.TrimRight(envStr("API_PREFIX", "/api/v1"), "/"),
        DBDriver:   strings.ToLower(envStr("DB_DRIVER", "sqlite")),
        DBDSN:      os.Getenv("DB_DSN"),
        DBUser:     os.Getenv("DB_USER"),
        DBPass:     os.Getenv("DB_PASS"),
        DBHost:     envStr("DB_HOST", "localhost"),
        DBPort:     os.Getenv("DB_PORT"),
        DBName:     envStr("DB_NAME", "medisafe"),
        SQLitePath: envStr("SQLITE_PATH", "medisafe.db"),
        DBTimeout:  envDur("DB_TIMEOUT", 5*time.Second),

        JWTSecret:  os.Getenv("JWT_SECRET"),
        TokenTTL:   envDur("TOKEN_TTL", 24*time.Hour),
        BcryptCost: envInt("BCRYPT_COST", minProductionBcryptCost),

        CORSOrigins: splitList(envStr("CORS_ORIGINS", "http://localhost:5500")),

        RabbitMQURL:     firstNonEmpty(os.Getenv("RABBITMQ_URL"), os.Getenv("AMQP_URL")),
        ReminderLogDir:  envStr("REMINDER_LOG_DIR", "logs"),
        ConsumerEnabled: envBool("REMINDER_CONSUMER_ENABLED", false),

        Reminder: ReminderConfig{
            Enabled:  envBool("REMINDER_POLL_ENABLED", true),
            Interval: envDur("REMINDER_POLL_INTERVAL", time.Minute),
            Cooldown: envDur("REMINDER_COOLDOWN", 5*time.Minute),
            Snooze:   envDur("REMINDER_SNOOZE", 10*time.Minute),
            Location: time.UTC,
        },

        LogLevel:  envStr("LOG_LEVEL", "info"),
        LogFormat: envStr("LOG_FORMAT", "json"),
    }

    if tz := os.Getenv("REMINDER_TIMEZONE"); tz != "" {
        loc, err := time.LoadLocation(tz)
        if err != nil {
            errs = append(errs, fmt.Errorf("invalid REMINDER_TIMEZONE %q: %w", tz, err))
        } else {
            cfg.Reminder.Location = loc
        }
    }

    switch cfg.DBDriver {
    case "sqlite", "postgres", "mysql":
    default:
        errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver))
    }

    if err := cfg.checkSecret(); err != nil {
        errs = append(errs, err)
    }
    if cfg.IsProduction() && cfg.BcryptCost < minProductionBcryptCost {
        errs = append(errs, fmt.Errorf("BCRYPT_COST must be at least %d in production", minProductionBcryptCost))
    }
    if cfg.TokenTTL <= 0 {
        errs = append(errs, errors.New("TOKEN_TTL must be positive"))
    }
    if cfg.Reminder.Interval <= 0 {
        errs = append(errs, errors.New("REMINDER_POLL_INTERVAL must be positive"))
    }

    return cfg, errors.Join(errs...)
}

// checkSecret enforces that production never signs with a missing, short or
// well-known secret.  Outside production a random secret is generated so the
// service still boots; tokens then die with the process.
func (c *Config) checkSecret() error {
    if c.JWTSecret != "" {
        if c.IsProduction() && (len(c.JWTSecret) < 32 || knownSecrets[strings.ToLower(c.JWTSecret)]) {
            return errors.New("JWT_SECRET must be at least 32 bytes and not a published default in production")
        }
        return nil
    }
    if c.IsProduction() {
        return errors.New("missing required env var: JWT_SECRET")
    }
    buf := make([]byte, 32)
    if _, err := rand.Read(buf); err != nil {
        return fmt.Errorf("generate JWT secret: %w", err)
    }
    c.JWTSecret = hex.EncodeToString(buf)
    c.SecretGenerated = true
    return nil
}

func splitList(s string) []string {
    var out []string
    for _, p := range strings.Split(s, ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}

func firstNonEmpty(vals ...string) string {
    for _, v := range vals {
        if v != "" {
            return v
        }
    }
    return ""
}
