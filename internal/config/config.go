package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings trims trailing slashes off URLs
)

// Google OAuth endpoints.  These are configurable so tests can point the
// exchange client at local httptest servers.
const (
    defaultGoogleTokenURL    = "https://oauth2.googleapis.com/token"
    defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  It is loaded once at startup and passed
// explicitly to every component; there are no ambient globals.
type Config struct {
    Env  string // application environment (e.g. "dev", "prod")
    Port string // HTTP port to listen on

    DBUser string // database username
    DBPass string // database password (optional)
    DBHost string // database host address
    DBPort string // database port number
    DBName string // database name

    JWTSecret      string // secret used to sign access/refresh JWTs and reset tokens
    AccessTTLMin   int    // access token time-to-live in minutes
    RefreshTTLDays int    // refresh token time-to-live in days
    BcryptCost     int    // bcrypt cost for password hashing

    FrontendURL  string // frontend origin, target of OAuth and reset-link redirects (no trailing slash)
    CookieSecure bool   // whether auth cookies carry the Secure flag

    GoogleClientID     string // OAuth client id
    GoogleClientSecret string // OAuth client secret
    GoogleRedirectURI  string // redirect URI registered with the provider
    GoogleTokenURL     string // token endpoint (overridable for tests)
    GoogleUserInfoURL  string // userinfo endpoint (overridable for tests)

    SMTPHost  string // outbound mail host; empty disables mail sending
    SMTPPort  string // outbound mail port
    SMTPUser  string // SMTP auth user (optional)
    SMTPPass  string // SMTP auth password (optional)
    EmailFrom string // From address on outgoing mail
    OrgEmail  string // organization inbox receiving contact/booking notifications
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  OAuth and SMTP
// settings are optional so the server can run without those integrations
// in development.
func Load() Config {
    return Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"), // empty allowed
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   intDefault("ACCESS_TOKEN_TTL_MIN", 15),
        RefreshTTLDays: intDefault("REFRESH_TOKEN_TTL_DAYS", 7),
        BcryptCost:     intDefault("BCRYPT_COST", 12),

        FrontendURL:  strings.TrimRight(envDefault("FRONTEND_URL", "http://localhost:8080"), "/"),
        CookieSecure: os.Getenv("COOKIE_SECURE") == "true" || os.Getenv("COOKIE_SECURE") == "1",

        GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
        GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
        GoogleRedirectURI:  os.Getenv("GOOGLE_REDIRECT_URI"),
        GoogleTokenURL:     envDefault("GOOGLE_TOKEN_URL", defaultGoogleTokenURL),
        GoogleUserInfoURL:  envDefault("GOOGLE_USERINFO_URL", defaultGoogleUserInfoURL),

        SMTPHost:  os.Getenv("SMTP_HOST"),
        SMTPPort:  envDefault("SMTP_PORT", "587"),
        SMTPUser:  os.Getenv("SMTP_USER"),
        SMTPPass:  os.Getenv("SMTP_PASS"),
        EmailFrom: envDefault("EMAIL_FROM", "no-reply@gnm-events.local"),
        OrgEmail:  os.Getenv("ORG_EMAIL"),
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

// envDefault returns the variable's value, or def when unset or empty.
func envDefault(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// intDefault reads an integer variable, falling back to def when unset.
// A set-but-unparsable value is a configuration mistake and fatal.
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
