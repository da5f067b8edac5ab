// Package config loads application configuration from the environment.
package config

import (
    "context"
    "fmt"
    "net/url"
    "strings"
    "time"

    "github.com/joho/godotenv"
    "github.com/sethvargo/go-envconfig"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable; see the env tags for names and defaults.
type Config struct {
    Env  string `env:"APP_ENV,default=development"` // development | test | production
    Port string `env:"APP_PORT,default=8080"`

    // MySQLDSN takes precedence over the DB_* parts when set.
    MySQLDSN string `env:"MYSQL_DSN"`
    DBUser   string `env:"DB_USER,default=root"`
    DBPass   string `env:"DB_PASS"`
    DBHost   string `env:"DB_HOST,default=127.0.0.1"`
    DBPort   string `env:"DB_PORT,default=3306"`
    DBName   string `env:"DB_NAME,default=gymhub"`

    JWTSecret          string `env:"JWT_SECRET,required"`
    RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET,required"`
    SessionHashKey     string `env:"SESSION_HASH_KEY,required"`
    GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
    BcryptCost         int    `env:"BCRYPT_COST,default=10"`

    // AutoVerifyOnRegister marks new password accounts verified at creation.
    // When false, registration issues a login OTP instead.
    AutoVerifyOnRegister bool   `env:"AUTO_VERIFY_ON_REGISTER,default=true"`
    CookieDomain         string `env:"COOKIE_DOMAIN"`

    AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
    RabbitMQURL    string   `env:"RABBITMQ_URL"`

    Email     EmailConfig     `env:", prefix=EMAIL_"`
    Redis     RedisConfig     `env:", prefix=REDIS_"`
    RateLimit RateLimitConfig `env:", prefix=RATE_LIMIT_"`
    Cache     CacheConfig     `env:", prefix=CACHE_"`
}

// EmailConfig configures SMTP delivery of one-time codes.  An empty Host
// disables sending; codes are then only logged.
type EmailConfig struct {
    Host string `env:"HOST"`
    Port int    `env:"PORT,default=587"`
    User string `env:"USER"`
    Pass string `env:"PASS"`
    From string `env:"FROM,default=no-reply@gymhub.local"`
}

// RedisConfig describes the Redis connection used for rate limiting,
// response caching and OTP resend throttling.  Addr is host:port.
type RedisConfig struct {
    Addr     string `env:"ADDR,default=localhost:6379"`
    Password string `env:"PASSWORD"`
    DB       int    `env:"DB,default=0"`
    TLS      bool   `env:"TLS,default=false"`
}

// RateLimitConfig drives the Redis token bucket in front of /auth.
type RateLimitConfig struct {
    Enabled        bool          `env:"ENABLED,default=true"`
    Capacity       int           `env:"CAPACITY,default=20"`
    RefillTokens   int           `env:"REFILL_TOKENS,default=1"`
    RefillInterval time.Duration `env:"REFILL_INTERVAL,default=3s"`
    TTL            time.Duration `env:"TTL,default=10m"`
    KeyStrategy    string        `env:"KEY_STRATEGY,default=ip_route"`
    Prefix         string        `env:"PREFIX,default=rl"`
    Debug          bool          `env:"DEBUG,default=false"`
}

// CacheConfig defines settings for the response cache on public catalog
// reads.  Methods lists the HTTP methods to cache; KeyStrategy determines
// which parts of the request contribute to the cache key.
type CacheConfig struct {
    Enabled      bool          `env:"ENABLED,default=true"`
    Methods      []string      `env:"METHODS,default=GET"`
    TTL          time.Duration `env:"TTL,default=30s"`
    KeyStrategy  string        `env:"KEY_STRATEGY,default=route_query"`
    Prefix       string        `env:"PREFIX,default=cache"`
    MaxBodyBytes int           `env:"MAX_BODY_BYTES,default=1048576"`
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (Config, error) {
    _ = godotenv.Load()
    var cfg Config
    if err := envconfig.Process(ctx, &cfg); err != nil {
        return Config{}, fmt.Errorf("load config: %w", err)
    }
    cfg.RateLimit = cfg.RateLimit.normalized()
    return cfg, nil
}

// IsProduction controls cookie hardening and whether mail failures surface.
func (c Config) IsProduction() bool { return strings.EqualFold(c.Env, "production") }

// DSN returns the MySQL DSN.  parseTime=true maps DATETIME to time.Time and
// loc=UTC keeps times consistent.
func (c Config) DSN() string {
    if c.MySQLDSN != "" {
        return c.MySQLDSN
    }
    auth := c.DBUser
    if c.DBPass != "" {
        auth = c.DBUser + ":" + url.QueryEscape(c.DBPass)
    }
    return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
        auth, c.DBHost, c.DBPort, c.DBName)
}

// MethodSet returns the cached methods upper-cased for constant-time lookups.
func (c CacheConfig) MethodSet() map[string]bool {
    m := make(map[string]bool, len(c.Methods))
    for _, p := range c.Methods {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}

func (r RateLimitConfig) normalized() RateLimitConfig {
    if r.Capacity < 1 {
        r.Capacity = 1
    }
    if r.RefillTokens < 1 {
        r.RefillTokens = 1
    }
    if r.RefillInterval <= 0 {
        r.RefillInterval = time.Second
    }
    if minTTL := 5 * r.RefillInterval; r.TTL < minTTL {
        r.TTL = minTTL
    }
    return r
}
