package config

import (
    "context"
    "crypto/tls"
    "time"

    "github.com/redis/go-redis/v9"
    "github.com/rs/zerolog/log"
)

// NewRedisClient connects to Redis and pings it with a short timeout.  It
// returns nil when the server is unreachable; callers degrade gracefully by
// disabling rate limiting, caching and resend throttling.
func NewRedisClient(ctx context.Context, rc RedisConfig) *redis.Client {
    var tlsConf *tls.Config
    if rc.TLS {
        tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      rc.Addr,
        Password:  rc.Password,
        DB:        rc.DB,
        TLSConfig: tlsConf,
    })
    pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    if err := client.Ping(pingCtx).Err(); err != nil {
        log.Warn().Err(err).Str("addr", rc.Addr).Msg("redis unavailable; rate limiting and caching disabled")
        _ = client.Close()
        return nil
    }
    return client
}
