package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/persona-fest/server-go/internal/config"
	apperrors "github.com/persona-fest/server-go/internal/errors"
	redisclient "github.com/persona-fest/server-go/internal/redis"
)

const loginLimitWindow = 60 * time.Second

var loginLimitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

local windowStart = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)

if count >= limit then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. math.random())
redis.call('EXPIRE', key, window + 10)

return 1
`)

// LoginRateLimiter throttles credential endpoints per client IP using a
// redis sliding window, so the limit holds across server restarts and
// replicas. Redis being unreachable fails open: login keeps working without
// the throttle.
type LoginRateLimiter struct {
	client *redis.Client
	limit  int
}

func NewLoginRateLimiter(client *redisclient.Client) *LoginRateLimiter {
	return &LoginRateLimiter{
		client: client.Client,
		limit:  config.LoginRateLimitPerMin,
	}
}

func (l *LoginRateLimiter) allow(ctx context.Context, ip string) bool {
	now := time.Now().Unix()
	key := redisclient.LoginLimitKey(ip)

	allowed, err := loginLimitScript.Run(ctx, l.client, []string{key},
		now, int64(loginLimitWindow.Seconds()), l.limit).Int64()
	if err != nil {
		log.Warn().Err(err).Str("ip", ip).Msg("redis login limit check failed, allowing request")
		return true
	}

	return allowed == 1
}

func (l *LoginRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		if !l.allow(r.Context(), ip) {
			log.Warn().Str("ip", ip).Str("path", r.URL.Path).Msg("login rate limit exceeded")
			w.Header().Set("Retry-After", strconv.Itoa(int(loginLimitWindow.Seconds())))
			writeError(w, apperrors.RateLimitExceeded())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}
