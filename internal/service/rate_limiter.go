package service

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// RateLimiter limita la frecuencia de intentos por clave (ventana fija).
// Allow registra un intento; Blocked consulta sin registrar; Reset borra el contador.
type RateLimiter interface {
	Allow(key string) bool
	Blocked(key string) bool
	Reset(key string)
}

const redisAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisLimiterClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisRateLimiter struct {
	client redisLimiterClient
	window time.Duration
	max    int
	prefix string
}

// NewRedisRateLimiter devuelve nil si no hay cliente, para que el llamador elija el de memoria.
func NewRedisRateLimiter(client *redis.Client, prefix string, window time.Duration, max int) RateLimiter {
	if client == nil {
		return nil
	}
	window, max = normalizeLimits(window, max)
	return &redisRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: prefix,
	}
}

// Allow falla abierto si Redis no responde.
func (l *redisRateLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalizedKey := normalizeKey(key)
	if normalizedKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisAllowScript, []string{l.prefix + normalizedKey}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}

// Blocked indica si la clave ya agotó sus intentos. Falla abierto.
func (l *redisRateLimiter) Blocked(key string) bool {
	if l == nil || l.client == nil {
		return false
	}
	normalizedKey := normalizeKey(key)
	if normalizedKey == "" {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	count, err := l.client.Get(ctx, l.prefix+normalizedKey).Int()
	if err != nil {
		return false
	}
	return count >= l.max
}

func (l *redisRateLimiter) Reset(key string) {
	if l == nil || l.client == nil {
		return
	}
	normalizedKey := normalizeKey(key)
	if normalizedKey == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = l.client.Del(ctx, l.prefix+normalizedKey).Err()
}

type memoryRateLimiter struct {
	cache  *cache.Cache
	window time.Duration
	max    int
}

// NewMemoryRateLimiter crea un limitador en proceso sobre go-cache.
func NewMemoryRateLimiter(window time.Duration, max int) RateLimiter {
	window, max = normalizeLimits(window, max)
	return &memoryRateLimiter{
		cache:  cache.New(window, 2*window),
		window: window,
		max:    max,
	}
}

func (l *memoryRateLimiter) Allow(key string) bool {
	normalizedKey := normalizeKey(key)
	if normalizedKey == "" {
		return false
	}
	if err := l.cache.Add(normalizedKey, 1, l.window); err == nil {
		return 1 <= l.max
	}
	count, err := l.cache.IncrementInt(normalizedKey, 1)
	if err != nil {
		// expiró entre Add e Increment
		l.cache.Set(normalizedKey, 1, l.window)
		return 1 <= l.max
	}
	return count <= l.max
}

func (l *memoryRateLimiter) Blocked(key string) bool {
	normalizedKey := normalizeKey(key)
	if normalizedKey == "" {
		return true
	}
	v, found := l.cache.Get(normalizedKey)
	if !found {
		return false
	}
	count, ok := v.(int)
	return ok && count >= l.max
}

func (l *memoryRateLimiter) Reset(key string) {
	l.cache.Delete(normalizeKey(key))
}

func normalizeLimits(window time.Duration, max int) (time.Duration, int) {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return window, max
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
