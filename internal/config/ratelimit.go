package config

import "time"

// RateLimitConfig configures the Redis token bucket guarding booking.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

func loadRateLimitConfig(r *reader) RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        r.boolean("RATE_LIMIT_ENABLED", true),
		Capacity:       r.integer("RATE_LIMIT_CAPACITY", 10),
		RefillTokens:   r.integer("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: r.duration("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            r.duration("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    r.str("RATE_LIMIT_KEY_STRATEGY", "user_route"),
		Prefix:         r.str("RATE_LIMIT_PREFIX", "rl"),
		Debug:          r.boolean("RATE_LIMIT_DEBUG", false),
	}
	if b := r.integer("RATE_LIMIT_BURST", -1); b > 0 {
		def.Capacity = b
	}
	if every := r.duration("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
		def.RefillTokens = 1
		def.RefillInterval = every
	}
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	if minTTL := 5 * def.RefillInterval; def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}
