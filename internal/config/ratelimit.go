package config

import (
    "os"
    "strings"
    "time"
)

// RateClass groups endpoints that share one token bucket configuration.
type RateClass string

const (
    RateAuth   RateClass = "auth"   // register, login and token refresh
    RateAccept RateClass = "accept" // donor pledges
)

// RateLimitConfig tunes the Redis token bucket for one RateClass.
type RateLimitConfig struct {
    Class          RateClass
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

// Credential endpoints are keyed by client address and route, pledges by
// donor.
var rateDefaults = map[RateClass]RateLimitConfig{
    RateAuth: {
        Capacity:       10,
        RefillTokens:   1,
        RefillInterval: 6 * time.Second,
        KeyStrategy:    "ip_route",
    },
    RateAccept: {
        Capacity:       5,
        RefillTokens:   1,
        RefillInterval: time.Minute,
        KeyStrategy:    "user",
    },
}

// LoadRateLimitConfig reads the bucket for class.  Each setting is looked
// up as RATE_LIMIT_<CLASS>_<NAME>, then RATE_LIMIT_<NAME>, then the class
// default.  Buckets of different classes never share Redis keys.
func LoadRateLimitConfig(class RateClass) RateLimitConfig {
    def, ok := rateDefaults[class]
    if !ok {
        def = rateDefaults[RateAuth]
    }
    key := rateKeyName(class)

    rc := RateLimitConfig{
        Class:          class,
        Enabled:        envBool(key("ENABLED"), true),
        Capacity:       envInt(key("CAPACITY"), def.Capacity),
        RefillTokens:   envInt(key("REFILL_TOKENS"), def.RefillTokens),
        RefillInterval: envDur(key("REFILL_INTERVAL"), def.RefillInterval),
        TTL:            envDur(key("TTL"), 10*time.Minute),
        KeyStrategy:    envStr(key("KEY_STRATEGY"), def.KeyStrategy),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "bdt:rl") + ":" + string(class),
        Debug:          envBool(key("DEBUG"), false),
    }
    if every := envDur(key("REFILL_EVERY"), 0); every > 0 {
        rc.RefillTokens = 1
        rc.RefillInterval = every
    }
    rc.clamp()
    return rc
}

func rateKeyName(class RateClass) func(name string) string {
    scoped := "RATE_LIMIT_" + strings.ToUpper(string(class)) + "_"
    return func(name string) string {
        if _, set := os.LookupEnv(scoped + name); set {
            return scoped + name
        }
        return "RATE_LIMIT_" + name
    }
}

// clamp keeps the bucket usable and its key alive for several refills.
func (rc *RateLimitConfig) clamp() {
    if rc.Capacity < 1 {
        rc.Capacity = 1
    }
    if rc.RefillTokens < 1 {
        rc.RefillTokens = 1
    }
    if rc.RefillInterval <= 0 {
        rc.RefillInterval = time.Second
    }
    if minTTL := 5 * rc.RefillInterval; rc.TTL < minTTL {
        rc.TTL = minTTL
    }
}
