package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig describes the global request budget: Max requests per
// client address within each Window.
type RateLimitConfig struct {
    Enabled     bool
    Max         int
    Window      time.Duration
    KeyStrategy string
    Prefix      string
    Debug       bool
}

func LoadRateLimitConfig() RateLimitConfig {
    def := RateLimitConfig{
        Enabled:     envBool("RATE_LIMIT_ENABLED", true),
        Max:         envInt("RATE_LIMIT_MAX", 100),
        Window:      envDur("RATE_LIMIT_WINDOW", 15*time.Minute),
        KeyStrategy: envStr("RATE_LIMIT_KEY_STRATEGY", "ip"),
        Prefix:      envStr("RATE_LIMIT_PREFIX", "rl"),
        Debug:       envBool("RATE_LIMIT_DEBUG", false),
    }
    if def.Max < 1 { def.Max = 1 }
    if def.Window <= 0 { def.Window = 15 * time.Minute }
    return def
}

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch v {
    case "1","true","TRUE","True","yes","YES","on","ON": return true
    case "0","false","FALSE","False","no","NO","off","OFF": return false
    }
    return d
}
func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}
func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}
