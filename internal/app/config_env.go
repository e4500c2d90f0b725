package app

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// ResolveConfigPath returns flagValue, or GOREADABLE_CONFIG when the flag
// was left empty. Call it after LoadEnvFiles so dotenv files can set it.
func ResolveConfigPath(flagValue string) string {
    if flagValue != "" { return flagValue }
    return strings.TrimSpace(os.Getenv("GOREADABLE_CONFIG"))
}

// ApplyEnvOverrides overwrites fields of cfg with GOREADABLE_* environment
// variables that are set. Env beats the config file; flags are applied after
// this and win over both. Unparseable values are ignored.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil { return }

    if v := strings.TrimSpace(os.Getenv("GOREADABLE_ADDR")); v != "" { cfg.Addr = v }
    if v := os.Getenv("GOREADABLE_USER_AGENT"); v != "" { cfg.UserAgent = v }
    if v := os.Getenv("GOREADABLE_ACCEPT_LANGUAGE"); v != "" { cfg.AcceptLanguage = v }

    setInt := func(dst *int, envKey string) {
        if s := strings.TrimSpace(os.Getenv(envKey)); s != "" {
            if n, err := strconv.Atoi(s); err == nil {
                *dst = n
            }
        }
    }
    setInt(&cfg.MaxChars, "GOREADABLE_MAX_CHARS")
    setInt(&cfg.MaxRedirects, "GOREADABLE_MAX_REDIRECTS")
    setInt(&cfg.MaxConcurrent, "GOREADABLE_MAX_CONCURRENT")

    if s := strings.TrimSpace(os.Getenv("GOREADABLE_MAX_BODY_BYTES")); s != "" {
        if n, err := strconv.ParseInt(s, 10, 64); err == nil {
            cfg.MaxBodyBytes = n
        }
    }
    if s := strings.TrimSpace(os.Getenv("GOREADABLE_TIMEOUT")); s != "" {
        if d, err := time.ParseDuration(s); err == nil {
            cfg.Timeout = d
        }
    }

    // Booleans override when env present and truthy/falsey
    setBool := func(dst *bool, envKey string) {
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            switch s {
            case "1", "true", "yes", "on":
                *dst = true
            case "0", "false", "no", "off":
                *dst = false
            }
        }
    }
    setBool(&cfg.Verbose, "GOREADABLE_VERBOSE")
    setBool(&cfg.LogJSON, "GOREADABLE_LOG_JSON")
}
