package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"

    "github.com/hyperifyio/goreadable/internal/score"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
    Addr string `yaml:"addr" json:"addr"`

    HTTP struct {
        UserAgent      string `yaml:"userAgent" json:"userAgent"`
        AcceptLanguage string `yaml:"acceptLanguage" json:"acceptLanguage"`
        // Timeout is a Go duration string such as "15s".
        Timeout string `yaml:"timeout" json:"timeout"`
    } `yaml:"http" json:"http"`

    Max struct {
        Chars      int   `yaml:"chars" json:"chars"`
        BodyBytes  int64 `yaml:"bodyBytes" json:"bodyBytes"`
        Redirects  int   `yaml:"redirects" json:"redirects"`
        Concurrent int   `yaml:"concurrent" json:"concurrent"`
    } `yaml:"max" json:"max"`

    Verbose bool `yaml:"verbose" json:"verbose"`
    LogJSON bool `yaml:"logJSON" json:"logJSON"`

    Heuristics HeuristicsConfig `yaml:"heuristics" json:"heuristics"`
}

// HeuristicsConfig overlays the scoring weights. Patterns replace the
// built-in keyword list when non-empty; tagBase entries override single tags.
type HeuristicsConfig struct {
    Patterns     map[string]float64 `yaml:"patterns" json:"patterns"`
    TagBase      map[string]float64 `yaml:"tagBase" json:"tagBase"`
    MinScore     *float64           `yaml:"minScore" json:"minScore"`
    SiblingRatio *float64           `yaml:"siblingRatio" json:"siblingRatio"`
    Propagation  *float64           `yaml:"propagation" json:"propagation"`
    CommaBonus   *float64           `yaml:"commaBonus" json:"commaBonus"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := strings.ToLower(filepath.Ext(path)); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays the non-zero values of fc onto cfg. It runs before
// env and flags, so anything set later wins.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
    if cfg == nil { return nil }

    if fc.Addr != "" { cfg.Addr = fc.Addr }
    if fc.HTTP.UserAgent != "" { cfg.UserAgent = fc.HTTP.UserAgent }
    if fc.HTTP.AcceptLanguage != "" { cfg.AcceptLanguage = fc.HTTP.AcceptLanguage }
    if fc.HTTP.Timeout != "" {
        d, err := time.ParseDuration(fc.HTTP.Timeout)
        if err != nil {
            return fmt.Errorf("config: http.timeout: %w", err)
        }
        cfg.Timeout = d
    }
    if fc.Max.Chars != 0 { cfg.MaxChars = fc.Max.Chars }
    if fc.Max.BodyBytes != 0 { cfg.MaxBodyBytes = fc.Max.BodyBytes }
    if fc.Max.Redirects != 0 { cfg.MaxRedirects = fc.Max.Redirects }
    if fc.Max.Concurrent != 0 { cfg.MaxConcurrent = fc.Max.Concurrent }
    if fc.Verbose { cfg.Verbose = true }
    if fc.LogJSON { cfg.LogJSON = true }

    h := fc.Heuristics
    if len(h.Patterns) > 0 {
        cfg.Weights.Patterns = score.PatternsFromMap(h.Patterns)
    }
    if len(h.TagBase) > 0 {
        merged := make(map[string]float64, len(cfg.Weights.TagBase)+len(h.TagBase))
        for tag, w := range cfg.Weights.TagBase {
            merged[tag] = w
        }
        for tag, w := range h.TagBase {
            merged[strings.ToLower(strings.TrimSpace(tag))] = w
        }
        cfg.Weights.TagBase = merged
    }
    if h.MinScore != nil { cfg.MinScore = *h.MinScore }
    if h.SiblingRatio != nil { cfg.SiblingRatio = *h.SiblingRatio }
    if h.Propagation != nil { cfg.Weights.PropagationFactor = *h.Propagation }
    if h.CommaBonus != nil { cfg.Weights.CommaBonus = *h.CommaBonus }
    return nil
}

// ValidateConfig performs minimal validation of the merged settings.
func ValidateConfig(cfg Config) error {
    if cfg.URL == "" && cfg.File == "" && strings.TrimSpace(cfg.Addr) == "" {
        return errors.New("config: addr is required")
    }
    if cfg.URL != "" && cfg.File != "" {
        return errors.New("config: -url and -file are mutually exclusive")
    }
    if cfg.MaxChars <= 0 {
        return errors.New("config: max.chars must be positive")
    }
    if cfg.Timeout <= 0 {
        return errors.New("config: http.timeout must be positive")
    }
    if cfg.MaxBodyBytes <= 0 {
        return errors.New("config: max.bodyBytes must be positive")
    }
    if cfg.MaxRedirects < 0 || cfg.MaxConcurrent < 0 || cfg.MinScore < 0 || cfg.SiblingRatio < 0 {
        return errors.New("config: negative limits are not allowed")
    }
    if len(cfg.Weights.TagBase) == 0 {
        return errors.New("config: heuristics.tagBase is empty")
    }
    return nil
}
