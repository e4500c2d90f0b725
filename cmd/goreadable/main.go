package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goreadable/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	def := app.DefaultConfig()
	var (
		addr           string
		targetURL      string
		filePath       string
		configPath     string
		envFiles       string
		maxChars       int
		userAgent      string
		acceptLanguage string
		timeout        time.Duration
		maxBodyBytes   int64
		maxRedirects   int
		maxConcurrent  int
		verbose        bool
		logJSON        bool
	)

	flag.StringVar(&addr, "addr", def.Addr, "Listen address for the HTTP API")
	flag.StringVar(&targetURL, "url", "", "Extract a single https URL, print JSON and exit")
	flag.StringVar(&filePath, "file", "", "Extract a local HTML file, print JSON and exit")
	flag.StringVar(&configPath, "config", "", "Path to YAML or JSON config file (default $GOREADABLE_CONFIG)")
	flag.StringVar(&envFiles, "env", ".env", "Comma-separated dotenv files to load (missing files are skipped)")
	flag.IntVar(&maxChars, "max.chars", def.MaxChars, "Maximum characters of extracted text")
	flag.StringVar(&userAgent, "http.userAgent", def.UserAgent, "User-Agent for outbound requests")
	flag.StringVar(&acceptLanguage, "http.acceptLanguage", def.AcceptLanguage, "Accept-Language for outbound requests")
	flag.DurationVar(&timeout, "http.timeout", def.Timeout, "Per-request fetch timeout")
	flag.Int64Var(&maxBodyBytes, "max.bodyBytes", def.MaxBodyBytes, "Maximum response body size in bytes")
	flag.IntVar(&maxRedirects, "max.redirects", def.MaxRedirects, "Maximum redirects to follow (0 = do not follow)")
	flag.IntVar(&maxConcurrent, "max.concurrent", 0, "Maximum concurrent outbound fetches (0 = unlimited)")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.BoolVar(&logJSON, "log.json", false, "Log JSON lines instead of console output")
	flag.Parse()

	if err := app.LoadEnvFiles(strings.Split(envFiles, ",")...); err != nil {
		log.Fatal().Err(err).Msg("load env files")
	}
	configPath = app.ResolveConfigPath(configPath)

	// Precedence: flags > env > config file > defaults
	cfg := def
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("load config file")
		}
		if err := app.ApplyFileConfig(&cfg, fc); err != nil {
			log.Fatal().Err(err).Msg("apply config file")
		}
		cfg.ConfigPath = configPath
	}
	app.ApplyEnvOverrides(&cfg)
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = addr
		case "max.chars":
			cfg.MaxChars = maxChars
		case "http.userAgent":
			cfg.UserAgent = userAgent
		case "http.acceptLanguage":
			cfg.AcceptLanguage = acceptLanguage
		case "http.timeout":
			cfg.Timeout = timeout
		case "max.bodyBytes":
			cfg.MaxBodyBytes = maxBodyBytes
		case "max.redirects":
			cfg.MaxRedirects = maxRedirects
		case "max.concurrent":
			cfg.MaxConcurrent = maxConcurrent
		case "v":
			cfg.Verbose = verbose
		case "log.json":
			cfg.LogJSON = logJSON
		}
	})
	cfg.URL = targetURL
	cfg.File = filePath

	if cfg.LogJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(cfg app.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	return a.Run(ctx, os.Stdout)
}
