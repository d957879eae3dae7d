package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/2beens/fitportal/internal/config"
	"github.com/2beens/fitportal/internal/logging"
	"github.com/2beens/fitportal/internal/portal"
	"github.com/2beens/fitportal/internal/storage"
	"github.com/2beens/fitportal/internal/telemetry/metrics"
	"github.com/2beens/fitportal/pkg"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [dev | development | prod | production]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: portal [-env development] [-config ./config.toml] <command> [args]\n\n")
		printCommands(flag.CommandLine.Output())
		fmt.Fprintln(flag.CommandLine.Output())
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %s\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: "fitportal-cli",
	})
	log.Debugf("running in [%s] environment", cfg.Environment)

	dataDirExists, err := pkg.PathExists(cfg.DataDir, true)
	if err != nil {
		log.Fatalf("check data dir: %s", err)
	}
	if !dataDirExists {
		log.Debugf("data dir %s does not exist yet, it is created on first write", cfg.DataDir)
	}

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("fitportal", "cli", promRegistry)

	if maxEntry := storage.MaxCachedEntryBytes(cfg.CacheSizeBytes); int64(maxEntry) < cfg.StorageQuotaBytes {
		log.Debugf("storage cache of %d bytes holds values up to %d bytes, larger ones are read from disk", cfg.CacheSizeBytes, maxEntry)
	}
	backend := storage.NewCachedBackend(
		storage.NewFileBackend(cfg.DataDir, cfg.StorageQuotaBytes),
		cfg.CacheSizeBytes,
	)
	store := storage.NewStore(backend, metricsManager)
	keys := storage.NewKeys(cfg.KeyNamespace)

	a := &app{
		portal: portal.New(store, keys, metricsManager, cfg.PasswordHashCost),
		out:    os.Stdout,
		errOut: os.Stderr,
		now:    time.Now,
	}
	code := a.run(context.Background(), flag.Args())

	hits, misses := backend.CacheStats()
	log.Tracef("storage cache hits: %d, misses: %d", hits, misses)

	if err := metrics.WriteTextfile(cfg.MetricsTextfile, promRegistry); err != nil {
		log.Errorf("%s", err)
	}
	if cfg.SentryEnabled {
		sentry.Flush(2 * time.Second)
	}
	os.Exit(code)
}
