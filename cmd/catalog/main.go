package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"MiniCatalog/internal/browse"
	"MiniCatalog/internal/catalog"
	"MiniCatalog/internal/device"
	"MiniCatalog/internal/gateway"
	"MiniCatalog/internal/prefs"
	"MiniCatalog/pkg/kit"
)

const (
	service         = "catalog"
	minSecretLength = 32
)

type config struct {
	Port     string `env:"PORT" envDefault:"8082"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DeviceSecret string `env:"DEVICE_SECRET,required"`
	SeedFile     string `env:"CATALOG_SEED_FILE"`

	PrefsDriver string `env:"PREFS_DRIVER" envDefault:"sqlite"`
	PrefsDSN    string `env:"PREFS_DSN" envDefault:"prefs.db"`

	SearchDebounce       time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"500ms"`
	SessionIdleTTL       time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
	WriteLimitPerMin     int           `env:"WRITE_LIMIT_PER_MIN" envDefault:"30"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	MetricsToken   string `env:"METRICS_TOKEN"`
	OTELEndpoint   string `env:"OTEL_ENDPOINT"`
}

func (c config) validate() error {
	if len(c.DeviceSecret) < minSecretLength {
		return errors.Errorf("DEVICE_SECRET must be at least %d characters", minSecretLength)
	}
	if c.SessionSweepInterval <= 0 {
		return errors.Errorf("SESSION_SWEEP_INTERVAL must be positive, got %s", c.SessionSweepInterval)
	}
	if c.SessionIdleTTL <= 0 {
		return errors.Errorf("SESSION_IDLE_TTL must be positive, got %s", c.SessionIdleTTL)
	}
	if c.SearchDebounce < 0 {
		return errors.Errorf("SEARCH_DEBOUNCE must not be negative, got %s", c.SearchDebounce)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg config
	if err := kit.ParseEnv(&cfg); err != nil {
		return errors.Wrap(err, "parsing config")
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := kit.SetupTracing(ctx, service, cfg.OTELEndpoint)
	if err != nil {
		return errors.Wrap(err, "setting up tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	seed := catalog.DefaultSeed()
	if cfg.SeedFile != "" {
		seed, err = catalog.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return errors.Wrap(err, "loading catalog seed")
		}
	}
	store := catalog.NewStore(catalog.WithSeed(seed...))

	prefStore, err := prefs.Open(ctx, cfg.PrefsDriver, cfg.PrefsDSN)
	if err != nil {
		return errors.Wrapf(err, "opening %s prefs store", cfg.PrefsDriver)
	}
	defer func() { _ = prefStore.Close() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	writeLimit := kit.NewIPRateLimiter(cfg.WriteLimitPerMin, time.Minute)
	sessions := browse.NewManager(cfg.SearchDebounce, cfg.SessionIdleTTL,
		browse.WithMetrics(browse.NewMetrics(reg)),
	)

	h := gateway.NewHandler(
		gateway.Deps{
			Catalog: &catalog.Server{
				Store:      store,
				Log:        log,
				Metrics:    catalog.NewMetrics(reg),
				WriteLimit: writeLimit,
			},
			Browse: &browse.Server{
				Catalog:  store,
				Prefs:    prefStore,
				Sessions: sessions,
				Devices:  device.NewTokenMaker(cfg.DeviceSecret),
				Log:      log,
			},
			Ready: prefStore,
		},
		gateway.HTTPDeps{
			Log:            log,
			Service:        service,
			Registry:       reg,
			MetricsEnabled: cfg.MetricsEnabled,
			MetricsToken:   cfg.MetricsToken,
		},
	)

	go sessions.Run(ctx, cfg.SessionSweepInterval)
	go sweepLimiter(ctx, writeLimit, cfg.SessionSweepInterval)

	log.Info("catalog ready",
		zap.Int("products", store.Len()),
		zap.String("prefs_driver", cfg.PrefsDriver),
		zap.Duration("search_debounce", cfg.SearchDebounce),
	)

	if err := kit.RunHTTPServer(ctx, ":"+cfg.Port, h, log); err != nil {
		return errors.Wrap(err, "server error")
	}
	return nil
}

func sweepLimiter(ctx context.Context, l *kit.IPRateLimiter, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep()
		}
	}
}
