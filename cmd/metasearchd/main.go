// Command metasearchd runs the meta-search aggregator's dual HTTP
// listeners (internal/operator, external/public) per the configured
// network mode.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/r3e-network/metasearch/internal/config"
	"github.com/r3e-network/metasearch/internal/httpapi"
	"github.com/r3e-network/metasearch/internal/ingress"
	"github.com/r3e-network/metasearch/internal/platform/logging"
	"github.com/r3e-network/metasearch/internal/platform/metrics"
	"github.com/r3e-network/metasearch/internal/platform/resilience"
	"github.com/r3e-network/metasearch/internal/platform/scheduler"
	"github.com/r3e-network/metasearch/internal/platform/stats"
	"github.com/r3e-network/metasearch/internal/search"
	"github.com/r3e-network/metasearch/internal/search/engines"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a YAML config file (overrides ./configs/config.yaml)")
	mode := flag.String("mode", "", "network mode override: internal|external|dual")
	flag.Parse()

	if *configPath != "" {
		_ = os.Setenv("CONFIG_FILE", *configPath)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("load config: %v", err)
		return 1
	}
	if *mode != "" {
		cfg.Network.Mode = config.Mode(*mode)
		if err := cfg.Validate(); err != nil {
			log.Printf("invalid -mode override: %v", err)
			return 1
		}
	}

	appLog := logging.New("metasearchd", cfg.Logging.Level, cfg.Logging.Format)
	accessLog, err := logging.NewAccessLogger()
	if err != nil {
		appLog.WithContext(context.Background()).Errorf("init access logger: %v", err)
		return 1
	}
	defer accessLog.Sync()

	initialMode := search.ModeGlobal
	if len(cfg.Engine.GlobalOrder) > 0 {
		initialMode = search.ModeConfigured
	}
	var healthStore search.HealthStore
	if cfg.State.Backend == "redis" {
		healthStore = search.NewRedisHealthStore(cfg.State.RedisAddr)
	}
	registry := search.NewRegistry(initialMode, healthStore)
	for _, adapter := range engines.All() {
		registry.Register(adapter)
	}
	if len(cfg.Engine.GlobalOrder) > 0 {
		registry.SetConfiguredEngines(cfg.Engine.GlobalOrder)
	}
	for _, name := range cfg.Engine.Disabled {
		registry.DisableEngine(name)
	}
	registry.FailureThreshold = cfg.Engine.FailureThreshold
	registry.TemporaryDisableSeconds = cfg.Engine.TemporaryDisableSeconds

	client := search.NewClient(time.Duration(cfg.Engine.DefaultTimeoutSeconds) * time.Second)
	executor := search.NewExecutor(registry, client, time.Duration(cfg.Engine.DefaultTimeoutSeconds)*time.Second)
	svc := httpapi.NewService(registry, executor)

	metricsCollector := metrics.New(prometheus.DefaultRegisterer)
	statsCollector := stats.NewCollector()

	var magicLinks *ingress.MagicLinkStore
	if cfg.Network.External.EnableMagicLink {
		secret := cfg.Auth.MagicLinkSecret
		if secret == "" {
			secret = uuid.NewString()
			appLog.WithContext(context.Background()).Warn("no magic-link secret configured; using a random per-process secret (tokens do not survive a restart)")
		}
		magicLinks = ingress.NewMagicLinkStore(secret, time.Duration(cfg.Auth.MagicLinkTTLSecond)*time.Second)
	}
	rateLimiter := ingress.NewRateLimiter(ingress.RateLimitConfig{
		GlobalRatePerSecond: cfg.RateLimit.GlobalRatePerSecond,
		GlobalBurst:         cfg.RateLimit.GlobalBurst,
	})

	sched := scheduler.New(appLog)
	if magicLinks != nil {
		if err := sched.Start(magicLinks, rateLimiter, statsCollector, metricsCollector, 30*time.Minute); err != nil {
			appLog.WithContext(context.Background()).Errorf("start scheduler: %v", err)
			return 1
		}
		defer sched.Stop()
	}

	server := httpapi.NewServer(svc, metricsCollector, statsCollector, appLog, accessLog, magicLinks, cfg.Auth.MagicLinkTTLSecond)

	var servers []*http.Server
	errc := make(chan error, 2)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Network.External.Enabled {
		breaker := resilience.New(resilience.DefaultConfig())
		ipFilterMode := ingress.IPFilterDeny
		if cfg.Network.External.IPFilterMode == string(ingress.IPFilterAllow) {
			ipFilterMode = ingress.IPFilterAllow
		}
		chain := ingress.Chain{
			Cfg: cfg.Network.External,
			Auth: ingress.AuthConfig{
				JWTSecret:    cfg.Auth.JWTSecret,
				JWTExpiry:    time.Duration(cfg.Auth.JWTExpiry) * time.Second,
				APIKeyHashes: cfg.Auth.APIKeyHashes,
			},
			IPFilter:    ingress.NewIPFilterConfig(ipFilterMode, cfg.Network.External.IPFilterList),
			MagicLink:   magicLinks,
			Breaker:     breaker,
			RateLimiter: rateLimiter,
			Metrics:     metricsCollector,
		}
		handler := chain.Wrap(server.ExternalMux())
		addr := fmt.Sprintf("%s:%d", cfg.Network.External.Host, cfg.Network.External.Port)
		srv := &http.Server{Addr: addr, Handler: handler}
		servers = append(servers, srv)
		go func() {
			appLog.WithContext(context.Background()).Infof("external listener on %s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLog.WithContext(context.Background()).Errorf("external listener: %v", err)
				errc <- err
			}
		}()
	}

	if cfg.Network.Internal.Enabled {
		handler := ingress.WrapInternal(cfg.Network.External.CORSOrigins, server.InternalMux())
		addr := fmt.Sprintf("%s:%d", cfg.Network.Internal.Host, cfg.Network.Internal.Port)
		srv := &http.Server{Addr: addr, Handler: handler}
		servers = append(servers, srv)
		go func() {
			appLog.WithContext(context.Background()).Infof("internal listener on %s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLog.WithContext(context.Background()).Errorf("internal listener: %v", err)
				errc <- err
			}
		}()
	}

	if len(servers) == 0 {
		appLog.WithContext(context.Background()).Error("no listener enabled, nothing to serve")
		return 1
	}

	select {
	case <-ctx.Done():
	case <-errc:
		return 2
	}
	appLog.WithContext(context.Background()).Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLog.WithContext(context.Background()).Errorf("graceful shutdown: %v", err)
			return 1
		}
	}
	return 0
}
