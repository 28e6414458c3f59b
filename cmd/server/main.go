package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	httpapi "cubemint/internal/http"
	"cubemint/internal/jwttoken"
	"cubemint/internal/platform/config"
	"cubemint/internal/platform/httpserver"
	"cubemint/internal/platform/logger"
	"cubemint/internal/platform/metrics"
	salehandler "cubemint/internal/sale/handler"
	salemetrics "cubemint/internal/sale/metrics"
	saleservice "cubemint/internal/sale/service"
	"cubemint/internal/whitelist"
	whitelisthandler "cubemint/internal/whitelist/handler"
	whitelistservice "cubemint/internal/whitelist/service"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cubemint:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hasher, err := whitelist.ParseHasher(cfg.Sale.WhitelistHasher)
	if err != nil {
		return err
	}

	store, err := openSaleBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	auditing, err := openAudit(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer auditing.close()
	store.health.merge(auditing.health)

	reg := prometheus.DefaultRegisterer
	sale, err := saleservice.New(store.tx, store.stores.Registry,
		saleservice.WithLogger(log),
		saleservice.WithAuditPublisher(auditing.publisher),
		saleservice.WithMetrics(salemetrics.New(reg)),
		saleservice.WithHasher(hasher),
		saleservice.WithTracer(otel.Tracer("cubemint/sale")),
	)
	if err != nil {
		return err
	}
	wl, err := whitelistservice.New(store.whitelist, sale,
		whitelistservice.WithLogger(log),
		whitelistservice.WithAuditPublisher(auditing.publisher),
		whitelistservice.WithHasher(hasher),
	)
	if err != nil {
		return err
	}
	if err := wl.CheckLiveHasher(ctx); err != nil {
		return fmt.Errorf("WHITELIST_HASHER=%s: %w", hasher.Name(), err)
	}

	limiter, err := openLimiter(ctx, cfg, log, auditing.publisher, reg)
	if err != nil {
		return err
	}
	defer limiter.close()
	store.health.merge(limiter.health)

	jwt := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:    log,
		Sale:      salehandler.New(sale, log),
		Whitelist: whitelisthandler.New(wl, log),
		Tokens:    jwttoken.NewJWTServiceAdapter(jwt),
		Limiter:   limiter.middleware,
		Metrics:   metrics.New(reg),
		Gatherer:  prometheus.DefaultGatherer,
		Health:    store.health,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting cubemint", "addr", cfg.Server.Addr, "backend", store.kind, "hasher", hasher.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		limiter.sweep(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	err = g.Wait()
	log.Info("stopped", "error", err)
	return err
}

// sweepInterval is how often idle in-memory rate limit buckets are dropped.
const sweepInterval = time.Minute
