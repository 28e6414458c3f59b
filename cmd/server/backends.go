package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	httpapi "cubemint/internal/http"
	"cubemint/internal/platform/config"
	"cubemint/internal/platform/kafka"
	"cubemint/internal/platform/postgres"
	"cubemint/internal/platform/redis"
	ratelimitmetrics "cubemint/internal/ratelimit/metrics"
	ratelimitmw "cubemint/internal/ratelimit/middleware"
	ratelimitports "cubemint/internal/ratelimit/ports"
	ratelimitstore "cubemint/internal/ratelimit/store"
	"cubemint/internal/registry"
	salemodels "cubemint/internal/sale/models"
	"cubemint/internal/sale/ports"
	saleservice "cubemint/internal/sale/service"
	salestore "cubemint/internal/sale/store"
	whitelistservice "cubemint/internal/whitelist/service"
	whiteliststore "cubemint/internal/whitelist/store"
	audit "cubemint/pkg/platform/audit"
	"cubemint/pkg/platform/audit/publisher"
	auditkafka "cubemint/pkg/platform/audit/store/kafka"
	auditmemory "cubemint/pkg/platform/audit/store/memory"
)

type healthChecks map[string]httpapi.HealthCheck

func (h healthChecks) merge(other healthChecks) {
	for name, check := range other {
		h[name] = check
	}
}

// saleBackend is either Postgres or process memory. Both expose the same
// stores; only the transaction boundary differs.
type saleBackend struct {
	kind      string
	stores    ports.Stores
	tx        ports.SaleTx
	whitelist whitelistservice.Store
	health    healthChecks
	db        *sql.DB
}

func (b *saleBackend) close() {
	if b.db != nil {
		_ = b.db.Close()
	}
}

// seedConfig turns the environment into the sale's first configuration.
func seedConfig(cfg config.SaleConfig, now time.Time) salemodels.Config {
	seed := salemodels.DefaultConfig(cfg.Administrator, now)
	if !cfg.PublicPhaseStart.IsZero() {
		seed.PublicPhaseStart = cfg.PublicPhaseStart
	}
	if cfg.UnitPrice != nil {
		seed.UnitPrice = cfg.UnitPrice
	}
	seed.MetadataBase = cfg.MetadataBase
	seed.FreeSupplyCap = cfg.FreeSupplyCap
	return seed
}

func openSaleBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (*saleBackend, error) {
	seed := seedConfig(cfg.Sale, time.Now().UTC())

	db, err := postgres.Open(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	if db == nil {
		log.Warn("DATABASE_URL not set; sale state lives in memory and is lost on restart")
		reg := registry.NewInMemoryRegistry(cfg.Sale.MaxSupply)
		stores := ports.Stores{
			Config:   salestore.NewInMemoryConfigStore(seed),
			Ledger:   salestore.NewInMemoryClaimLedger(),
			Registry: reg,
		}
		return &saleBackend{
			kind:      "memory",
			stores:    stores,
			tx:        saleservice.NewMemoryTx(stores),
			whitelist: whiteliststore.NewInMemoryStore(),
			health:    healthChecks{},
		}, nil
	}

	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	reg := registry.NewPostgresRegistry(db)
	if err := reg.Init(ctx, cfg.Sale.MaxSupply); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init registry: %w", err)
	}
	configStore := salestore.NewPostgresConfigStore(db)
	if err := configStore.Seed(ctx, seed); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed sale config: %w", err)
	}

	stores := ports.Stores{
		Config:   configStore,
		Ledger:   salestore.NewPostgresClaimLedger(db),
		Registry: reg,
	}
	return &saleBackend{
		kind:      "postgres",
		stores:    stores,
		tx:        newSalePostgresTx(db, stores),
		whitelist: whiteliststore.NewPostgresStore(db),
		health:    healthChecks{"postgres": db.PingContext},
		db:        db,
	}, nil
}

type auditBackend struct {
	publisher *publisher.Publisher
	producer  *kafka.Producer
	health    healthChecks
}

func (a *auditBackend) close() {
	a.publisher.Close()
	if a.producer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.producer.Close(ctx)
	}
}

// openAudit streams events to Kafka when brokers are configured, keeping a
// memory copy while the broker is unavailable.
func openAudit(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (*auditBackend, error) {
	local := auditmemory.NewInMemoryStore()
	var sink audit.Store = local

	producer, err := kafka.NewProducer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	health := healthChecks{}
	if producer != nil {
		if err := producer.EnsureTopic(ctx, 1, 1); err != nil {
			log.Warn("could not ensure audit topic", "topic", cfg.AuditTopic, "error", err)
		}
		sink = auditkafka.New(producer, auditkafka.WithFallback(local), auditkafka.WithLogger(log))
		health["kafka"] = producer.Ping
	}

	pub := publisher.NewPublisher(sink, publisher.WithAsyncBuffer(cfg.AuditBuffer), publisher.WithLogger(log))
	return &auditBackend{publisher: pub, producer: producer, health: health}, nil
}

type limiterBackend struct {
	middleware *ratelimitmw.Middleware
	sweepers   []*ratelimitstore.InMemoryBucketStore
	client     *redis.Client
	health     healthChecks
}

func (l *limiterBackend) close() {
	if l.client != nil {
		_ = l.client.Close()
	}
}

// sweep drops idle in-memory buckets until ctx is done.
func (l *limiterBackend) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, s := range l.sweepers {
				s.Sweep(ratelimitmw.DefaultWindow)
			}
		}
	}
}

func openLimiter(ctx context.Context, cfg config.Config, log *slog.Logger, pub ratelimitports.AuditPublisher, reg prometheus.Registerer) (*limiterBackend, error) {
	fallback := ratelimitstore.NewInMemoryBucketStore()
	backend := &limiterBackend{sweepers: []*ratelimitstore.InMemoryBucketStore{fallback}, health: healthChecks{}}

	var primary ratelimitports.BucketStore = fallback
	if cfg.RateLimit.MintPerMinute > 0 {
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		if client != nil {
			primary = ratelimitstore.NewRedisBucketStore(client.Client)
			backend.client = client
			backend.health["redis"] = client.Health
		}
	}

	backend.middleware = ratelimitmw.New(primary, log,
		ratelimitmw.WithLimit(cfg.RateLimit.MintPerMinute, ratelimitmw.DefaultWindow),
		ratelimitmw.WithFallback(fallback),
		ratelimitmw.WithAuditPublisher(pub),
		ratelimitmw.WithMetrics(ratelimitmetrics.New(reg)),
		ratelimitmw.WithDisabled(cfg.RateLimit.MintPerMinute == 0),
	)
	return backend, nil
}
