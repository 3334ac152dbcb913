package setup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/LavaJover/festival-order-service/internal/config"
	"github.com/LavaJover/festival-order-service/internal/domain"
	publisher "github.com/LavaJover/festival-order-service/internal/infrastructure/kafka"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/memory"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/metrics"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/migrate"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/postgres"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/postgres/repository"
	leases "github.com/LavaJover/festival-order-service/internal/infrastructure/redis"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/sepay"
)

type Dependencies struct {
	Config       *config.OrderConfig
	Logger       *slog.Logger
	DB           *gorm.DB
	Registry     *prometheus.Registry
	Metrics      *metrics.OrderMetrics
	Publisher    *publisher.EventPublisher
	Feed         domain.TransactionFeed
	Lease        domain.PassLease
	Repositories *Repositories

	closers []func() error
}

type Repositories struct {
	OrderRepo domain.OrderRepository
	Ledger    domain.TicketLedger
}

// InitializeDependencies wires storage, messaging, the lease and the gateway
// client from cfg. Optional backends fall back to in-process versions when
// they are not configured.
func InitializeDependencies(ctx context.Context, cfg *config.OrderConfig, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg, Logger: logger}

	deps.Registry = prometheus.NewRegistry()
	deps.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps.Metrics = metrics.NewOrderMetrics(deps.Registry)

	repos, err := deps.initStorage(cfg.OrderDB)
	if err != nil {
		_ = deps.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}
	deps.Repositories = repos

	deps.Publisher = deps.initPublisher(cfg.KafkaService)
	deps.Lease = deps.initLease(ctx, cfg.RedisService)
	deps.Feed = sepay.NewClient(cfg.PaymentGateway, deps.Metrics, logger.With("component", "sepay"))
	if cfg.PaymentGateway.APIKey == "" {
		logger.Warn("payment gateway api key not set; payments will only be confirmed manually")
	}

	return deps, nil
}

func (d *Dependencies) initStorage(cfg config.OrderDB) (*Repositories, error) {
	if cfg.Dsn == "" {
		d.Logger.Warn("no database configured; using in-memory storage")
		store := memory.NewStore()
		return &Repositories{OrderRepo: store.Orders(), Ledger: store.Tickets()}, nil
	}

	db, err := postgres.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	d.DB = db
	d.closers = append(d.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	if cfg.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.MigrationsPath, d.Logger); err != nil {
			return nil, err
		}
	}

	return &Repositories{
		OrderRepo: repository.NewDefaultOrderRepository(db),
		Ledger:    repository.NewDefaultTicketLedger(db),
	}, nil
}

func (d *Dependencies) initPublisher(cfg config.KafkaService) *publisher.EventPublisher {
	logger := d.Logger.With("component", "events")
	if len(cfg.Brokers) == 0 {
		return publisher.NewEventPublisher(publisher.NoopPublisher{}, cfg.OrderTopic, cfg.GameTopic, logger)
	}
	kp := publisher.NewDefaultKafkaPublisher(cfg.Brokers)
	d.closers = append(d.closers, kp.Close)
	return publisher.NewEventPublisher(kp, cfg.OrderTopic, cfg.GameTopic, logger)
}

// initLease prefers a shared redis lease so replicas never run overlapping
// reconcile passes. An unreachable redis degrades to a process-local lease.
func (d *Dependencies) initLease(ctx context.Context, cfg config.RedisService) domain.PassLease {
	if cfg.Addr == "" {
		return leases.NewLocalPassLease()
	}
	rdb := leases.NewClient(cfg)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := leases.Ping(pingCtx, rdb); err != nil {
		d.Logger.Warn("redis unavailable; using local lease", "addr", cfg.Addr, "error", err)
		_ = rdb.Close()
		return leases.NewLocalPassLease()
	}
	d.closers = append(d.closers, rdb.Close)
	return leases.NewRedisPassLease(rdb, cfg.LeaseTTL, d.Logger.With("component", "lease"))
}

func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
