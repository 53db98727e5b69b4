package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	ballotledger "greenballot/contexts/election-core/ballot-ledger"
	postgresadapter "greenballot/contexts/election-core/ballot-ledger/adapters/postgres"
	workerapp "greenballot/contexts/election-core/ballot-ledger/application/workers"
	"greenballot/internal/platform/config"
	"greenballot/internal/platform/db"
	"greenballot/internal/platform/httpserver"
	"greenballot/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	kafka        *messaging.Kafka
	auditRelay   workerapp.AuditRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI(configPath string) (*APIApp, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	admin := strings.TrimSpace(cfg.Ballot.AdminPrincipal)
	if admin == "" {
		return nil, errors.New("ballot.admin_principal is required")
	}

	// Without a DSN the ledger runs on the in-memory store. That keeps local
	// runs and smoke tests free of infrastructure.
	if strings.TrimSpace(cfg.Postgres.DSN) == "" {
		module := ballotledger.NewInMemoryModule(admin, logger)
		server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
		return &APIApp{
			server: server,
			logger: logger,
		}, nil
	}

	pg, err := db.Connect(cfg.Postgres.DSN, cfg.Postgres.PingTimeout)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	if err := repo.AutoMigrate(admin); err != nil {
		_ = pg.Close()
		return nil, err
	}

	module := ballotledger.NewModule(ballotledger.Dependencies{
		Ledger: repo,
		Clock:  postgresadapter.SystemClock{},
		IDGen:  postgresadapter.UUIDGenerator{},
		Logger: logger,
	})

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker(configPath string) (*WorkerApp, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.Postgres.DSN) == "" {
		return nil, errors.New("postgres.dsn is required for the audit relay worker")
	}

	pg, err := db.Connect(cfg.Postgres.DSN, cfg.Postgres.PingTimeout)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	pollInterval := cfg.Audit.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	return &WorkerApp{
		postgres: pg,
		kafka:    kafka,
		auditRelay: workerapp.AuditRelay{
			Audit:     repo,
			Publisher: kafka,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: cfg.Audit.BatchSize,
			Logger:    logger,
		},
		pollInterval: pollInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.auditRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	var firstErr error
	if w.kafka != nil {
		firstErr = w.kafka.Close()
	}
	if w.postgres != nil {
		if err := w.postgres.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
