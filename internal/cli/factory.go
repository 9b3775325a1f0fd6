package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/writ"
	"github.com/aretw0/writ/internal/config"
	"github.com/aretw0/writ/pkg/adapters/file"
	"github.com/aretw0/writ/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/writ/pkg/adapters/redis"
	"github.com/aretw0/writ/pkg/adapters/sqlsink"
	"github.com/aretw0/writ/pkg/observability"
	"github.com/aretw0/writ/pkg/persistence/middleware"
	"github.com/aretw0/writ/pkg/ports"
	"github.com/aretw0/writ/pkg/session"
)

// Resources bundles everything a long-running command needs.
type Resources struct {
	Engine   *writ.Engine
	Sessions *session.Manager
	Metrics  *observability.Metrics

	closers []func() error
}

// Close releases stores and sinks in reverse opening order.
func (r *Resources) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Build wires the engine, the session manager and the metrics registry from cfg.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...writ.Option) (*Resources, error) {
	res := &Resources{Metrics: observability.NewMetrics("writ")}

	sink, closeSink, err := OpenContactSink(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	res.closers = append(res.closers, closeSink)

	store, locker, closeStore, err := OpenStore(cfg)
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	res.closers = append(res.closers, closeStore)

	engineOpts := []writ.Option{
		writ.WithLogger(logger),
		writ.WithContactSink(sink),
		writ.WithBundlesDir(cfg.BundlesDir),
		writ.WithLifecycleHooks(observability.Combine(
			res.Metrics.Hooks(),
			observability.LogHooks(logger),
		)),
	}
	res.Engine, err = writ.New(append(engineOpts, opts...)...)
	if err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	sessOpts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(locker))
	}
	res.Sessions = session.NewManager(store, sessOpts...)
	return res, nil
}

// OpenStore creates the configured StateStore. Redis also yields a
// distributed locker. When a state key is configured the store encrypts
// every session at rest.
func OpenStore(cfg config.Config) (ports.StateStore, ports.DistributedLocker, func() error, error) {
	var (
		store  ports.StateStore
		locker ports.DistributedLocker
		closer = func() error { return nil }
	)

	switch cfg.Store {
	case config.StoreFile:
		store = file.New(cfg.StoreDir)
	case config.StoreRedis:
		rs := redisAdapter.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redisAdapter.WithTTL(cfg.SessionTTL))
		store = rs
		locker = redisAdapter.NewLocker(rs.Client(), "writ:")
		closer = rs.Close
	case config.StoreMemory, "":
		store = memory.NewStore(memory.WithTTL(cfg.SessionTTL))
	default:
		return nil, nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	if cfg.StateKey == "" {
		return store, locker, closer, nil
	}
	active, err := middleware.ParseKey(cfg.StateKey)
	if err != nil {
		_ = closer()
		return nil, nil, nil, err
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for _, k := range cfg.StateFallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			_ = closer()
			return nil, nil, nil, fmt.Errorf("fallback key: %w", err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	sealed, err := middleware.NewEncryption(enc)
	if err != nil {
		_ = closer()
		return nil, nil, nil, err
	}
	return middleware.Chain(store, sealed), locker, closer, nil
}

// OpenContactSink creates the configured ContactSink.
func OpenContactSink(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.ContactSink, func() error, error) {
	switch cfg.ContactDriver {
	case config.ContactPostgres, config.ContactSQLite:
		driver := sqlsink.DriverPostgres
		if cfg.ContactDriver == config.ContactSQLite {
			driver = sqlsink.DriverSQLite
		}
		sink, err := sqlsink.Open(ctx, driver, cfg.ContactDSN, sqlsink.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return sink, sink.Close, nil
	case config.ContactMemory, "":
		return memory.NewContactSink(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown contact driver %q", cfg.ContactDriver)
	}
}
