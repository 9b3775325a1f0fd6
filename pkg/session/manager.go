package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/writ/internal/logging"
	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed session lock is held.
const DefaultLockTTL = 30 * time.Second

// Mutation turns the current state into the next one. Engine operations fit
// this shape once bound to their arguments.
type Mutation func(ctx context.Context, state *domain.State) (*domain.State, error)

// Manager serializes access to sessions held in a StateStore. Operations on
// one session run one at a time within the process, and across processes
// when a DistributedLocker is configured.
type Manager struct {
	store   ports.StateStore
	locks   keyedLocks
	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger

	subMu sync.Mutex
	subs  map[string]map[chan *domain.StateDiff]struct{}
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker adds a cross-process lock around every session operation.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) { m.locker = locker }
}

// WithLockTTL sets the distributed lock expiry.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager wraps store. Without options locking is process-local.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		subs:    make(map[string]map[chan *domain.StateDiff]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load reads a session under its lock.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// LoadOrStart loads a session, or creates it with start when it does not exist.
// The new state is persisted before returning so the id is reserved.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID string, start func(ctx context.Context) (*domain.State, error)) (*domain.State, error) {
	var state *domain.State
	created := false
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		state, err = start(ctx)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, sessionID, state); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		created = true
		return nil
	})
	if err == nil && created {
		m.publish(sessionID, nil, state)
	}
	return state, err
}

// Update runs a read-modify-write cycle under the session lock. The result is
// saved only when fn succeeds; on error the returned state is whatever fn
// returned, which lets callers render an unchanged view.
func (m *Manager) Update(ctx context.Context, sessionID string, fn Mutation) (*domain.State, error) {
	var prev, next *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		prev, err = m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		next, err = fn(ctx, prev)
		if err != nil {
			return err
		}
		if next == prev {
			return nil
		}
		return m.store.Save(ctx, sessionID, next)
	})
	if err != nil {
		return next, err
	}
	if next != prev {
		m.publish(sessionID, prev, next)
	}
	return next, nil
}

// Save overwrites a session without publishing a diff.
func (m *Manager) Save(ctx context.Context, sessionID string, state *domain.State) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, state)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// WithLock runs fn while holding the session's lock.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	unlock := m.locks.lock(sessionID)
	defer unlock()

	if m.locker == nil {
		return fn(ctx)
	}
	release, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire distributed lock: %w", err)
	}
	defer func() {
		// The caller's context may already be canceled.
		if err := release(context.WithoutCancel(ctx)); err != nil {
			m.logger.Warn("distributed lock not released, waiting for expiry",
				"session_id", sessionID, "err", err)
		}
	}()
	return fn(ctx)
}
