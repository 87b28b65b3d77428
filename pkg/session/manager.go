package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/docket/internal/logging"
	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// TxFunc mutates a working copy of a session.
// Returning a nil session discards the copy; a non-nil one is committed.
type TxFunc func(ctx context.Context, sess *domain.Session) (*domain.Session, error)

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks. Non-positive values keep the default.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Transact runs fn on a clone of the session under the session lock.
// A missing session starts fresh at the menu. The clone is persisted only when fn
// returns a non-nil session, so a failed turn leaves the stored session untouched.
// When the distributed lock was lost during fn the commit is refused with ports.ErrLockLost.
func (m *Manager) Transact(ctx context.Context, sessionID string, fn TxFunc) (*domain.Session, error) {
	var committed *domain.Session
	err := m.locked(ctx, sessionID, func(ctx context.Context, held holdCheck) error {
		current, err := m.loadOrNew(ctx, sessionID)
		if err != nil {
			return err
		}

		next, fnErr := fn(ctx, current.Clone())
		if next == nil {
			committed = current
			return fnErr
		}

		if err := held(ctx); err != nil {
			committed = current
			return errors.Join(fnErr, fmt.Errorf("failed to commit session: %w", err))
		}

		next.ID = sessionID
		next.UpdatedAt = m.now().UTC()
		if err := m.store.Save(ctx, sessionID, next); err != nil {
			return errors.Join(fnErr, fmt.Errorf("failed to commit session: %w", err))
		}
		committed = next
		return fnErr
	})
	return committed, err
}

func (m *Manager) loadOrNew(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := m.store.Load(ctx, sessionID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to check session existence: %w", err)
	}
	sess = domain.NewSession(sessionID)
	sess.CreatedAt = m.now().UTC()
	sess.UpdatedAt = sess.CreatedAt
	return sess, nil
}

// Create initializes and persists a new session positioned at the menu.
// An existing session with the same id is returned as is.
func (m *Manager) Create(ctx context.Context, sessionID string) (*domain.Session, error) {
	var sess *domain.Session
	err := m.locked(ctx, sessionID, func(ctx context.Context, held holdCheck) error {
		var err error
		sess, err = m.loadOrNew(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := held(ctx); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		// Persist immediately to reserve the ID
		if err := m.store.Save(ctx, sessionID, sess); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return sess, err
}

// Reset clears the kind, facts and pending field of a session in one commit.
func (m *Manager) Reset(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.Transact(ctx, sessionID, func(_ context.Context, sess *domain.Session) (*domain.Session, error) {
		sess.Reset()
		return sess, nil
	})
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		sess, err = m.store.Load(ctx, sessionID)
		return err
	})
	return sess, err
}

// Destroy removes the session from the store.
func (m *Manager) Destroy(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// holdCheck reports whether the distributed lock is still held.
type holdCheck func(ctx context.Context) error

func alwaysHeld(context.Context) error { return nil }

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	return m.locked(ctx, sessionID, func(ctx context.Context, _ holdCheck) error {
		return fn(ctx)
	})
}

func (m *Manager) locked(ctx context.Context, sessionID string, fn func(context.Context, holdCheck) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker == nil {
		return fn(ctx, alwaysHeld)
	}

	lease, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire distributed lock: %w", err)
	}
	defer func() {
		if err := lease.Unlock(context.WithoutCancel(ctx)); err != nil {
			m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
				"session_id", sessionID,
				"err", err,
			)
		}
	}()

	return fn(ctx, func(ctx context.Context) error {
		if err := lease.Check(ctx); err != nil {
			m.logger.Warn("Distributed lock lost before commit",
				"session_id", sessionID,
				"err", err,
			)
			return err
		}
		return nil
	})
}
