package ports

import (
	"context"
	"errors"
	"time"
)

// ErrLockLost reports that a lock expired or was taken over by another holder.
var ErrLockLost = errors.New("distributed lock no longer held")

// Lease is a lock held through DistributedLocker.Lock.
type Lease interface {
	// Check returns ErrLockLost once the lock is no longer held by this lease.
	Check(ctx context.Context) error
	// Unlock releases the lock. It must be called on every path.
	Unlock(ctx context.Context) error
}

// DistributedLocker serializes turns of one session across replicas sharing a store.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx ends. The lock expires after ttl
	// if the holder dies and is kept alive while the lease is held.
	Lock(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}
