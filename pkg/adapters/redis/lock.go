package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/docket/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// ErrLockLost is returned when the lock expired and was taken by another holder.
var ErrLockLost = ports.ErrLockLost

// DefaultRetryInterval is the polling period while a lock is contended.
const DefaultRetryInterval = 100 * time.Millisecond

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// renewScript extends the lock only if it still carries our token.
var renewScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`)

// Locker implements ports.DistributedLocker using Redis.
type Locker struct {
	client *backend.Client
	prefix string
	retry  time.Duration
	renew  time.Duration
}

// LockerOption configures the Locker.
type LockerOption func(*Locker)

// WithRetryInterval sets how often a contended lock is retried.
func WithRetryInterval(d time.Duration) LockerOption {
	return func(l *Locker) {
		if d > 0 {
			l.retry = d
		}
	}
}

// WithRenewInterval sets how often a held lock is extended. The default is a third of the TTL.
func WithRenewInterval(d time.Duration) LockerOption {
	return func(l *Locker) {
		if d > 0 {
			l.renew = d
		}
	}
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string, opts ...LockerOption) *Locker {
	l := &Locker{
		client: client,
		prefix: prefix,
		retry:  DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock acquires a distributed lock for the given key using Redis SET NX PX.
// It blocks until the lock is free or ctx is done. The lock is renewed in the
// background until the lease is unlocked or found lost.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.Lease, error) {
	lockKey := l.prefix + "lock:" + key
	token := uuid.NewString()

	if ok, err := l.try(ctx, lockKey, token, ttl); ok || err != nil {
		return l.hold(lockKey, token, ttl, err)
	}

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if ok, err := l.try(ctx, lockKey, token, ttl); ok || err != nil {
				return l.hold(lockKey, token, ttl, err)
			}
		}
	}
}

func (l *Locker) try(ctx context.Context, lockKey, token string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis error acquiring lock: %w", err)
	}
	return ok, nil
}

func (l *Locker) hold(lockKey, token string, ttl time.Duration, err error) (ports.Lease, error) {
	if err != nil {
		return nil, err
	}
	every := l.renew
	if every <= 0 {
		every = max(ttl/3, time.Millisecond)
	}
	held := &lease{
		client: l.client,
		key:    lockKey,
		token:  token,
		ttl:    ttl,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go held.keepAlive(every)
	return held, nil
}

type lease struct {
	client *backend.Client
	key    string
	token  string
	ttl    time.Duration

	mu   sync.Mutex
	lost bool

	once sync.Once
	stop chan struct{}
	done chan struct{}
}

// keepAlive extends the lock every interval. Transient errors are retried on the next
// tick; a token mismatch marks the lease lost and ends renewal.
func (s *lease) keepAlive(every time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			n, err := renewScript.Run(context.Background(), s.client, []string{s.key}, s.token, s.ttl.Milliseconds()).Int()
			if err != nil {
				continue
			}
			if n == 0 {
				s.markLost()
				return
			}
		}
	}
}

func (s *lease) markLost() {
	s.mu.Lock()
	s.lost = true
	s.mu.Unlock()
}

func (s *lease) isLost() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lost
}

// Check asks Redis whether the lock still carries this lease's token.
func (s *lease) Check(ctx context.Context) error {
	if s.isLost() {
		return ErrLockLost
	}
	owner, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, backend.Nil) {
		s.markLost()
		return ErrLockLost
	}
	if err != nil {
		return fmt.Errorf("redis error checking lock: %w", err)
	}
	if owner != s.token {
		s.markLost()
		return ErrLockLost
	}
	return nil
}

// Unlock stops renewal and deletes the lock if it is still ours.
func (s *lease) Unlock(ctx context.Context) error {
	s.once.Do(func() { close(s.stop) })
	<-s.done

	n, err := releaseScript.Run(ctx, s.client, []string{s.key}, s.token).Int()
	if err != nil {
		return fmt.Errorf("redis error releasing lock: %w", err)
	}
	if n == 0 {
		return ErrLockLost
	}
	return nil
}
