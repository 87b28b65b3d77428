// Package cache provides an in-process session store whose entries expire after a
// period of inactivity.
package cache

import (
	"context"
	"sort"
	"time"

	"github.com/aretw0/docket/pkg/domain"
	gocache "github.com/patrickmn/go-cache"
)

const (
	// DefaultIdleTTL drops sessions untouched for an hour.
	DefaultIdleTTL = time.Hour
	// DefaultCleanupInterval is how often expired entries are purged.
	DefaultCleanupInterval = 10 * time.Minute
)

// Store implements ports.SessionStore on top of go-cache.
// Every Save refreshes the expiry of the session.
type Store struct {
	cache *gocache.Cache
}

// New creates a store expiring sessions after idle. Non-positive values use the defaults.
func New(idle, cleanup time.Duration) *Store {
	if idle <= 0 {
		idle = DefaultIdleTTL
	}
	if cleanup <= 0 {
		cleanup = DefaultCleanupInterval
	}
	return &Store{cache: gocache.New(idle, cleanup)}
}

func (s *Store) Save(ctx context.Context, sessionID string, sess *domain.Session) error {
	s.cache.Set(sessionID, sess.Clone(), gocache.DefaultExpiration)
	return nil
}

func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	if x, found := s.cache.Get(sessionID); found {
		return x.(*domain.Session).Clone(), nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.cache.Delete(sessionID)
	return nil
}

// List returns the ids of sessions that have not expired.
func (s *Store) List(ctx context.Context) ([]string, error) {
	items := s.cache.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Len reports the number of cached sessions, expired ones included until the next purge.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}
