package session

import (
	"errors"
	"time"

	"github.com/giygas/medicine-library/catalog"
	"github.com/giygas/medicine-library/enrichment"
	"github.com/giygas/medicine-library/logging"
	"github.com/giygas/medicine-library/metrics"
	"github.com/giygas/medicine-library/query"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DefaultTTL is how long an unused session is kept.
const DefaultTTL = 30 * time.Minute

var ErrNoCatalog = errors.New("no catalog available")

// StoreOptions configures a Store.
type StoreOptions struct {
	TTL        time.Duration
	PageSize   int
	Enrichment enrichment.Options
}

// Store keeps sessions in memory. Sessions expire after TTL without use;
// expired or deleted sessions have their enrichment work cancelled.
type Store struct {
	cache      *cache.Cache
	pageSize   int
	enrichment enrichment.Options
}

// NewStore creates an empty store.
func NewStore(opts StoreOptions) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}

	s := &Store{
		// Expired sessions are purged every ttl/2
		cache:      cache.New(ttl, ttl/2),
		pageSize:   pageSize,
		enrichment: opts.Enrichment,
	}
	s.cache.OnEvicted(func(id string, value any) {
		if sess, ok := value.(*Session); ok {
			sess.Close()
		}
		metrics.SessionsActive.Set(float64(s.cache.ItemCount()))
		logging.Debug("Session closed", "session_id", id)
	})
	return s
}

// Create starts a session browsing c.
func (s *Store) Create(c *catalog.Catalog) (*Session, error) {
	if c == nil {
		return nil, ErrNoCatalog
	}

	id := uuid.NewString()
	sess := newSession(id, c, enrichment.NewController(s.enrichment), s.pageSize)
	if err := s.cache.Add(id, sess, cache.DefaultExpiration); err != nil {
		sess.Close()
		return nil, err
	}

	metrics.SessionsActive.Set(float64(s.cache.ItemCount()))
	logging.Debug("Session created", "session_id", id, "catalog_size", c.Len())
	return sess, nil
}

// Get returns the session with id and extends its lifetime.
func (s *Store) Get(id string) (*Session, bool) {
	x, found := s.cache.Get(id)
	if !found {
		return nil, false
	}
	sess := x.(*Session)
	// Replace fails if the session was removed meanwhile; it is still returned to the caller
	_ = s.cache.Replace(id, sess, cache.DefaultExpiration)
	return sess, true
}

// Delete removes and closes the session. It reports whether the session existed.
func (s *Store) Delete(id string) bool {
	if _, found := s.cache.Get(id); !found {
		return false
	}
	s.cache.Delete(id)
	return true
}

// Count returns the number of sessions held, including expired ones not yet purged.
func (s *Store) Count() int {
	return s.cache.ItemCount()
}

// Flush closes every session.
func (s *Store) Flush() {
	for id := range s.cache.Items() {
		s.cache.Delete(id)
	}
}
