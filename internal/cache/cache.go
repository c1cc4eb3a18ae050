package cache

import (
	"context"
	"sync"
	"time"

	"github.com/contesthub/internal/models"
	"github.com/contesthub/pkg/logger"
)

// Loader produces a fresh aggregated contest list
type Loader func(ctx context.Context) ([]models.Contest, error)

// Result is what a cache read hands back to the serving layer
type Result struct {
	Contests []models.Contest
	Cached   bool          // served from the cached snapshot
	Age      time.Duration // age of the snapshot, zero when just fetched
	Stale    bool          // snapshot is past TTL but a refresh failed
	Err      error         // advisory refresh error when Stale is set
}

type snapshot struct {
	contests  []models.Contest
	fetchedAt time.Time
}

// Cache wraps the aggregator behind a time-boxed in-memory cache.
// Past the TTL a read triggers a refresh; if the refresh fails and a
// prior snapshot exists, the old data is served with a stale marker
// instead of surfacing an error. Availability over freshness.
//
// The mutex is held across the load, so concurrent reads during a
// refresh queue up and then see the freshly stored snapshot rather
// than firing duplicate upstream fetches.
type Cache struct {
	mu   sync.Mutex
	ttl  time.Duration
	load Loader
	log  *logger.Logger
	snap *snapshot
}

// New creates a cache with the given TTL over a loader
func New(ttl time.Duration, load Loader, log *logger.Logger) *Cache {
	return &Cache{
		ttl:  ttl,
		load: load,
		log:  log.WithComponent("cache"),
	}
}

// TTL returns the configured freshness window
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached contest list, refreshing it first when the
// snapshot is missing or older than the TTL. The only error case is a
// cold cache whose very first load fails.
func (c *Cache) Get(ctx context.Context) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.snap != nil && now.Sub(c.snap.fetchedAt) < c.ttl {
		return Result{
			Contests: c.snap.contests,
			Cached:   true,
			Age:      now.Sub(c.snap.fetchedAt),
		}, nil
	}

	contests, err := c.load(ctx)
	if err != nil {
		if c.snap == nil {
			return Result{}, err
		}
		c.log.Warn().Err(err).
			Dur("age", now.Sub(c.snap.fetchedAt)).
			Msg("Refresh failed, serving stale snapshot")
		return Result{
			Contests: c.snap.contests,
			Cached:   true,
			Age:      now.Sub(c.snap.fetchedAt),
			Stale:    true,
			Err:      err,
		}, nil
	}

	// Stamp after the load: a slow aggregation pass must not eat into
	// the snapshot's TTL or inflate the reported age
	c.snap = &snapshot{contests: contests, fetchedAt: time.Now()}
	return Result{Contests: contests}, nil
}

// ForceRefresh discards the cached snapshot and performs a fresh load,
// regardless of remaining TTL. On load failure the cache stays empty;
// the discarded snapshot is not restored.
func (c *Cache) ForceRefresh(ctx context.Context) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snap = nil

	contests, err := c.load(ctx)
	if err != nil {
		return Result{}, err
	}

	c.snap = &snapshot{contests: contests, fetchedAt: time.Now()}
	c.log.Info().Int("count", len(contests)).Msg("Cache force-refreshed")
	return Result{Contests: contests}, nil
}
