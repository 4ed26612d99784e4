package tenants

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/platinummonkey/warren/pkg/observability"
)

// ViewCache is an optional Redis read-through cache for organization views,
// keyed by organization name. Cache failures degrade to misses; correctness
// never depends on Redis being up. Entries are invalidated on every
// mutation, including both the old and new names of a rename.
type ViewCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewViewCache connects to Redis and returns a view cache. metrics may be nil.
func NewViewCache(redisURL string, ttl time.Duration, metrics *observability.Metrics) (*ViewCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &ViewCache{
		client:  client,
		ttl:     ttl,
		metrics: metrics,
	}, nil
}

// Close closes the Redis connection
func (c *ViewCache) Close() error {
	return c.client.Close()
}

// Client exposes the underlying client for health checks
func (c *ViewCache) Client() *redis.Client {
	return c.client
}

func cacheKey(name string) string {
	return "orgview:" + name
}

// Get retrieves a cached view, reporting whether it was a hit
func (c *ViewCache) Get(ctx context.Context, name string) (*OrganizationView, bool) {
	data, err := c.client.Get(ctx, cacheKey(name)).Result()
	if err != nil {
		c.miss()
		return nil, false
	}

	var view OrganizationView
	if err := json.Unmarshal([]byte(data), &view); err != nil {
		// Corrupt entry: drop it and treat as a miss
		c.client.Del(ctx, cacheKey(name))
		c.miss()
		return nil, false
	}

	c.hit()
	return &view, true
}

// Set stores a view under the organization name
func (c *ViewCache) Set(ctx context.Context, name string, view *OrganizationView) {
	data, err := json.Marshal(view)
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKey(name), data, c.ttl)
}

// Invalidate removes cached views for the given organization names
func (c *ViewCache) Invalidate(ctx context.Context, names ...string) {
	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, cacheKey(name))
	}
	if len(keys) > 0 {
		c.client.Del(ctx, keys...)
	}
}

func (c *ViewCache) hit() {
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.WithLabelValues("org_view").Inc()
	}
}

func (c *ViewCache) miss() {
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.WithLabelValues("org_view").Inc()
	}
}
