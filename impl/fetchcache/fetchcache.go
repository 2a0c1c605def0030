package fetchcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aceeric/artcache/impl/metrics"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultTTL is how long an entry is served without going upstream
	DefaultTTL = 5 * time.Minute
	// DefaultTimeout bounds a single upstream fetch
	DefaultTimeout = 5 * time.Second
	// ArtworksPath is the well-known artwork metadata document
	ArtworksPath = "data/artworks-metadata.json"
)

// ErrTimeout is wrapped by the error of an upstream fetch that exceeded its timeout
var ErrTimeout = errors.New("fetch timed out")

// Fetcher is the network primitive the cache wraps. Fetch returns the response body
// for the passed key or an error for transport failures and non-success statuses.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Options control a single Get
type Options struct {
	// Timeout bounds the upstream fetch. Zero means the cache's default timeout.
	Timeout time.Duration
	// ForceRefresh skips the fresh-entry lookup and goes upstream (or joins an
	// upstream fetch already in flight).
	ForceRefresh bool
}

// entry is one cached document. Entries are replaced wholesale, never modified.
type entry struct {
	value     json.RawMessage
	fetchedAt time.Time
}

// call is a fetch in flight. 'done' is closed once value and err are final.
type call struct {
	done  chan struct{}
	value json.RawMessage
	err   error
}

// Cache is the fetch cache. Construct one per process with New and share it.
type Cache struct {
	mu sync.Mutex
	// entries can be served on the normal path
	entries map[string]entry
	// stale has entries evicted for age. They are only ever served when a refresh fails.
	stale   map[string]entry
	pending map[string]*call
	ttl     time.Duration
	timeout time.Duration
	// artworksPath is the key of the artwork metadata
	artworksPath string
	fetcher      Fetcher
	now          func() time.Time
	log          log.FieldLogger
}

// Option configures a Cache
type Option func(*Cache)

// WithTTL sets the entry time-to-live
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithTimeout sets the fetch timeout used when a Get does not pass one
func WithTimeout(timeout time.Duration) Option {
	return func(c *Cache) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithArtworksPath overrides the key GetArtworks and Preload use
func WithArtworksPath(path string) Option {
	return func(c *Cache) {
		if path != "" {
			c.artworksPath = path
		}
	}
}

// WithClock replaces time.Now. Supports deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l log.FieldLogger) Option {
	return func(c *Cache) {
		c.log = l
	}
}

// New creates a Cache wrapping the passed Fetcher
func New(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		entries:      make(map[string]entry),
		stale:        make(map[string]entry),
		pending:      make(map[string]*call),
		ttl:          DefaultTTL,
		timeout:      DefaultTimeout,
		artworksPath: ArtworksPath,
		fetcher:      fetcher,
		now:          time.Now,
		log:          log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the JSON document for the passed key. A fresh entry is returned without
// network access. Otherwise the caller either starts the upstream fetch or attaches to
// the one already in flight for the key, so concurrent callers observe exactly one fetch.
// The fetch runs independently of the callers: if the passed context ends, this caller
// stops waiting but the fetch carries on for any others until its own timeout.
//
// The returned bytes are shared with the cache and other callers and must not be modified.
func (c *Cache) Get(ctx context.Context, key string, opts Options) (json.RawMessage, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = c.timeout
	}
	c.mu.Lock()
	if !opts.ForceRefresh {
		if e, exists := c.entries[key]; exists {
			if c.now().Sub(e.fetchedAt) < c.ttl {
				c.mu.Unlock()
				metrics.IncCacheHits()
				return e.value, nil
			}
			// lazy eviction: expired entries are only noticed on lookup
			delete(c.entries, key)
			c.stale[key] = e
			metrics.IncCacheExpirations()
		}
	}
	cl, inFlight := c.pending[key]
	if !inFlight {
		cl = &call{done: make(chan struct{})}
		c.pending[key] = cl
	}
	c.mu.Unlock()

	if inFlight {
		metrics.IncDedupedFetches()
	} else {
		metrics.IncCacheMisses()
		// a goroutine because it signals every waiter so must not depend on any one of them
		go c.doFetch(context.WithoutCancel(ctx), key, opts.Timeout, cl)
	}
	select {
	case <-cl.done:
		return cl.value, cl.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetArtworks gets the artwork metadata document
func (c *Cache) GetArtworks(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, c.artworksPath, Options{})
}

// Preload warms the cache with the artwork metadata. It is optimistic: a failure is
// logged and otherwise ignored since the next Get simply tries again.
func (c *Cache) Preload(ctx context.Context) {
	if _, err := c.GetArtworks(ctx); err != nil {
		c.log.WithField("key", c.artworksPath).Warnf("preload failed, will retry on demand: %s", err)
		return
	}
	c.log.WithField("key", c.artworksPath).Info("artworks preloaded")
}

// Clear empties the cache, including the last known good values. Fetches in flight
// still complete for the callers waiting on them but their results are not stored.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.stale = make(map[string]entry)
	c.pending = make(map[string]*call)
}

// doFetch performs the upstream fetch for 'cl', records the outcome, removes the
// in-flight marker and then releases the waiters. The marker is removed before 'done'
// is closed so a waiter that immediately calls Get again never re-attaches to this call.
func (c *Cache) doFetch(ctx context.Context, key string, timeout time.Duration, cl *call) {
	fields := log.Fields{"key": key, "timeout": timeout}
	start := time.Now()
	value, err := c.fetch(ctx, key, timeout)
	metrics.ObserveFetchSeconds(time.Since(start).Seconds())

	result, resultErr := value, err
	servedStale := false
	c.mu.Lock()
	// a call orphaned by Clear only serves its own waiters
	owner := c.pending[key] == cl
	if err == nil {
		if owner {
			c.entries[key] = entry{value: value, fetchedAt: c.now()}
			delete(c.stale, key)
		}
	} else if e, found := c.lastKnownGood(key); found {
		result, resultErr = e.value, nil
		servedStale = true
	}
	if owner {
		delete(c.pending, key)
	}
	cl.value, cl.err = result, resultErr
	c.mu.Unlock()

	if err != nil {
		metrics.IncUpstreamErrors()
		if errors.Is(err, ErrTimeout) {
			c.log.WithFields(fields).Warn("timeout fetching")
		} else {
			c.log.WithFields(fields).Warnf("error fetching: %s", err)
		}
		if servedStale {
			metrics.IncStaleServed()
			c.log.WithFields(fields).Info("serving stale cache")
		}
	}
	close(cl.done)
}

// fetch gets the body for the key, bounded by 'timeout', and verifies it is JSON
func (c *Cache) fetch(ctx context.Context, key string, timeout time.Duration) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	body, err := c.fetcher.Fetch(ctx, key)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %s", ErrTimeout, timeout, key)
		}
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("response for %s is not valid JSON", key)
	}
	return json.RawMessage(body), nil
}

// lastKnownGood returns the most recent successfully fetched value for the key
// regardless of age. Caller must hold the lock.
func (c *Cache) lastKnownGood(key string) (entry, bool) {
	if e, exists := c.entries[key]; exists {
		return e, true
	}
	e, exists := c.stale[key]
	return e, exists
}

// GetJSON gets the document for the passed key and decodes it into a T. A document that
// was cached but does not decode into T is an error, the cache entry is left alone.
func GetJSON[T any](ctx context.Context, c *Cache, key string, opts Options) (T, error) {
	var t T
	raw, err := c.Get(ctx, key, opts)
	if err != nil {
		return t, err
	}
	if err := json.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("unable to decode %s: %w", key, err)
	}
	return t, nil
}

// Stats is a point-in-time count of the cache contents
type Stats struct {
	Entries  int
	Stale    int
	InFlight int
}

// Stats returns counts of servable entries, evicted (stale) entries and fetches in flight
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:  len(c.entries),
		Stale:    len(c.stale),
		InFlight: len(c.pending),
	}
}

// KeyInfo describes one cached key
type KeyInfo struct {
	Key     string
	Age     time.Duration
	Expired bool
}

// Keys lists the cached keys, sorted, with their age. A servable entry past its TTL
// is reported as expired even though it has not been evicted yet.
func (c *Cache) Keys() []KeyInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	keys := make([]KeyInfo, 0, len(c.entries)+len(c.stale))
	for k, e := range c.entries {
		age := now.Sub(e.fetchedAt)
		keys = append(keys, KeyInfo{Key: k, Age: age, Expired: age >= c.ttl})
	}
	for k, e := range c.stale {
		keys = append(keys, KeyInfo{Key: k, Age: now.Sub(e.fetchedAt), Expired: true})
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Key < keys[j].Key
	})
	return keys
}
