package querycache

import (
	"context"
	"sync"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads the value for a key. It runs under the cache's own context,
// so a caller giving up does not abort a fetch other callers share.
type Fetcher func(ctx context.Context) (any, error)

// Result is what a read observed
type Result struct {
	Data any
	// Err is the last refetch failure when stale data is served in its place
	Err       error
	Stale     bool
	FetchedAt time.Time
}

type entry struct {
	key         Key
	data        any
	hasData     bool
	err         error
	fetchedAt   time.Time
	lastRead    time.Time
	invalidated bool
	generation  uint64
}

// Cache is a keyed read-through cache with request de-duplication and
// stale-while-revalidate. One instance lives for the lifetime of a dashboard.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

type Option func(*Cache)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(opts ...Option) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		entries: make(map[string]*entry),
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close cancels every in-flight fetch
func (c *Cache) Close() {
	c.cancel()
}

// Fetch returns the cached value for key, loading it if needed.
//
// A fresh entry is returned as is. An entry older than ttl is returned
// immediately with Stale set while a background refetch runs. A missing or
// invalidated entry is loaded before returning. If loading fails and older
// data exists, that data is returned with Stale and Err set and a nil error.
func (c *Cache) Fetch(ctx context.Context, key Key, ttl time.Duration, fetch Fetcher) (Result, error) {
	ks := key.String()
	now := c.now()

	c.mu.Lock()
	e, ok := c.entries[ks]
	if !ok {
		e = &entry{key: key}
		c.entries[ks] = e
	}
	e.lastRead = now

	if e.hasData && !e.invalidated {
		res := Result{Data: e.data, FetchedAt: e.fetchedAt, Err: e.err}
		if now.Sub(e.fetchedAt) < ttl {
			c.mu.Unlock()
			return res, nil
		}
		gen := e.generation
		c.mu.Unlock()

		logx.Debugf("querycache: revalidating %s", ks)
		c.start(ks, e, gen, fetch)
		res.Stale = true
		return res, nil
	}
	gen := e.generation
	c.mu.Unlock()

	ch := c.start(ks, e, gen, fetch)

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-ch:
		c.mu.Lock()
		defer c.mu.Unlock()
		cur, ok := c.entries[ks]
		if r.Err == nil {
			// a mutation may have replaced what this fetch returned
			if ok && cur.hasData && !cur.invalidated {
				return Result{Data: cur.data, FetchedAt: cur.fetchedAt}, nil
			}
			return Result{Data: r.Val, FetchedAt: c.now()}, nil
		}
		if ok && cur.hasData {
			return Result{Data: cur.data, Err: r.Err, Stale: true, FetchedAt: cur.fetchedAt}, nil
		}
		return Result{Err: r.Err}, r.Err
	}
}

func (c *Cache) start(ks string, e *entry, gen uint64, fetch Fetcher) <-chan singleflight.Result {
	return c.group.DoChan(ks, func() (any, error) {
		data, err := fetch(c.ctx)
		c.store(ks, e, gen, data, err)
		return data, err
	})
}

// store records a fetch result. A result from an older generation predates
// a mutation: it never replaces data, and only fills an empty entry, which
// stays invalidated.
func (c *Cache) store(ks string, e *entry, gen uint64, data any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.entries[ks]; !ok || cur != e {
		// removed while the fetch was in flight
		return
	}

	if e.generation != gen {
		if err == nil && !e.hasData {
			e.data = data
			e.hasData = true
			e.fetchedAt = c.now()
			e.invalidated = true
		}
		logx.Debugf("querycache: dropping outdated fetch of %s", ks)
		return
	}

	if err != nil {
		e.err = err
		logx.Debugf("querycache: fetch %s failed: %v", ks, err)
		return
	}

	e.data = data
	e.hasData = true
	e.err = nil
	e.fetchedAt = c.now()
	e.invalidated = false
}

// Peek returns the cached value without loading or touching it
func (c *Cache) Peek(key Key) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok || !e.hasData {
		return Result{}, false
	}
	return Result{Data: e.data, Err: e.err, Stale: e.invalidated, FetchedAt: e.fetchedAt}, true
}

// ============================================================================
// Mutation helpers
// ============================================================================

// SetEntity writes v into the detail slot of resource/id as fresh data
func (c *Cache) SetEntity(resource, id string, v any) {
	key := DetailKey(resource, id)
	ks := key.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[ks]
	if !ok {
		e = &entry{key: key, lastRead: c.now()}
		c.entries[ks] = e
	}
	e.data = v
	e.hasData = true
	e.err = nil
	e.fetchedAt = c.now()
	e.invalidated = false
	e.generation++
	c.group.Forget(ks)
}

// RemoveEntity drops the detail slot of resource/id
func (c *Cache) RemoveEntity(resource, id string) {
	ks := DetailKey(resource, id).String()

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ks)
	c.group.Forget(ks)
}

// InvalidateLists marks every non-detail entry of the given resources stale.
// The next read of such an entry waits for a fresh load.
func (c *Cache) InvalidateLists(resources ...string) int {
	return c.invalidate(resources, false)
}

// InvalidateResource marks every entry of the given resources stale,
// detail slots included
func (c *Cache) InvalidateResource(resources ...string) int {
	return c.invalidate(resources, true)
}

func (c *Cache) invalidate(resources []string, details bool) int {
	set := make(map[string]struct{}, len(resources))
	for _, r := range resources {
		set[r] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for ks, e := range c.entries {
		if _, ok := set[e.key.Resource]; !ok {
			continue
		}
		if e.key.isDetail() && !details {
			continue
		}
		e.invalidated = true
		e.generation++
		c.group.Forget(ks)
		n++
	}
	return n
}

// Prune drops entries nobody read for maxIdle and returns how many
func (c *Cache) Prune(maxIdle time.Duration) int {
	cutoff := c.now().Add(-maxIdle)

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for ks, e := range c.entries {
		if e.lastRead.Before(cutoff) {
			delete(c.entries, ks)
			n++
		}
	}
	return n
}

// Len reports the number of entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
