package ward

import (
	"errors"
	"sync"

	"github.com/wardtest/ward/framework"
)

// FixtureCache holds resolved fixtures for the duration of a run, and the teardowns of two-phase
// fixtures that have not yet been run.
//
// Module and global fixtures occupy one entry per fixture key; a later resolution for a different
// module replaces the earlier one. Test-scoped fixtures get one entry per test, so that tests running
// concurrently do not share or replace each other's values.
//
// All methods are safe for concurrent use.
type FixtureCache struct {
	fixtures  map[string]*Fixture
	latest    map[string]*Fixture
	slotLocks map[string]*sync.Mutex
	pending   []*Fixture
	lastSeq   uint64
	logger    framework.Logger
	lock      sync.Mutex
}

// CacheOption configures a FixtureCache.
type CacheOption func(*FixtureCache)

// WithCacheLogger sends a line to the logger whenever a fixture is resolved, reused, or torn down.
func WithCacheLogger(logger framework.Logger) CacheOption {
	return func(c *FixtureCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewFixtureCache(opts ...CacheOption) *FixtureCache {
	c := &FixtureCache{
		fixtures:  make(map[string]*Fixture),
		latest:    make(map[string]*Fixture),
		slotLocks: make(map[string]*sync.Mutex),
		logger:    framework.NullLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func slotFor(key string, scope Scope, testID string) string {
	if scope == ScopeTest {
		return key + "@" + testID
	}
	return key
}

// CacheFixture stores a resolved fixture, replacing any earlier entry for the same key (and, for a
// test-scoped fixture, the same test). A two-phase fixture with a teardown still to run is added to
// the teardown list.
func (c *FixtureCache) CacheFixture(f *Fixture) {
	c.store(slotFor(f.Key(), f.Scope(), f.LastResolvedTestID), f)
}

func (c *FixtureCache) store(slot string, f *Fixture) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.lastSeq++
	f.seq = c.lastSeq
	c.fixtures[slot] = f
	c.latest[f.Key()] = f
	if f.Pending() {
		c.pending = append(c.pending, f)
	}
}

// Lookup returns the most recently stored fixture for a key.
func (c *FixtureCache) Lookup(key string) (*Fixture, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	f, ok := c.latest[key]
	return f, ok
}

func (c *FixtureCache) Contains(key string) bool {
	_, ok := c.Lookup(key)
	return ok
}

// Len returns the number of distinct fixture keys in the cache.
func (c *FixtureCache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.latest)
}

func (c *FixtureCache) lookupSlot(slot string) (*Fixture, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	f, ok := c.fixtures[slot]
	return f, ok
}

// slotLock serializes resolution of a single cache entry, so that a fixture requested by several
// tests at once is only set up once.
func (c *FixtureCache) slotLock(slot string) *sync.Mutex {
	c.lock.Lock()
	defer c.lock.Unlock()
	l, ok := c.slotLocks[slot]
	if !ok {
		l = &sync.Mutex{}
		c.slotLocks[slot] = l
	}
	return l
}

// forget drops the entry in a slot after a failed resolution. Another slot for the same key, such as
// a test-scoped entry belonging to a different test, stays visible to Lookup.
func (c *FixtureCache) forget(slot, key string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if f, ok := c.fixtures[slot]; ok {
		delete(c.fixtures, slot)
		if c.latest[key] == f {
			delete(c.latest, key)
		}
	}
}

// TeardownTest tears down the test-scoped fixtures resolved for a test.
func (c *FixtureCache) TeardownTest(testID string) error {
	return c.teardown(func(f *Fixture) bool {
		return f.Scope() == ScopeTest && f.LastResolvedTestID == testID
	})
}

// TeardownModule tears down the module-scoped fixtures resolved for a module.
func (c *FixtureCache) TeardownModule(module string) error {
	return c.teardown(func(f *Fixture) bool {
		return f.Scope() == ScopeModule && f.LastResolvedModuleName == module
	})
}

func (c *FixtureCache) TeardownGlobal() error {
	return c.teardown(func(f *Fixture) bool {
		return f.Scope() == ScopeGlobal
	})
}

// TeardownAll tears down everything that is still pending, whatever its scope.
func (c *FixtureCache) TeardownAll() error {
	return c.teardown(func(*Fixture) bool { return true })
}

// teardown removes the matching fixtures from the cache and runs the pending teardowns among them in
// the reverse of the order they were resolved. Every teardown is attempted; the returned error joins
// the FixtureErrors of those that failed.
func (c *FixtureCache) teardown(match func(*Fixture) bool) error {
	c.lock.Lock()
	var closing, remaining []*Fixture
	for _, f := range c.pending {
		if match(f) {
			closing = append(closing, f)
		} else {
			remaining = append(remaining, f)
		}
	}
	c.pending = remaining
	for slot, f := range c.fixtures {
		if match(f) {
			delete(c.fixtures, slot)
			delete(c.slotLocks, slot)
			if c.latest[f.Key()] == f {
				delete(c.latest, f.Key())
			}
		}
	}
	c.lock.Unlock()

	var errs []error
	for i := len(closing) - 1; i >= 0; i-- {
		f := closing[i]
		c.logger.Printf("Tearing down fixture %q (%s scope)", f.Name(), f.Scope())
		if err := f.Teardown(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
