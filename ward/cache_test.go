package ward

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type teardownLog struct {
	entries []string
	lock    sync.Mutex
}

func (l *teardownLog) add(s string) {
	l.lock.Lock()
	l.entries = append(l.entries, s)
	l.lock.Unlock()
}

func (l *teardownLog) get() []string {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]string(nil), l.entries...)
}

func loggingFixture(name string, log *teardownLog, opts ...FixtureOption) *FixtureDef {
	return NewTeardownFixture(name, func(Values) (interface{}, func() error, error) {
		return name, func() error {
			log.add(name)
			return nil
		}, nil
	}, opts...)
}

func TestTeardownRunsInReverseResolutionOrderPerScope(t *testing.T) {
	log := &teardownLog{}
	global := loggingFixture("global", log, Scoped(ScopeGlobal))
	module := loggingFixture("module", log, Scoped(ScopeModule), Using("g", global))
	first := loggingFixture("first", log, Using("m", module))
	second := loggingFixture("second", log)
	cache := NewFixtureCache()

	test := NewTest(noop, "m", Using("a", first), Using("b", second))
	resolve(t, test, cache)
	assert.Empty(t, log.get())

	require.NoError(t, cache.TeardownTest(test.ID))
	assert.Equal(t, []string{"second", "first"}, log.get())
	assert.False(t, cache.Contains(first.Key()))
	assert.True(t, cache.Contains(module.Key()))

	require.NoError(t, cache.TeardownModule("m"))
	assert.Equal(t, []string{"second", "first", "module"}, log.get())
	assert.False(t, cache.Contains(module.Key()))

	require.NoError(t, cache.TeardownGlobal())
	assert.Equal(t, []string{"second", "first", "module", "global"}, log.get())
	assert.Equal(t, 0, cache.Len())
}

func TestTeardownHappensExactlyOnce(t *testing.T) {
	log := &teardownLog{}
	fx := loggingFixture("fx", log, Scoped(ScopeGlobal))
	cache := NewFixtureCache()
	resolve(t, NewTest(noop, "m", Using("x", fx)), cache)

	f, ok := cache.Lookup(fx.Key())
	require.True(t, ok)
	assert.True(t, f.Pending())

	require.NoError(t, cache.TeardownAll())
	require.NoError(t, cache.TeardownAll())
	require.NoError(t, f.Teardown())
	assert.Equal(t, []string{"fx"}, log.get())
	assert.False(t, f.Pending())
}

func TestTeardownOfOtherTestLeavesFixturesAlone(t *testing.T) {
	log := &teardownLog{}
	fx := loggingFixture("fx", log)
	cache := NewFixtureCache()
	a := NewTest(noop, "m", Using("x", fx))
	b := NewTest(noop, "m", Using("x", fx))
	resolve(t, a, cache)
	resolve(t, b, cache)

	require.NoError(t, cache.TeardownTest(a.ID))
	assert.Equal(t, []string{"fx"}, log.get())
	f, ok := cache.Lookup(fx.Key())
	require.True(t, ok)
	assert.Equal(t, b.ID, f.LastResolvedTestID)
	assert.True(t, f.Pending())
}

func TestModuleFixtureReplacedByLaterModuleIsStillTornDown(t *testing.T) {
	log := &teardownLog{}
	fx := NewTeardownFixture("fx", func(Values) (interface{}, func() error, error) {
		return nil, nil, nil
	}, Scoped(ScopeModule))
	var n int
	named := NewTeardownFixture("named", func(Values) (interface{}, func() error, error) {
		n++
		name := []string{"", "m1", "m2"}[n]
		return name, func() error {
			log.add(name)
			return nil
		}, nil
	}, Scoped(ScopeModule), Using("fx", fx))
	cache := NewFixtureCache()

	resolve(t, NewTest(noop, "m1", Using("x", named)), cache)
	resolve(t, NewTest(noop, "m2", Using("x", named)), cache)

	require.NoError(t, cache.TeardownModule("m1"))
	assert.Equal(t, []string{"m1"}, log.get())
	assert.True(t, cache.Contains(named.Key()))

	require.NoError(t, cache.TeardownModule("m2"))
	assert.Equal(t, []string{"m1", "m2"}, log.get())
}

func TestTeardownErrorsAreCollected(t *testing.T) {
	errA, errB := errors.New("a failed"), errors.New("b failed")
	failing := func(name string, err error) *FixtureDef {
		return NewTeardownFixture(name, func(Values) (interface{}, func() error, error) {
			return nil, func() error { return err }, nil
		})
	}
	log := &teardownLog{}
	a, b := failing("a", errA), failing("b", errB)
	fine := loggingFixture("fine", log)
	cache := NewFixtureCache()
	test := NewTest(noop, "m", Using("a", a), Using("fine", fine), Using("b", b))
	resolve(t, test, cache)

	err := cache.TeardownTest(test.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	var ferr *FixtureError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, PhaseTeardown, ferr.Phase)
	assert.Equal(t, "b", ferr.Fixture)
	assert.Equal(t, []string{"fine"}, log.get())
}

func TestPanicInTeardown(t *testing.T) {
	fx := NewTeardownFixture("fx", func(Values) (interface{}, func() error, error) {
		return nil, func() error { panic("teardown panic") }, nil
	}, Scoped(ScopeGlobal))
	cache := NewFixtureCache()
	resolve(t, NewTest(noop, "m", Using("x", fx)), cache)

	err := cache.TeardownGlobal()
	var perr *PanicError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "teardown panic", perr.Value)
}

func TestTeardownFixtureWithoutFinalizer(t *testing.T) {
	fx := NewTeardownFixture("fx", func(Values) (interface{}, func() error, error) {
		return 1, nil, nil
	})
	cache := NewFixtureCache()
	test := NewTest(noop, "m", Using("x", fx))
	assert.Equal(t, 1, resolve(t, test, cache)["x"])

	f, _ := cache.Lookup(fx.Key())
	assert.True(t, f.IsTwoPhase())
	assert.False(t, f.Pending())
	assert.NoError(t, cache.TeardownTest(test.ID))
}

func TestGeneratorFixture(t *testing.T) {
	log := &teardownLog{}
	fx := NewGeneratorFixture("gen", func(args Values, yield func(interface{})) error {
		log.add("setup")
		yield(Get[int](args, "n") * 2)
		log.add("teardown")
		return nil
	}, Using("n", 21))
	cache := NewFixtureCache()
	test := NewTest(noop, "m", Using("x", fx))

	assert.Equal(t, 42, resolve(t, test, cache)["x"])
	assert.Equal(t, []string{"setup"}, log.get())

	require.NoError(t, cache.TeardownTest(test.ID))
	assert.Equal(t, []string{"setup", "teardown"}, log.get())
}

func TestGeneratorFixtureThatNeverYields(t *testing.T) {
	fx := NewGeneratorFixture("gen", func(Values, func(interface{})) error { return nil })

	_, err := NewTest(noop, "m", Using("x", fx)).ResolveArgs(NewFixtureCache(), 0)
	var ferr *FixtureError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, PhaseSetup, ferr.Phase)
	assert.ErrorIs(t, err, errNoYield)
}

func TestGeneratorFixtureFailingBeforeYield(t *testing.T) {
	boom := errors.New("boom")
	fx := NewGeneratorFixture("gen", func(Values, func(interface{})) error { return boom })

	_, err := NewTest(noop, "m", Using("x", fx)).ResolveArgs(NewFixtureCache(), 0)
	assert.ErrorIs(t, err, boom)
}

func TestGeneratorFixtureFailingAfterYield(t *testing.T) {
	boom := errors.New("cleanup failed")
	fx := NewGeneratorFixture("gen", func(_ Values, yield func(interface{})) error {
		yield("value")
		yield("ignored")
		return boom
	})
	cache := NewFixtureCache()
	test := NewTest(noop, "m", Using("x", fx))
	assert.Equal(t, "value", resolve(t, test, cache)["x"])

	err := cache.TeardownTest(test.ID)
	var ferr *FixtureError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, PhaseTeardown, ferr.Phase)
	assert.ErrorIs(t, err, boom)
}

func TestCacheFixtureStoresByScope(t *testing.T) {
	def := NewTeardownFixture("manual", func(Values) (interface{}, func() error, error) {
		return nil, nil, nil
	}, Scoped(ScopeModule))
	f := newFixture(def)
	f.ResolvedVal = "v"
	f.LastResolvedModuleName = "m"
	cache := NewFixtureCache()
	cache.CacheFixture(f)

	vals := resolve(t, NewTest(noop, "m", Using("x", def)), cache)
	assert.Equal(t, "v", vals["x"])
}
