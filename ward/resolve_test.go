package ward

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingFixture(name string, scope Scope, calls *int32) *FixtureDef {
	return NewFixture(name, func(Values) (interface{}, error) {
		return int(atomic.AddInt32(calls, 1)), nil
	}, Scoped(scope))
}

func resolve(t *testing.T, test *Test, cache *FixtureCache) Values {
	vals, err := test.ResolveArgs(cache, test.Iteration)
	require.NoError(t, err)
	return vals
}

func TestTestWithoutArgumentsResolvesToNothing(t *testing.T) {
	vals := resolve(t, NewTest(noop, "m"), NewFixtureCache())
	assert.Equal(t, Values{}, vals)
}

func TestLiteralArgumentsArePassedThrough(t *testing.T) {
	cache := NewFixtureCache()
	vals := resolve(t, NewTest(noop, "m", Using("x", 1), Using("y", []string{"a"})), cache)
	assert.Equal(t, Values{"x": 1, "y": []string{"a"}}, vals)
	assert.Equal(t, 0, cache.Len())
}

func TestTestScopedFixtureIsOnlyReusedByTheSameTest(t *testing.T) {
	var calls int32
	fx := countingFixture("fx", ScopeTest, &calls)
	cache := NewFixtureCache()
	a := NewTest(noop, "m", Using("x", fx))
	b := NewTest(noop, "m", Using("x", fx))

	assert.Equal(t, 1, resolve(t, a, cache)["x"])
	assert.Equal(t, 1, resolve(t, a, cache)["x"])
	assert.Equal(t, 2, resolve(t, b, cache)["x"])
	assert.Equal(t, int32(2), calls)

	f, ok := cache.Lookup(fx.Key())
	require.True(t, ok)
	assert.Equal(t, b.ID, f.LastResolvedTestID)
}

func TestFailedResolutionLeavesOtherTestsEntryVisible(t *testing.T) {
	var calls int32
	fx := NewFixture("fx", func(Values) (interface{}, error) {
		if atomic.AddInt32(&calls, 1) > 1 {
			return nil, errors.New("no more")
		}
		return "first", nil
	})
	cache := NewFixtureCache()
	a := NewTest(noop, "m", Using("x", fx))
	b := NewTest(noop, "m", Using("x", fx))

	assert.Equal(t, "first", resolve(t, a, cache)["x"])
	_, err := b.ResolveArgs(cache, b.Iteration)
	require.Error(t, err)

	f, ok := cache.Lookup(fx.Key())
	require.True(t, ok)
	assert.Equal(t, a.ID, f.LastResolvedTestID)
	assert.Equal(t, "first", resolve(t, a, cache)["x"])
	assert.Equal(t, int32(2), calls)
}

func TestModuleScopedFixtureIsReusedWithinAModule(t *testing.T) {
	var calls int32
	fx := countingFixture("fx", ScopeModule, &calls)
	cache := NewFixtureCache()

	assert.Equal(t, 1, resolve(t, NewTest(noop, "m1", Using("x", fx)), cache)["x"])
	assert.Equal(t, 1, resolve(t, NewTest(noop, "m1", Using("x", fx)), cache)["x"])
	assert.Equal(t, 2, resolve(t, NewTest(noop, "m2", Using("x", fx)), cache)["x"])
	assert.Equal(t, int32(2), calls)

	f, ok := cache.Lookup(fx.Key())
	require.True(t, ok)
	assert.Equal(t, "m2", f.LastResolvedModuleName)
}

func TestGlobalFixtureIsResolvedOnce(t *testing.T) {
	var calls int32
	fx := countingFixture("fx", ScopeGlobal, &calls)
	cache := NewFixtureCache()

	for _, module := range []string{"m1", "m2", "m3"} {
		assert.Equal(t, 1, resolve(t, NewTest(noop, module, Using("x", fx)), cache)["x"])
	}
	assert.Equal(t, int32(1), calls)
}

func TestFixtureChainIsResolvedAndCached(t *testing.T) {
	a := NewFixture("a", func(Values) (interface{}, error) { return 1, nil })
	b := NewFixture("b", func(args Values) (interface{}, error) {
		return Get[int](args, "a") + 1, nil
	}, Using("a", a))
	c := NewFixture("c", func(args Values) (interface{}, error) {
		return Get[int](args, "b") * Get[int](args, "factor"), nil
	}, Using("b", b), Using("factor", 10))
	cache := NewFixtureCache()

	vals := resolve(t, NewTest(noop, "m", Using("c", c)), cache)
	assert.Equal(t, Values{"c": 20}, vals)
	assert.True(t, cache.Contains(a.Key()))
	assert.True(t, cache.Contains(b.Key()))
	assert.True(t, cache.Contains(c.Key()))
	assert.Equal(t, 3, cache.Len())
}

func TestSharedDependencyIsResolvedOncePerTest(t *testing.T) {
	var calls int32
	base := countingFixture("base", ScopeTest, &calls)
	left := NewFixture("left", func(args Values) (interface{}, error) { return args["base"], nil }, Using("base", base))
	right := NewFixture("right", func(args Values) (interface{}, error) { return args["base"], nil }, Using("base", base))

	vals := resolve(t, NewTest(noop, "m", Using("l", left), Using("r", right), Using("b", base)), NewFixtureCache())
	assert.Equal(t, Values{"l": 1, "r": 1, "b": 1}, vals)
	assert.Equal(t, int32(1), calls)
}

func TestModuleFixtureDependingOnTestFixture(t *testing.T) {
	var calls int32
	inner := countingFixture("inner", ScopeTest, &calls)
	outer := NewFixture("outer", func(args Values) (interface{}, error) {
		return args["inner"], nil
	}, Using("inner", inner), Scoped(ScopeModule))
	cache := NewFixtureCache()

	assert.Equal(t, 1, resolve(t, NewTest(noop, "m", Using("o", outer)), cache)["o"])
	assert.Equal(t, 1, resolve(t, NewTest(noop, "m", Using("o", outer)), cache)["o"])
	assert.Equal(t, int32(1), calls)
}

func TestEachOfFixtures(t *testing.T) {
	one := NewFixture("one", func(Values) (interface{}, error) { return 1, nil })
	two := NewFixture("two", func(Values) (interface{}, error) { return 2, nil })
	instances, err := NewTest(noop, "m", Using("n", Each(one, two))).ParameterisedInstances()
	require.NoError(t, err)

	cache := NewFixtureCache()
	assert.Equal(t, 1, resolve(t, instances[0], cache)["n"])
	assert.Equal(t, 2, resolve(t, instances[1], cache)["n"])
}

func TestIterationOutOfRange(t *testing.T) {
	_, err := NewTest(noop, "m", Using("n", Each(1, 2))).ResolveArgs(NewFixtureCache(), 2)
	assert.Error(t, err)
}

func TestFixtureErrorWrapsCause(t *testing.T) {
	boom := errors.New("boom")
	fx := NewFixture("broken", func(Values) (interface{}, error) { return nil, boom })
	cache := NewFixtureCache()

	_, err := NewTest(noop, "m", Using("x", fx)).ResolveArgs(cache, 0)
	var ferr *FixtureError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "broken", ferr.Fixture)
	assert.Equal(t, PhaseSetup, ferr.Phase)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "unable to resolve fixture 'broken': boom", err.Error())
	assert.False(t, cache.Contains(fx.Key()))
}

func TestFailureOfDependencyIsReportedForTheDependency(t *testing.T) {
	boom := errors.New("boom")
	var calls int32
	ok := countingFixture("ok", ScopeTest, &calls)
	broken := NewFixture("broken", func(Values) (interface{}, error) { return nil, boom })
	parent := NewFixture("parent", func(Values) (interface{}, error) { return "never", nil },
		Using("ok", ok), Using("broken", broken))
	cache := NewFixtureCache()

	_, err := NewTest(noop, "m", Using("p", parent)).ResolveArgs(cache, 0)
	var ferr *FixtureError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "broken", ferr.Fixture)
	assert.False(t, cache.Contains(parent.Key()))
	assert.False(t, cache.Contains(broken.Key()))
	assert.True(t, cache.Contains(ok.Key()))
}

func TestPanickingFixture(t *testing.T) {
	fx := NewFixture("panicky", func(Values) (interface{}, error) { panic("oh no") })

	_, err := NewTest(noop, "m", Using("x", fx)).ResolveArgs(NewFixtureCache(), 0)
	var ferr *FixtureError
	require.ErrorAs(t, err, &ferr)
	var perr *PanicError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "oh no", perr.Value)
	assert.NotEmpty(t, perr.Stack)
}

func TestFailedFixtureIsRetriedByTheNextTest(t *testing.T) {
	var calls int32
	fx := NewFixture("flaky", func(Values) (interface{}, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("first time")
		}
		return "ok", nil
	}, Scoped(ScopeGlobal))
	cache := NewFixtureCache()

	_, err := NewTest(noop, "m", Using("x", fx)).ResolveArgs(cache, 0)
	require.Error(t, err)
	assert.Equal(t, "ok", resolve(t, NewTest(noop, "m", Using("x", fx)), cache)["x"])
}

func TestConcurrentTestsShareOneGlobalResolution(t *testing.T) {
	var calls int32
	fx := countingFixture("fx", ScopeGlobal, &calls)
	perTest := countingFixture("perTest", ScopeTest, new(int32))
	cache := NewFixtureCache()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vals, err := NewTest(noop, "m", Using("x", fx), Using("y", perTest)).ResolveArgs(cache, 0)
			assert.NoError(t, err)
			assert.Equal(t, 1, vals["x"])
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls)
}
