package ward

import (
	"fmt"
	"sync"
	"sync/atomic"
)

type setupFunc func(args Values) (value interface{}, teardown func() error, err error)

var lastFixtureSeq uint64

// FixtureDef is the declaration of a fixture: a named factory plus the arguments it depends on.
// Use it as the value of a Using binding to make a test or another fixture depend on it.
//
// A FixtureDef can only refer to fixtures that were declared before it, so the dependency graph
// has no cycles.
type FixtureDef struct {
	key      string
	name     string
	scope    Scope
	bindings bindings
	setup    setupFunc
	twoPhase bool
}

func (*FixtureDef) argKind() argKind { return fixtureKind }

func newFixtureDef(name string, setup setupFunc, twoPhase bool, opts []FixtureOption) *FixtureDef {
	seq := atomic.AddUint64(&lastFixtureSeq, 1)
	d := &FixtureDef{
		key:      fmt.Sprintf("%s#%d", name, seq),
		name:     name,
		scope:    ScopeTest,
		setup:    setup,
		twoPhase: twoPhase,
	}
	for _, o := range opts {
		o.applyFixture(d)
	}
	return d
}

// NewFixture declares a fixture whose value is produced by a single call to fn.
func NewFixture(name string, fn func(args Values) (interface{}, error), opts ...FixtureOption) *FixtureDef {
	return newFixtureDef(name, func(args Values) (interface{}, func() error, error) {
		v, err := fn(args)
		return v, nil, err
	}, false, opts)
}

// NewTeardownFixture declares a two-phase fixture. fn sets up the value and returns a finalizer,
// which is called exactly once when the fixture's scope closes. A nil finalizer is allowed.
func NewTeardownFixture(
	name string,
	fn func(args Values) (interface{}, func() error, error),
	opts ...FixtureOption,
) *FixtureDef {
	return newFixtureDef(name, fn, true, opts)
}

// NewGeneratorFixture declares a two-phase fixture written as a single routine. The routine sets up
// its resources, passes the fixture value to yield, and continues after yield returns, which happens
// when the fixture's scope closes. Whatever the routine does after yield is its teardown.
//
//	server := ward.NewGeneratorFixture("server", func(args ward.Values, yield func(interface{})) error {
//		s := httptest.NewServer(handler)
//		yield(s)
//		s.Close()
//		return nil
//	}, ward.Scoped(ward.ScopeGlobal))
func NewGeneratorFixture(
	name string,
	fn func(args Values, yield func(interface{})) error,
	opts ...FixtureOption,
) *FixtureDef {
	return newFixtureDef(name, generatorSetup(fn), true, opts)
}

// Key identifies the fixture within a FixtureCache. It is unique for each declaration.
func (d *FixtureDef) Key() string { return d.key }

func (d *FixtureDef) Name() string { return d.name }

func (d *FixtureDef) Scope() Scope { return d.scope }

// Deps returns the names of the fixture's arguments, in declaration order.
func (d *FixtureDef) Deps() []string { return d.bindings.names() }

func (d *FixtureDef) HasDeps() bool { return len(d.bindings) > 0 }

func (d *FixtureDef) IsTwoPhase() bool { return d.twoPhase }

// Fixture is the resolution state of a FixtureDef: the value it produced, the test and module it
// was produced for, and, for a two-phase fixture, the pending teardown.
type Fixture struct {
	def                    *FixtureDef
	ResolvedVal            interface{}
	LastResolvedTestID     string
	LastResolvedModuleName string

	seq      uint64
	teardown func() error
	done     bool
	lock     sync.Mutex
}

func newFixture(def *FixtureDef) *Fixture {
	return &Fixture{def: def}
}

func (f *Fixture) Key() string { return f.def.key }

func (f *Fixture) Name() string { return f.def.name }

func (f *Fixture) Scope() Scope { return f.def.scope }

func (f *Fixture) IsTwoPhase() bool { return f.def.twoPhase }

// Def returns the declaration this fixture was resolved from.
func (f *Fixture) Def() *FixtureDef { return f.def }

// Pending is true if the fixture still has a teardown to run.
func (f *Fixture) Pending() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.teardown != nil && !f.done
}

// validFor applies the reuse rule of the fixture's scope to a requesting test.
func (f *Fixture) validFor(test *Test) bool {
	owner := f.def.scope.owner(test)
	switch f.def.scope {
	case ScopeModule:
		return f.LastResolvedModuleName == owner
	case ScopeTest:
		return f.LastResolvedTestID == owner
	default:
		return true
	}
}

func (f *Fixture) setUp(args Values) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &FixtureError{Fixture: f.def.name, Phase: PhaseSetup, Cause: newPanicError(r)}
		}
	}()
	value, teardown, err := f.def.setup(args)
	if err != nil {
		return &FixtureError{Fixture: f.def.name, Phase: PhaseSetup, Cause: err}
	}
	f.ResolvedVal = value
	f.teardown = teardown
	return nil
}

// Teardown runs the fixture's teardown if it has one that has not run yet. Later calls do nothing.
func (f *Fixture) Teardown() (err error) {
	f.lock.Lock()
	teardown := f.teardown
	if teardown == nil || f.done {
		f.lock.Unlock()
		return nil
	}
	f.done = true
	f.lock.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = &FixtureError{Fixture: f.def.name, Phase: PhaseTeardown, Cause: newPanicError(r)}
		}
	}()
	if terr := teardown(); terr != nil {
		return &FixtureError{Fixture: f.def.name, Phase: PhaseTeardown, Cause: terr}
	}
	return nil
}
