package suite

import (
	"context"
	"sync/atomic"

	"github.com/wardtest/ward/framework"
	"github.com/wardtest/ward/ward"

	"golang.org/x/sync/errgroup"
)

// GlobalTeardownName is the name under which errors from tearing down global fixtures are reported.
const GlobalTeardownName = "(global fixtures)"

// Suite runs a set of tests module by module, sharing one FixtureCache across the whole run.
type Suite struct {
	Tests       []*ward.Test
	Cache       *ward.FixtureCache
	Parallelism int
	FailLimit   int
	DebugLogger framework.Logger
}

type Option func(*Suite)

// WithParallelism allows up to n tests of the same module to run at once. Modules themselves always
// run one after another.
func WithParallelism(n int) Option {
	return func(s *Suite) { s.Parallelism = n }
}

// WithFailLimit stops scheduling new tests once n tests have failed. Zero means no limit.
func WithFailLimit(n int) Option {
	return func(s *Suite) { s.FailLimit = n }
}

func WithCache(cache *ward.FixtureCache) Option {
	return func(s *Suite) { s.Cache = cache }
}

func WithDebugLogger(logger framework.Logger) Option {
	return func(s *Suite) { s.DebugLogger = logger }
}

func New(tests []*ward.Test, opts ...Option) *Suite {
	s := &Suite{Tests: tests, Parallelism: 1}
	for _, o := range opts {
		o(s)
	}
	if s.DebugLogger == nil {
		s.DebugLogger = framework.NullLogger()
	}
	if s.Cache == nil {
		s.Cache = ward.NewFixtureCache(ward.WithCacheLogger(framework.PrefixedLogger(s.DebugLogger, "[fixtures] ")))
	}
	return s
}

type module struct {
	name  string
	tests []*ward.Test
}

// modules groups the tests by module, keeping the order in which each module was first seen.
func (s *Suite) modules() []module {
	var ret []module
	index := make(map[string]int)
	for _, t := range s.Tests {
		i, ok := index[t.ModuleName]
		if !ok {
			i = len(ret)
			index[t.ModuleName] = i
			ret = append(ret, module{name: t.ModuleName})
		}
		ret[i].tests = append(ret[i].tests, t)
	}
	return ret
}

// Collect expands every test into its instances without running anything.
func (s *Suite) Collect() ([]*ward.Test, []error) {
	var instances []*ward.Test
	var errs []error
	for _, t := range s.Tests {
		expanded, err := t.ParameterisedInstances()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		instances = append(instances, expanded...)
	}
	return instances, errs
}

// Run runs the suite. Each module is a group in the results, and each test instance is a test named by
// its label within that group. Test-scoped fixtures are torn down after each instance, module-scoped
// ones after the module's last test, and global ones at the end; errors from tearing down are
// reported as OutcomeError against the test, the module, or GlobalTeardownName.
//
// Once ctx is cancelled or the fail limit is reached no more tests are started, but every fixture
// that was set up is still torn down.
func (s *Suite) Run(ctx context.Context, filter framework.Filter, testLogger framework.TestLogger) framework.Results {
	if testLogger == nil {
		testLogger = framework.NullTestLogger()
	}
	r := &runner{suite: s, ctx: ctx, testLogger: testLogger}
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		for _, m := range s.modules() {
			if r.stopped() {
				s.DebugLogger.Printf("Not starting module %s: %s", m.name, r.stopReason())
				break
			}
			c.Group(m.name, func(mc *framework.Context) { r.runModule(mc, m) })
		}
		c.Group(GlobalTeardownName, func(gc *framework.Context) {
			if err := s.Cache.TeardownGlobal(); err != nil {
				gc.Errored(err)
			}
		})
	})
}

type runner struct {
	suite      *Suite
	ctx        context.Context
	testLogger framework.TestLogger
	failures   int32
}

func (r *runner) stopped() bool {
	return r.stopReason() != ""
}

func (r *runner) stopReason() string {
	if r.ctx.Err() != nil {
		return r.ctx.Err().Error()
	}
	if r.suite.FailLimit > 0 && int(atomic.LoadInt32(&r.failures)) >= r.suite.FailLimit {
		return "fail limit reached"
	}
	return ""
}

// counted wraps a logger so that failures are counted as soon as each test finishes.
func (r *runner) counted(logger framework.TestLogger) framework.TestLogger {
	return failureCounter{TestLogger: logger, failures: &r.failures}
}

func (r *runner) runModule(c *framework.Context, m module) {
	defer func() {
		if err := r.suite.Cache.TeardownModule(m.name); err != nil {
			c.Errored(err)
		}
	}()

	instances := r.expand(c, m)
	r.suite.DebugLogger.Printf("Running module %s (%d tests)", m.name, len(instances))

	if r.suite.Parallelism <= 1 {
		for _, inst := range instances {
			if r.stopped() {
				return
			}
			c.RunWith(inst.Label(), r.counted(r.testLogger), func(tc *framework.Context) {
				r.runInstance(tc, inst)
			})
		}
		return
	}

	// Tests run concurrently, but their output is replayed in declaration order.
	queue := framework.NewOrderedQueue[*framework.RecordingTestLogger](len(instances))
	replayed := make(chan struct{})
	go func() {
		for rec := range queue.C {
			rec.Replay(r.testLogger)
		}
		close(replayed)
	}()

	var g errgroup.Group
	g.SetLimit(r.suite.Parallelism)
	for i, inst := range instances {
		if r.stopped() {
			break
		}
		g.Go(func() error {
			rec := &framework.RecordingTestLogger{}
			c.RunWith(inst.Label(), r.counted(rec), func(tc *framework.Context) {
				r.runInstance(tc, inst)
			})
			queue.Accept(i+1, rec)
			return nil
		})
	}
	_ = g.Wait()
	queue.Close()
	<-replayed
}

// expand returns the instances of every test in the module. A test whose parameterisation is invalid
// is reported as an error under its own label and contributes no instances.
func (r *runner) expand(c *framework.Context, m module) []*ward.Test {
	var instances []*ward.Test
	for _, t := range m.tests {
		expanded, err := t.ParameterisedInstances()
		if err != nil {
			c.RunWith(t.Label(), r.counted(r.testLogger), func(tc *framework.Context) { tc.Abort(err) })
			continue
		}
		instances = append(instances, expanded...)
	}
	return instances
}

func (r *runner) runInstance(c *framework.Context, test *ward.Test) {
	if m := test.Marker; m != nil {
		switch m.Kind {
		case ward.MarkerSkip:
			c.SkipWithReason(m.Reason.StringValue())
		case ward.MarkerXfail:
			c.ExpectFailure(m.Reason.StringValue())
		}
	}

	defer func() {
		if err := r.suite.Cache.TeardownTest(test.ID); err != nil {
			c.Errored(err)
		}
	}()

	args, err := test.ResolveArgs(r.suite.Cache, test.Iteration)
	if err != nil {
		c.Abort(err)
	}
	c.Debug("Resolved arguments: %v", test.Deps())
	test.Call(ward.NewT(c, test), args)
}

type failureCounter struct {
	framework.TestLogger
	failures *int32
}

func (f failureCounter) TestFinished(id framework.TestID, result framework.TestResult, debugOutput framework.CapturedOutput) {
	if result.Outcome.IsFailure() {
		atomic.AddInt32(f.failures, 1)
	}
	f.TestLogger.TestFinished(id, result, debugOutput)
}
