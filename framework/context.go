package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

type environment struct {
	results Results
	filter  Filter
	lock    sync.Mutex
}

// Context tracks the state of one test, or of a group of tests, while it runs. It is similar to
// Go's *testing.T, and implements the same Errorf/FailNow methods so it can be passed to testify's
// assert and require packages.
//
// Sibling contexts may run concurrently; the methods of a single Context may also be called from
// several goroutines started by the test.
type Context struct {
	env           *environment
	testLogger    TestLogger
	id            TestID
	group         bool
	debugLogger   CapturingLogger
	started       time.Time
	failed        bool
	aborted       bool
	skipped       bool
	skipReason    string
	expectFailure bool
	xfailReason   string
	errors        []error
	lock          sync.Mutex
}

func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter: filter,
	}
	c := &Context{env: env, testLogger: testLogger, group: true}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	c.started = time.Now()
	defer func() {
		if r := recover(); r != nil {
			// A *Context panic means the test stopped itself. Any other panic is always recorded,
			// even if a cleanup error already aborted the test.
			if _, ok := r.(*Context); ok {
				c.lock.Lock()
				stopped := c.skipped || c.aborted
				var addError error
				if !stopped {
					c.failed = true
					if len(c.errors) == 0 {
						addError = errors.New("test failed with no failure message")
					}
				}
				c.lock.Unlock()
				if addError != nil {
					c.fail(addError)
				}
			} else {
				c.fail(fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack())))
			}
		}
		c.record()
	}()

	action(c)
}

func (c *Context) record() {
	result := c.Result()
	if c.group && len(result.Errors) == 0 {
		return
	}
	c.env.lock.Lock()
	c.env.results.Tests = append(c.env.results.Tests, result)
	if result.Outcome.IsFailure() {
		c.env.results.Failures = append(c.env.results.Failures, result)
	}
	c.env.lock.Unlock()
}

// Result returns the current state of the test as a TestResult.
func (c *Context) Result() TestResult {
	c.lock.Lock()
	defer c.lock.Unlock()
	result := TestResult{
		TestID:   c.id,
		Outcome:  c.outcome(),
		Errors:   append([]error(nil), c.errors...),
		Duration: time.Since(c.started),
	}
	switch result.Outcome {
	case OutcomeSkip:
		result.Reason = c.skipReason
	case OutcomeXfail, OutcomeXpass:
		result.Reason = c.xfailReason
	}
	return result
}

func (c *Context) outcome() Outcome {
	switch {
	case c.skipped:
		return OutcomeSkip
	case c.aborted:
		return OutcomeError
	case c.expectFailure && c.failed:
		return OutcomeXfail
	case c.expectFailure:
		return OutcomeXpass
	case c.failed:
		return OutcomeFail
	default:
		return OutcomePass
	}
}

func (c *Context) ID() TestID {
	return c.id
}

// Run runs a test as a child of this context. The child is recorded in the results whatever its
// outcome.
func (c *Context) Run(name string, action func(*Context)) {
	c.runChild(name, c.testLogger, false, action)
}

// RunWith is the same as Run, but reports the child's progress to a different TestLogger.
func (c *Context) RunWith(name string, testLogger TestLogger, action func(*Context)) {
	if testLogger == nil {
		testLogger = c.testLogger
	}
	c.runChild(name, testLogger, false, action)
}

// Group runs a set of child tests under a common name. The group itself only appears in the results
// if something was reported against it directly, such as a cleanup error.
func (c *Context) Group(name string, action func(*Context)) {
	c.runChild(name, c.testLogger, true, action)
}

func (c *Context) runChild(name string, testLogger TestLogger, group bool, action func(*Context)) {
	id := c.id.child(name)

	if !group {
		testLogger.TestStarted(id)
		if c.env.filter != nil && !c.env.filter(id) {
			testLogger.TestSkipped(id, "excluded by filter parameters")
			return
		}
	}
	c1 := &Context{
		id:         id,
		env:        c.env,
		testLogger: testLogger,
		group:      group,
	}
	c1.run(action)
	result := c1.Result()
	if group && len(result.Errors) == 0 {
		return
	}
	if result.Outcome == OutcomeSkip {
		testLogger.TestSkipped(id, result.Reason)
	} else {
		testLogger.TestFinished(id, result, c1.debugLogger.Output())
	}
}

// Filtered reports whether a test with the given name would be excluded by the filter.
func (c *Context) Filtered(name string) bool {
	return c.env.filter != nil && !c.env.filter(c.id.child(name))
}

func (c *Context) Errorf(format string, args ...interface{}) {
	err := fmt.Errorf(format, args...)
	c.lock.Lock()
	c.failed = true
	c.errors = append(c.errors, err)
	c.lock.Unlock()
	c.testLogger.TestError(c.id, reformatError(err))
}

func (c *Context) fail(err error) {
	c.lock.Lock()
	c.failed = true
	c.errors = append(c.errors, err)
	c.lock.Unlock()
	c.testLogger.TestError(c.id, err)
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.lock.Lock()
	c.skipped = true
	c.lock.Unlock()
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.lock.Lock()
	c.skipReason = reason
	c.lock.Unlock()
	c.Skip()
}

// ExpectFailure marks the test as one that is expected to fail. A failure is then reported as
// OutcomeXfail, and a pass as OutcomeXpass.
func (c *Context) ExpectFailure(reason string) {
	c.lock.Lock()
	c.expectFailure = true
	c.xfailReason = reason
	c.lock.Unlock()
}

// Errored records an error that is not an assertion failure, such as a fixture that could not be
// torn down. The test's outcome becomes OutcomeError, but it keeps running.
func (c *Context) Errored(err error) {
	c.lock.Lock()
	c.aborted = true
	c.errors = append(c.errors, err)
	c.lock.Unlock()
	c.testLogger.TestError(c.id, err)
}

// Abort records the error as Errored does, and then exits the test immediately.
func (c *Context) Abort(err error) {
	c.Errored(err)
	panic(c)
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}

// testify formats its messages as an indented table starting with a newline; flatten that so each
// line of the message can be printed under the test name.
func reformatError(err error) error {
	s := err.Error()
	if !strings.HasPrefix(s, "\n") {
		return err
	}
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return errors.New(strings.Join(lines, "\n"))
}
