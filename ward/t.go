package ward

import (
	"strings"

	"github.com/wardtest/ward/framework"
)

// T is passed to a test body. Like *testing.T it implements Errorf and FailNow, so it can be used
// with testify's assert and require packages.
type T struct {
	context *framework.Context
	test    *Test
}

func NewT(context *framework.Context, test *Test) *T {
	return &T{context: context, test: test}
}

// Test returns the test instance being run.
func (t *T) Test() *Test { return t.test }

func (t *T) Context() *framework.Context { return t.context }

func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

func (t *T) FailNow() {
	t.context.FailNow()
}

// Skip stops the test and reports it as skipped.
func (t *T) Skip(reason ...string) {
	t.context.SkipWithReason(strings.Join(reason, " "))
}

func (t *T) Debug(message string, args ...interface{}) {
	t.context.Debug(message, args...)
}

func (t *T) DebugLogger() framework.Logger {
	return t.context.DebugLogger()
}
