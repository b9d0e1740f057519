package framework

import "sync"

type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, result TestResult, debugOutput CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                              {}
func (n nullTestLogger) TestError(TestID, error)                         {}
func (n nullTestLogger) TestFinished(TestID, TestResult, CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                      {}

// NullTestLogger returns a TestLogger that discards everything.
func NullTestLogger() TestLogger { return nullTestLogger{} }

// MultiTestLogger forwards every call to each of its loggers in turn.
type MultiTestLogger []TestLogger

func (m MultiTestLogger) TestStarted(id TestID) {
	for _, l := range m {
		l.TestStarted(id)
	}
}

func (m MultiTestLogger) TestError(id TestID, err error) {
	for _, l := range m {
		l.TestError(id, err)
	}
}

func (m MultiTestLogger) TestFinished(id TestID, result TestResult, debugOutput CapturedOutput) {
	for _, l := range m {
		l.TestFinished(id, result, debugOutput)
	}
}

func (m MultiTestLogger) TestSkipped(id TestID, reason string) {
	for _, l := range m {
		l.TestSkipped(id, reason)
	}
}

// RecordingTestLogger remembers every call made to it so that they can be replayed to another
// TestLogger later. This is how output from tests that run concurrently is kept in order.
type RecordingTestLogger struct {
	calls []func(TestLogger)
	lock  sync.Mutex
}

func (r *RecordingTestLogger) add(call func(TestLogger)) {
	r.lock.Lock()
	r.calls = append(r.calls, call)
	r.lock.Unlock()
}

func (r *RecordingTestLogger) TestStarted(id TestID) {
	r.add(func(l TestLogger) { l.TestStarted(id) })
}

func (r *RecordingTestLogger) TestError(id TestID, err error) {
	r.add(func(l TestLogger) { l.TestError(id, err) })
}

func (r *RecordingTestLogger) TestFinished(id TestID, result TestResult, debugOutput CapturedOutput) {
	r.add(func(l TestLogger) { l.TestFinished(id, result, debugOutput) })
}

func (r *RecordingTestLogger) TestSkipped(id TestID, reason string) {
	r.add(func(l TestLogger) { l.TestSkipped(id, reason) })
}

// Replay sends all recorded calls to the target in their original order.
func (r *RecordingTestLogger) Replay(target TestLogger) {
	r.lock.Lock()
	calls := append([](func(TestLogger))(nil), r.calls...)
	r.lock.Unlock()
	for _, call := range calls {
		call(target)
	}
}
