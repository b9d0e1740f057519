package framework

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func withoutColor(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })
}

func TestConsoleLoggerPerLine(t *testing.T) {
	withoutColor(t)
	var buf bytes.Buffer
	logger := &ConsoleTestLogger{Out: &buf, DebugOutputOnFailure: true}

	logger.TestFinished(id("module", "passes"), TestResult{Outcome: OutcomePass},
		CapturedOutput{{Message: "not shown"}})
	logger.TestSkipped(id("module", "skipped"), "not today")
	logger.TestError(id("module", "fails"), errors.New("line one\nline two"))
	logger.TestFinished(id("module", "fails"), TestResult{Outcome: OutcomeFail},
		CapturedOutput{{Message: "shown"}})

	out := buf.String()
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "module passes\n")
	assert.Contains(t, out, "SKIP")
	assert.Contains(t, out, "└ reason = not today\n")
	assert.Contains(t, out, "    line one\n    line two\n")
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "shown")
	assert.NotContains(t, out, "not shown")
}

func TestConsoleLoggerDots(t *testing.T) {
	withoutColor(t)
	var buf bytes.Buffer
	logger := &ConsoleTestLogger{Out: &buf, Style: StyleDots}

	logger.TestFinished(id("m", "a"), TestResult{Outcome: OutcomePass}, nil)
	logger.TestError(id("m", "b"), errors.New("not printed in dots style"))
	logger.TestFinished(id("m", "b"), TestResult{Outcome: OutcomeFail}, nil)
	logger.TestSkipped(id("m", "c"), "")
	logger.TestFinished(id("m", "d"), TestResult{Outcome: OutcomeXfail}, nil)
	logger.TestFinished(id("m", "e"), TestResult{Outcome: OutcomeError}, nil)
	logger.Finish()

	assert.Equal(t, ".FsxE\n", buf.String())
}
