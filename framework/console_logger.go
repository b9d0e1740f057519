package framework

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Output styles understood by ConsoleTestLogger.
const (
	StyleTestPerLine = "test-per-line"
	StyleDots        = "dots"
)

const dotsPerLine = 80

var outcomeTags = map[Outcome]*color.Color{
	OutcomePass:  color.New(color.BgGreen, color.FgBlack, color.Bold),
	OutcomeFail:  color.New(color.BgRed, color.FgBlack, color.Bold),
	OutcomeSkip:  color.New(color.BgBlue, color.FgHiWhite, color.Bold),
	OutcomeXfail: color.New(color.BgMagenta, color.FgHiWhite, color.Bold),
	OutcomeXpass: color.New(color.BgYellow, color.FgBlack, color.Bold),
	OutcomeError: color.New(color.BgRed, color.FgHiWhite, color.Bold),
}

var outcomeDots = map[Outcome]struct {
	char  string
	color *color.Color
}{
	OutcomePass:  {".", color.New(color.FgGreen)},
	OutcomeFail:  {"F", color.New(color.FgRed)},
	OutcomeSkip:  {"s", color.New(color.FgBlue)},
	OutcomeXfail: {"x", color.New(color.FgYellow)},
	OutcomeXpass: {"U", color.New(color.FgMagenta)},
	OutcomeError: {"E", color.New(color.FgRed, color.Bold)},
}

var (
	reasonColor  = color.New(color.Italic, color.FgBlue)
	errorColor   = color.New(color.FgRed)
	locationDim  = color.New(color.FgHiBlack)
	debugPrefix  = "    DEBUG "
	reasonPrefix = "     └ reason = "
)

// ConsoleTestLogger prints test progress to a terminal.
type ConsoleTestLogger struct {
	Out                  io.Writer
	Style                string
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool

	column int
	lock   sync.Mutex
}

func (c *ConsoleTestLogger) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *ConsoleTestLogger) dots() bool {
	return c.Style == StyleDots
}

func (c *ConsoleTestLogger) TestStarted(id TestID) {}

func (c *ConsoleTestLogger) TestError(id TestID, err error) {
	if c.dots() {
		return
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	fmt.Fprintf(c.out(), "  %s\n", locationDim.Sprintf("[%s]", id))
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.out(), "    %s\n", errorColor.Sprint(line))
	}
}

func (c *ConsoleTestLogger) TestFinished(id TestID, result TestResult, debugOutput CapturedOutput) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.dots() {
		c.printDot(result.Outcome)
	} else {
		c.printLine(id, result.Outcome, result.Reason)
	}
	failed := result.Outcome.IsFailure()
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		c.endDots()
		debugOutput.Dump(c.out(), debugPrefix)
	}
}

func (c *ConsoleTestLogger) TestSkipped(id TestID, reason string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.dots() {
		c.printDot(OutcomeSkip)
		return
	}
	c.printLine(id, OutcomeSkip, reason)
}

// Finish ends any partially written line of dots.
func (c *ConsoleTestLogger) Finish() {
	c.lock.Lock()
	c.endDots()
	c.lock.Unlock()
}

func (c *ConsoleTestLogger) printLine(id TestID, outcome Outcome, reason string) {
	tag := outcomeTags[outcome].Sprintf(" %-5s ", outcome)
	var location string
	if len(id.Path) > 1 {
		location = strings.Join(id.Path[:len(id.Path)-1], "/")
	}
	fmt.Fprintf(c.out(), "%s %s %s\n", tag, locationDim.Sprint(location), id.Leaf())
	if reason != "" && (outcome == OutcomeSkip || outcome == OutcomeXfail) {
		fmt.Fprintln(c.out(), reasonColor.Sprint(reasonPrefix+reason))
	}
}

func (c *ConsoleTestLogger) printDot(outcome Outcome) {
	d := outcomeDots[outcome]
	fmt.Fprint(c.out(), d.color.Sprint(d.char))
	c.column++
	if c.column == dotsPerLine {
		c.endDots()
	}
}

func (c *ConsoleTestLogger) endDots() {
	if c.column > 0 {
		fmt.Fprintln(c.out())
		c.column = 0
	}
}
