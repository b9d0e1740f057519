package framework

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ProgressTestLogger shows a single progress bar for the whole run, with running totals of passed
// and failed tests in its description. The bar only advances for tests that were started; errors
// reported against a group, such as a module's teardown errors, are counted as failures without
// moving it.
type ProgressTestLogger struct {
	bar     *progressbar.ProgressBar
	out     io.Writer
	started map[string]bool
	passed  int
	failed  int
	lock    sync.Mutex
}

func NewProgressTestLogger(total int, out io.Writer) *ProgressTestLogger {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(progressDescription(0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(out),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &ProgressTestLogger{bar: bar, out: out, started: make(map[string]bool)}
}

func progressDescription(passed, failed int) string {
	return color.CyanString("Running tests: ") +
		color.GreenString("[passed: %d", passed) +
		" | " +
		color.RedString("failed: %d]", failed)
}

func (p *ProgressTestLogger) TestStarted(id TestID) {
	p.lock.Lock()
	p.started[id.String()] = true
	p.lock.Unlock()
}

func (p *ProgressTestLogger) TestError(TestID, error) {}

func (p *ProgressTestLogger) TestFinished(id TestID, result TestResult, debugOutput CapturedOutput) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if result.Outcome.IsFailure() {
		p.failed++
	} else {
		p.passed++
	}
	p.bar.Describe(progressDescription(p.passed, p.failed))
	p.advance(id)
}

func (p *ProgressTestLogger) TestSkipped(id TestID, _ string) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.advance(id)
}

func (p *ProgressTestLogger) advance(id TestID) {
	key := id.String()
	if !p.started[key] {
		return
	}
	delete(p.started, key)
	if err := p.bar.Add(1); err != nil {
		fmt.Fprintf(p.out, "\nUnable to update progress bar: %s\n", err)
	}
}

// Finish completes the bar even if fewer tests ran than expected.
func (p *ProgressTestLogger) Finish() {
	if err := p.bar.Finish(); err != nil {
		fmt.Fprintf(p.out, "\nUnable to update progress bar: %s\n", err)
	}
}
