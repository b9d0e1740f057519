package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"regexp"

	"github.com/wardtest/ward/config"
	"github.com/wardtest/ward/framework"
	_ "github.com/wardtest/ward/sampletests"
	"github.com/wardtest/ward/suite"
	"github.com/wardtest/ward/ward"
)

const styleProgress = "progress"

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	cfg, err := config.Load(params.configFile, params.envFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %s\n", err)
		os.Exit(1)
	}
	params.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		os.Exit(1)
	}

	var filters framework.RegexFilters
	if err := filters.MustMatch.SetAll(cfg.Run); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -run pattern: %s\n", err)
		os.Exit(1)
	}
	if err := filters.MustNotMatch.SetAll(cfg.Skip); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -skip pattern: %s\n", err)
		os.Exit(1)
	}

	mainDebugLogger := framework.NullLogger()
	if cfg.DebugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	s := suite.New(ward.DefaultRegistry.All(),
		suite.WithParallelism(cfg.Parallelism()),
		suite.WithFailLimit(cfg.FailLimitOrDefault()),
		suite.WithDebugLogger(mainDebugLogger),
	)

	instances, expansionErrors := s.Collect()
	if params.list {
		listTests(instances, expansionErrors, filters)
		return
	}

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, filters)
	fmt.Println("Running test suite")

	var loggers framework.MultiTestLogger
	var finish func()
	switch cfg.Style {
	case styleProgress:
		progress := framework.NewProgressTestLogger(len(instances)+len(expansionErrors), os.Stdout)
		loggers = append(loggers, progress)
		finish = progress.Finish
	default:
		console := &framework.ConsoleTestLogger{
			Style:                cfg.Style,
			DebugOutputOnFailure: cfg.Debug || cfg.DebugAll,
			DebugOutputOnSuccess: cfg.DebugAll,
		}
		loggers = append(loggers, console)
		finish = console.Finish
	}
	var reporter *framework.HTTPTestLogger
	if cfg.ReportURL != "" {
		reporter = framework.NewHTTPTestLogger(cfg.ReportURL, mainDebugLogger)
		loggers = append(loggers, reporter)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	results := s.Run(ctx, filters.AsFilter, loggers)
	stop()
	finish()

	if reporter != nil {
		if err := reporter.ReportRun(results); err != nil {
			fmt.Fprintf(os.Stderr, "Could not report run summary: %s\n", err)
		}
	}

	fmt.Println()
	framework.PrintResults(os.Stdout, results)
	if !results.OK() {
		printRerunCommand(results)
		os.Exit(1)
	}
}

func listTests(instances []*ward.Test, expansionErrors []error, filters framework.RegexFilters) {
	for _, t := range instances {
		id := framework.TestID{Path: []string{t.ModuleName, t.Label()}}
		if filters.IsDefined() && !filters.AsFilter(id) {
			continue
		}
		fmt.Printf("%s  (%s:%d)\n", id, t.File(), t.LineNumber())
	}
	for _, err := range expansionErrors {
		fmt.Fprintf(os.Stderr, "%s\n", err)
	}
}

func printRerunCommand(results framework.Results) {
	var cmd commandBuilder
	cmd.add(os.Args[0])
	for _, pattern := range rerunPatterns(results) {
		cmd.add("-run", pattern)
	}
	cmd.add("-debug")
	fmt.Println()
	fmt.Println("To run only the failed tests again:")
	fmt.Printf("  %s\n", cmd)
}

// rerunPatterns returns one -run pattern per failed test. A module whose fixtures failed to tear down
// is rerun as a whole; global teardown errors have no tests of their own and are left out.
func rerunPatterns(results framework.Results) []string {
	var patterns []string
	seen := make(map[string]bool)
	for _, f := range results.Failures {
		var pattern string
		switch path := f.TestID.Path; {
		case len(path) == 1 && path[0] == suite.GlobalTeardownName:
			continue
		case len(path) == 1:
			pattern = "^" + regexp.QuoteMeta(path[0]) + "/"
		default:
			pattern = "^" + regexp.QuoteMeta(f.TestID.String()) + "$"
		}
		if !seen[pattern] {
			seen[pattern] = true
			patterns = append(patterns, pattern)
		}
	}
	return patterns
}
