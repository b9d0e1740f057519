package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/wardtest/ward/config"

	"github.com/alessio/shellescape"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

type commandParams struct {
	configFile string
	envFiles   stringList
	run        stringList
	skip       stringList
	debug      bool
	debugAll   bool
	parallel   int
	failLimit  int
	style      string
	reportURL  string
	list       bool
	set        map[string]bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.configFile, "config", "", "YAML config file (default "+config.DefaultConfigFile+" if present)")
	fs.Var(&c.envFiles, "env-file", "env file to load before reading WARD_* variables (may be repeated)")
	fs.Var(&c.run, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.skip, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "show debug output for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "show debug output for all tests, and log fixture activity")
	fs.IntVar(&c.parallel, "parallel", config.DefaultParallelism, "number of tests of one module to run at once")
	fs.IntVar(&c.failLimit, "fail-limit", config.DefaultFailLimit, "stop after this many failures (0 for no limit)")
	fs.StringVar(&c.style, "style", config.DefaultStyle, "output style: "+strings.Join(config.Styles, ", "))
	fs.StringVar(&c.reportURL, "report-url", "", "URL to POST each test result to")
	fs.BoolVar(&c.list, "list", false, "list the tests that would run, without running them")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return false
	}
	c.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { c.set[f.Name] = true })
	return true
}

// apply overrides the loaded configuration with any flags that were given explicitly.
func (c *commandParams) apply(cfg *config.Config) {
	cfg.Run = append(cfg.Run, c.run...)
	cfg.Skip = append(cfg.Skip, c.skip...)
	if c.set["debug"] {
		cfg.Debug = c.debug
	}
	if c.set["debug-all"] {
		cfg.DebugAll = c.debugAll
	}
	if c.set["parallel"] {
		cfg.Parallel = ldvalue.NewOptionalInt(c.parallel)
	}
	if c.set["fail-limit"] {
		cfg.FailLimit = ldvalue.NewOptionalInt(c.failLimit)
	}
	if c.set["style"] {
		cfg.Style = c.style
	}
	if c.set["report-url"] {
		cfg.ReportURL = c.reportURL
	}
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
