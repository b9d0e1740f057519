package config

const (
	// DefaultConfigFile is read if it exists and no other file was named
	DefaultConfigFile = "ward.yaml"
	// DefaultEnvFile is loaded if it exists and no other env file was named
	DefaultEnvFile = ".env"
	// DefaultParallelism runs the tests of a module one at a time
	DefaultParallelism = 1
	// DefaultFailLimit of zero means there is no limit
	DefaultFailLimit = 0
	// DefaultStyle is the console output style
	DefaultStyle = "test-per-line"
)

// Styles are the accepted values of Config.Style.
var Styles = []string{"test-per-line", "dots", "progress"}

// Environment variables that override the config file.
const (
	EnvRun       = "WARD_RUN"
	EnvSkip      = "WARD_SKIP"
	EnvDebug     = "WARD_DEBUG"
	EnvDebugAll  = "WARD_DEBUG_ALL"
	EnvParallel  = "WARD_PARALLEL"
	EnvFailLimit = "WARD_FAIL_LIMIT"
	EnvStyle     = "WARD_STYLE"
	EnvReportURL = "WARD_REPORT_URL"
)
