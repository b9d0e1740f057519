// Package framework contains the low-level bookkeeping for a test run that does not depend on how
// tests are declared or how their inputs are produced.
//
// The general model is:
//
// 1. There is a notion of a test context which is similar to Go's *testing.T, allowing pieces of
// test logic to be associated with a test identifier and to accumulate failures, skips and errors.
// Contexts can be nested: a group (such as all the tests of one module) contains tests.
//
// 2. When a context finishes, its outcome is classified (pass, fail, skip, expected failure,
// unexpected pass, or error) and appended to the Results of the run.
//
// 3. Progress is reported to a TestLogger as tests start and finish. Implementations are provided
// for a terminal, a progress bar, and an HTTP result collector.
//
// The ward package builds its test model, fixtures and T type on top of this.
package framework
