// Package ward is a test execution engine built around fixtures.
//
// A test declares its arguments with Using. An argument is a literal value, a fixture declared with
// NewFixture, NewTeardownFixture or NewGeneratorFixture, or an Each placeholder that expands the test
// into one instance per value. Before an instance runs, ResolveArgs resolves its fixtures through a
// FixtureCache, reusing a cached value whenever the fixture's Scope allows it:
//
//   - ScopeTest: only within the same test instance
//   - ScopeModule: within the same module
//   - ScopeGlobal: for the rest of the run
//
// Two-phase fixtures are torn down when their scope closes, in the reverse of the order in which they
// were resolved. The suite package drives a whole run on top of this.
package ward
