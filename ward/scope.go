package ward

import (
	"fmt"
	"strings"
)

// Scope is the granularity at which a resolved fixture may be reused.
type Scope int

const (
	// ScopeTest fixtures are resolved again for every test that uses them.
	ScopeTest Scope = iota
	// ScopeModule fixtures are shared by the tests of one module.
	ScopeModule
	// ScopeGlobal fixtures are resolved once per run.
	ScopeGlobal
)

func (s Scope) String() string {
	switch s {
	case ScopeTest:
		return "test"
	case ScopeModule:
		return "module"
	case ScopeGlobal:
		return "global"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// ParseScope converts a name as returned by Scope.String back to a Scope.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(s) {
	case "test":
		return ScopeTest, nil
	case "module":
		return ScopeModule, nil
	case "global":
		return ScopeGlobal, nil
	}
	return ScopeTest, fmt.Errorf("unknown fixture scope %q", s)
}

// owner returns the identity that a fixture of this scope is tied to when it is resolved for the
// given test: the test ID, the module name, or nothing at all.
func (s Scope) owner(test *Test) string {
	switch s {
	case ScopeTest:
		return test.ID
	case ScopeModule:
		return test.ModuleName
	default:
		return ""
	}
}
