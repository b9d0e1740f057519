package ward

import "fmt"

// Values maps argument names to the values that a test or fixture function is called with.
type Values map[string]interface{}

// Lookup returns the named value if it is present and has type V.
func Lookup[V any](vals Values, name string) (V, bool) {
	v, ok := vals[name].(V)
	return v, ok
}

// Get returns the named value as type V. It panics if the value is missing or has another type;
// inside a test body that panic is reported as a test failure.
func Get[V any](vals Values, name string) V {
	raw, present := vals[name]
	if !present {
		panic(fmt.Sprintf("no argument named %q", name))
	}
	v, ok := raw.(V)
	if !ok {
		var zero V
		panic(fmt.Sprintf("argument %q has type %T, not %T", name, raw, zero))
	}
	return v
}
