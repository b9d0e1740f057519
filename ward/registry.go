package ward

import (
	"runtime"
	"sync"
)

// Registry collects declared tests, grouped by module in the order the modules were first seen.
type Registry struct {
	modules []string
	tests   map[string][]*Test
	lock    sync.Mutex
}

// DefaultRegistry is the registry used by Declare.
var DefaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{tests: make(map[string][]*Test)}
}

// Register adds a test to its module.
func (r *Registry) Register(t *Test) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.tests[t.ModuleName]; !ok {
		r.modules = append(r.modules, t.ModuleName)
	}
	r.tests[t.ModuleName] = append(r.tests[t.ModuleName], t)
}

// Tests returns the tests of a module in declaration order.
func (r *Registry) Tests(module string) []*Test {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]*Test(nil), r.tests[module]...)
}

// Anonymous returns the tests of a module whose functions are closures.
func (r *Registry) Anonymous(module string) []*Test {
	var ret []*Test
	for _, t := range r.Tests(module) {
		if t.Name() == AnonymousName {
			ret = append(ret, t)
		}
	}
	return ret
}

func (r *Registry) Modules() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.modules...)
}

// All returns every registered test, module by module.
func (r *Registry) All() []*Test {
	r.lock.Lock()
	defer r.lock.Unlock()
	var ret []*Test
	for _, m := range r.modules {
		ret = append(ret, r.tests[m]...)
	}
	return ret
}

// Declare creates a test in the module named after the calling package and registers it.
//
//	var _ = ward.Declare("adding one and one gives two", func(t *ward.T, args ward.Values) {
//		assert.Equal(t, 2, ward.Get[int](args, "x")+1)
//	}, ward.Using("x", 1))
func (r *Registry) Declare(description string, fn TestFunc, opts ...TestOption) *Test {
	return r.declare(callerModule(2), description, fn, opts)
}

// Declare adds a test to DefaultRegistry. See Registry.Declare.
func Declare(description string, fn TestFunc, opts ...TestOption) *Test {
	return DefaultRegistry.declare(callerModule(2), description, fn, opts)
}

func (r *Registry) declare(module, description string, fn TestFunc, opts []TestOption) *Test {
	all := append([]TestOption{Described(description)}, opts...)
	t := NewTest(fn, module, all...)
	r.Register(t)
	return t
}

// callerModule returns the package path of the function skip frames above this one.
func callerModule(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	f := runtime.FuncForPC(pc)
	if f == nil {
		return ""
	}
	pkg, _ := splitSymbol(f.Name())
	return pkg
}
