package ward

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// TestFunc is the body of a test. args holds the resolved value of every argument bound with Using.
type TestFunc func(t *T, args Values)

// AnonymousName is the name given to tests whose function is a closure.
const AnonymousName = "_"

var closureSuffix = regexp.MustCompile(`(^|\.)func\d+(\.\d+)*$`)

// Test is a test function together with its declared arguments, marker and module.
//
// A parameterised test is expanded by ParameterisedInstances into one Test per set of values; the
// instances share everything but their ID and Iteration.
type Test struct {
	ID          string
	ModuleName  string
	Marker      *Marker
	Description string
	Iteration   int
	GroupSize   int

	fn       TestFunc
	bindings bindings
}

// NewTest creates a test for fn that belongs to the given module.
func NewTest(fn TestFunc, moduleName string, opts ...TestOption) *Test {
	t := &Test{
		ID:         generateID(),
		ModuleName: moduleName,
		GroupSize:  1,
		fn:         fn,
	}
	for _, o := range opts {
		o.applyTest(t)
	}
	return t
}

func generateID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

func (t *Test) symbol() string {
	if t.fn == nil {
		return ""
	}
	f := runtime.FuncForPC(reflect.ValueOf(t.fn).Pointer())
	if f == nil {
		return ""
	}
	return f.Name()
}

// Name is the name of the test function, or AnonymousName if it is a closure.
func (t *Test) Name() string {
	sym := t.symbol()
	if sym == "" {
		return AnonymousName
	}
	_, local := splitSymbol(sym)
	if closureSuffix.MatchString(local) || strings.HasPrefix(local, "glob.") {
		return AnonymousName
	}
	if i := strings.LastIndex(local, "."); i >= 0 {
		local = local[i+1:]
	}
	return strings.TrimSuffix(local, "-fm")
}

// QualifiedName is the module name and the test name joined with a dot.
func (t *Test) QualifiedName() string {
	return t.ModuleName + "." + t.Name()
}

// File and LineNumber locate the start of the test function in its source file.
func (t *Test) File() string {
	file, _ := t.location()
	return file
}

func (t *Test) LineNumber() int {
	_, line := t.location()
	return line
}

func (t *Test) location() (string, int) {
	if t.fn == nil {
		return "", 0
	}
	pc := reflect.ValueOf(t.fn).Pointer()
	f := runtime.FuncForPC(pc)
	if f == nil {
		return "", 0
	}
	return f.FileLine(f.Entry())
}

// Deps returns the names of the test's arguments in the order they were bound.
func (t *Test) Deps() []string {
	return t.bindings.names()
}

func (t *Test) HasDeps() bool {
	return len(t.bindings) > 0
}

// Bindings returns a copy of the test's declared arguments.
func (t *Test) Bindings() []Binding {
	return append([]Binding(nil), t.bindings...)
}

// IsParameterised is true if any argument of the test is bound to Each.
func (t *Test) IsParameterised() bool {
	for _, b := range t.bindings {
		if b.Arg.argKind() == eachKind {
			return true
		}
	}
	return false
}

// ParameterisedInstances expands the test into one instance per value of its Each arguments. A test
// that is not parameterised is returned as the only element. All Each arguments must have the same
// length, otherwise a *ParameterisationError is returned.
func (t *Test) ParameterisedInstances() ([]*Test, error) {
	if !t.IsParameterised() {
		return []*Test{t}, nil
	}
	n, err := t.instanceCount()
	if err != nil {
		return nil, err
	}
	instances := make([]*Test, 0, n)
	for i := 0; i < n; i++ {
		instances = append(instances, &Test{
			ID:          generateID(),
			ModuleName:  t.ModuleName,
			Marker:      t.Marker,
			Description: t.Description,
			Iteration:   i,
			GroupSize:   n,
			fn:          t.fn,
			bindings:    t.bindings,
		})
	}
	return instances, nil
}

func (t *Test) instanceCount() (int, error) {
	seen := make(map[int]bool)
	for _, b := range t.bindings {
		if each, ok := b.Arg.(EachArg); ok {
			seen[each.Len()] = true
		}
	}
	if len(seen) > 1 {
		lengths := make([]int, 0, len(seen))
		for n := range seen {
			lengths = append(lengths, n)
		}
		sort.Ints(lengths)
		return 0, &ParameterisationError{Test: t.QualifiedName(), Description: t.Description, Lengths: lengths}
	}
	for n := range seen {
		return n, nil
	}
	return 0, nil
}

// Label is how the test is reported: its description, or its qualified name if it has none,
// followed by the instance number for a parameterised test.
func (t *Test) Label() string {
	label := t.Description
	if label == "" {
		label = t.QualifiedName()
	}
	if t.GroupSize > 1 {
		width := len(fmt.Sprint(t.GroupSize))
		label += fmt.Sprintf(" [%*d/%d]", width, t.Iteration+1, t.GroupSize)
	}
	return label
}

// Call runs the test body with already-resolved arguments.
func (t *Test) Call(tt *T, args Values) {
	t.fn(tt, args)
}

// splitSymbol separates a function symbol such as "example.com/a/pkg.Func" into its package path and
// the name within the package.
func splitSymbol(sym string) (pkg, local string) {
	slash := strings.LastIndex(sym, "/")
	dot := strings.Index(sym[slash+1:], ".")
	if dot < 0 {
		return sym, ""
	}
	dot += slash + 1
	return sym[:dot], sym[dot+1:]
}
