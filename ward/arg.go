package ward

import "fmt"

type argKind int

const (
	literalKind argKind = iota
	fixtureKind
	eachKind
)

// Arg is the declared default of one named argument of a test or fixture. It is one of three
// variants, decided when the test is declared: a literal value (Literal), a fixture reference
// (a *FixtureDef), or a parameterisation placeholder (Each).
type Arg interface {
	argKind() argKind
}

type literalArg struct {
	value interface{}
}

func (literalArg) argKind() argKind { return literalKind }

// Literal wraps a plain value so it is passed to the function unchanged.
func Literal(v interface{}) Arg {
	return literalArg{value: v}
}

func toArg(v interface{}) Arg {
	if a, ok := v.(Arg); ok {
		return a
	}
	return Literal(v)
}

// EachArg holds one value per generated instance of a parameterised test.
type EachArg struct {
	values []Arg
}

func (EachArg) argKind() argKind { return eachKind }

// Each requests parameterisation: a test with an argument bound to Each(a, b, c) is expanded into
// three instances, receiving a, b and c in turn. Values may be fixtures, in which case each
// instance resolves its own fixture.
func Each(values ...interface{}) EachArg {
	e := EachArg{values: make([]Arg, 0, len(values))}
	for _, v := range values {
		e.values = append(e.values, toArg(v))
	}
	return e
}

func (e EachArg) Len() int {
	return len(e.values)
}

// At returns the value for the given iteration.
func (e EachArg) At(i int) Arg {
	return e.values[i]
}

// Binding associates an argument name with its declared default.
type Binding struct {
	Name string
	Arg  Arg
}

type bindings []Binding

func (b bindings) with(name string, arg Arg) bindings {
	for i := range b {
		if b[i].Name == name {
			out := append(bindings(nil), b...)
			out[i].Arg = arg
			return out
		}
	}
	return append(append(bindings(nil), b...), Binding{Name: name, Arg: arg})
}

func (b bindings) names() []string {
	ret := make([]string, 0, len(b))
	for _, x := range b {
		ret = append(ret, x.Name)
	}
	return ret
}

// TestOption configures a Test when it is constructed or declared.
type TestOption interface {
	applyTest(*Test)
}

// FixtureOption configures a fixture when it is declared.
type FixtureOption interface {
	applyFixture(*FixtureDef)
}

type testOptionFunc func(*Test)

func (f testOptionFunc) applyTest(t *Test) { f(t) }

type fixtureOptionFunc func(*FixtureDef)

func (f fixtureOptionFunc) applyFixture(d *FixtureDef) { f(d) }

// BindingOption can configure either a test or a fixture.
type BindingOption interface {
	TestOption
	FixtureOption
}

type usingOption Binding

// Using binds a named argument of a test or fixture. The value may be a fixture returned by one of
// the NewFixture functions, a value returned by Each (tests only), or any other value, which is
// passed through as a literal.
//
// Arguments keep the order in which they were bound.
func Using(name string, value interface{}) BindingOption {
	return usingOption{Name: name, Arg: toArg(value)}
}

func (u usingOption) applyTest(t *Test) {
	t.bindings = t.bindings.with(u.Name, u.Arg)
}

func (u usingOption) applyFixture(d *FixtureDef) {
	if u.Arg.argKind() == eachKind {
		panic(fmt.Sprintf("fixture %q: Each can only be used in the arguments of a test, not of a fixture (argument %q)",
			d.name, u.Name))
	}
	d.bindings = d.bindings.with(u.Name, u.Arg)
}

// Skip marks a test so that it is reported as skipped without running.
func Skip(reason ...string) TestOption {
	return WithMarker(SkipMarker(reason...))
}

// Xfail marks a test as expected to fail.
func Xfail(reason ...string) TestOption {
	return WithMarker(XfailMarker(reason...))
}

func WithMarker(m Marker) TestOption {
	return testOptionFunc(func(t *Test) {
		marker := m
		t.Marker = &marker
	})
}

func Described(description string) TestOption {
	return testOptionFunc(func(t *Test) { t.Description = description })
}

// InModule overrides the module that Declare would otherwise infer from the caller's package.
func InModule(name string) TestOption {
	return testOptionFunc(func(t *Test) { t.ModuleName = name })
}

// Scoped sets the scope of a fixture. The default is ScopeTest.
func Scoped(scope Scope) FixtureOption {
	return fixtureOptionFunc(func(d *FixtureDef) { d.scope = scope })
}
