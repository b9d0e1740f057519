package ward

import "fmt"

// ResolveArgs computes the values a test instance is called with. Fixtures are taken from the cache
// when the cached entry is still valid for this test under the fixture's scope, and are otherwise
// resolved, along with their own dependencies, and stored. Each arguments contribute their value for
// the given iteration; literals are passed through.
//
// If a fixture fails, the returned error is a *FixtureError for that fixture and nothing is cached
// for it. Fixtures resolved before the failure stay cached and their teardowns stay pending.
func (t *Test) ResolveArgs(cache *FixtureCache, iteration int) (Values, error) {
	resolved := make(Values, len(t.bindings))
	for _, b := range t.bindings {
		arg := b.Arg
		if each, ok := arg.(EachArg); ok {
			if iteration < 0 || iteration >= each.Len() {
				return nil, fmt.Errorf("test %s: iteration %d is out of range for argument %q with %d values",
					t.QualifiedName(), iteration, b.Name, each.Len())
			}
			arg = each.At(iteration)
		}
		switch a := arg.(type) {
		case *FixtureDef:
			f, err := t.resolveFixture(a, cache)
			if err != nil {
				return nil, err
			}
			resolved[b.Name] = f.ResolvedVal
		case literalArg:
			resolved[b.Name] = a.value
		default:
			resolved[b.Name] = a
		}
	}
	return resolved, nil
}

// resolveFixture returns the fixture's value for this test, resolving dependencies depth-first in
// the order they were bound. Locks are only ever taken from a fixture to one of its dependencies, and
// the dependency graph is acyclic, so concurrent resolutions cannot deadlock.
func (t *Test) resolveFixture(def *FixtureDef, cache *FixtureCache) (*Fixture, error) {
	slot := slotFor(def.key, def.scope, t.ID)
	lock := cache.slotLock(slot)
	lock.Lock()
	defer lock.Unlock()

	if cached, ok := cache.lookupSlot(slot); ok && cached.validFor(t) {
		cache.logger.Printf("Reusing fixture %q (%s scope) for %s", def.name, def.scope, t.Label())
		return cached, nil
	}

	fixture := newFixture(def)
	fixture.LastResolvedTestID = t.ID
	fixture.LastResolvedModuleName = t.ModuleName

	args := make(Values, len(def.bindings))
	for _, b := range def.bindings {
		switch a := b.Arg.(type) {
		case *FixtureDef:
			dep, err := t.resolveFixture(a, cache)
			if err != nil {
				cache.forget(slot, def.key)
				return nil, err
			}
			args[b.Name] = dep.ResolvedVal
		case literalArg:
			args[b.Name] = a.value
		}
	}

	if err := fixture.setUp(args); err != nil {
		cache.forget(slot, def.key)
		return nil, err
	}
	cache.logger.Printf("Resolved fixture %q (%s scope) for %s", def.name, def.scope, t.Label())
	cache.store(slot, fixture)
	return fixture, nil
}
