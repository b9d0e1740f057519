package ward

import "errors"

var errNoYield = errors.New("generator fixture returned without yielding a value")

// generator runs a yield-style fixture routine on its own goroutine. The routine is suspended inside
// yield between setup and teardown.
type generator struct {
	yielded chan interface{}
	resume  chan struct{}
	done    chan error
	started bool
}

func generatorSetup(fn func(args Values, yield func(interface{})) error) setupFunc {
	return func(args Values) (interface{}, func() error, error) {
		g := &generator{
			yielded: make(chan interface{}),
			resume:  make(chan struct{}),
			done:    make(chan error, 1),
		}
		go g.run(fn, args)
		select {
		case v := <-g.yielded:
			return v, g.finish, nil
		case err := <-g.done:
			if err == nil {
				err = errNoYield
			}
			return nil, nil, err
		}
	}
}

func (g *generator) run(fn func(Values, func(interface{})) error, args Values) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
		g.done <- err
	}()
	err = fn(args, g.yield)
}

// yield is only ever called from the routine's own goroutine. Only the first call suspends.
func (g *generator) yield(v interface{}) {
	if g.started {
		return
	}
	g.started = true
	g.yielded <- v
	<-g.resume
}

func (g *generator) finish() error {
	close(g.resume)
	return <-g.done
}
