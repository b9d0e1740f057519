package sampletests

import (
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"

	"github.com/wardtest/ward/ward"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
)

const module = "sampletests"

func moduleName(name string) ward.TestOption {
	return ward.InModule(module + "/" + name)
}

// StatusServer is an HTTP server that answers every request with 204 and records the paths it was
// asked for.
type StatusServer struct {
	URL   string
	paths []string
	lock  sync.Mutex
}

func (s *StatusServer) record(requests <-chan httphelpers.HTTPRequestInfo, done <-chan struct{}) {
	for {
		select {
		case req := <-requests:
			s.lock.Lock()
			s.paths = append(s.paths, req.Request.URL.Path)
			s.lock.Unlock()
		case <-done:
			return
		}
	}
}

// Received reports whether a request for the path has been seen.
func (s *StatusServer) Received(path string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, p := range s.paths {
		if p == path {
			return true
		}
	}
	return false
}

var statusServer = ward.NewGeneratorFixture("status server", func(_ ward.Values, yield func(interface{})) error {
	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(http.StatusNoContent))
	done := make(chan struct{})
	defer close(done)
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		s := &StatusServer{URL: server.URL}
		go s.record(requests, done)
		yield(s)
	})
	return nil
}, ward.Scoped(ward.ScopeGlobal))

// redirectServer answers every request with a redirect to the status server.
var redirectServer = ward.NewGeneratorFixture("redirect server", func(args ward.Values, yield func(interface{})) error {
	target := ward.Get[*StatusServer](args, "target")
	headers := make(http.Header)
	headers.Set("Location", target.URL+"/redirected")
	httphelpers.WithServer(httphelpers.HandlerWithResponse(http.StatusTemporaryRedirect, headers, nil),
		func(server *httptest.Server) {
			yield(server.URL)
		})
	return nil
}, ward.Using("target", statusServer), ward.Scoped(ward.ScopeModule))

var tempDir = ward.NewTeardownFixture("temp dir", func(ward.Values) (interface{}, func() error, error) {
	dir, err := os.MkdirTemp("", "ward-sample-")
	if err != nil {
		return nil, nil, err
	}
	return dir, func() error { return os.RemoveAll(dir) }, nil
})

var moduleResolutions int32

// moduleToken is resolved once per module; its value counts how many modules have resolved it so far.
var moduleToken = ward.NewFixture("module token", func(ward.Values) (interface{}, error) {
	return int(atomic.AddInt32(&moduleResolutions, 1)), nil
}, ward.Scoped(ward.ScopeModule))

var greeting = ward.NewFixture("greeting", func(args ward.Values) (interface{}, error) {
	return ward.Get[string](args, "salutation") + ", " + ward.Get[string](args, "name"), nil
}, ward.Using("salutation", "hello"), ward.Using("name", "world"))

var shout = ward.NewFixture("shout", func(args ward.Values) (interface{}, error) {
	return ward.Get[string](args, "greeting") + "!", nil
}, ward.Using("greeting", greeting))
