package sampletests

import (
	"net/http"
	"time"

	"github.com/wardtest/ward/ward"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const awaitRequestTimeout = time.Second * 5

func awaitRequest(t *ward.T, server *StatusServer, path string) {
	assert.Eventually(t, func() bool { return server.Received(path) }, awaitRequestTimeout,
		time.Millisecond*10, "expected the server to receive a request for %s", path)
}

var _ = ward.Declare("global server answers with 204", func(t *ward.T, args ward.Values) {
	server := ward.Get[*StatusServer](args, "server")
	resp, err := http.Get(server.URL + "/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	awaitRequest(t, server, "/status")
}, moduleName("http"), ward.Using("server", statusServer))

var _ = ward.Declare("client follows redirect to the global server", func(t *ward.T, args ward.Values) {
	server := ward.Get[*StatusServer](args, "server")
	resp, err := http.Get(ward.Get[string](args, "redirect"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "/redirected", resp.Request.URL.Path)
	awaitRequest(t, server, "/redirected")
}, moduleName("http"), ward.Using("server", statusServer), ward.Using("redirect", redirectServer))

var _ = ward.Declare("module fixtures are resolved again in another module", func(t *ward.T, args ward.Values) {
	t.Debug("module token is %d", ward.Get[int](args, "token"))
	assert.Greater(t, ward.Get[int](args, "token"), 0)
}, moduleName("http"), ward.Using("token", moduleToken))
