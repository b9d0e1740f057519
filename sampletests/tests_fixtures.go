package sampletests

import (
	"os"
	"path/filepath"

	"github.com/wardtest/ward/ward"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ = ward.Declare("fixtures can depend on fixtures", func(t *ward.T, args ward.Values) {
	assert.Equal(t, "hello, world!", ward.Get[string](args, "shout"))
}, moduleName("fixtures"), ward.Using("shout", shout))

var _ = ward.Declare("a test-scoped temp dir is empty", func(t *ward.T, args ward.Values) {
	dir := ward.Get[string](args, "dir")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file"), []byte("data"), 0600))
}, moduleName("fixtures"), ward.Using("dir", tempDir))

var _ = ward.Declare("a second test gets a fresh temp dir", func(t *ward.T, args ward.Values) {
	entries, err := os.ReadDir(ward.Get[string](args, "dir"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}, moduleName("fixtures"), ward.Using("dir", tempDir))

var _ = ward.Declare("module fixtures are shared within a module", func(t *ward.T, args ward.Values) {
	t.Debug("module token is %d", ward.Get[int](args, "token"))
	assert.Greater(t, ward.Get[int](args, "token"), 0)
}, moduleName("fixtures"), ward.Using("token", moduleToken))

var _ = ward.Declare("each instance can use a different fixture", func(t *ward.T, args ward.Values) {
	assert.Contains(t, ward.Get[string](args, "text"), "hello")
}, moduleName("fixtures"), ward.Using("text", ward.Each(greeting, shout)))
