package sampletests

import (
	"github.com/wardtest/ward/ward"

	"github.com/stretchr/testify/assert"
)

var _ = ward.Declare("skipped tests do not run", func(t *ward.T, _ ward.Values) {
	assert.Fail(t, "should not have run")
}, moduleName("markers"), ward.Skip("demonstrates the skip marker"))

var _ = ward.Declare("expected failures are reported as xfail", func(t *ward.T, _ ward.Values) {
	assert.Equal(t, 1, 2)
}, moduleName("markers"), ward.Xfail("demonstrates the xfail marker"))

var _ = ward.Declare("tests can skip themselves", func(t *ward.T, _ ward.Values) {
	t.Skip("nothing to check here")
}, moduleName("markers"))
