package sampletests

import (
	"strings"

	"github.com/wardtest/ward/ward"

	"github.com/stretchr/testify/assert"
)

var _ = ward.Declare("literal arguments are passed through", func(t *ward.T, args ward.Values) {
	assert.Equal(t, 3, ward.Get[int](args, "a")+ward.Get[int](args, "b"))
}, moduleName("arguments"), ward.Using("a", 1), ward.Using("b", 2))

var _ = ward.Declare("addition", func(t *ward.T, args ward.Values) {
	assert.Equal(t, ward.Get[int](args, "sum"), ward.Get[int](args, "a")+ward.Get[int](args, "b"))
}, moduleName("arguments"),
	ward.Using("a", ward.Each(1, 2, 3)),
	ward.Using("b", ward.Each(1, 0, -3)),
	ward.Using("sum", ward.Each(2, 2, 0)),
)

var _ = ward.Declare("upper-casing", func(t *ward.T, args ward.Values) {
	assert.Equal(t, ward.Get[string](args, "expected"), strings.ToUpper(ward.Get[string](args, "input")))
}, moduleName("arguments"),
	ward.Using("input", ward.Each("ward", "Go", "")),
	ward.Using("expected", ward.Each("WARD", "GO", "")),
)
