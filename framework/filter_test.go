package framework

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(path ...string) TestID {
	return TestID{Path: path}
}

func TestRegexFilters(t *testing.T) {
	var filters RegexFilters
	assert.False(t, filters.IsDefined())
	assert.True(t, filters.AsFilter(id("any", "test")))

	require.NoError(t, filters.MustMatch.SetAll([]string{"^parsing/", "comments"}))
	require.NoError(t, filters.MustNotMatch.Set("slow"))
	assert.True(t, filters.IsDefined())

	assert.True(t, filters.AsFilter(id("parsing", "one line")))
	assert.True(t, filters.AsFilter(id("misc", "comments")))
	assert.False(t, filters.AsFilter(id("parsing", "slow one")))
	assert.False(t, filters.AsFilter(id("http", "redirects")))
}

func TestInvalidRegex(t *testing.T) {
	var list RegexList
	assert.Error(t, list.Set("("))
	assert.Error(t, list.SetAll([]string{"ok", "["}))
	assert.Equal(t, `"ok"`, list.String())
}

func TestPrintFilterDescription(t *testing.T) {
	var buf bytes.Buffer
	PrintFilterDescription(&buf, RegexFilters{})
	assert.Empty(t, buf.String())

	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("a"))
	require.NoError(t, filters.MustMatch.Set("b"))
	require.NoError(t, filters.MustNotMatch.Set("c"))
	PrintFilterDescription(&buf, filters)
	assert.Contains(t, buf.String(), `skip any not matching "a" or "b"`)
	assert.Contains(t, buf.String(), `skip any matching "c"`)
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	PrintResults(&buf, Results{})
	assert.Equal(t, "No tests were run\n", buf.String())

	failed := TestResult{TestID: id("m", "b"), Outcome: OutcomeFail}
	buf.Reset()
	PrintResults(&buf, Results{
		Tests:    []TestResult{{TestID: id("m", "a"), Outcome: OutcomePass}, failed, {Outcome: OutcomeXfail}},
		Failures: []TestResult{failed},
	})
	assert.Equal(t, "3 tests: 1 pass, 1 fail, 1 xfail\nFailed tests:\n  m/b (FAIL)\n", buf.String())
}
