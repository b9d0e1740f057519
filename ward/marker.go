package ward

import (
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type MarkerKind int

const (
	MarkerSkip MarkerKind = iota
	MarkerXfail
)

func (k MarkerKind) String() string {
	if k == MarkerXfail {
		return "xfail"
	}
	return "skip"
}

// Marker tags a test as skipped or as an expected failure. It is a plain value; it has no effect
// on the test function itself.
type Marker struct {
	Kind   MarkerKind
	Reason ldvalue.OptionalString
}

func newMarker(kind MarkerKind, reason []string) Marker {
	m := Marker{Kind: kind}
	if r := strings.Join(reason, " "); r != "" {
		m.Reason = ldvalue.NewOptionalString(r)
	}
	return m
}

// SkipMarker returns a marker that causes a test to be skipped. The reason is optional.
func SkipMarker(reason ...string) Marker {
	return newMarker(MarkerSkip, reason)
}

// XfailMarker returns a marker for a test that is expected to fail. The reason is optional.
func XfailMarker(reason ...string) Marker {
	return newMarker(MarkerXfail, reason)
}

func (m Marker) String() string {
	if m.Reason.IsDefined() {
		return m.Kind.String() + ": " + m.Reason.StringValue()
	}
	return m.Kind.String()
}
