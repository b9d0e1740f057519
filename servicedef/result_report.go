package servicedef

import "gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

const (
	EventTestFinished = "testFinished"
	EventRunFinished  = "runFinished"
)

// ResultReport is the JSON body posted to a result collector when a test finishes.
type ResultReport struct {
	Event      string                 `json:"event"`
	TestID     string                 `json:"testId"`
	Path       []string               `json:"path"`
	Outcome    string                 `json:"outcome"`
	Reason     ldvalue.OptionalString `json:"reason"`
	Errors     []string               `json:"errors,omitempty"`
	DurationMS ldvalue.OptionalInt    `json:"durationMs,omitempty"`
}

// RunSummary is the JSON body posted to a result collector at the end of a run.
type RunSummary struct {
	Event    string         `json:"event"`
	Total    int            `json:"total"`
	Outcomes map[string]int `json:"outcomes"`
	OK       bool           `json:"ok"`
}
