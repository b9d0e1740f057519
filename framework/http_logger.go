package framework

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wardtest/ward/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const defaultReportTimeout = time.Second * 5

// HTTPTestLogger reports every finished test to a result collector by POSTing a JSON
// servicedef.ResultReport to a fixed URL. Delivery problems never affect the run; they are written
// to the debug logger instead.
type HTTPTestLogger struct {
	url    string
	client *http.Client
	logger Logger
}

func NewHTTPTestLogger(url string, logger Logger) *HTTPTestLogger {
	if logger == nil {
		logger = NullLogger()
	}
	return &HTTPTestLogger{
		url:    url,
		client: &http.Client{Timeout: defaultReportTimeout},
		logger: logger,
	}
}

func (h *HTTPTestLogger) TestStarted(TestID)      {}
func (h *HTTPTestLogger) TestError(TestID, error) {}

func (h *HTTPTestLogger) TestFinished(id TestID, result TestResult, debugOutput CapturedOutput) {
	report := servicedef.ResultReport{
		Event:      servicedef.EventTestFinished,
		TestID:     id.String(),
		Path:       id.Path,
		Outcome:    result.Outcome.String(),
		DurationMS: ldvalue.NewOptionalInt(int(result.Duration / time.Millisecond)),
	}
	if result.Reason != "" {
		report.Reason = ldvalue.NewOptionalString(result.Reason)
	}
	for _, err := range result.Errors {
		report.Errors = append(report.Errors, err.Error())
	}
	h.post(report)
}

func (h *HTTPTestLogger) TestSkipped(id TestID, reason string) {
	report := servicedef.ResultReport{
		Event:   servicedef.EventTestFinished,
		TestID:  id.String(),
		Path:    id.Path,
		Outcome: OutcomeSkip.String(),
	}
	if reason != "" {
		report.Reason = ldvalue.NewOptionalString(reason)
	}
	h.post(report)
}

// ReportRun posts a summary of the whole run.
func (h *HTTPTestLogger) ReportRun(results Results) error {
	summary := servicedef.RunSummary{
		Event:    servicedef.EventRunFinished,
		Total:    len(results.Tests),
		Outcomes: make(map[string]int),
		OK:       results.OK(),
	}
	for _, t := range results.Tests {
		summary.Outcomes[t.Outcome.String()]++
	}
	return h.send(summary)
}

func (h *HTTPTestLogger) post(body interface{}) {
	if err := h.send(body); err != nil {
		h.logger.Printf("Could not report result to %s: %s", h.url, err)
	}
}

func (h *HTTPTestLogger) send(body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	h.logger.Printf("Reporting: %s", string(data))
	resp, err := h.client.Post(h.url, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	if resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("result collector returned HTTP status %d", resp.StatusCode)
	}
	return nil
}
