// Package reporter formats scenario results.
package reporter

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/remctl-protocol/remctl-go/internal/testharness/runner"
)

// Reporter writes scenario results.
type Reporter interface {
	// ReportSuite reports a whole run.
	ReportSuite(result *runner.SuiteResult)

	// ReportScenario reports one scenario.
	ReportScenario(result *runner.ScenarioResult)
}

// TextReporter writes human-readable reports.
type TextReporter struct {
	writer  io.Writer
	verbose bool
}

// NewTextReporter creates a text reporter. Verbose output includes the
// description and observed outcome of every scenario.
func NewTextReporter(w io.Writer, verbose bool) *TextReporter {
	return &TextReporter{writer: w, verbose: verbose}
}

// ReportSuite reports a run in text format.
func (r *TextReporter) ReportSuite(result *runner.SuiteResult) {
	fmt.Fprintf(r.writer, "\n=== Suite: %s ===\n", result.SuiteName)
	fmt.Fprintf(r.writer, "Duration: %s\n\n", result.Duration.Round(time.Millisecond))

	for _, sr := range result.Results {
		r.ReportScenario(sr)
	}

	fmt.Fprintf(r.writer, "\n--- Summary ---\n")
	fmt.Fprintf(r.writer, "Total:   %d\n", len(result.Results))
	fmt.Fprintf(r.writer, "Passed:  %d\n", result.PassCount)
	fmt.Fprintf(r.writer, "Failed:  %d\n", result.FailCount)
	if total := len(result.Results); total > 0 {
		fmt.Fprintf(r.writer, "Pass Rate: %.1f%%\n", passRate(result))
	}
	r.reportSlowest(result)
}

// slowestCount is how many scenarios the summary lists by duration.
const slowestCount = 10

func (r *TextReporter) reportSlowest(result *runner.SuiteResult) {
	if len(result.Results) < 3 {
		return
	}
	sorted := slices.Clone(result.Results)
	slices.SortStableFunc(sorted, func(a, b *runner.ScenarioResult) int {
		return cmp.Compare(b.Duration, a.Duration)
	})
	if len(sorted) > slowestCount {
		sorted = sorted[:slowestCount]
	}

	fmt.Fprintf(r.writer, "\n--- Slowest Scenarios ---\n")
	for _, sr := range sorted {
		fmt.Fprintf(r.writer, "  %-14s %s\n", sr.Scenario.ID, sr.Duration.Round(time.Millisecond))
	}
}

// ReportScenario reports one scenario in text format.
func (r *TextReporter) ReportScenario(result *runner.ScenarioResult) {
	sc := result.Scenario
	fmt.Fprintf(r.writer, "[%s] %s - %s (%s)\n",
		strings.ToUpper(status(result)), sc.ID, sc.Name, result.Duration.Round(time.Millisecond))

	if !result.Passed && result.Error != nil {
		fmt.Fprintf(r.writer, "       Error: %v\n", result.Error)
	}
	if r.verbose {
		if sc.Description != "" {
			fmt.Fprintf(r.writer, "       %s\n", strings.TrimSpace(sc.Description))
		}
		if result.Observed != "" {
			fmt.Fprintf(r.writer, "       Observed: %s\n", result.Observed)
		}
	}
}

// JSONReporter writes JSON reports.
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a JSON reporter.
func NewJSONReporter(w io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{writer: w, pretty: pretty}
}

// JSONSuiteResult is the JSON form of a run.
type JSONSuiteResult struct {
	SuiteName string               `json:"suite_name"`
	Duration  string               `json:"duration"`
	Total     int                  `json:"total"`
	Passed    int                  `json:"passed"`
	Failed    int                  `json:"failed"`
	PassRate  float64              `json:"pass_rate"`
	Scenarios []JSONScenarioResult `json:"scenarios"`
}

// JSONScenarioResult is the JSON form of one scenario.
type JSONScenarioResult struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Duration string   `json:"duration"`
	Observed string   `json:"observed,omitempty"`
	Error    string   `json:"error,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// ReportSuite reports a run in JSON format.
func (r *JSONReporter) ReportSuite(result *runner.SuiteResult) {
	jr := JSONSuiteResult{
		SuiteName: result.SuiteName,
		Duration:  result.Duration.Round(time.Millisecond).String(),
		Total:     len(result.Results),
		Passed:    result.PassCount,
		Failed:    result.FailCount,
		PassRate:  passRate(result),
		Scenarios: make([]JSONScenarioResult, 0, len(result.Results)),
	}
	for _, sr := range result.Results {
		jr.Scenarios = append(jr.Scenarios, toJSON(sr))
	}
	r.writeJSON(jr)
}

// ReportScenario reports one scenario in JSON format.
func (r *JSONReporter) ReportScenario(result *runner.ScenarioResult) {
	r.writeJSON(toJSON(result))
}

func toJSON(result *runner.ScenarioResult) JSONScenarioResult {
	jr := JSONScenarioResult{
		ID:       result.Scenario.ID,
		Name:     result.Scenario.Name,
		Status:   status(result),
		Duration: result.Duration.Round(time.Millisecond).String(),
		Observed: result.Observed,
		Tags:     result.Scenario.Tags,
	}
	if result.Error != nil {
		jr.Error = result.Error.Error()
	}
	return jr
}

func (r *JSONReporter) writeJSON(v any) {
	var data []byte
	var err error
	if r.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		fmt.Fprintf(r.writer, `{"error": "failed to marshal: %s"}`+"\n", err)
		return
	}
	fmt.Fprintln(r.writer, string(data))
}

// JUnitReporter writes JUnit XML for CI.
type JUnitReporter struct {
	writer io.Writer
}

// NewJUnitReporter creates a JUnit reporter.
func NewJUnitReporter(w io.Writer) *JUnitReporter {
	return &JUnitReporter{writer: w}
}

// ReportSuite reports a run as one testsuite element.
func (r *JUnitReporter) ReportSuite(result *runner.SuiteResult) {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<testsuite name="%s" tests="%d" failures="%d" time="%.3f">`+"\n",
		escapeXML(result.SuiteName), len(result.Results), result.FailCount, result.Duration.Seconds())

	for _, sr := range result.Results {
		fmt.Fprintf(&b, `  <testcase name="%s" classname="%s" time="%.3f">`+"\n",
			escapeXML(sr.Scenario.Name), escapeXML(sr.Scenario.ID), sr.Duration.Seconds())
		if !sr.Passed && sr.Error != nil {
			fmt.Fprintf(&b, `    <failure message="%s">`+"\n", escapeXML(sr.Error.Error()))
			fmt.Fprintf(&b, "      <![CDATA[%s]]>\n", strings.ReplaceAll(sr.Observed, "]]>", "]]]]><![CDATA[>"))
			b.WriteString("    </failure>\n")
		}
		b.WriteString("  </testcase>\n")
	}
	b.WriteString("</testsuite>\n")

	fmt.Fprint(r.writer, b.String())
}

// ReportScenario wraps one scenario in a single-case suite.
func (r *JUnitReporter) ReportScenario(result *runner.ScenarioResult) {
	suite := &runner.SuiteResult{
		SuiteName: result.Scenario.ID,
		Results:   []*runner.ScenarioResult{result},
		Duration:  result.Duration,
	}
	if result.Passed {
		suite.PassCount = 1
	} else {
		suite.FailCount = 1
	}
	r.ReportSuite(suite)
}

func status(result *runner.ScenarioResult) string {
	if result.Passed {
		return "pass"
	}
	return "fail"
}

func passRate(result *runner.SuiteResult) float64 {
	total := result.PassCount + result.FailCount
	if total == 0 {
		return 0
	}
	return float64(result.PassCount) / float64(total) * 100
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
