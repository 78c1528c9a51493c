package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		switch event.Type {
		case EventRequest:
			fmt.Fprintf(&buf, "  [%d] %s %s\n", event.Seq, event.Method, event.URL)
		case EventChange:
			fmt.Fprintf(&buf, "  [%d] %s <- %s\n", event.Seq, event.Container, event.Msg)
		}
	}

	return buf.String()
}

// assertRequestCount checks how many requests were made, optionally only
// those to assertion.URL.
func assertRequestCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type == EventRequest && (assertion.URL == "" || event.URL == assertion.URL) {
			count++
		}
	}
	if count == assertion.Count {
		return nil
	}

	target := "requests"
	if assertion.URL != "" {
		target = "requests to " + assertion.URL
	}
	return &AssertionError{
		Type:     AssertRequestCount,
		Expected: fmt.Sprintf("%d %s", assertion.Count, target),
		Actual:   fmt.Sprintf("%d %s", count, target),
		Trace:    trace,
	}
}

// assertGroupStates checks the states of a model's groups, in order.
func assertGroupStates(result *Result, assertion Assertion) error {
	groups := result.State.Catalogs
	if assertion.Model == ModelStreams {
		groups = result.State.Streams
	}

	actual := make([]string, len(groups))
	for i, g := range groups {
		actual[i] = g.State
	}
	if slices.Equal(actual, assertion.States) {
		return nil
	}

	return &AssertionError{
		Type:     AssertGroupStates,
		Expected: fmt.Sprintf("%s groups %v", assertion.Model, assertion.States),
		Actual:   fmt.Sprintf("%s groups %v", assertion.Model, actual),
		Trace:    result.Trace,
	}
}

// assertInstalledAddons checks the installed addon ids, in order.
func assertInstalledAddons(result *Result, assertion Assertion) error {
	if slices.Equal(result.State.Addons, assertion.Addons) {
		return nil
	}
	return &AssertionError{
		Type:     AssertInstalledAddons,
		Expected: fmt.Sprintf("addons %v", assertion.Addons),
		Actual:   fmt.Sprintf("addons %v", result.State.Addons),
		Trace:    result.Trace,
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertRequestCount:
			err = assertRequestCount(result.Trace, assertion)
		case AssertGroupStates:
			err = assertGroupStates(result, assertion)
		case AssertInstalledAddons:
			err = assertInstalledAddons(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
