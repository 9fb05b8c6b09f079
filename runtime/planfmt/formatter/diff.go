package formatter

import (
	"fmt"
	"strings"

	"github.com/opal-lang/ducky/runtime/planfmt"
)

// DiffResult holds the differences between two plans, compared step by step
// in order.
type DiffResult struct {
	Added    []StepDiff
	Removed  []StepDiff
	Modified []StepDiff
}

// StepDiff is one differing step.
type StepDiff struct {
	StepNum  int    // 1-based position in the plan
	Expected string // empty for added steps
	Actual   string // empty for removed steps
}

// Empty reports whether the plans were equivalent.
func (d *DiffResult) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}

// Diff compares two plans.
func Diff(expected, actual *planfmt.Plan) *DiffResult {
	result := &DiffResult{}

	n := max(len(expected.Steps), len(actual.Steps))
	for i := 0; i < n; i++ {
		stepNum := i + 1

		if i >= len(actual.Steps) {
			result.Removed = append(result.Removed, StepDiff{
				StepNum:  stepNum,
				Expected: describe(&expected.Steps[i]),
			})
			continue
		}
		if i >= len(expected.Steps) {
			result.Added = append(result.Added, StepDiff{
				StepNum: stepNum,
				Actual:  describe(&actual.Steps[i]),
			})
			continue
		}

		exp := describe(&expected.Steps[i])
		act := describe(&actual.Steps[i])
		if exp != act {
			result.Modified = append(result.Modified, StepDiff{
				StepNum:  stepNum,
				Expected: exp,
				Actual:   act,
			})
		}
	}

	return result
}

// describe includes the line number, so moving a statement counts as a
// change.
func describe(st *planfmt.Step) string {
	return fmt.Sprintf("line %d %s %s", st.Line+1, st.Verb, FormatStep(st))
}

// FormatDiff renders a diff, colored when useColor is set.
func FormatDiff(result *DiffResult, useColor bool) string {
	var b strings.Builder

	if len(result.Modified) > 0 {
		fmt.Fprintln(&b, Colorize("Modified steps:", ColorYellow, useColor))
		for _, d := range result.Modified {
			fmt.Fprintf(&b, "  step %d:\n", d.StepNum)
			fmt.Fprintf(&b, "    %s\n", Colorize("- "+d.Expected, ColorRed, useColor))
			fmt.Fprintf(&b, "    %s\n", Colorize("+ "+d.Actual, ColorGreen, useColor))
		}
		fmt.Fprintln(&b)
	}

	if len(result.Added) > 0 {
		fmt.Fprintln(&b, Colorize("Added steps:", ColorGreen, useColor))
		for _, d := range result.Added {
			fmt.Fprintf(&b, "  %s\n", Colorize(fmt.Sprintf("+ step %d: %s", d.StepNum, d.Actual), ColorGreen, useColor))
		}
		fmt.Fprintln(&b)
	}

	if len(result.Removed) > 0 {
		fmt.Fprintln(&b, Colorize("Removed steps:", ColorRed, useColor))
		for _, d := range result.Removed {
			fmt.Fprintf(&b, "  %s\n", Colorize(fmt.Sprintf("- step %d: %s", d.StepNum, d.Expected), ColorRed, useColor))
		}
		fmt.Fprintln(&b)
	}

	if result.Empty() {
		fmt.Fprintln(&b, "No differences found.")
	}

	return b.String()
}
