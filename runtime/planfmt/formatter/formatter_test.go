package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opal-lang/ducky/runtime/command"
	"github.com/opal-lang/ducky/runtime/planfmt"
)

func step(line int, verb command.Verb, raw string) planfmt.Step {
	return planfmt.Step{Line: line, Verb: verb.String(), Raw: raw, Target: command.NoLine}
}

func TestFormatStep(t *testing.T) {
	tests := []struct {
		name string
		step planfmt.Step
		want string
	}{
		{"comment", planfmt.Step{Verb: "comment", Text: "hi"}, "hi"},
		{"delay", planfmt.Step{Verb: "delay", Millis: 50}, "wait 50ms"},
		{"default delay", planfmt.Step{Verb: "default-delay", Millis: 100}, "default delay 100ms"},
		{"type", planfmt.Step{Verb: "type", Text: `say "hi"`}, `"say \"hi\""`},
		{"press", planfmt.Step{Verb: "press", Keys: []string{"ctrl", "alt", "delete"}}, "ctrl+alt+delete"},
		{"repeat", planfmt.Step{Verb: "repeat", Count: 3, Target: 4}, "line 5 x3"},
		{"repeat nothing", planfmt.Step{Verb: "repeat", Count: 2, Target: command.NoLine}, "nothing x2"},
		{"unknown verb", planfmt.Step{Verb: "other", Raw: "RAW"}, "RAW"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatStep(&tt.step))
		})
	}
}

func TestFormat(t *testing.T) {
	plan := &planfmt.Plan{
		Source: "payload.txt",
		Steps: []planfmt.Step{
			{Line: 0, Verb: "comment", Text: "hi", Target: command.NoLine},
			{Line: 2, Verb: "press", Keys: []string{"enter"}, Target: command.NoLine},
		},
	}
	var digest planfmt.Digest
	out := Format(plan, digest)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Equal(t, []string{
		"source: payload.txt",
		"digest: " + strings.Repeat("0", 64),
		"   1  comment        hi",
		"   3  press          enter",
	}, lines)
}

func TestDiffIdentical(t *testing.T) {
	plan := &planfmt.Plan{Steps: []planfmt.Step{step(0, command.VerbPressKeys, "ENTER")}}
	result := Diff(plan, plan)
	assert.True(t, result.Empty())
	assert.Equal(t, "No differences found.\n", FormatDiff(result, false))
}

func TestDiff(t *testing.T) {
	a := step(0, command.VerbTypeText, "STRING a")
	a.Text = "a"
	b := step(0, command.VerbTypeText, "STRING b")
	b.Text = "b"
	enter := step(1, command.VerbPressKeys, "ENTER")
	enter.Keys = []string{"enter"}
	tab := step(2, command.VerbPressKeys, "TAB")
	tab.Keys = []string{"tab"}

	old := &planfmt.Plan{Steps: []planfmt.Step{a, enter}}
	changed := &planfmt.Plan{Steps: []planfmt.Step{b, enter, tab}}

	result := Diff(old, changed)
	assert.Equal(t, []StepDiff{{StepNum: 1, Expected: `line 1 type "a"`, Actual: `line 1 type "b"`}}, result.Modified)
	assert.Equal(t, []StepDiff{{StepNum: 3, Actual: "line 3 press tab"}}, result.Added)
	assert.Empty(t, result.Removed)

	reverse := Diff(changed, old)
	assert.Equal(t, []StepDiff{{StepNum: 3, Expected: "line 3 press tab"}}, reverse.Removed)

	plain := FormatDiff(result, false)
	assert.Contains(t, plain, "Modified steps:")
	assert.Contains(t, plain, `- line 1 type "a"`)
	assert.Contains(t, plain, "+ step 3: line 3 press tab")
	assert.NotContains(t, plain, ColorReset)

	colored := FormatDiff(result, true)
	assert.Contains(t, colored, ColorYellow+"Modified steps:"+ColorReset)
	assert.Contains(t, colored, ColorGreen)
}

func TestColorize(t *testing.T) {
	assert.Equal(t, "x", Colorize("x", ColorRed, false))
	assert.Equal(t, ColorRed+"x"+ColorReset, Colorize("x", ColorRed, true))
	assert.Equal(t, "", Colorize("", ColorRed, true))
}
