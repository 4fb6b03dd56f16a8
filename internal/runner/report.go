package runner

import (
	"fmt"
	"io"

	"github.com/pixelprobe/pxp/internal/harness"
)

// Report is the ordered aggregation of one run: exactly one Outcome per
// declared scenario plus the artifact names the scripts asked the target to
// produce.
type Report struct {
	Outcomes  []harness.Outcome
	Artifacts []string
}

// Counts tallies terminal states across the run.
func (r Report) Counts() (completed, timedOut, failed int) {
	for _, outcome := range r.Outcomes {
		switch outcome.State {
		case harness.StateCompleted:
			completed++
		case harness.StateTimedOut:
			timedOut++
		default:
			failed++
		}
	}
	return completed, timedOut, failed
}

// Render writes the human-facing summary: every scenario with its terminal
// state, the state counts, and the expected result artifacts.
func (r Report) Render(w io.Writer) {
	fmt.Fprintf(w, "\n%s\nSUMMARY\n%s\n", rule, rule)
	for _, outcome := range r.Outcomes {
		marker := "✓"
		if outcome.State != harness.StateCompleted {
			marker = "✗"
		}
		fmt.Fprintf(w, "%s %-45s %s\n", marker, outcome.Scenario, outcome.State)
	}

	completed, timedOut, failed := r.Counts()
	fmt.Fprintf(w, "\ncompleted: %d  timed out: %d  failed: %d\n", completed, timedOut, failed)

	named := make([]string, 0, len(r.Artifacts))
	for _, artifact := range r.Artifacts {
		if artifact != "" {
			named = append(named, artifact)
		}
	}
	if len(named) == 0 {
		return
	}
	fmt.Fprintf(w, "\nexpected artifacts:\n")
	for _, artifact := range named {
		fmt.Fprintf(w, "  - %s\n", artifact)
	}
}
