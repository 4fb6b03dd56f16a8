// Package runner sequences scenario executions against one target program
// and assembles the final report.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pixelprobe/pxp/internal/config"
	"github.com/pixelprobe/pxp/internal/harness"
	"github.com/pixelprobe/pxp/internal/preflight"
	"github.com/pixelprobe/pxp/internal/scenario"
)

// Coordinator drives the scenario set to completion, strictly one session
// at a time. Configuration is explicit; nothing is read from globals.
type Coordinator struct {
	cfg    config.Config
	logger *log.Logger
	out    io.Writer

	sleep func(time.Duration)
	check func(target, image string) error
}

// New builds a coordinator writing its human-facing report to out.
func New(cfg config.Config, logger *log.Logger, out io.Writer) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if out == nil {
		out = os.Stdout
	}
	return &Coordinator{
		cfg:    cfg,
		logger: logger,
		out:    out,
		sleep:  time.Sleep,
		check:  preflight.Check,
	}
}

// Run executes every scenario exactly once, in declared order, and never
// aborts because one of them failed or timed out. Only a preflight failure
// (or an unusable results directory) returns an error, and then zero
// scenarios have run.
func (c *Coordinator) Run(ctx context.Context, scenarios []scenario.Scenario) (Report, error) {
	if err := c.check(c.cfg.Target, c.cfg.Image); err != nil {
		return Report{}, err
	}
	if err := os.MkdirAll(c.cfg.ResultsDir, 0o750); err != nil {
		return Report{}, fmt.Errorf("create results directory %q: %w", c.cfg.ResultsDir, err)
	}

	c.printBanner(scenarios)
	c.logger.With(
		"target", c.cfg.Target,
		"image", c.cfg.Image,
		"scenarios", len(scenarios),
	).Info("run started")

	report := Report{Outcomes: make([]harness.Outcome, 0, len(scenarios))}
	for _, sc := range scenarios {
		report.Artifacts = append(report.Artifacts, sc.Artifact())
	}

	session := harness.NewSession(c.cfg.Target, []string{c.cfg.Image}, c.cfg.SessionTimeout, c.logger)
	for i, sc := range scenarios {
		if i > 0 {
			// Let the target release file handles and flush artifacts before
			// the next session reopens the same image in the same directory.
			c.sleep(c.cfg.Cooldown)
		}

		fmt.Fprintf(c.out, "\n%s\nRUNNING: %s\n%s\n\n", rule, sc.Name, rule)
		outcome := session.Run(ctx, sc)
		c.printOutcome(outcome)
		report.Outcomes = append(report.Outcomes, outcome)
	}

	report.Render(c.out)
	c.logger.With("completed", countState(report, harness.StateCompleted)).Info("run finished")
	return report, nil
}

const rule = "============================================================"

func (c *Coordinator) printBanner(scenarios []scenario.Scenario) {
	fmt.Fprintf(c.out, "%s\n", rule)
	fmt.Fprintf(c.out, "pixelprobe: scripted run of the image processor\n")
	fmt.Fprintf(c.out, "%s\n", rule)
	fmt.Fprintf(c.out, "target:      %s\n", c.cfg.Target)
	fmt.Fprintf(c.out, "input image: %s\n", c.cfg.Image)
	fmt.Fprintf(c.out, "results dir: %s/\n", c.cfg.ResultsDir)
	fmt.Fprintf(c.out, "scenarios:   %d\n", len(scenarios))
}

func (c *Coordinator) printOutcome(outcome harness.Outcome) {
	if outcome.Stdout != "" {
		fmt.Fprint(c.out, outcome.Stdout)
		if outcome.Stdout[len(outcome.Stdout)-1] != '\n' {
			fmt.Fprintln(c.out)
		}
	}
	if outcome.Stderr != "" {
		fmt.Fprintf(c.out, "ERRORS:\n%s\n", outcome.Stderr)
	}

	switch outcome.State {
	case harness.StateCompleted:
		fmt.Fprintf(c.out, "\n✓ %s completed in %s\n", outcome.Scenario, outcome.Elapsed.Round(time.Millisecond))
	case harness.StateTimedOut:
		fmt.Fprintf(c.out, "\n✗ TIMEOUT: %s exceeded %s\n", outcome.Scenario, c.cfg.SessionTimeout)
	default:
		fmt.Fprintf(c.out, "\n✗ FAILED: %s: %v\n", outcome.Scenario, outcome.Err)
	}
}

func countState(report Report, state harness.State) int {
	count := 0
	for _, outcome := range report.Outcomes {
		if outcome.State == state {
			count++
		}
	}
	return count
}
