package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pixelprobe/pxp/internal/config"
	"github.com/pixelprobe/pxp/internal/harness"
	"github.com/pixelprobe/pxp/internal/preflight"
	"github.com/pixelprobe/pxp/internal/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunProducesOneOutcomePerScenarioInOrder(t *testing.T) {
	env := newTestEnv(t, `#!/bin/sh
echo "image loaded: $1"
while IFS= read -r line; do
	echo "menu> $line"
done
`)

	var out bytes.Buffer
	coordinator := New(env.cfg, nil, &out)
	coordinator.sleep = func(time.Duration) {}

	scenarios := []scenario.Scenario{
		{Name: "brightness", Inputs: []string{"9", "4", "4", "50", "3", "out1.png", "11"}},
		{Name: "gaussian", Inputs: []string{"9", "4", "5", "5", "1.5", "3", "out2.png", "11"}},
	}
	report, err := coordinator.Run(context.Background(), scenarios)
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, "brightness", report.Outcomes[0].Scenario)
	assert.Equal(t, "gaussian", report.Outcomes[1].Scenario)
	for _, outcome := range report.Outcomes {
		assert.Equal(t, harness.StateCompleted, outcome.State)
	}
	assert.Equal(t, []string{"out1.png", "out2.png"}, report.Artifacts)

	info, statErr := os.Stat(env.cfg.ResultsDir)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())

	assert.Contains(t, out.String(), "menu> out1.png")
	assert.Contains(t, out.String(), "completed: 2")
}

func TestRunFailsFastWhenTargetMissing(t *testing.T) {
	env := newTestEnv(t, "#!/bin/sh\n")
	env.cfg.Target = filepath.Join(t.TempDir(), "no_such_processor")

	var out bytes.Buffer
	coordinator := New(env.cfg, nil, &out)
	coordinator.sleep = func(time.Duration) {}

	report, err := coordinator.Run(context.Background(), scenario.Catalogue())
	var pfErr *preflight.Error
	require.ErrorAs(t, err, &pfErr)
	assert.Equal(t, "target executable", pfErr.Missing)
	assert.Empty(t, report.Outcomes, "no scenario may run after a preflight failure")
	assert.Empty(t, out.String(), "nothing should be printed before preflight passes")
}

func TestRunContinuesPastTimedOutScenario(t *testing.T) {
	// First scripted line selects the behavior: "hang" never terminates,
	// anything else echoes the remaining script and exits.
	env := newTestEnv(t, `#!/bin/sh
IFS= read -r first
if [ "$first" = "hang" ]; then
	exec sleep 60
fi
echo "mode: $first"
while IFS= read -r line; do
	echo "menu> $line"
done
`)
	env.cfg.SessionTimeout = 200 * time.Millisecond

	var out bytes.Buffer
	coordinator := New(env.cfg, nil, &out)
	coordinator.sleep = func(time.Duration) {}

	report, err := coordinator.Run(context.Background(), []scenario.Scenario{
		{Name: "hangs forever", Inputs: []string{"hang"}},
		{Name: "runs normally", Inputs: []string{"9", "4", "11"}},
	})
	require.NoError(t, err, "per-scenario failures must not propagate")

	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, harness.StateTimedOut, report.Outcomes[0].State)
	assert.Equal(t, harness.StateCompleted, report.Outcomes[1].State)
	assert.Contains(t, out.String(), "✗ TIMEOUT: hangs forever")
	assert.Contains(t, out.String(), "✓ runs normally completed")
}

func TestRunAppliesCooldownBetweenScenarios(t *testing.T) {
	env := newTestEnv(t, `#!/bin/sh
cat >/dev/null
`)
	env.cfg.Cooldown = 5 * time.Second

	var slept []time.Duration
	var out bytes.Buffer
	coordinator := New(env.cfg, nil, &out)
	coordinator.sleep = func(d time.Duration) {
		slept = append(slept, d)
	}

	scenarios := []scenario.Scenario{
		{Name: "first", Inputs: []string{"11"}},
		{Name: "second", Inputs: []string{"11"}},
		{Name: "third", Inputs: []string{"11"}},
	}
	_, err := coordinator.Run(context.Background(), scenarios)
	require.NoError(t, err)

	require.Len(t, slept, 2, "cooldown runs between scenarios, not before the first")
	for _, d := range slept {
		assert.Equal(t, 5*time.Second, d)
	}
}

func TestRunRecordsLaunchFailureAndContinues(t *testing.T) {
	env := newTestEnv(t, "#!/bin/sh\ncat >/dev/null\n")
	// Preflight passes (file exists, executable bit set) but the loader
	// rejects it at exec time: empty interpreter line is fine, so instead
	// point at a script whose shebang interpreter does not exist.
	require.NoError(t, os.WriteFile(env.cfg.Target, []byte("#!/nonexistent/interp\n"), 0o755))

	var out bytes.Buffer
	coordinator := New(env.cfg, nil, &out)
	coordinator.sleep = func(time.Duration) {}

	report, err := coordinator.Run(context.Background(), []scenario.Scenario{
		{Name: "cannot launch", Inputs: []string{"11"}},
	})
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, harness.StateFailed, report.Outcomes[0].State)
	var launchErr *harness.LaunchError
	assert.True(t, errors.As(report.Outcomes[0].Err, &launchErr), "want LaunchError, got %v", report.Outcomes[0].Err)
	assert.Contains(t, out.String(), "✗ FAILED: cannot launch")
}

func TestRunNeverOverlapsSessions(t *testing.T) {
	// The target refuses to start while a previous instance's lock file is
	// still present, so any overlap shows up as exit code 99.
	env := newTestEnv(t, `#!/bin/sh
dir="$(dirname "$0")"
if [ -e "$dir/lock" ]; then
	echo "overlap detected" >&2
	exit 99
fi
touch "$dir/lock"
cat >/dev/null
rm -f "$dir/lock"
`)

	var out bytes.Buffer
	coordinator := New(env.cfg, nil, &out)
	coordinator.sleep = func(time.Duration) {}

	scenarios := []scenario.Scenario{
		{Name: "first", Inputs: []string{"11"}},
		{Name: "second", Inputs: []string{"11"}},
		{Name: "third", Inputs: []string{"11"}},
	}
	report, err := coordinator.Run(context.Background(), scenarios)
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 3)
	for _, outcome := range report.Outcomes {
		assert.Equal(t, harness.StateCompleted, outcome.State)
		assert.Zero(t, outcome.ExitCode, "scenario %q saw an overlapping session", outcome.Scenario)
		assert.Empty(t, outcome.Stderr)
	}
}

type testEnv struct {
	cfg config.Config
}

func newTestEnv(t *testing.T, targetScript string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	target := filepath.Join(dir, "img_processor")
	image := filepath.Join(dir, "img.jpeg")
	require.NoError(t, os.WriteFile(target, []byte(targetScript), 0o755))
	require.NoError(t, os.WriteFile(image, []byte("not really a jpeg"), 0o644))

	return &testEnv{cfg: config.Config{
		Target:         target,
		Image:          image,
		ResultsDir:     filepath.Join(dir, "results"),
		SessionTimeout: 10 * time.Second,
		Cooldown:       time.Millisecond,
	}}
}
