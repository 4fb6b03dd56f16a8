// Package scenario declares the fixed scripted interactions the harness
// replays against the image-processor menu.
package scenario

import (
	"errors"
	"fmt"
	"strings"
)

// Menu command codes understood by the target program. The harness never
// interprets them; they are documented here so the catalogue reads as the
// menu session it encodes.
const (
	cmdSave          = "3"
	cmdBrightness    = "4"
	cmdGaussian      = "5"
	cmdSobel         = "6"
	cmdRotate        = "7"
	cmdConfigThreads = "9"
	cmdQuit          = "11"
)

// Scenario is one immutable scripted interaction: an ordered list of lines
// delivered verbatim to the target's stdin. Order is load-bearing; the
// target is a stateful menu and each line answers the next prompt.
type Scenario struct {
	Name   string
	Inputs []string
}

// Validate reports whether the scenario is runnable at all. It does not
// judge whether the scripted values mean anything to the target.
func (s Scenario) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("scenario name is required")
	}
	if len(s.Inputs) == 0 {
		return fmt.Errorf("scenario %q has no inputs", s.Name)
	}
	return nil
}

// Stdin returns the exact bytes written to the target: every input line
// followed by one newline, nothing reordered or batched.
func (s Scenario) Stdin() string {
	return strings.Join(s.Inputs, "\n") + "\n"
}

// Artifact returns the output filename the script asks the target to save,
// or "" when the script never issues a save command.
func (s Scenario) Artifact() string {
	for i, input := range s.Inputs {
		if input == cmdSave && i+1 < len(s.Inputs) {
			return s.Inputs[i+1]
		}
	}
	return ""
}

// Catalogue returns the fixed, ordered scenario set. Each script configures
// four worker threads, runs one operation, saves the result under a name
// unique to that scenario, and ends with the target's own quit command so
// the session terminates cooperatively.
func Catalogue() []Scenario {
	return []Scenario{
		{
			Name: "brightness +50 with 4 threads",
			Inputs: []string{
				cmdConfigThreads, "4",
				cmdBrightness, "50",
				cmdSave, "test1_brightness.png",
				cmdQuit,
			},
		},
		{
			Name: "gaussian blur 5x5 sigma 1.5 with 4 threads",
			Inputs: []string{
				cmdConfigThreads, "4",
				cmdGaussian, "5", "1.5",
				cmdSave, "test2_gaussian.png",
				cmdQuit,
			},
		},
		{
			Name: "sobel edge detection with 4 threads",
			Inputs: []string{
				cmdConfigThreads, "4",
				cmdSobel,
				cmdSave, "test3_sobel.png",
				cmdQuit,
			},
		},
		{
			Name: "rotation 90 degrees with 4 threads",
			Inputs: []string{
				cmdConfigThreads, "4",
				cmdRotate, "90",
				cmdSave, "test4_rotation.png",
				cmdQuit,
			},
		},
	}
}
