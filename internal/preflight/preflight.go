// Package preflight validates the harness's external dependencies before
// any session runs: the target executable and the input image artifact.
package preflight

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
)

// Error names the missing or unusable dependency. It is fatal: the
// coordinator executes zero scenarios when preflight fails.
type Error struct {
	Missing string
	Path    string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("preflight: %s %q: %v", e.Missing, e.Path, e.Err)
	}
	return fmt.Sprintf("preflight: %s %q not found", e.Missing, e.Path)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Check verifies that the target is an invocable executable and that the
// input image exists. Bare target names are resolved on PATH.
func Check(target, image string) error {
	return check(target, image, os.Stat, exec.LookPath)
}

func check(
	target string,
	image string,
	stat func(string) (fs.FileInfo, error),
	lookPath func(string) (string, error),
) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return &Error{Missing: "target executable", Path: target}
	}
	if !strings.ContainsRune(target, os.PathSeparator) {
		if _, err := lookPath(target); err != nil {
			return &Error{Missing: "target executable", Path: target, Err: err}
		}
	} else if err := checkExecutable(target, stat); err != nil {
		return err
	}

	image = strings.TrimSpace(image)
	if image == "" {
		return &Error{Missing: "input image", Path: image}
	}
	if _, err := stat(image); err != nil {
		return &Error{Missing: "input image", Path: image, Err: err}
	}
	return nil
}

func checkExecutable(target string, stat func(string) (fs.FileInfo, error)) error {
	info, err := stat(target)
	if err != nil {
		return &Error{Missing: "target executable", Path: target, Err: err}
	}
	if info.IsDir() {
		return &Error{Missing: "target executable", Path: target, Err: fmt.Errorf("%s is a directory", target)}
	}
	if info.Mode().Perm()&0o111 == 0 {
		return &Error{Missing: "target executable", Path: target, Err: fmt.Errorf("%s is not executable", target)}
	}
	return nil
}
