// Package postscript runs an external post-processing hook per unit.
package postscript

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Run invokes the script synchronously with the given positional arguments
// and returns its exit code. Stdout and stderr are inherited. A launch
// failure is returned as an error; a non-zero exit is reported through the
// code alone. Either way the caller only logs, it never propagates.
func Run(ctx context.Context, script string, args []string) (int, error) {
	cmd := exec.CommandContext(ctx, script, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("failed to run %s: %w", script, err)
}
