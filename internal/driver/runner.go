// Package driver wraps the two ways the kiosk controls third-party
// applications: spawning them with explicit argument slices, and scripting
// them through osascript when they expose no command-line flag for the
// behavior we need (loop forever, fullscreen, kiosk mode).
package driver

import (
	"context"
	"os/exec"
)

// Runner executes a host command and returns its combined output. It is the
// single choke point for host mutation, so every component that shells out
// can be tested against a fake.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner is the production Runner backed by os/exec. Arguments are
// always passed as explicit slices, never through a shell.
type ExecRunner struct{}

func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
