package driver

import (
	"context"
	"fmt"
	"strings"
)

// ScriptError carries the automation error text from a failed script run.
type ScriptError struct {
	Output string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script execution failed: %s", e.Output)
}

// Scripter executes a textual automation script against already-running
// applications. Calls are best-effort: a failure is reported but must never
// corrupt orchestrator or lockdown state. There is no timeout in the
// underlying automation channel; a hung call is a known limitation, callers
// bound it with the context deadline where one matters.
type Scripter interface {
	Run(ctx context.Context, script string) (string, error)
}

// OSAScripter runs AppleScript through the osascript CLI.
type OSAScripter struct {
	Runner Runner
}

func (s *OSAScripter) Run(ctx context.Context, script string) (string, error) {
	out, err := s.Runner.Output(ctx, "osascript", "-e", script)
	text := strings.TrimSpace(string(out))
	if err != nil {
		if text == "" {
			text = err.Error()
		}
		return "", &ScriptError{Output: text}
	}
	return text, nil
}
