package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/driver"
	"marquee/internal/lockdown"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Clean up after a crashed or orphaned session",
	Long: `Stop reverts desktop lockdown left behind by a session that did not
shut down cleanly: it restores the dock and menu bar, re-enables the
screensaver, shows the cursor and releases any leftover sleep blocker.`,
	RunE: stopRun,
}

func stopRun(cmd *cobra.Command, args []string) error {
	runner := driver.ExecRunner{}
	scripter := &driver.OSAScripter{Runner: runner}

	// Revert on a fresh machine has no snapshot to restore from, so it
	// deletes the override keys outright. That is the right call for an
	// orphan: defaults the crashed session wrote are exactly the overrides.
	machine := lockdown.New(runner, scripter)
	machine.Revert(cmd.Context())

	// The crashed session's sleep blocker is a child of a dead process.
	// No blocker running is the common case, so the error is ignored.
	_, _ = runner.Output(cmd.Context(), "killall", "caffeinate")

	fmt.Println("Desktop lockdown reverted.")
	return nil
}
