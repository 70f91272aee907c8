package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past kiosk sessions",
	RunE:  historyRun,
}

func historyRun(cmd *cobra.Command, args []string) error {
	records, err := journal.Load()
	if err != nil {
		return fmt.Errorf("loading journal: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No sessions recorded yet.")
		return nil
	}

	for _, line := range journal.FormatForDisplay(records) {
		fmt.Println(line)
	}
	return nil
}
