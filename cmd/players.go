package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"marquee/internal/content"
	"marquee/internal/registry"
)

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List declared players and whether they are installed",
	RunE:  playersRun,
}

func playersRun(cmd *cobra.Command, args []string) error {
	reg := registry.New(registry.SystemLookup{})

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("KIND", "PLAYER", "ID", "DRIVE", "INSTALLED")

	for _, kind := range []content.Kind{content.Video, content.PDF, content.Website, content.Slides} {
		installed := map[string]bool{}
		for _, d := range reg.Installed(cmd.Context(), kind) {
			installed[d.ID] = true
		}
		for _, d := range registry.Declared(kind) {
			mark := "no"
			if installed[d.ID] {
				mark = "yes"
			}
			t.Row(kind.String(), d.Name, d.ID, strategyName(d.Strategy), mark)
		}
	}

	fmt.Println(t.Render())
	return nil
}

func strategyName(s registry.Strategy) string {
	switch s {
	case registry.StrategyNative:
		return "built-in"
	case registry.StrategyArgs:
		return "cli args"
	case registry.StrategyArgsThenScript:
		return "open + keystroke"
	case registry.StrategyScript:
		return "scripted"
	default:
		return "unknown"
	}
}
