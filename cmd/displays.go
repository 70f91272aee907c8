package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"marquee/internal/display"
	"marquee/internal/driver"
)

var displaysCmd = &cobra.Command{
	Use:   "displays",
	Short: "List attached displays and the frame the kiosk would cover",
	RunE:  displaysRun,
}

func displaysRun(cmd *cobra.Command, args []string) error {
	lister := &display.ProfilerLister{Runner: driver.ExecRunner{}}
	displays, err := lister.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("enumerating displays: %w", err)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("#", "NAME", "RESOLUTION", "REFRESH", "MAIN", "BUILT-IN")

	for _, d := range displays {
		main, builtin := "", ""
		if d.IsMain {
			main = "yes"
		}
		if d.IsBuiltIn {
			builtin = "yes"
		}
		refresh := ""
		if d.RefreshRate > 0 {
			refresh = fmt.Sprintf("%.0f Hz", d.RefreshRate)
		}
		t.Row(strconv.Itoa(d.Index), d.Name, d.Resolution, refresh, main, builtin)
	}

	fmt.Println(t.Render())

	frame, err := display.Frame(displays, cfg.Display)
	if err != nil {
		return fmt.Errorf("resolving display %q: %w", cfg.Display, err)
	}
	fmt.Printf("Kiosk frame (%s): %dx%d at (%d,%d)\n",
		cfg.Display, frame.Width, frame.Height, frame.X, frame.Y)
	return nil
}
