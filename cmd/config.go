package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/config"
	"marquee/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or reset the configuration",
	RunE:  configShowRun,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove the user config file, returning all keys to defaults",
	RunE:  configResetRun,
}

func init() {
	configCmd.AddCommand(configResetCmd)
}

func configShowRun(cmd *cobra.Command, args []string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	fmt.Printf("Config file: %s\n\n", path)

	show := func(key, value string) {
		suffix := ""
		if config.Managed(key) {
			suffix = "  (managed)"
		}
		fmt.Printf("%-18s %s%s\n", key, value, suffix)
	}

	show("locator", cfg.Locator)
	show("kind", cfg.Kind)
	show("player", cfg.Player)
	show("loop", fmt.Sprintf("%t", cfg.Loop))
	show("slide_interval", fmt.Sprintf("%d", cfg.SlideInterval))
	show("refresh_interval", fmt.Sprintf("%d", cfg.RefreshInterval))
	show("lockdown", fmt.Sprintf("%t", cfg.Lockdown))
	show("hide_cursor", fmt.Sprintf("%t", cfg.HideCursor))
	show("prevent_sleep", fmt.Sprintf("%t", cfg.PreventSleep))
	show("display", cfg.Display)
	return nil
}

func configResetRun(cmd *cobra.Command, args []string) error {
	ok, err := ui.Confirm("Reset all preferences to defaults?")
	if err != nil || !ok {
		fmt.Println("Aborted.")
		return nil
	}
	if err := config.Reset(); err != nil {
		return err
	}
	fmt.Println("Preferences reset to defaults. Managed overrides still apply.")
	return nil
}
