package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marquee/internal/driver"
	"marquee/internal/loginitem"
)

var autostartCmd = &cobra.Command{
	Use:   "autostart on|off|status",
	Short: "Launch the kiosk automatically at login",
	Args:  cobra.ExactArgs(1),
	RunE:  autostartRun,
}

func autostartRun(cmd *cobra.Command, args []string) error {
	scripter := &driver.OSAScripter{Runner: driver.ExecRunner{}}
	mgr := loginitem.NewManager(scripter)

	switch args[0] {
	case "on":
		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("resolving executable path: %w", err)
		}
		if err := mgr.Register(cmd.Context(), execPath); err != nil {
			return err
		}
		fmt.Println("Autostart enabled.")
	case "off":
		if err := mgr.Unregister(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Autostart disabled.")
	case "status":
		on, err := mgr.Registered(cmd.Context())
		if err != nil {
			return err
		}
		if on {
			fmt.Println("Autostart is enabled.")
		} else {
			fmt.Println("Autostart is disabled.")
		}
	default:
		return fmt.Errorf("expected on, off or status, got %q", args[0])
	}
	return nil
}
