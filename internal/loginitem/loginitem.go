// Package loginitem registers the kiosk for launch at login. Independent
// of the lockdown core.
package loginitem

import (
	"context"
	"fmt"
	"strings"

	"marquee/internal/driver"
)

const itemName = "marquee"

// Manager registers, unregisters and queries the login item through the
// System Events scripting interface.
type Manager struct {
	scripter driver.Scripter
}

func NewManager(scripter driver.Scripter) *Manager {
	return &Manager{scripter: scripter}
}

// Register adds a login item pointing at the given executable.
func (m *Manager) Register(ctx context.Context, execPath string) error {
	script := fmt.Sprintf(
		`tell application "System Events" to make login item at end with properties {name:"%s", path:"%s", hidden:false}`,
		itemName, execPath)
	if _, err := m.scripter.Run(ctx, script); err != nil {
		return fmt.Errorf("registering login item: %w", err)
	}
	return nil
}

// Unregister removes the login item. Removing an absent item is not an
// error.
func (m *Manager) Unregister(ctx context.Context) error {
	script := fmt.Sprintf(`tell application "System Events" to delete login item "%s"`, itemName)
	if _, err := m.scripter.Run(ctx, script); err != nil {
		if strings.Contains(err.Error(), "get login item") {
			return nil
		}
		return fmt.Errorf("unregistering login item: %w", err)
	}
	return nil
}

// Registered reports whether the login item exists.
func (m *Manager) Registered(ctx context.Context) (bool, error) {
	script := `tell application "System Events" to get the name of every login item`
	out, err := m.scripter.Run(ctx, script)
	if err != nil {
		return false, fmt.Errorf("querying login items: %w", err)
	}
	for _, name := range strings.Split(out, ",") {
		if strings.TrimSpace(name) == itemName {
			return true, nil
		}
	}
	return false, nil
}
