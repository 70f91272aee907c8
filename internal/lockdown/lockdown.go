// Package lockdown applies and reverts the desktop-shell restrictions that
// keep a passerby inside the kiosk: hidden dock and menu bar, disabled app
// switching, sleep and screensaver prevention, hidden cursor. The previous
// shell state is snapshotted on first application and restored exactly on
// revert.
package lockdown

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"marquee/internal/driver"
	"marquee/internal/log"
)

// Flags selects which lockdown effects to apply. Each effect is
// individually togglable.
type Flags struct {
	HideDock           bool
	HideMenuBar        bool
	DisableSwitching   bool
	PreventSleep       bool
	HideCursor         bool
	DisableScreensaver bool
}

// All returns the full lockdown used by a standard kiosk session.
func All() Flags {
	return Flags{
		HideDock:           true,
		HideMenuBar:        true,
		DisableSwitching:   true,
		PreventSleep:       true,
		HideCursor:         true,
		DisableScreensaver: true,
	}
}

// snapshot records shell settings as they were before the first mutation.
// It exists exactly while lockdown is active and unreverted.
type snapshot struct {
	dockAutohide string
	dockDelay    string
	saverIdle    string
}

// Machine owns the lockdown snapshot and the power assertion. All access
// goes through its mutex; no other component touches either.
type Machine struct {
	runner   driver.Runner
	scripter driver.Scripter
	logger   zerolog.Logger

	mu        sync.Mutex
	snap      *snapshot
	assertion *os.Process

	// startSleepBlocker is swapped out in tests.
	startSleepBlocker func() (*os.Process, error)
}

func New(runner driver.Runner, scripter driver.Scripter) *Machine {
	return &Machine{
		runner:            runner,
		scripter:          scripter,
		logger:            log.WithComponent("lockdown"),
		startSleepBlocker: startCaffeinate,
	}
}

// startCaffeinate holds a system power assertion for display, idle, system
// and user activity sleep until the process is terminated.
func startCaffeinate() (*os.Process, error) {
	cmd := exec.Command("caffeinate", "-dimsu")
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	go func() { _ = cmd.Wait() }()
	return cmd.Process, nil
}

// Apply enables the selected effects. The dock snapshot is taken only when
// no snapshot is currently held, so a redundant Apply never overwrites the
// saved pre-kiosk state. Individual effect failures are logged and do not
// stop the remaining effects; the first error is returned so the caller can
// report it, but the session may proceed without that effect.
func (m *Machine) Apply(ctx context.Context, f Flags) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	keep := func(err error, effect string) {
		if err == nil {
			return
		}
		m.logger.Warn().Err(err).Str("effect", effect).Msg("lockdown effect failed")
		if firstErr == nil {
			firstErr = err
		}
	}

	if f.HideDock || f.DisableScreensaver {
		if m.snap == nil {
			m.snap = m.takeSnapshot(ctx)
		}
	}

	if f.HideDock {
		keep(m.defaultsWrite(ctx, "com.apple.dock", "autohide", "-bool", "true"), "hide dock")
		keep(m.defaultsWrite(ctx, "com.apple.dock", "autohide-delay", "-float", "1000"), "hide dock")
		keep(m.restartDock(ctx), "restart dock")
	}

	if f.HideMenuBar {
		keep(m.defaultsWrite(ctx, "NSGlobalDomain", "_HIHideMenuBar", "-bool", "true"), "hide menu bar")
	}

	if f.DisableSwitching {
		// Exposé/Mission Control off; the Cmd-Tab switcher itself can only
		// be removed by a managed configuration profile.
		keep(m.defaultsWrite(ctx, "com.apple.dock", "mcx-expose-disabled", "-bool", "true"), "disable switching")
	}

	if f.DisableScreensaver {
		keep(m.defaultsWrite(ctx, "com.apple.screensaver", "idleTime", "-int", "0"), "disable screensaver")
	}

	if f.PreventSleep {
		if m.assertion == nil {
			proc, err := m.startSleepBlocker()
			if err != nil {
				// Playback matters more than sleep prevention: log, continue.
				m.logger.Warn().Err(err).Msg("power assertion unavailable, continuing without sleep prevention")
			} else {
				m.assertion = proc
				m.logger.Info().Int("pid", proc.Pid).Msg("power assertion acquired")
			}
		}
	}

	if f.HideCursor {
		if _, err := m.scripter.Run(ctx, hideCursorScript); err != nil {
			m.logger.Warn().Err(err).Msg("hiding cursor failed")
		}
	}

	m.logger.Info().Msg("lockdown applied")
	return firstErr
}

// Revert restores the shell to unrestricted state. It never fails: every
// sub-step is best-effort and log-only, because leaving the desktop usable
// takes priority over reporting an error. The snapshot is consumed exactly
// once.
func (m *Machine) Revert(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	warn := func(err error, step string) {
		if err != nil {
			m.logger.Warn().Err(err).Str("step", step).Msg("lockdown revert step failed")
		}
	}

	warn(m.defaultsDelete(ctx, "NSGlobalDomain", "_HIHideMenuBar"), "show menu bar")
	warn(m.defaultsDelete(ctx, "com.apple.dock", "mcx-expose-disabled"), "enable switching")

	if _, err := m.scripter.Run(ctx, showCursorScript); err != nil {
		warn(err, "show cursor")
	}

	m.releaseAssertionLocked()

	if m.snap != nil {
		warn(m.defaultsWrite(ctx, "com.apple.dock", "autohide", "-bool", m.snap.dockAutohide), "restore dock autohide")
		warn(m.defaultsWrite(ctx, "com.apple.dock", "autohide-delay", "-float", m.snap.dockDelay), "restore dock delay")
		if m.snap.saverIdle != "" {
			warn(m.defaultsWrite(ctx, "com.apple.screensaver", "idleTime", "-int", m.snap.saverIdle), "restore screensaver")
		}
		m.snap = nil
	} else {
		// No snapshot means this process never captured the pre-kiosk
		// state (orphan cleanup after a crash). The overrides a dead
		// session left behind are deleted outright, returning the keys
		// to their OS defaults.
		warn(m.defaultsDelete(ctx, "com.apple.dock", "autohide"), "reset dock autohide")
		warn(m.defaultsDelete(ctx, "com.apple.dock", "autohide-delay"), "reset dock delay")
		warn(m.defaultsDelete(ctx, "com.apple.screensaver", "idleTime"), "reset screensaver")
	}

	warn(m.restartDock(ctx), "restart dock")
	m.logger.Info().Msg("lockdown reverted")
}

// ReleaseAssertion drops the power assertion without touching anything
// else. Wired to process termination so a crashed session cannot keep the
// display awake forever.
func (m *Machine) ReleaseAssertion() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseAssertionLocked()
}

func (m *Machine) releaseAssertionLocked() {
	if m.assertion == nil {
		return
	}
	if err := m.assertion.Kill(); err != nil {
		m.logger.Warn().Err(err).Msg("releasing power assertion failed")
	}
	m.assertion = nil
}

func (m *Machine) takeSnapshot(ctx context.Context) *snapshot {
	s := &snapshot{
		dockAutohide: m.defaultsRead(ctx, "com.apple.dock", "autohide", "false"),
		dockDelay:    m.defaultsRead(ctx, "com.apple.dock", "autohide-delay", "0"),
		saverIdle:    m.defaultsRead(ctx, "com.apple.screensaver", "idleTime", ""),
	}
	m.logger.Debug().
		Str("autohide", s.dockAutohide).
		Str("delay", s.dockDelay).
		Msg("captured shell snapshot")
	return s
}

func (m *Machine) defaultsRead(ctx context.Context, domain, key, fallback string) string {
	out, err := m.runner.Output(ctx, "defaults", "read", domain, key)
	if err != nil {
		// Key not present: the default applies.
		return fallback
	}
	v := strings.TrimSpace(string(out))
	// `defaults read` prints booleans as 1/0. Only autohide is boolean;
	// a delay or idle time of 1 must stay numeric or the restoring
	// `defaults write -float/-int` would reject it.
	if key == "autohide" {
		switch v {
		case "1":
			v = "true"
		case "0":
			v = "false"
		}
	}
	return v
}

func (m *Machine) defaultsWrite(ctx context.Context, domain, key string, typeFlag, value string) error {
	_, err := m.runner.Output(ctx, "defaults", "write", domain, key, typeFlag, value)
	return err
}

func (m *Machine) defaultsDelete(ctx context.Context, domain, key string) error {
	_, err := m.runner.Output(ctx, "defaults", "delete", domain, key)
	return err
}

func (m *Machine) restartDock(ctx context.Context) error {
	_, err := m.runner.Output(ctx, "killall", "Dock")
	return err
}

// Cursor visibility has no CLI; AppKit is reached through the scripting
// bridge. Effective for the login session's scripting host only.
const (
	hideCursorScript = `use framework "AppKit"
current application's NSCursor's hide()`
	showCursorScript = `use framework "AppKit"
current application's NSCursor's unhide()`
)
