package lockdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shellFake records every host command and serves programmable `defaults
// read` responses.
type shellFake struct {
	commands []string
	reads    map[string]string // "domain key" -> value
	failAll  bool
}

func (f *shellFake) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	cmd := name + " " + strings.Join(args, " ")
	f.commands = append(f.commands, cmd)
	if f.failAll {
		return nil, errors.New("simulated failure")
	}
	if name == "defaults" && len(args) >= 3 && args[0] == "read" {
		if v, ok := f.reads[args[1]+" "+args[2]]; ok {
			return []byte(v + "\n"), nil
		}
		return nil, fmt.Errorf("no such key")
	}
	return nil, nil
}

func (f *shellFake) has(fragment string) bool {
	for _, c := range f.commands {
		if strings.Contains(c, fragment) {
			return true
		}
	}
	return false
}

func (f *shellFake) hasExact(command string) bool {
	for _, c := range f.commands {
		if c == command {
			return true
		}
	}
	return false
}

type scriptFake struct {
	scripts []string
	err     error
}

func (f *scriptFake) Run(_ context.Context, script string) (string, error) {
	f.scripts = append(f.scripts, script)
	return "", f.err
}

// testSleepBlocker spawns a real, killable placeholder process.
func testSleepBlocker() (*os.Process, error) {
	cmd := exec.Command("sleep", "60")
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	go func() { _ = cmd.Wait() }()
	return cmd.Process, nil
}

func newTestMachine(runner *shellFake, scripter *scriptFake) *Machine {
	m := New(runner, scripter)
	m.startSleepBlocker = testSleepBlocker
	return m
}

func TestApplyTakesSnapshotOnce(t *testing.T) {
	runner := &shellFake{reads: map[string]string{
		"com.apple.dock autohide":       "0",
		"com.apple.dock autohide-delay": "0.5",
	}}
	m := newTestMachine(runner, &scriptFake{})
	ctx := context.Background()

	require.NoError(t, m.Apply(ctx, Flags{HideDock: true}))
	require.NotNil(t, m.snap)
	assert.Equal(t, "false", m.snap.dockAutohide)
	assert.Equal(t, "0.5", m.snap.dockDelay)

	// Shell state has mutated by now; a redundant Apply must not replace
	// the original snapshot with the mutated values.
	runner.reads["com.apple.dock autohide"] = "1"
	runner.reads["com.apple.dock autohide-delay"] = "1000"
	require.NoError(t, m.Apply(ctx, Flags{HideDock: true}))
	assert.Equal(t, "false", m.snap.dockAutohide)
	assert.Equal(t, "0.5", m.snap.dockDelay)
}

func TestRevertRestoresSnapshotExactly(t *testing.T) {
	runner := &shellFake{reads: map[string]string{
		"com.apple.dock autohide":       "0",
		"com.apple.dock autohide-delay": "0.25",
	}}
	m := newTestMachine(runner, &scriptFake{})
	ctx := context.Background()

	require.NoError(t, m.Apply(ctx, Flags{HideDock: true}))
	require.NoError(t, m.Apply(ctx, Flags{HideDock: true})) // redundant
	m.Revert(ctx)

	assert.True(t, runner.has("defaults write com.apple.dock autohide -bool false"),
		"revert should restore the captured autohide value")
	assert.True(t, runner.has("defaults write com.apple.dock autohide-delay -float 0.25"),
		"revert should restore the captured delay value")
	assert.Nil(t, m.snap, "snapshot must be consumed by revert")
	assert.True(t, runner.has("killall Dock"))
}

func TestRevertNeverFails(t *testing.T) {
	runner := &shellFake{failAll: true}
	m := newTestMachine(runner, &scriptFake{err: errors.New("automation down")})

	_ = m.Apply(context.Background(), All())
	// Every sub-step fails; Revert must still run to completion.
	m.Revert(context.Background())
	assert.Nil(t, m.snap)
	assert.Nil(t, m.assertion)
}

func TestApplyAcquiresPowerAssertionOnce(t *testing.T) {
	calls := 0
	m := newTestMachine(&shellFake{}, &scriptFake{})
	m.startSleepBlocker = func() (*os.Process, error) {
		calls++
		return testSleepBlocker()
	}
	ctx := context.Background()

	require.NoError(t, m.Apply(ctx, Flags{PreventSleep: true}))
	require.NoError(t, m.Apply(ctx, Flags{PreventSleep: true}))
	assert.Equal(t, 1, calls, "redundant Apply must not stack assertions")
	require.NotNil(t, m.assertion)

	m.ReleaseAssertion()
	assert.Nil(t, m.assertion)
	m.ReleaseAssertion() // idempotent
}

func TestAssertionFailureDoesNotAbort(t *testing.T) {
	m := newTestMachine(&shellFake{}, &scriptFake{})
	m.startSleepBlocker = func() (*os.Process, error) {
		return nil, errors.New("caffeinate missing")
	}

	// Sleep prevention failing must not block the session.
	assert.NoError(t, m.Apply(context.Background(), Flags{PreventSleep: true}))
	assert.Nil(t, m.assertion)
}

func TestApplySelectsEffects(t *testing.T) {
	runner := &shellFake{}
	scripter := &scriptFake{}
	m := newTestMachine(runner, scripter)

	require.NoError(t, m.Apply(context.Background(), Flags{HideMenuBar: true, HideCursor: true}))

	assert.True(t, runner.has("_HIHideMenuBar -bool true"))
	assert.False(t, runner.has("com.apple.dock autohide"), "dock untouched when HideDock is off")
	assert.Nil(t, m.snap, "no shell snapshot without dock or screensaver mutation")
	require.Len(t, scripter.scripts, 1)
	assert.Contains(t, scripter.scripts[0], "NSCursor's hide")
}

func TestSnapshotKeepsNumericValues(t *testing.T) {
	// A pre-kiosk delay or idle time of 1 is a number, not a boolean;
	// revert must write it back as captured.
	runner := &shellFake{reads: map[string]string{
		"com.apple.dock autohide":        "1",
		"com.apple.dock autohide-delay":  "1",
		"com.apple.screensaver idleTime": "1",
	}}
	m := newTestMachine(runner, &scriptFake{})
	ctx := context.Background()

	require.NoError(t, m.Apply(ctx, Flags{HideDock: true, DisableScreensaver: true}))
	require.NotNil(t, m.snap)
	assert.Equal(t, "true", m.snap.dockAutohide)
	assert.Equal(t, "1", m.snap.dockDelay)
	assert.Equal(t, "1", m.snap.saverIdle)

	m.Revert(ctx)
	assert.True(t, runner.hasExact("defaults write com.apple.dock autohide -bool true"))
	assert.True(t, runner.hasExact("defaults write com.apple.dock autohide-delay -float 1"),
		"delay must be restored as the captured number")
	assert.True(t, runner.hasExact("defaults write com.apple.screensaver idleTime -int 1"),
		"idle time must be restored as the captured number")
	assert.False(t, runner.has("-float true"), "no boolean may leak into a numeric write")
}

func TestRevertWithoutSnapshotDeletesOverrides(t *testing.T) {
	// Orphan cleanup: a fresh process reverting after a crash has no
	// snapshot, so the dead session's overrides are deleted, not restored.
	runner := &shellFake{}
	m := newTestMachine(runner, &scriptFake{})

	m.Revert(context.Background())

	assert.True(t, runner.has("defaults delete com.apple.dock autohide"))
	assert.True(t, runner.has("defaults delete com.apple.dock autohide-delay"))
	assert.True(t, runner.has("defaults delete com.apple.screensaver idleTime"))
	assert.False(t, runner.has("defaults write com.apple.dock"),
		"nothing to restore without a snapshot")
	assert.True(t, runner.has("killall Dock"))
}
