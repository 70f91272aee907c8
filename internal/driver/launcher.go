package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"

	"marquee/internal/log"
	"marquee/internal/registry"
)

// ErrPlayerNotInstalled is returned when a player identifier cannot be
// resolved to an installed application.
var ErrPlayerNotInstalled = errors.New("player not installed")

// Launcher spawns external applications. It retains the handle of the most
// recently spawned process so Stop can terminate it. Applications opened
// through launch services (`open -a`) leave no handle; stopping those is a
// no-op at this layer and falls to the quit script.
type Launcher struct {
	runner Runner
	logger zerolog.Logger

	mu   sync.Mutex
	proc *os.Process

	// spawn is swapped out in tests.
	spawn func(path string, args []string) (*os.Process, error)
}

func NewLauncher(runner Runner) *Launcher {
	return &Launcher{
		runner: runner,
		logger: log.WithComponent("launcher"),
		spawn:  spawnProcess,
	}
}

func spawnProcess(path string, args []string) (*os.Process, error) {
	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	// Reap on exit so a player quit by hand does not linger as a zombie.
	go func() { _ = cmd.Wait() }()
	return cmd.Process, nil
}

// Spawn launches the player binary directly with the given arguments and
// retains the process handle.
func (l *Launcher) Spawn(d registry.Descriptor, args []string) error {
	path, err := resolveBinary(d)
	if err != nil {
		return err
	}

	proc, err := l.spawn(path, args)
	if err != nil {
		return fmt.Errorf("starting %s: %w", d.Name, err)
	}

	l.mu.Lock()
	l.proc = proc
	l.mu.Unlock()

	l.logger.Info().Str("player", d.ID).Int("pid", proc.Pid).Strs("args", args).Msg("spawned external player")
	return nil
}

// OpenWith opens a document with the named application through launch
// services. No process handle is retained.
func (l *Launcher) OpenWith(ctx context.Context, d registry.Descriptor, locator string) error {
	out, err := l.runner.Output(ctx, "open", "-a", d.Name, locator)
	if err != nil {
		return fmt.Errorf("%w: %s (%s)", ErrPlayerNotInstalled, d.Name, string(out))
	}
	l.logger.Info().Str("player", d.ID).Str("locator", locator).Msg("opened document with external player")
	return nil
}

// Stop terminates the retained process handle, if any. Idempotent.
func (l *Launcher) Stop() {
	l.mu.Lock()
	proc := l.proc
	l.proc = nil
	l.mu.Unlock()

	if proc == nil {
		return
	}
	if err := proc.Kill(); err != nil {
		l.logger.Warn().Err(err).Int("pid", proc.Pid).Msg("terminating player failed")
		return
	}
	l.logger.Info().Int("pid", proc.Pid).Msg("terminated external player")
}

func resolveBinary(d registry.Descriptor) (string, error) {
	if d.Bin != "" {
		if path, err := exec.LookPath(d.Bin); err == nil {
			return path, nil
		}
	}
	if path, ok := registry.BundlePath(d.Name); ok {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s", ErrPlayerNotInstalled, d.Name)
}
