package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"marquee/internal/log"
	"marquee/internal/registry"
)

// defaultSettle is how long a freshly opened application is given to put up
// its window before a follow-up keystroke is sent.
const defaultSettle = 1500 * time.Millisecond

// appLauncher is the slice of Launcher the policy needs; tests substitute a
// fake.
type appLauncher interface {
	Spawn(d registry.Descriptor, args []string) error
	OpenWith(ctx context.Context, d registry.Descriptor, locator string) error
	Stop()
}

// Policy turns a player descriptor plus session parameters into the right
// sequence of spawns and scripts for that player.
type Policy struct {
	launcher appLauncher
	scripter Scripter
	settle   time.Duration
	logger   zerolog.Logger
}

func NewPolicy(launcher *Launcher, scripter Scripter) *Policy {
	return &Policy{
		launcher: launcher,
		scripter: scripter,
		settle:   defaultSettle,
		logger:   log.WithComponent("driver"),
	}
}

// Launch drives the descriptor's strategy. For StrategyArgs and
// StrategyScript a failure aborts the session; the follow-up keystroke of
// StrategyArgsThenScript is best-effort: the document is already showing,
// just not fullscreen.
func (p *Policy) Launch(ctx context.Context, d registry.Descriptor, locator string, loop bool) error {
	switch d.Strategy {
	case registry.StrategyArgs:
		args := append([]string{}, d.Args...)
		if loop {
			args = append(args, d.LoopArgs...)
		}
		args = append(args, locator)
		return p.launcher.Spawn(d, args)

	case registry.StrategyArgsThenScript:
		if err := p.launcher.OpenWith(ctx, d, locator); err != nil {
			return err
		}
		script, ok := followUpScript(d.ID)
		if !ok {
			return nil
		}
		if err := p.wait(ctx); err != nil {
			return nil // session is stopping, skip the keystroke
		}
		if _, err := p.scripter.Run(ctx, script); err != nil {
			p.logger.Warn().Err(err).Str("player", d.ID).Msg("fullscreen keystroke failed, content remains windowed")
		}
		return nil

	case registry.StrategyScript:
		script, ok := openScript(d, locator, loop)
		if !ok {
			return fmt.Errorf("no open script for player %q", d.ID)
		}
		if _, err := p.scripter.Run(ctx, script); err != nil {
			return fmt.Errorf("opening %s: %w", d.Name, err)
		}
		return nil

	default:
		return fmt.Errorf("player %q is not externally launchable", d.ID)
	}
}

// Playing probes whether a script-driven presentation is still running.
func (p *Policy) Playing(ctx context.Context, d registry.Descriptor) (bool, error) {
	script, ok := playingScript(d.ID)
	if !ok {
		return false, fmt.Errorf("player %q has no playing probe", d.ID)
	}
	out, err := p.scripter.Run(ctx, script)
	if err != nil {
		return false, err
	}
	return out == "true", nil
}

// Restart re-issues start-from-first-slide after the supervision loop finds
// playback stopped.
func (p *Policy) Restart(ctx context.Context, d registry.Descriptor) error {
	script, ok := restartScript(d.ID)
	if !ok {
		return fmt.Errorf("player %q has no restart script", d.ID)
	}
	_, err := p.scripter.Run(ctx, script)
	return err
}

// Stop tears down whatever Launch set up: the retained process handle if a
// direct spawn happened, plus a best-effort quit script for applications
// opened through launch services.
func (p *Policy) Stop(ctx context.Context, d registry.Descriptor) {
	p.launcher.Stop()
	if d.Strategy == registry.StrategyArgsThenScript || d.Strategy == registry.StrategyScript {
		if _, err := p.scripter.Run(ctx, quitScript(d.Name)); err != nil {
			p.logger.Debug().Err(err).Str("player", d.ID).Msg("quit script failed, app likely already closed")
		}
	}
}

// wait sleeps for the settle delay, returning early if the context is
// cancelled.
func (p *Policy) wait(ctx context.Context) error {
	select {
	case <-time.After(p.settle):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
