// Package session coordinates a kiosk presentation: it decides between the
// built-in renderer and an external player, applies lockdown around the
// content's lifetime, supervises slide decks, and tears everything down
// symmetrically on stop. At most one session is active at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"marquee/internal/content"
	"marquee/internal/lockdown"
	"marquee/internal/log"
	"marquee/internal/registry"
)

// State is the orchestrator's lifecycle position.
type State int

const (
	Idle State = iota
	Starting
	ActiveNative
	ActiveExternal
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case ActiveNative:
		return "active-native"
	case ActiveExternal:
		return "active-external"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

var (
	// ErrSessionActive rejects a second start while a session is running.
	ErrSessionActive = errors.New("a kiosk session is already active")
	// ErrInvalidConfiguration rejects a start before any OS state is touched.
	ErrInvalidConfiguration = errors.New("invalid session configuration")
)

// Config is the resolved, immutable configuration of one session.
type Config struct {
	Locator         string
	Kind            content.Kind
	Player          registry.Descriptor
	Loop            bool
	SlideInterval   time.Duration // built-in slideshow advance
	RefreshInterval time.Duration // built-in website reload, 0 = never
	Lockdown        bool
	LockdownFlags   lockdown.Flags
}

// Driver launches and controls external players. Implemented by
// driver.Policy; faked in tests.
type Driver interface {
	Launch(ctx context.Context, d registry.Descriptor, locator string, loop bool) error
	Playing(ctx context.Context, d registry.Descriptor) (bool, error)
	Restart(ctx context.Context, d registry.Descriptor) error
	Stop(ctx context.Context, d registry.Descriptor)
}

// Locker applies and reverts desktop lockdown. Implemented by
// lockdown.Machine.
type Locker interface {
	Apply(ctx context.Context, f lockdown.Flags) error
	Revert(ctx context.Context)
}

// Surface is the built-in fullscreen renderer. It owns its internal
// loop/refresh timers; the orchestrator only starts and stops it.
type Surface interface {
	Start(ctx context.Context, cfg Config) error
	Stop()
}

// superviseInterval is how often a slide deck is probed for stopped
// playback.
const superviseInterval = 2 * time.Second

// stopTimeout bounds the best-effort teardown calls.
const stopTimeout = 5 * time.Second

// Orchestrator is the session state machine. One mutex guards all state;
// the externally-spawned process handle lives in the driver, the lockdown
// snapshot in the locker, each owned by exactly one component.
type Orchestrator struct {
	driver  Driver
	locker  Locker
	surface Surface
	logger  zerolog.Logger

	pollInterval time.Duration

	mu       sync.Mutex
	state    State
	cfg      Config
	locked   bool
	cancelFn context.CancelFunc
	done     chan struct{}
}

func New(driver Driver, locker Locker, surface Surface) *Orchestrator {
	return &Orchestrator{
		driver:       driver,
		locker:       locker,
		surface:      surface,
		logger:       log.WithComponent("session"),
		pollInterval: superviseInterval,
		state:        Idle,
	}
}

// State reports the current lifecycle position.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func validate(cfg Config) error {
	if err := content.ValidateLocator(cfg.Locator); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if cfg.Player.ID == "" {
		return fmt.Errorf("%w: no player resolved", ErrInvalidConfiguration)
	}
	if !cfg.Player.BuiltIn {
		if _, ok := registry.Find(cfg.Kind, cfg.Player.ID); !ok {
			return fmt.Errorf("%w: player %q cannot present %s content",
				ErrInvalidConfiguration, cfg.Player.ID, cfg.Kind)
		}
	}
	return nil
}

// Start validates the configuration, applies lockdown, then launches the
// content. Validation happens before any OS state is touched; a launch
// failure after lockdown triggers an immediate revert so the shell is never
// left locked with nothing running.
func (o *Orchestrator) Start(ctx context.Context, cfg Config) error {
	if err := validate(cfg); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != Idle {
		return ErrSessionActive
	}
	o.state = Starting
	o.cfg = cfg

	o.logger.Info().
		Str("locator", cfg.Locator).
		Str("kind", cfg.Kind.String()).
		Str("player", cfg.Player.ID).
		Msg("starting kiosk session")

	if cfg.Lockdown {
		if err := o.locker.Apply(ctx, cfg.LockdownFlags); err != nil {
			// Report, don't abort: a missing effect is better than no kiosk.
			o.logger.Warn().Err(err).Msg("lockdown applied partially")
		}
		o.locked = true
	}

	if cfg.Player.BuiltIn {
		if err := o.surface.Start(ctx, cfg); err != nil {
			o.abortLocked(ctx)
			return fmt.Errorf("starting built-in renderer: %w", err)
		}
		o.state = ActiveNative
		return nil
	}

	if err := o.driver.Launch(ctx, cfg.Player, cfg.Locator, cfg.Loop); err != nil {
		o.abortLocked(ctx)
		return fmt.Errorf("launching %s: %w", cfg.Player.Name, err)
	}

	if cfg.Kind == content.Slides && cfg.Loop {
		superviseCtx, cancel := context.WithCancel(context.Background())
		o.cancelFn = cancel
		o.done = make(chan struct{})
		go o.supervise(superviseCtx, cfg.Player, o.done)
	}

	o.state = ActiveExternal
	return nil
}

// abortLocked unwinds a failed start. Callers hold o.mu.
func (o *Orchestrator) abortLocked(ctx context.Context) {
	if o.locked {
		o.locker.Revert(ctx)
		o.locked = false
	}
	o.state = Idle
}

// Stop tears the session down in fixed order: supervision loop, spawned
// process, best-effort stop script, lockdown revert. The revert runs
// unconditionally on every path that leaves an active state, even when
// earlier steps report errors. Stopping an idle orchestrator is a no-op.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != ActiveNative && o.state != ActiveExternal {
		return
	}
	wasNative := o.state == ActiveNative
	o.state = Stopping

	if o.cancelFn != nil {
		o.cancelFn()
		<-o.done // bounded by one poll interval
		o.cancelFn = nil
		o.done = nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if wasNative {
		o.surface.Stop()
	} else {
		o.driver.Stop(ctx, o.cfg.Player)
	}

	if o.locked {
		o.locker.Revert(ctx)
		o.locked = false
	}

	o.state = Idle
	o.logger.Info().Msg("kiosk session stopped")
}
