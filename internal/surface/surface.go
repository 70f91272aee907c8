// Package surface is the built-in fullscreen renderer collaborator. The
// orchestrator only starts and stops it; loop, page-advance and reload
// timing are owned here.
package surface

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"marquee/internal/content"
	"marquee/internal/log"
	"marquee/internal/session"
)

// View renders content in-process. The host UI layer registers a tick
// callback that advances a PDF page or reloads a web view; the View decides
// when to fire it.
type View struct {
	logger zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	onTick func()
}

func NewView() *View {
	return &View{logger: log.WithComponent("surface")}
}

// SetTickFunc registers the callback fired on each internal timer tick.
// Must be set before Start.
func (v *View) SetTickFunc(f func()) {
	v.mu.Lock()
	v.onTick = f
	v.mu.Unlock()
}

// Start begins rendering. File content must exist; website refresh and PDF
// slideshow advance run on an internal ticker until Stop.
func (v *View) Start(_ context.Context, cfg session.Config) error {
	if cfg.Kind != content.Website {
		if _, err := os.Stat(cfg.Locator); err != nil {
			return fmt.Errorf("content not readable: %w", err)
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		return fmt.Errorf("surface already started")
	}

	interval := v.tickInterval(cfg)
	v.logger.Info().
		Str("locator", cfg.Locator).
		Str("kind", cfg.Kind.String()).
		Dur("tick", interval).
		Msg("surface started")

	if interval <= 0 {
		// Video loops inside the media layer; nothing to drive.
		v.cancel = func() {}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.done = make(chan struct{})
	go v.run(ctx, interval, v.done)
	return nil
}

func (v *View) tickInterval(cfg session.Config) time.Duration {
	switch cfg.Kind {
	case content.PDF:
		return cfg.SlideInterval
	case content.Website:
		return cfg.RefreshInterval
	default:
		return 0
	}
}

func (v *View) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v.mu.Lock()
			tick := v.onTick
			v.mu.Unlock()
			if tick != nil {
				tick()
			}
		}
	}
}

// Stop halts rendering and the internal timer. Idempotent.
func (v *View) Stop() {
	v.mu.Lock()
	cancel, done := v.cancel, v.done
	v.cancel, v.done = nil, nil
	v.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if done != nil {
		<-done
	}
	v.logger.Info().Msg("surface stopped")
}
