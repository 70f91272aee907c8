package session

import (
	"context"
	"time"

	"marquee/internal/registry"
)

// supervise restarts a slide deck whenever playback has stopped. Slide
// players have no native loop mechanism, so the deck is polled and
// restarted from the first slide on each detected stop. The loop is
// cooperatively cancelled: cancellation is observed within one poll
// interval, and checked again immediately before the restart call so a
// racing stop request never interleaves with a restart.
func (o *Orchestrator) supervise(ctx context.Context, d registry.Descriptor, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		playing, err := o.driver.Playing(ctx, d)
		if err != nil {
			o.logger.Warn().Err(err).Msg("slideshow probe failed")
			continue
		}
		if playing {
			continue
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		o.logger.Info().Str("player", d.ID).Msg("slideshow stopped, restarting from first slide")
		if err := o.driver.Restart(ctx, d); err != nil {
			o.logger.Warn().Err(err).Msg("slideshow restart failed")
		}
	}
}
