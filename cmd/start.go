package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"marquee/internal/content"
	"marquee/internal/driver"
	"marquee/internal/escape"
	"marquee/internal/httputil"
	"marquee/internal/inspect"
	"marquee/internal/journal"
	"marquee/internal/lockdown"
	"marquee/internal/log"
	"marquee/internal/overlay"
	"marquee/internal/registry"
	"marquee/internal/session"
	"marquee/internal/surface"
	"marquee/internal/ui"
)

var startCmd = &cobra.Command{
	Use:   "start [locator]",
	Short: "Start a kiosk session",
	Args:  cobra.MaximumNArgs(1),
	RunE:  startRun,
}

// startRun is the default command: marquee <locator>
func startRun(cmd *cobra.Command, args []string) error {
	locator := cfg.Locator
	if len(args) > 0 {
		locator = args[0]
	}
	if locator == "" {
		return fmt.Errorf("nothing to present: pass a file path or URL, or set locator in the config")
	}

	logger := log.WithComponent("cmd")

	kind, err := resolveKind(locator)
	if err != nil {
		return err
	}
	logger.Debug().Str("locator", locator).Str("kind", kind.String()).Msg("content classified")

	player, err := resolvePlayer(cmd.Context(), kind)
	if err != nil {
		return err
	}

	// Preflight for websites: reachability, title, self-refreshing pages.
	// Informational only; an unreachable page is still presented (it may be
	// behind a captive network that resolves later).
	if kind == content.Website {
		probeWebsite(cmd.Context(), locator, logger)
	}

	runner := driver.ExecRunner{}
	scripter := &driver.OSAScripter{Runner: runner}
	launcher := driver.NewLauncher(runner)
	policy := driver.NewPolicy(launcher, scripter)
	machine := lockdown.New(runner, scripter)
	view := surface.NewView()
	orch := session.New(policy, machine, view)

	sessCfg := session.Config{
		Locator:         locator,
		Kind:            kind,
		Player:          player,
		Loop:            cfg.Loop,
		SlideInterval:   time.Duration(cfg.SlideInterval) * time.Second,
		RefreshInterval: time.Duration(cfg.RefreshInterval) * time.Second,
		Lockdown:        cfg.Lockdown,
		LockdownFlags:   lockdownFlags(),
	}

	started := time.Now()
	record := func(reason string) {
		rec := journal.Record{
			Started: started,
			Ended:   time.Now(),
			Locator: locator,
			Kind:    kind.String(),
			Player:  player.ID,
			Reason:  reason,
		}
		if err := journal.Append(rec); err != nil {
			logger.Warn().Err(err).Msg("recording session in journal failed")
		}
	}

	// A SIGTERM (launchd shutdown, remote kill) must still tear the session
	// down and release the power assertion.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	go func() {
		<-sigCh
		orch.Stop()
		machine.ReleaseAssertion()
		record("terminated")
		os.Exit(0)
	}()
	defer signal.Stop(sigCh)

	if err := orch.Start(cmd.Context(), sessCfg); err != nil {
		record("launch-failed")
		return err
	}

	auth := escape.NewAdminAuthenticator(scripter)
	unlocked, overlayErr := overlay.Run(overlay.Status{
		Locator: locator,
		Kind:    kind.String(),
		Player:  player.Name,
		Locked:  cfg.Lockdown,
	}, auth)

	orch.Stop()
	machine.ReleaseAssertion()

	reason := "stopped"
	if unlocked {
		reason = "escape"
	}
	record(reason)

	if overlayErr != nil {
		return fmt.Errorf("running kiosk overlay: %w", overlayErr)
	}
	return nil
}

// resolveKind honors an explicit kind override before falling back to
// locator classification.
func resolveKind(locator string) (content.Kind, error) {
	if cfg.Kind != "" {
		return content.ParseKind(cfg.Kind)
	}
	kind, err := content.Classify(locator)
	if err != nil {
		return 0, fmt.Errorf("classifying %q: %w", locator, err)
	}
	return kind, nil
}

// resolvePlayer maps the configured player ID onto the kind's declared
// table, or picks among the installed players when nothing is configured.
func resolvePlayer(ctx context.Context, kind content.Kind) (registry.Descriptor, error) {
	if cfg.Player != "" {
		d, ok := registry.Find(kind, cfg.Player)
		if !ok {
			return registry.Descriptor{}, fmt.Errorf("player %q cannot present %s content", cfg.Player, kind)
		}
		return d, nil
	}

	reg := registry.New(registry.SystemLookup{})
	installed := reg.Installed(ctx, kind)
	if len(installed) == 0 {
		return registry.Descriptor{}, fmt.Errorf("no installed player can present %s content", kind)
	}
	if len(installed) == 1 {
		return installed[0], nil
	}

	items := make([]string, len(installed))
	for i, d := range installed {
		items[i] = d.Name
	}
	idx, err := ui.Select("Player", items)
	if err != nil {
		// Non-interactive invocation (launchd, ssh): take the preferred one.
		return installed[0], nil
	}
	return installed[idx], nil
}

func lockdownFlags() lockdown.Flags {
	f := lockdown.All()
	f.HideCursor = cfg.HideCursor
	f.PreventSleep = cfg.PreventSleep
	return f
}

func probeWebsite(ctx context.Context, locator string, logger zerolog.Logger) {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	report, err := inspect.Probe(probeCtx, httputil.NewClient(), locator)
	if err != nil {
		logger.Warn().Err(err).Str("url", locator).Msg("website preflight failed, presenting anyway")
		return
	}
	ev := logger.Info().Str("url", locator).Int("status", report.Status).Str("title", report.Title)
	if report.MetaRefresh {
		ev = ev.Int("self_refresh_seconds", report.RefreshEvery)
	}
	ev.Msg("website preflight")
	if report.MetaRefresh && cfg.RefreshInterval > 0 {
		logger.Info().Msg("page refreshes itself; refresh_interval may be redundant")
	}
}
