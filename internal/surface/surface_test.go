package surface

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"marquee/internal/content"
	"marquee/internal/registry"
	"marquee/internal/session"
)

func testConfig(t *testing.T, kind content.Kind) session.Config {
	t.Helper()
	d, _ := registry.Default(kind)

	locator := "https://example.com"
	if kind != content.Website {
		dir := t.TempDir()
		locator = filepath.Join(dir, "content.pdf")
		if err := os.WriteFile(locator, []byte("%PDF-1.4"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return session.Config{Locator: locator, Kind: kind, Player: d}
}

func TestStartRejectsMissingFile(t *testing.T) {
	v := NewView()
	cfg := testConfig(t, content.PDF)
	cfg.Locator = "/no/such/file.pdf"

	if err := v.Start(context.Background(), cfg); err == nil {
		t.Error("Start should fail for unreadable content")
	}
}

func TestPDFSlideshowTicks(t *testing.T) {
	v := NewView()
	var ticks atomic.Int32
	v.SetTickFunc(func() { ticks.Add(1) })

	cfg := testConfig(t, content.PDF)
	cfg.SlideInterval = 2 * time.Millisecond
	if err := v.Start(context.Background(), cfg); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	deadline := time.After(time.Second)
	for ticks.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("slideshow ticker never fired")
		case <-time.After(time.Millisecond):
		}
	}
	v.Stop()

	// No further ticks after Stop.
	after := ticks.Load()
	time.Sleep(10 * time.Millisecond)
	if ticks.Load() != after {
		t.Error("ticker must stop with the surface")
	}
}

func TestWebsiteWithoutRefreshHasNoTicker(t *testing.T) {
	v := NewView()
	var ticks atomic.Int32
	v.SetTickFunc(func() { ticks.Add(1) })

	cfg := testConfig(t, content.Website)
	cfg.RefreshInterval = 0 // never reload
	if err := v.Start(context.Background(), cfg); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if ticks.Load() != 0 {
		t.Error("refresh disabled, no ticks expected")
	}
	v.Stop()
}

func TestDoubleStartRejected(t *testing.T) {
	v := NewView()
	cfg := testConfig(t, content.Website)

	if err := v.Start(context.Background(), cfg); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if err := v.Start(context.Background(), cfg); err == nil {
		t.Error("second Start should fail while running")
	}
	v.Stop()
	v.Stop() // idempotent
}
