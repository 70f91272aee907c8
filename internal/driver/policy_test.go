package driver

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"marquee/internal/content"
	"marquee/internal/log"
	"marquee/internal/registry"
)

type fakeLauncher struct {
	spawned   []registry.Descriptor
	spawnArgs [][]string
	opened    []string
	spawnErr  error
	openErr   error
	stopped   int
}

func (f *fakeLauncher) Spawn(d registry.Descriptor, args []string) error {
	f.spawned = append(f.spawned, d)
	f.spawnArgs = append(f.spawnArgs, args)
	return f.spawnErr
}

func (f *fakeLauncher) OpenWith(_ context.Context, d registry.Descriptor, locator string) error {
	f.opened = append(f.opened, d.ID+" "+locator)
	return f.openErr
}

func (f *fakeLauncher) Stop() { f.stopped++ }

type fakeScripter struct {
	scripts []string
	out     string
	err     error
}

func (f *fakeScripter) Run(_ context.Context, script string) (string, error) {
	f.scripts = append(f.scripts, script)
	return f.out, f.err
}

func newTestPolicy(l *fakeLauncher, s *fakeScripter) *Policy {
	return &Policy{launcher: l, scripter: s, settle: time.Millisecond, logger: log.WithComponent("test")}
}

func TestLaunchSpawnsWithKioskArgs(t *testing.T) {
	l := &fakeLauncher{}
	s := &fakeScripter{}
	p := newTestPolicy(l, s)

	d, _ := registry.Find(content.Website, registry.IDChrome)
	if err := p.Launch(context.Background(), d, "https://example.com", false); err != nil {
		t.Fatalf("Launch error: %v", err)
	}

	if len(l.spawnArgs) != 1 {
		t.Fatalf("spawn calls = %d, want 1", len(l.spawnArgs))
	}
	got := strings.Join(l.spawnArgs[0], " ")
	if got != "--kiosk https://example.com" {
		t.Errorf("spawn args = %q, want kiosk flag then URL", got)
	}
	if len(s.scripts) != 0 {
		t.Errorf("no scripts expected for a direct spawn, got %v", s.scripts)
	}
}

func TestLaunchAppendsLoopArgs(t *testing.T) {
	l := &fakeLauncher{}
	p := newTestPolicy(l, &fakeScripter{})

	d, _ := registry.Find(content.Video, registry.IDVLC)
	if err := p.Launch(context.Background(), d, "/videos/loop.mp4", true); err != nil {
		t.Fatalf("Launch error: %v", err)
	}

	got := strings.Join(l.spawnArgs[0], " ")
	if !strings.Contains(got, "--loop") {
		t.Errorf("loop requested but args = %q", got)
	}
	if !strings.HasSuffix(got, "/videos/loop.mp4") {
		t.Errorf("locator should be the trailing argument, args = %q", got)
	}
}

func TestLaunchOpenThenKeystroke(t *testing.T) {
	l := &fakeLauncher{}
	s := &fakeScripter{}
	p := newTestPolicy(l, s)

	d, _ := registry.Find(content.PDF, registry.IDPreview)
	if err := p.Launch(context.Background(), d, "/docs/menu.pdf", false); err != nil {
		t.Fatalf("Launch error: %v", err)
	}

	if len(l.opened) != 1 {
		t.Fatalf("open calls = %d, want 1", len(l.opened))
	}
	if len(s.scripts) != 1 || !strings.Contains(s.scripts[0], "keystroke") {
		t.Errorf("expected one keystroke script after settle, got %v", s.scripts)
	}
}

func TestLaunchKeystrokeFailureIsNotFatal(t *testing.T) {
	l := &fakeLauncher{}
	s := &fakeScripter{err: &ScriptError{Output: "not authorized"}}
	p := newTestPolicy(l, s)

	d, _ := registry.Find(content.Website, registry.IDSafari)
	if err := p.Launch(context.Background(), d, "https://example.com", false); err != nil {
		t.Errorf("keystroke failure should not abort launch: %v", err)
	}
}

func TestLaunchOpenFailureIsFatal(t *testing.T) {
	l := &fakeLauncher{openErr: ErrPlayerNotInstalled}
	p := newTestPolicy(l, &fakeScripter{})

	d, _ := registry.Find(content.PDF, registry.IDAcrobat)
	err := p.Launch(context.Background(), d, "/docs/menu.pdf", false)
	if !errors.Is(err, ErrPlayerNotInstalled) {
		t.Errorf("Launch error = %v, want ErrPlayerNotInstalled", err)
	}
}

func TestLaunchScriptOnlyPlayer(t *testing.T) {
	s := &fakeScripter{}
	p := newTestPolicy(&fakeLauncher{}, s)

	d, _ := registry.Find(content.Slides, registry.IDKeynote)
	if err := p.Launch(context.Background(), d, "/decks/talk.key", true); err != nil {
		t.Fatalf("Launch error: %v", err)
	}

	if len(s.scripts) != 1 {
		t.Fatalf("script calls = %d, want 1", len(s.scripts))
	}
	if !strings.Contains(s.scripts[0], "start document 1 from first slide") {
		t.Errorf("open script should start from first slide, got %q", s.scripts[0])
	}
	if !strings.Contains(s.scripts[0], `/decks/talk.key`) {
		t.Errorf("open script should embed the locator, got %q", s.scripts[0])
	}
}

func TestLaunchScriptOnlyFailureAborts(t *testing.T) {
	s := &fakeScripter{err: &ScriptError{Output: "Keynote got an error"}}
	p := newTestPolicy(&fakeLauncher{}, s)

	d, _ := registry.Find(content.Slides, registry.IDKeynote)
	err := p.Launch(context.Background(), d, "/decks/talk.key", true)

	var scriptErr *ScriptError
	if !errors.As(err, &scriptErr) {
		t.Errorf("Launch error = %v, want wrapped ScriptError", err)
	}
}

func TestPlayingProbe(t *testing.T) {
	s := &fakeScripter{out: "true"}
	p := newTestPolicy(&fakeLauncher{}, s)
	d, _ := registry.Find(content.Slides, registry.IDKeynote)

	playing, err := p.Playing(context.Background(), d)
	if err != nil || !playing {
		t.Errorf("Playing = %v, %v; want true", playing, err)
	}

	s.out = "false"
	playing, err = p.Playing(context.Background(), d)
	if err != nil || playing {
		t.Errorf("Playing = %v, %v; want false", playing, err)
	}
}

func TestStopTerminatesAndQuits(t *testing.T) {
	l := &fakeLauncher{}
	s := &fakeScripter{}
	p := newTestPolicy(l, s)

	d, _ := registry.Find(content.Slides, registry.IDKeynote)
	p.Stop(context.Background(), d)

	if l.stopped != 1 {
		t.Errorf("launcher.Stop calls = %d, want 1", l.stopped)
	}
	if len(s.scripts) != 1 || !strings.Contains(s.scripts[0], "quit") {
		t.Errorf("expected a quit script, got %v", s.scripts)
	}
}

func TestStopSkipsQuitForDirectSpawns(t *testing.T) {
	l := &fakeLauncher{}
	s := &fakeScripter{}
	p := newTestPolicy(l, s)

	d, _ := registry.Find(content.Website, registry.IDChrome)
	p.Stop(context.Background(), d)

	if l.stopped != 1 {
		t.Errorf("launcher.Stop calls = %d, want 1", l.stopped)
	}
	if len(s.scripts) != 0 {
		t.Errorf("direct spawns are killed, not scripted to quit; got %v", s.scripts)
	}
}
