// Package registry declares which applications can present each content
// kind and how each one is driven into kiosk behavior. The declared table
// is fixed at process start; the installed subset is recomputed per query
// because it depends on machine state.
package registry

import (
	"context"

	"marquee/internal/content"
)

// Strategy is the closed set of ways a player is driven into
// fullscreen-and-loop behavior.
type Strategy int

const (
	// StrategyNative renders in-process; no external application.
	StrategyNative Strategy = iota
	// StrategyArgs spawns the application with kiosk-style CLI arguments.
	StrategyArgs
	// StrategyArgsThenScript opens the document with the application, then
	// sends a follow-up automation keystroke after a settle delay.
	StrategyArgsThenScript
	// StrategyScript drives the application entirely through automation
	// scripts; it offers no usable CLI.
	StrategyScript
)

// Player identifiers. Closed set: all per-player behavior is keyed on
// these, never on free-form string matching at call sites.
const (
	BuiltInID    = "builtin"
	IDVLC        = "vlc"
	IDIINA       = "iina"
	IDQuickTime  = "quicktime"
	IDPreview    = "preview"
	IDAcrobat    = "acrobat"
	IDChrome     = "chrome"
	IDFirefox    = "firefox"
	IDSafari     = "safari"
	IDKeynote    = "keynote"
	IDPowerPoint = "powerpoint"
)

// Descriptor describes one player capable of presenting a content kind.
type Descriptor struct {
	ID       string   // stable identifier, one of the constants above
	Name     string   // application name as launch services knows it
	Bin      string   // CLI binary name for PATH lookup, empty if none
	BuiltIn  bool     // built-in renderer sentinel
	Args     []string // kiosk-style launch arguments (StrategyArgs only)
	LoopArgs []string // extra arguments when looping is requested
	Strategy Strategy
}

var builtIn = Descriptor{ID: BuiltInID, Name: "Built-in", BuiltIn: true, Strategy: StrategyNative}

// declared is the static capability table. Ordering is significant: the
// built-in renderer first where one exists, then vendor-preferred order.
// Slides has no built-in renderer and always requires a scriptable
// presentation application.
var declared = map[content.Kind][]Descriptor{
	content.Video: {
		builtIn,
		{
			ID: IDVLC, Name: "VLC", Bin: "vlc",
			Args:     []string{"--fullscreen", "--no-video-title-show"},
			LoopArgs: []string{"--loop"},
			Strategy: StrategyArgs,
		},
		{
			ID: IDIINA, Name: "IINA", Bin: "iina",
			Args:     []string{"--mpv-fullscreen=yes"},
			LoopArgs: []string{"--mpv-loop-file=inf"},
			Strategy: StrategyArgs,
		},
		{
			// No CLI at all: open, set looping, present, all scripted.
			ID: IDQuickTime, Name: "QuickTime Player",
			Strategy: StrategyScript,
		},
	},
	content.PDF: {
		builtIn,
		{ID: IDPreview, Name: "Preview", Strategy: StrategyArgsThenScript},
		{ID: IDAcrobat, Name: "Adobe Acrobat Reader", Strategy: StrategyArgsThenScript},
	},
	content.Website: {
		builtIn,
		{
			ID: IDChrome, Name: "Google Chrome",
			Args:     []string{"--kiosk"},
			Strategy: StrategyArgs,
		},
		{
			ID: IDFirefox, Name: "Firefox", Bin: "firefox",
			Args:     []string{"--kiosk"},
			Strategy: StrategyArgs,
		},
		// Safari has no kiosk flag; fullscreen is a scripted keystroke.
		{ID: IDSafari, Name: "Safari", Strategy: StrategyArgsThenScript},
	},
	content.Slides: {
		{ID: IDKeynote, Name: "Keynote", Strategy: StrategyScript},
		{ID: IDPowerPoint, Name: "Microsoft PowerPoint", Strategy: StrategyScript},
	},
}

// Registry answers which players can present a kind on this machine.
type Registry struct {
	lookup Lookup
}

func New(lookup Lookup) *Registry {
	return &Registry{lookup: lookup}
}

// Declared returns the static ordered player list for a kind.
func Declared(kind content.Kind) []Descriptor {
	ds := declared[kind]
	out := make([]Descriptor, len(ds))
	copy(out, ds)
	return out
}

// Default returns the first declared player for a kind, used when no user
// preference exists.
func Default(kind content.Kind) (Descriptor, bool) {
	ds := declared[kind]
	if len(ds) == 0 {
		return Descriptor{}, false
	}
	return ds[0], true
}

// Find resolves a player identifier within a kind's declared table.
func Find(kind content.Kind, id string) (Descriptor, bool) {
	for _, d := range declared[kind] {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Installed filters the declared table down to players present on this
// machine. The built-in sentinel always passes. The lookup may hit the
// filesystem, so callers run this off the interactive surface.
func (r *Registry) Installed(ctx context.Context, kind content.Kind) []Descriptor {
	var out []Descriptor
	for _, d := range declared[kind] {
		if d.BuiltIn || r.lookup.IsInstalled(ctx, d) {
			out = append(out, d)
		}
	}
	return out
}
