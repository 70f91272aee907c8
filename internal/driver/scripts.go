package driver

import (
	"fmt"
	"strings"

	"marquee/internal/registry"
)

// Automation script texts, keyed by player identifier. These encode the
// integration contract with each third-party application: what to send when
// the app offers no CLI flag for loop/fullscreen/kiosk behavior.

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func scriptString(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}

// openScript returns the open-and-play script for a script-only player.
func openScript(d registry.Descriptor, locator string, loop bool) (string, bool) {
	file := scriptString(locator)
	switch d.ID {
	case registry.IDQuickTime:
		looping := "false"
		if loop {
			looping = "true"
		}
		return fmt.Sprintf(`tell application "QuickTime Player"
	activate
	open POSIX file %s
	set looping of document 1 to %s
	present document 1
	play document 1
end tell`, file, looping), true
	case registry.IDKeynote:
		return fmt.Sprintf(`tell application "Keynote"
	activate
	open POSIX file %s
	start document 1 from first slide of document 1
end tell`, file), true
	case registry.IDPowerPoint:
		return fmt.Sprintf(`tell application "Microsoft PowerPoint"
	activate
	open POSIX file %s
	run slide show slide show settings of active presentation
end tell`, file), true
	}
	return "", false
}

// followUpScript returns the post-launch keystroke for players that open
// normally and need a scripted nudge into presentation/fullscreen mode.
func followUpScript(id string) (string, bool) {
	switch id {
	case registry.IDPreview:
		// View > Slideshow
		return `tell application "Preview" to activate
tell application "System Events" to keystroke "f" using {shift down, command down}`, true
	case registry.IDAcrobat:
		// Cmd+L enters full screen mode
		return `tell application "Adobe Acrobat Reader" to activate
tell application "System Events" to keystroke "l" using {command down}`, true
	case registry.IDSafari:
		return `tell application "Safari" to activate
tell application "System Events" to keystroke "f" using {control down, command down}`, true
	}
	return "", false
}

// playingScript returns a probe whose result is "true" while the deck is
// still presenting. Only script-only slide players are supervised.
func playingScript(id string) (string, bool) {
	switch id {
	case registry.IDKeynote:
		return `tell application "Keynote" to get playing`, true
	case registry.IDPowerPoint:
		return `tell application "Microsoft PowerPoint" to get (count of slide show windows) > 0`, true
	}
	return "", false
}

// restartScript returns the start-from-first-slide command issued when the
// supervision loop finds playback stopped.
func restartScript(id string) (string, bool) {
	switch id {
	case registry.IDKeynote:
		return `tell application "Keynote" to start document 1 from first slide of document 1`, true
	case registry.IDPowerPoint:
		return `tell application "Microsoft PowerPoint" to run slide show slide show settings of active presentation`, true
	}
	return "", false
}

// quitScript asks an application to quit. Best-effort: the app may already
// be gone by the time this runs.
func quitScript(name string) string {
	return fmt.Sprintf(`tell application %s to quit`, scriptString(name))
}
