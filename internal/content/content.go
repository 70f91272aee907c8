// Package content classifies and validates content locators.
// Classification is a pure function of the locator string: no filesystem
// or network access, so the same locator always yields the same kind.
package content

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Kind is the closed set of content kinds the kiosk can present.
type Kind int

const (
	Video Kind = iota
	PDF
	Website
	Slides
)

func (k Kind) String() string {
	switch k {
	case Video:
		return "video"
	case PDF:
		return "pdf"
	case Website:
		return "website"
	case Slides:
		return "slides"
	default:
		return "unknown"
	}
}

// ParseKind maps a configuration string back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "video":
		return Video, nil
	case "pdf":
		return PDF, nil
	case "website":
		return Website, nil
	case "slides":
		return Slides, nil
	default:
		return 0, fmt.Errorf("unknown content kind %q", s)
	}
}

// ErrUnrecognized is returned when a locator matches no known content kind.
// Callers surface it as a configuration error, never a crash.
var ErrUnrecognized = errors.New("unrecognized content type")

// extKind maps lowercase filename extensions (without dot) to kinds.
var extKind = map[string]Kind{
	"mp4": Video, "m4v": Video, "mov": Video, "avi": Video,
	"mkv": Video, "webm": Video, "wmv": Video, "flv": Video,

	"pdf": PDF,

	"webloc": Website, "url": Website, "html": Website, "htm": Website,

	"key": Slides, "keynote": Slides,
}

// Classify maps a locator (absolute file path or URL) to a content kind.
// An http or https scheme always classifies as Website; a PDF served over
// HTTPS is a website as far as rendering is concerned. Any other URL scheme
// is unrecognized; extension lookup applies only to plain file paths.
func Classify(locator string) (Kind, error) {
	if scheme := locatorScheme(locator); scheme != "" {
		if scheme == "http" || scheme == "https" {
			return Website, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrUnrecognized, locator)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(locator), "."))
	if k, ok := extKind[ext]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnrecognized, locator)
}

// ValidateLocator checks that a locator is usable before a session starts:
// non-empty, and either an http(s) URL with a host or an absolute file path.
func ValidateLocator(locator string) error {
	if locator == "" {
		return fmt.Errorf("locator cannot be empty")
	}
	if isHTTP(locator) {
		u, err := url.Parse(locator)
		if err != nil {
			return fmt.Errorf("malformed URL: %w", err)
		}
		if u.Host == "" {
			return fmt.Errorf("URL has no host: %q", locator)
		}
		return nil
	}
	if !filepath.IsAbs(locator) {
		return fmt.Errorf("file locator must be an absolute path, got %q", locator)
	}
	return nil
}

func isHTTP(locator string) bool {
	scheme := locatorScheme(locator)
	return scheme == "http" || scheme == "https"
}

// locatorScheme returns the lowercase URL scheme of a locator, or "" for
// plain file paths.
func locatorScheme(locator string) string {
	u, err := url.Parse(locator)
	if err != nil || u.Scheme == "" {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
