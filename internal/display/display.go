// Package display enumerates attached displays and resolves the rectangle
// the fullscreen surface should cover.
package display

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"marquee/internal/driver"
)

// Rect is a display rectangle in points, origin top-left of the main display.
type Rect struct {
	X, Y, Width, Height int
}

// Display describes one attached display.
type Display struct {
	Index       int
	Name        string
	Bounds      Rect
	IsMain      bool
	IsBuiltIn   bool
	Resolution  string
	RefreshRate float64
}

// Lister enumerates displays. Implemented against system_profiler; faked in
// tests.
type Lister interface {
	List(ctx context.Context) ([]Display, error)
}

// ProfilerLister reads display data from system_profiler.
type ProfilerLister struct {
	Runner driver.Runner
}

// profilerReport mirrors the slice of `system_profiler SPDisplaysDataType
// -json` output we consume.
type profilerReport struct {
	Data []struct {
		Displays []profilerDisplay `json:"spdisplays_ndrvs"`
	} `json:"SPDisplaysDataType"`
}

type profilerDisplay struct {
	Name       string `json:"_name"`
	Pixels     string `json:"_spdisplays_pixels"`
	Resolution string `json:"_spdisplays_resolution"`
	Main       string `json:"spdisplays_main"`
	Connection string `json:"spdisplays_connection_type"`
}

func (l *ProfilerLister) List(ctx context.Context) ([]Display, error) {
	out, err := l.Runner.Output(ctx, "system_profiler", "SPDisplaysDataType", "-json")
	if err != nil {
		return nil, fmt.Errorf("querying displays: %w", err)
	}

	var report profilerReport
	if err := json.Unmarshal(out, &report); err != nil {
		return nil, fmt.Errorf("parsing display report: %w", err)
	}

	var displays []Display
	for _, gpu := range report.Data {
		for _, d := range gpu.Displays {
			w, h := parsePixels(d.Pixels)
			displays = append(displays, Display{
				Index:       len(displays),
				Name:        d.Name,
				Bounds:      Rect{Width: w, Height: h},
				IsMain:      d.Main == "spdisplays_yes",
				IsBuiltIn:   d.Connection == "spdisplays_internal",
				Resolution:  strings.TrimSpace(d.Resolution),
				RefreshRate: parseRefresh(d.Resolution),
			})
		}
	}
	if len(displays) == 0 {
		return nil, fmt.Errorf("no displays reported")
	}
	return displays, nil
}

// parsePixels parses "2880 x 1800" into width and height.
func parsePixels(s string) (int, int) {
	parts := strings.Split(s, "x")
	if len(parts) != 2 {
		return 0, 0
	}
	w, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, _ := strconv.Atoi(strings.TrimSpace(parts[1]))
	return w, h
}

// parseRefresh extracts the rate from "2560 x 1440 @ 60.00Hz".
func parseRefresh(s string) float64 {
	i := strings.Index(s, "@")
	if i < 0 {
		return 0
	}
	rate := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s[i+1:]), "Hz"))
	v, _ := strconv.ParseFloat(rate, 64)
	return v
}

// Frame resolves a display selector ("main", "all", or an index) to the
// rectangle the rendering surface should fill.
func Frame(displays []Display, selector string) (Rect, error) {
	if len(displays) == 0 {
		return Rect{}, fmt.Errorf("no displays attached")
	}

	switch strings.ToLower(selector) {
	case "", "main":
		for _, d := range displays {
			if d.IsMain {
				return d.Bounds, nil
			}
		}
		return displays[0].Bounds, nil
	case "all":
		// Spanning frame: union of all display bounds.
		union := displays[0].Bounds
		for _, d := range displays[1:] {
			union = unionRect(union, d.Bounds)
		}
		return union, nil
	default:
		idx, err := strconv.Atoi(selector)
		if err != nil || idx < 0 || idx >= len(displays) {
			return Rect{}, fmt.Errorf("no display %q (have %d)", selector, len(displays))
		}
		return displays[idx].Bounds, nil
	}
}

func unionRect(a, b Rect) Rect {
	minX, minY := min(a.X, b.X), min(a.Y, b.Y)
	maxX := max(a.X+a.Width, b.X+b.Width)
	maxY := max(a.Y+a.Height, b.Y+b.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
