package registry

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
)

// Lookup reports whether an application is present on the host.
type Lookup interface {
	IsInstalled(ctx context.Context, d Descriptor) bool
}

// SystemLookup probes PATH for CLI binaries and the standard application
// folders for app bundles.
type SystemLookup struct{}

func (SystemLookup) IsInstalled(_ context.Context, d Descriptor) bool {
	if d.Bin != "" {
		if _, err := exec.LookPath(d.Bin); err == nil {
			return true
		}
	}
	if d.Name == "" {
		return false
	}
	for _, dir := range []string{"/Applications", "/System/Applications"} {
		if _, err := os.Stat(filepath.Join(dir, d.Name+".app")); err == nil {
			return true
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		if _, err := os.Stat(filepath.Join(home, "Applications", d.Name+".app")); err == nil {
			return true
		}
	}
	return false
}

// BundlePath returns the executable inside an application bundle, if the
// bundle exists. Used for direct spawns of GUI applications (a retained
// process handle needs a real binary, not an `open` indirection).
func BundlePath(name string) (string, bool) {
	for _, dir := range []string{"/Applications", "/System/Applications"} {
		p := filepath.Join(dir, name+".app", "Contents", "MacOS", name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}
