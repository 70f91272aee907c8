// Package escape gates the way out of an active kiosk session behind the
// native administrator-credential prompt.
package escape

import (
	"context"

	"github.com/rs/zerolog"

	"marquee/internal/driver"
	"marquee/internal/log"
)

// Authenticator decides whether the operator may leave the kiosk.
type Authenticator interface {
	// Authenticate returns true only on successful authorization of an
	// administrative right. Cancellation, wrong credentials and
	// authorization-service errors are indistinguishable to the caller:
	// all yield false, and retries are unlimited.
	Authenticate(ctx context.Context) bool
}

// adminPrompt is the sole script that runs with elevated rights. The shell
// command itself is a no-op; only the authorization outcome matters.
const adminPrompt = `do shell script "/usr/bin/true" with prompt "Unlock the kiosk and return to configuration." with administrator privileges`

// AdminAuthenticator presents the OS administrator prompt through the
// automation bridge.
type AdminAuthenticator struct {
	scripter driver.Scripter
	logger   zerolog.Logger
}

func NewAdminAuthenticator(scripter driver.Scripter) *AdminAuthenticator {
	return &AdminAuthenticator{
		scripter: scripter,
		logger:   log.WithComponent("escape"),
	}
}

func (a *AdminAuthenticator) Authenticate(ctx context.Context) bool {
	if _, err := a.scripter.Run(ctx, adminPrompt); err != nil {
		a.logger.Info().Msg("escape authentication failed")
		return false
	}
	a.logger.Info().Msg("escape authentication succeeded")
	return true
}
