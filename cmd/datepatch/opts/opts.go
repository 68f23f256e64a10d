package opts

import (
	"github.com/walteh/datepatch/pkg/config"
	"github.com/walteh/datepatch/pkg/status"
)

// RootOpts contains shared options used by all commands. It is filled in
// before any command runs; the console logger travels on the command context.
type RootOpts struct {
	Config    *config.Config
	Files     *status.Manager
	Formatter status.Formatter
}
