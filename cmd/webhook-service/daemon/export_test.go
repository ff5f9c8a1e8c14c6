package daemon

import (
	"github.com/spf13/cobra"
)

type AppConfig = appConfig

// Config returns the configuration of the app.
func (a *App) Config() appConfig {
	return a.config
}

// SetArgs sets the arguments of the root command.
func (a *App) SetArgs(args ...string) {
	a.cmd.SetArgs(args)
}

// RootCmd returns a copy of the root command.
func (a App) RootCmd() cobra.Command {
	return *a.cmd
}

// SetSilenceUsage overrides the SilenceUsage attribute of the root command.
func (a *App) SetSilenceUsage(silence bool) {
	a.cmd.SilenceUsage = silence
}
