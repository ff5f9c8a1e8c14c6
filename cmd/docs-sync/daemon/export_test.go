package daemon

import (
	"github.com/spf13/cobra"
	"github.com/uxforge/figma-docs-sync/internal/sync"
)

type AppConfig = appConfig
type Orchestrator = orchestrator

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

// WithNewOrchestrator overrides the orchestrator constructor.
func WithNewOrchestrator(f func(sync.Config) (orchestrator, error)) Options {
	return func(o *options) {
		o.newOrchestrator = f
	}
}
