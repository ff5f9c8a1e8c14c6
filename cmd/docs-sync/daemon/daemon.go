// Package daemon provides the documentation sync command.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/uxforge/figma-docs-sync/internal/cli"
	"github.com/uxforge/figma-docs-sync/internal/constants"
	"github.com/uxforge/figma-docs-sync/internal/sync"
)

// App represents the application.
type App struct {
	cmd    *cobra.Command
	viper  *viper.Viper
	config appConfig

	newOrchestrator func(sync.Config) (orchestrator, error)
}

type orchestrator interface {
	Run(ctx context.Context) error
}

// appConfig holds the configuration for the application.
type appConfig struct {
	Verbosity int
	JSONLogs  bool `mapstructure:"json-logs"`

	Sync sync.Config `mapstructure:",squash"`
}

type options struct {
	// Private member exported for tests.
	newOrchestrator func(sync.Config) (orchestrator, error)
}

// Options represents an optional function to override App default values.
type Options func(*options)

// New creates a new App instance with default values.
func New(args ...Options) (*App, error) {
	opts := options{
		newOrchestrator: func(cfg sync.Config) (orchestrator, error) {
			return sync.New(cfg)
		},
	}
	for _, opt := range args {
		opt(&opts)
	}

	a := App{newOrchestrator: opts.newOrchestrator}

	a.cmd = &cobra.Command{
		Use:           constants.CmdName,
		Short:         "Sync Figma design data into documentation sources",
		Long: `Sync Figma design data into documentation sources.

Fetches design variables and frame screenshots from the Figma REST API,
rebuilds the token document and generated documentation fragments, and
downloads screenshots into the assets directory. Meant to be run by CI.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Command parsing has been successful. Returns to not print usage anymore.
			a.cmd.SilenceUsage = true
			cli.SetVerbosity(a.config.Verbosity) // Set verbosity before loading config
			if err := cli.InitViperConfig(constants.CmdName, a.cmd, a.viper); err != nil {
				return err
			}
			if err := a.viper.Unmarshal(&a.config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			))); err != nil {
				return fmt.Errorf("unable to strictly decode configuration into struct: %w", err)
			}

			cli.SetSlog(a.config.Verbosity, a.config.JSONLogs)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cmd.SilenceUsage = true

			return a.run()
		},
	}
	a.viper = viper.New()

	installRootCmd(&a)
	cli.InstallConfigFlag(a.cmd)

	if err := a.viper.BindPFlags(a.cmd.PersistentFlags()); err != nil {
		return nil, err
	}

	a.installVersion()

	return &a, nil
}

func installRootCmd(app *App) {
	cmd := app.cmd

	defaultConf := sync.Config{
		DocsDir:   constants.DefaultDocsDir,
		TokensDir: constants.DefaultTokensDir,
		AssetsDir: constants.DefaultAssetsDir,
		Branch:    "main",
	}

	cmd.PersistentFlags().CountVarP(&app.config.Verbosity, "verbose", "v", "issue INFO (-v), DEBUG (-vv)")
	cmd.PersistentFlags().BoolVar(&app.config.JSONLogs, "json-logs", false, "whether to emit logs in JSON format")

	cmd.PersistentFlags().StringVar(&app.config.Sync.FigmaToken, "figma-token", "", "Figma API token")
	cmd.PersistentFlags().StringVar(&app.config.Sync.FileKey, "file-key", "", "key of the Figma file to sync")
	cmd.PersistentFlags().StringSliceVar(&app.config.Sync.NodeIDs, "node-ids", nil, "comma-separated node IDs to screenshot")
	cmd.PersistentFlags().StringVar(&app.config.Sync.OwnerRepo, "owner-repo", "", "owner/repo hosting the documentation")
	cmd.PersistentFlags().StringVar(&app.config.Sync.Branch, "branch", defaultConf.Branch, "branch serving the raw assets")

	cmd.PersistentFlags().StringVar(&app.config.Sync.DocsDir, "docs-dir", defaultConf.DocsDir, "directory of the documentation sources")
	cmd.PersistentFlags().StringVar(&app.config.Sync.TokensDir, "tokens-dir", defaultConf.TokensDir, "token fragments subdirectory of the docs directory")
	cmd.PersistentFlags().StringVar(&app.config.Sync.AssetsDir, "assets-dir", defaultConf.AssetsDir, "directory screenshots are downloaded into")
}

// Run executes the command and associated process, returning an error if any.
func (a App) Run() error {
	return a.cmd.Execute()
}

// UsageError returns if the error is a command parsing or runtime one.
func (a App) UsageError() bool {
	return !a.cmd.SilenceUsage
}

func (a *App) run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	o, err := a.newOrchestrator(a.config.Sync)
	if err != nil {
		return err
	}

	slog.Info("Starting documentation sync", "file", a.config.Sync.FileKey)
	return o.Run(ctx)
}
