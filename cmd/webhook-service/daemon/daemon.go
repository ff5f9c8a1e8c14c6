// Package daemon provides the webhook service daemon.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/uxforge/figma-docs-sync/internal/cli"
	"github.com/uxforge/figma-docs-sync/internal/constants"
	"github.com/uxforge/figma-docs-sync/internal/dispatch"
	"github.com/uxforge/figma-docs-sync/internal/webhook"
)

// App represents the application.
type App struct {
	cmd    *cobra.Command
	viper  *viper.Viper
	config appConfig

	daemon *webhook.Server

	ready chan struct{}
}

// appConfig holds the configuration for the application.
type appConfig struct {
	Verbosity int
	JSONLogs  bool `mapstructure:"json-logs"`

	ForgeToken string `mapstructure:"forge-token"`
	ForgeRepo  string `mapstructure:"forge-repo"`

	Daemon webhook.StaticConfig `mapstructure:",squash"`
}

// New creates a new App instance with default values.
func New() (*App, error) {
	a := App{ready: make(chan struct{})}

	a.cmd = &cobra.Command{
		Use:           constants.WebhookCmdName,
		Short:         "Figma webhook receiver",
		Long: `Figma webhook receiver.

Accepts push notifications from Figma, verifies their signature and forwards
file update events as repository-dispatch events so CI re-runs the
documentation sync.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Command parsing has been successful. Returns to not print usage anymore.
			a.cmd.SilenceUsage = true
			cli.SetVerbosity(a.config.Verbosity) // Set verbosity before loading config
			if err := cli.InitViperConfig(constants.WebhookCmdName, a.cmd, a.viper); err != nil {
				return err
			}
			if err := a.viper.Unmarshal(&a.config); err != nil {
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

	if err := installRootCmd(&a); err != nil {
		return nil, err
	}
	cli.InstallConfigFlag(a.cmd)

	if err := a.viper.BindPFlags(a.cmd.PersistentFlags()); err != nil {
		return nil, err
	}

	a.installVersion()

	return &a, nil
}

func installRootCmd(app *App) error {
	cmd := app.cmd

	defaultConf := webhook.StaticConfig{
		ConfigPath:     "config.json",
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		RequestTimeout: 3 * time.Second,
		MaxHeaderBytes: 1 << 13, // 8 KB
		MaxBodyBytes:   1 << 16, // 64 KB

		ListenPort: 8080,
	}

	cmd.PersistentFlags().CountVarP(&app.config.Verbosity, "verbose", "v", "issue INFO (-v), DEBUG (-vv)")
	cmd.PersistentFlags().BoolVar(&app.config.JSONLogs, "json-logs", false, "whether to emit logs in JSON format")

	cmd.PersistentFlags().StringVar(&app.config.ForgeToken, "forge-token", "", "auth token used for repository dispatch")
	cmd.PersistentFlags().StringVar(&app.config.ForgeRepo, "forge-repo", "", "owner/repo receiving the repository dispatch")

	// Daemon flags
	cmd.PersistentFlags().StringVar(&app.config.Daemon.ConfigPath, "daemon-config", defaultConf.ConfigPath, "Path to the dynamic configuration file")
	cmd.PersistentFlags().StringVar(&app.config.Daemon.WebhookSecret, "webhook-secret", "", "shared secret used to verify webhook signatures (empty skips verification)")
	cmd.PersistentFlags().DurationVar(&app.config.Daemon.ReadTimeout, "read-timeout", defaultConf.ReadTimeout, "Read timeout for HTTP server")
	cmd.PersistentFlags().DurationVar(&app.config.Daemon.WriteTimeout, "write-timeout", defaultConf.WriteTimeout, "Write timeout for HTTP server")
	cmd.PersistentFlags().DurationVar(&app.config.Daemon.RequestTimeout, "request-timeout", defaultConf.RequestTimeout, "Request timeout for HTTP server")
	cmd.PersistentFlags().IntVar(&app.config.Daemon.MaxHeaderBytes, "max-header-bytes", defaultConf.MaxHeaderBytes, "Maximum header bytes for HTTP server")
	cmd.PersistentFlags().IntVar(&app.config.Daemon.MaxBodyBytes, "max-body-bytes", defaultConf.MaxBodyBytes, "Maximum body bytes accepted by the webhook endpoint")

	cmd.PersistentFlags().StringVar(&app.config.Daemon.ListenHost, "listen-host", defaultConf.ListenHost, "Host to listen on")
	cmd.PersistentFlags().IntVar(&app.config.Daemon.ListenPort, "listen-port", defaultConf.ListenPort, "Port to listen on")

	err := cmd.MarkPersistentFlagFilename("daemon-config")
	if err != nil {
		return fmt.Errorf("failed to mark daemon-config flag as filename: %w", err)
	}

	return nil
}

// Run executes the command and associated process, returning an error if any.
func (a App) Run() error {
	return a.cmd.Execute()
}

// UsageError returns if the error is a command parsing or runtime one.
func (a App) UsageError() bool {
	return !a.cmd.SilenceUsage
}

// Hup prints all goroutine stack traces and return false to signal you shouldn't quit.
func (a App) Hup() (shouldQuit bool) {
	buf := make([]byte, 1<<16)
	runtime.Stack(buf, true)
	fmt.Printf("%s", buf)
	return false
}

// Quit gracefully shuts down the daemon.
func (a *App) Quit() {
	a.WaitReady()
	if a.daemon != nil {
		a.daemon.Quit(false)
	}
}

// WaitReady waits for the daemon to be ready.
func (a *App) WaitReady() {
	<-a.ready
}

func (a *App) run() (err error) {
	a.config.Daemon.ConfigPath, err = filepath.Abs(a.config.Daemon.ConfigPath)
	if err != nil {
		close(a.ready)
		return fmt.Errorf("failed to get absolute path for config file: %v", err)
	}

	forwarder, err := dispatch.New(a.config.ForgeToken, a.config.ForgeRepo)
	if err != nil {
		close(a.ready)
		return err
	}

	cm := webhook.NewConfigManager(a.config.Daemon.ConfigPath, webhook.WithConfigLogger(slog.Default()))
	a.daemon, err = webhook.New(context.Background(), cm, forwarder, a.config.Daemon)
	close(a.ready)
	if err != nil {
		return fmt.Errorf("failed to create server: %v", err)
	}

	return a.daemon.Run()
}
