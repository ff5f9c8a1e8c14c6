// Package sync implements the sync orchestrator.
// The orchestrator sequences the token fetcher, the screenshot fetcher and the
// documentation updater for one run, degrading gracefully when a fetcher
// fails: the rest of the pipeline still runs on whatever data was fetched.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ubuntu/decorate"
	"github.com/uxforge/figma-docs-sync/internal/constants"
	"github.com/uxforge/figma-docs-sync/internal/docs"
	"github.com/uxforge/figma-docs-sync/internal/figma"
	"github.com/uxforge/figma-docs-sync/internal/screenshots"
	"github.com/uxforge/figma-docs-sync/internal/tokens"
)

// ErrMissingConfig is returned when a required configuration value is absent.
// The orchestrator fails before any network call.
var ErrMissingConfig = errors.New("missing sync configuration")

// Config is the full configuration of one sync run, constructed once at
// startup and passed by parameter. Components never read process-wide state.
type Config struct {
	FigmaToken string `mapstructure:"figma-token"`
	FileKey    string `mapstructure:"file-key"`

	NodeIDs   []string `mapstructure:"node-ids"`
	OwnerRepo string   `mapstructure:"owner-repo"`
	Branch    string   `mapstructure:"branch"`

	DocsDir   string `mapstructure:"docs-dir"`
	TokensDir string `mapstructure:"tokens-dir"`
	AssetsDir string `mapstructure:"assets-dir"`
}

type tokenFetcher interface {
	Fetch(ctx context.Context) (*tokens.Document, error)
}

type screenshotFetcher interface {
	Fetch(ctx context.Context) ([]screenshots.Record, error)
}

type docsUpdater interface {
	Update(doc *tokens.Document, records []screenshots.Record) error
}

type timeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time {
	return time.Now()
}

// Orchestrator runs the fetch, transform and write pipeline.
type Orchestrator struct {
	tokenFetcher      tokenFetcher
	screenshotFetcher screenshotFetcher
	updater           docsUpdater

	assetsDir  string
	tokensPath string
	statePath  string

	timeProvider timeProvider
	log          *slog.Logger
}

type options struct {
	// Private members exported for tests.
	tokenFetcher      tokenFetcher
	screenshotFetcher screenshotFetcher
	updater           docsUpdater
	figmaOptions      []figma.Options
	timeProvider      timeProvider
	logger            *slog.Logger
}

// Options represents an optional function to override Orchestrator default values.
type Options func(*options)

// New validates the configuration and builds the pipeline components.
func New(cfg Config, args ...Options) (*Orchestrator, error) {
	if cfg.FigmaToken == "" {
		return nil, fmt.Errorf("%w: figma API token is not set", ErrMissingConfig)
	}
	if cfg.FileKey == "" {
		return nil, fmt.Errorf("%w: figma file key is not set", ErrMissingConfig)
	}

	opts := options{
		timeProvider: realTimeProvider{},
		logger:       slog.Default(),
	}
	for _, opt := range args {
		opt(&opts)
	}

	if opts.tokenFetcher == nil || opts.screenshotFetcher == nil {
		client, err := figma.New(cfg.FigmaToken, opts.figmaOptions...)
		if err != nil {
			return nil, errors.Join(ErrMissingConfig, err)
		}
		if opts.tokenFetcher == nil {
			opts.tokenFetcher = tokens.New(client, cfg.FileKey)
		}
		if opts.screenshotFetcher == nil {
			opts.screenshotFetcher = screenshots.New(client, cfg.FileKey, cfg.NodeIDs, cfg.AssetsDir, cfg.OwnerRepo, cfg.Branch)
		}
	}
	if opts.updater == nil {
		opts.updater = docs.New(cfg.DocsDir, cfg.TokensDir)
	}

	return &Orchestrator{
		tokenFetcher:      opts.tokenFetcher,
		screenshotFetcher: opts.screenshotFetcher,
		updater:           opts.updater,

		assetsDir:  cfg.AssetsDir,
		tokensPath: filepath.Join(cfg.DocsDir, cfg.TokensDir, constants.TokensFileName),
		statePath:  filepath.Join(cfg.DocsDir, constants.SyncStateFileName),

		timeProvider: opts.timeProvider,
		log:          opts.logger,
	}, nil
}

// Run executes one sync: output directories, token fetch, screenshot fetch,
// documentation update, state file.
//
// Fetch failures are logged and degrade their own output to nil or empty so
// the rest of the pipeline still runs. Filesystem failures are fatal.
func (o Orchestrator) Run(ctx context.Context) (err error) {
	defer decorate.OnError(&err, "sync failed")

	if err := o.makeDirs(); err != nil {
		return err
	}

	doc := o.fetchTokens(ctx)
	records := o.fetchScreenshots(ctx)

	if doc != nil {
		if err := doc.Write(o.tokensPath); err != nil {
			return err
		}
		o.log.Info("Token document written", "path", o.tokensPath,
			"colors", len(doc.Colors), "spacing", len(doc.Spacing), "typography", len(doc.Typography))
	}

	if err := o.updater.Update(doc, records); err != nil {
		return err
	}

	return o.writeState(doc, records)
}

// fetchTokens returns nil on failure. Token dependent documentation is then
// left untouched.
func (o Orchestrator) fetchTokens(ctx context.Context) *tokens.Document {
	doc, err := o.tokenFetcher.Fetch(ctx)
	if err != nil {
		o.log.Error("Token fetch failed, continuing without tokens", "err", err)
		return nil
	}
	return doc
}

// fetchScreenshots returns an empty list when the batch call fails, and the
// partial result when only individual downloads failed.
func (o Orchestrator) fetchScreenshots(ctx context.Context) []screenshots.Record {
	records, err := o.screenshotFetcher.Fetch(ctx)
	if err != nil {
		if records == nil {
			o.log.Error("Screenshot fetch failed, continuing without screenshots", "err", err)
			return []screenshots.Record{}
		}
		o.log.Warn("Some screenshot downloads failed, continuing with partial result", "err", err, "downloaded", len(records))
	}
	return records
}

func (o Orchestrator) makeDirs() error {
	for _, dir := range []string{o.assetsDir, filepath.Dir(o.tokensPath)} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}
	return nil
}
