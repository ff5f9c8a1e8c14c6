package sync

import (
	"bytes"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/uxforge/figma-docs-sync/internal/fileutils"
	"github.com/uxforge/figma-docs-sync/internal/screenshots"
	"github.com/uxforge/figma-docs-sync/internal/tokens"
)

// State records the outcome of the last sync run. It is rewritten after every
// run and is informational only: nothing in the pipeline reads it back.
type State struct {
	LastRun time.Time `toml:"last_run"`

	TokensSynced          bool `toml:"tokens_synced"`
	TokenCount            int  `toml:"token_count"`
	UnclassifiedVariables int  `toml:"unclassified_variables"`

	ScreenshotCount int `toml:"screenshot_count"`
}

// writeState persists the state file next to the generated documentation.
func (o Orchestrator) writeState(doc *tokens.Document, records []screenshots.Record) error {
	state := State{
		LastRun:         o.timeProvider.Now(),
		ScreenshotCount: len(records),
	}
	if doc != nil {
		state.TokensSynced = true
		state.TokenCount = len(doc.Colors) + len(doc.Spacing) + len(doc.Typography)
		state.UnclassifiedVariables = doc.Unclassified
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(state); err != nil {
		return fmt.Errorf("could not encode sync state: %v", err)
	}

	if err := fileutils.AtomicWrite(o.statePath, buf.Bytes()); err != nil {
		return fmt.Errorf("could not write sync state: %v", err)
	}

	o.log.Debug("Sync state written", "path", o.statePath)
	return nil
}
