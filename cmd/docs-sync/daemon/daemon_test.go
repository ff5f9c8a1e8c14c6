package daemon_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uxforge/figma-docs-sync/cmd/docs-sync/daemon"
	"github.com/uxforge/figma-docs-sync/internal/constants"
	"github.com/uxforge/figma-docs-sync/internal/sync"
)

type mockOrchestrator struct {
	err error

	runs int
	cfg  sync.Config
}

func (m *mockOrchestrator) Run(context.Context) error {
	m.runs++
	return m.err
}

func TestConfigArg(t *testing.T) {
	filename := "conf.yaml"
	configPath := filepath.Join(t.TempDir(), filename)
	require.NoError(t, os.WriteFile(configPath, []byte("Verbosity: 1"), 0600), "Setup: couldn't write config file")

	a, err := daemon.New()
	require.NoError(t, err, "Setup: New should not return an error")
	a.SetArgs("version", "--config", configPath)

	err = a.Run()
	require.NoError(t, err, "Run should not return an error")
	require.Equal(t, 1, a.Config().Verbosity)
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("DOCS_SYNC_FIGMA_TOKEN", "figd_from_env")

	a, err := daemon.New()
	require.NoError(t, err, "Setup: New should not return an error")
	a.SetArgs("version")

	err = a.Run()
	require.NoError(t, err, "Run should not return an error")
	require.Equal(t, "figd_from_env", a.Config().Sync.FigmaToken)
}

func TestConfigBadArg(t *testing.T) {
	filename := "conf.yaml"
	configPath := filepath.Join(t.TempDir(), filename)

	a, err := daemon.New()
	require.NoError(t, err, "Setup: New should not return an error")
	a.SetArgs("version", "--config", configPath)

	err = a.Run()
	require.Error(t, err, "Run should return an error")
}

func TestNoUsageError(t *testing.T) {
	a, err := daemon.New()
	require.NoError(t, err, "Setup: New should not return an error")
	a.SetArgs("completion", "bash")

	err = a.Run()
	require.NoError(t, err, "Run should not return an error")

	isUsageError := a.UsageError()
	require.False(t, isUsageError, "No usage error is reported as such")
}

func TestUsageError(t *testing.T) {
	t.Parallel()

	a, err := daemon.New()
	require.NoError(t, err, "Setup: New should not return an error")
	a.SetArgs("doesnotexist")

	err = a.Run()
	require.Error(t, err, "Run should return an error")
	isUsageError := a.UsageError()
	require.True(t, isUsageError, "Usage error is reported as such")

	// Test when SilenceUsage is true
	a.SetSilenceUsage(true)
	assert.False(t, a.UsageError())

	// Test when SilenceUsage is false
	a.SetSilenceUsage(false)
	assert.True(t, a.UsageError())
}

func TestRootCmd(t *testing.T) {
	app, err := daemon.New()
	require.NoError(t, err)

	cmd := app.RootCmd()

	assert.NotNil(t, cmd, "Returned root cmd should not be nil")
	assert.Equal(t, constants.CmdName, cmd.Name())
}

func TestRunStartsSync(t *testing.T) {
	o := &mockOrchestrator{}
	var gotCfg sync.Config
	a, err := daemon.New(daemon.WithNewOrchestrator(func(cfg sync.Config) (daemon.Orchestrator, error) {
		gotCfg = cfg
		return o, nil
	}))
	require.NoError(t, err, "Setup: New should not return an error")

	a.SetArgs("--figma-token", "figd_test", "--file-key", "key123", "--node-ids", "1:2,3:4")

	err = a.Run()
	require.NoError(t, err, "Run should not return an error")

	require.Equal(t, 1, o.runs, "exactly one sync run expected")
	assert.Equal(t, "figd_test", gotCfg.FigmaToken)
	assert.Equal(t, "key123", gotCfg.FileKey)
	assert.Equal(t, []string{"1:2", "3:4"}, gotCfg.NodeIDs, "comma-separated node IDs should be split")
}

func TestRunSyncError(t *testing.T) {
	wantErr := errors.New("rate limited")
	a, err := daemon.New(daemon.WithNewOrchestrator(func(sync.Config) (daemon.Orchestrator, error) {
		return &mockOrchestrator{err: wantErr}, nil
	}))
	require.NoError(t, err, "Setup: New should not return an error")

	a.SetArgs("--figma-token", "figd_test", "--file-key", "key123")

	err = a.Run()
	require.ErrorIs(t, err, wantErr, "Run should propagate the sync error")
	require.False(t, a.UsageError(), "a runtime error is not a usage error")
}
