package webhook_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uxforge/figma-docs-sync/internal/webhook"
)

func TestConfigLoad(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content string
		noFile  bool

		wantErr     bool
		wantAllowed []string
		wantDenied  []string
	}{
		"Valid config restricts to listed keys": {
			content:     `{"watchedFileKeys": ["abc", "def"]}`,
			wantAllowed: []string{"abc", "def"},
			wantDenied:  []string{"ghi", ""},
		},
		"Empty list allows everything": {
			content:     `{"watchedFileKeys": []}`,
			wantAllowed: []string{"abc", "anything"},
		},
		"Missing file allows everything": {
			noFile:      true,
			wantAllowed: []string{"abc", "anything"},
		},

		"Error on invalid JSON": {content: `{not json`, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "config.json")
			if !tc.noFile {
				require.NoError(t, os.WriteFile(path, []byte(tc.content), 0600), "Setup: failed to write config file")
			}

			cm := webhook.NewConfigManager(path)
			err := cm.Load()
			if tc.wantErr {
				require.Error(t, err, "expected an error but got none")
				return
			}
			require.NoError(t, err, "got an unexpected error")

			for _, key := range tc.wantAllowed {
				assert.True(t, cm.IsAllowed(key), "key %q should be allowed", key)
			}
			for _, key := range tc.wantDenied {
				assert.False(t, cm.IsAllowed(key), "key %q should not be allowed", key)
			}
		})
	}
}

func TestConfigWatchReloads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"watchedFileKeys": ["abc"]}`), 0600), "Setup: failed to write config file")

	cm := webhook.NewConfigManager(path)
	require.NoError(t, cm.Load(), "Setup: initial load failed")
	require.False(t, cm.IsAllowed("def"), "Setup: def should not be allowed yet")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, _, err := cm.Watch(ctx)
	require.NoError(t, err, "Setup: failed to start watching")

	require.NoError(t, os.WriteFile(path, []byte(`{"watchedFileKeys": ["def"]}`), 0600), "Setup: failed to rewrite config file")

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for configuration reload")
	}

	assert.True(t, cm.IsAllowed("def"), "def should be allowed after reload")
	assert.False(t, cm.IsAllowed("abc"), "abc should not be allowed after reload")
}
