package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uxforge/figma-docs-sync/internal/dispatch"
)

type mockDispatcher struct {
	err error

	owner, repo string
	opts        github.DispatchRequestOptions
	calls       int
}

func (m *mockDispatcher) Dispatch(_ context.Context, owner, repo string, opts github.DispatchRequestOptions) (*github.Repository, *github.Response, error) {
	m.calls++
	m.owner, m.repo, m.opts = owner, repo, opts
	return nil, nil, m.err
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		token     string
		ownerRepo string

		wantErr bool
	}{
		"Valid configuration": {token: "ghp_token", ownerRepo: "uxforge/design-docs"},

		"Error on missing token":             {token: "", ownerRepo: "uxforge/design-docs", wantErr: true},
		"Error on missing repository":        {token: "ghp_token", ownerRepo: "", wantErr: true},
		"Error on repository without owner":  {token: "ghp_token", ownerRepo: "/design-docs", wantErr: true},
		"Error on repository without a name": {token: "ghp_token", ownerRepo: "uxforge/", wantErr: true},
		"Error on repository without slash":  {token: "ghp_token", ownerRepo: "design-docs", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := dispatch.New(tc.token, tc.ownerRepo)
			if tc.wantErr {
				require.ErrorIs(t, err, dispatch.ErrMissingConfig, "New should fail fast on misconfiguration")
				return
			}
			require.NoError(t, err, "New should not fail on valid configuration")
		})
	}
}

func TestForward(t *testing.T) {
	t.Parallel()

	d := &mockDispatcher{}
	f, err := dispatch.New("ghp_token", "uxforge/design-docs",
		dispatch.WithDispatcher(d), dispatch.WithTimeProvider(dispatch.MockTimeProvider{CurrentTime: 1000}))
	require.NoError(t, err, "Setup: New should not fail")

	event := dispatch.Event{
		Type:        "FILE_UPDATE",
		FileName:    "Design System",
		FileKey:     "key123",
		TriggeredBy: "ada",
	}
	require.NoError(t, f.Forward(context.Background(), event), "Forward should not fail")

	require.Equal(t, 1, d.calls, "exactly one dispatch expected")
	assert.Equal(t, "uxforge", d.owner, "owner should come from the configured repository")
	assert.Equal(t, "design-docs", d.repo, "repo should come from the configured repository")
	assert.Equal(t, "figma-update", d.opts.EventType, "dispatches should carry the fixed event type")

	require.NotNil(t, d.opts.ClientPayload, "dispatches should carry a client payload")
	var payload struct {
		EventType   string `json:"event_type"`
		FileName    string `json:"file_name"`
		FileKey     string `json:"file_key"`
		TriggeredBy string `json:"triggered_by"`
		Timestamp   string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(*d.opts.ClientPayload, &payload), "client payload should be JSON")
	assert.Equal(t, event.Type, payload.EventType)
	assert.Equal(t, event.FileName, payload.FileName)
	assert.Equal(t, event.FileKey, payload.FileKey)
	assert.Equal(t, event.TriggeredBy, payload.TriggeredBy)
	assert.Equal(t, "1970-01-01T00:16:40Z", payload.Timestamp, "timestamp should come from the time provider")
}

func TestForwardError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("422 Unprocessable Entity")
	d := &mockDispatcher{err: wantErr}
	f, err := dispatch.New("ghp_token", "uxforge/design-docs", dispatch.WithDispatcher(d))
	require.NoError(t, err, "Setup: New should not fail")

	err = f.Forward(context.Background(), dispatch.Event{Type: "FILE_UPDATE"})
	require.ErrorIs(t, err, wantErr, "the forge error should be preserved in the chain")
}
