// Package dispatch implements the dispatch forwarder component.
// The forwarder turns an accepted Figma webhook event into a GitHub
// repository-dispatch event so CI re-runs the documentation sync.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/ubuntu/decorate"
	"github.com/uxforge/figma-docs-sync/internal/constants"
)

// ErrMissingConfig is returned when the forge token or repository identifier
// is absent. This is a fatal misconfiguration, not a retryable error.
var ErrMissingConfig = errors.New("missing dispatch configuration")

// Event is a normalized Figma webhook event.
type Event struct {
	Type        string `json:"event_type"`
	FileName    string `json:"file_name"`
	FileKey     string `json:"file_key"`
	TriggeredBy string `json:"triggered_by"`
}

// payload is the client payload attached to the repository dispatch. It
// mirrors the webhook event fields plus a fresh timestamp.
type payload struct {
	Event
	Timestamp string `json:"timestamp"`
}

type dispatcher interface {
	Dispatch(ctx context.Context, owner, repo string, opts github.DispatchRequestOptions) (*github.Repository, *github.Response, error)
}

type timeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time {
	return time.Now()
}

// Forwarder sends repository-dispatch events to one repository.
type Forwarder struct {
	dispatcher dispatcher
	owner      string
	repo       string

	timeProvider timeProvider
	log          *slog.Logger
}

type options struct {
	// Private members exported for tests.
	dispatcher   dispatcher
	timeProvider timeProvider
	logger       *slog.Logger
}

// Options represents an optional function to override Forwarder default values.
type Options func(*options)

// New returns a new Forwarder targeting ownerRepo ("owner/repo") with token.
// It fails fast on absent or malformed configuration, before any network call.
func New(token, ownerRepo string, args ...Options) (*Forwarder, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: forge auth token is not set", ErrMissingConfig)
	}

	owner, repo, ok := strings.Cut(ownerRepo, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("%w: repository must be in owner/repo form, got %q", ErrMissingConfig, ownerRepo)
	}

	opts := options{
		timeProvider: realTimeProvider{},
		logger:       slog.Default(),
	}
	for _, opt := range args {
		opt(&opts)
	}
	if opts.dispatcher == nil {
		opts.dispatcher = github.NewClient(nil).WithAuthToken(token).Repositories
	}

	return &Forwarder{
		dispatcher: opts.dispatcher,
		owner:      owner,
		repo:       repo,

		timeProvider: opts.timeProvider,
		log:          opts.logger,
	}, nil
}

// Forward sends one repository-dispatch event carrying the webhook event
// fields. A non-2xx response from the forge propagates to the caller with the
// HTTP status and response body attached. No retry.
func (f Forwarder) Forward(ctx context.Context, event Event) (err error) {
	defer decorate.OnError(&err, "repository dispatch failed")

	raw, err := json.Marshal(payload{Event: event, Timestamp: f.timeProvider.Now().Format(time.RFC3339)})
	if err != nil {
		return fmt.Errorf("failed to marshal client payload: %v", err)
	}
	clientPayload := json.RawMessage(raw)

	f.log.Debug("Sending repository dispatch", "owner", f.owner, "repo", f.repo, "event", event.Type)

	_, _, err = f.dispatcher.Dispatch(ctx, f.owner, f.repo, github.DispatchRequestOptions{
		EventType:     constants.DispatchEventType,
		ClientPayload: &clientPayload,
	})
	if err != nil {
		return err
	}

	f.log.Info("Repository dispatch sent", "repo", f.owner+"/"+f.repo, "file", event.FileKey)
	return nil
}
