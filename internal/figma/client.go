// Package figma implements a thin client for the Figma REST API.
// Only the endpoints needed by the sync pipeline are covered: local file
// variables and batch image rendering.
package figma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/uxforge/figma-docs-sync/internal/constants"
)

var (
	// ErrTimeout is returned when a request to the Figma API times out.
	ErrTimeout = errors.New("figma request timed out")
	// ErrMissingToken is returned when the client is created without an API token.
	ErrMissingToken = errors.New("figma API token cannot be empty")
)

// APIError is returned for non-success HTTP responses from the Figma API.
type APIError struct {
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("figma API error: %s", e.Status)
}

// Client talks to the Figma REST API.
type Client struct {
	token   string
	baseURL string

	httpClient *http.Client
}

type options struct {
	// Private members exported for tests.
	baseURL string
	timeout time.Duration
}

// Options represents an optional function to override Client default values.
type Options func(*options)

// WithBaseURL overrides the API base URL. Used in tests.
func WithBaseURL(u string) Options {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Options {
	return func(o *options) {
		o.timeout = d
	}
}

// New returns a new Figma API client authenticated with token.
func New(token string, args ...Options) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	opts := options{
		baseURL: constants.DefaultFigmaAPIURL,
		timeout: 30 * time.Second,
	}
	for _, opt := range args {
		opt(&opts)
	}

	return &Client{
		token:      token,
		baseURL:    strings.TrimSuffix(opts.baseURL, "/"),
		httpClient: &http.Client{Timeout: opts.timeout},
	}, nil
}

// LocalVariables fetches the local variables of a file.
func (c Client) LocalVariables(ctx context.Context, fileKey string) (*VariablesResponse, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/files/%s/variables/local", c.baseURL, url.PathEscape(fileKey)))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch variables: %w", err)
	}

	var vr VariablesResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("failed to decode variables response: %v", err)
	}
	return &vr, nil
}

// RenderImages requests rendered images for the given node IDs in one batch
// call. The returned map associates each node ID with its image URL; nodes the
// design tool could not render map to nil.
func (c Client) RenderImages(ctx context.Context, fileKey string, nodeIDs []string, format string, scale int) (map[string]*string, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(nodeIDs, ","))
	q.Set("format", format)
	q.Set("scale", fmt.Sprint(scale))

	body, err := c.get(ctx, fmt.Sprintf("%s/images/%s?%s", c.baseURL, url.PathEscape(fileKey), q.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to render images: %w", err)
	}

	var ir imagesResponse
	if err := json.Unmarshal(body, &ir); err != nil {
		return nil, fmt.Errorf("failed to decode images response: %v", err)
	}
	if ir.Err != nil {
		return nil, fmt.Errorf("image rendering failed: %s", *ir.Err)
	}
	return ir.Images, nil
}

// Download fetches the content at url. Meant for the short-lived image URLs
// returned by RenderImages, which are served off Figma's CDN and need no auth.
func (c Client) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapTimeout(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return io.ReadAll(resp.Body)
}

// get performs an authenticated GET against the Figma API and returns the
// response body on a 200, or an APIError for any other status.
func (c Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("X-Figma-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapTimeout(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return io.ReadAll(resp.Body)
}

// wrapTimeout surfaces client timeouts as a distinct error kind so callers can
// report a hung upstream instead of a generic network failure.
func wrapTimeout(err error) error {
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return errors.Join(ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	return fmt.Errorf("failed to send HTTP request: %v", err)
}
