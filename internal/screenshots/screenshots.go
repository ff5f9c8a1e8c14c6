// Package screenshots implements the screenshot fetcher component.
// The screenshot fetcher renders a configured set of frames through the Figma
// images endpoint and downloads each rendered PNG into the assets directory.
package screenshots

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/uxforge/figma-docs-sync/internal/constants"
)

const (
	renderFormat = "png"
	renderScale  = 2
)

// Record associates a rendered node with its downloaded file.
type Record struct {
	NodeID    string
	SafeID    string
	FileName  string
	PublicURL string
}

type renderClient interface {
	RenderImages(ctx context.Context, fileKey string, nodeIDs []string, format string, scale int) (map[string]*string, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// Manager is an abstraction of the screenshot fetcher component.
type Manager struct {
	client  renderClient
	fileKey string
	nodeIDs []string

	assetsDir  string
	publicPath string
	ownerRepo  string
	branch     string

	log *slog.Logger
}

type options struct {
	logger *slog.Logger
}

// Options represents an optional function to override Manager default values.
type Options func(*options)

// New returns a new screenshot fetcher.
//
// ownerRepo and branch locate the hosting repository so each record can carry
// the public raw content URL of its downloaded file.
func New(client renderClient, fileKey string, nodeIDs []string, assetsDir, ownerRepo, branch string, args ...Options) Manager {
	opts := options{
		logger: slog.Default(),
	}
	for _, opt := range args {
		opt(&opts)
	}

	return Manager{
		client:  client,
		fileKey: fileKey,
		nodeIDs: nodeIDs,

		assetsDir:  assetsDir,
		publicPath: publicAssetPath(assetsDir),
		ownerRepo:  ownerRepo,
		branch:     branch,

		log: opts.logger,
	}
}

// Fetch renders all configured nodes in one batch call and downloads each
// rendered image.
//
// An empty node list is not an error: the component warns and returns an empty
// result. A failing batch call aborts the whole fetch. Individual download
// failures only skip their own image; the remaining downloads proceed and the
// failures are joined into the returned error alongside the partial records.
func (m Manager) Fetch(ctx context.Context) ([]Record, error) {
	if len(m.nodeIDs) == 0 {
		m.log.Warn("No screenshot nodes configured, skipping screenshot fetch")
		return []Record{}, nil
	}

	m.log.Debug("Rendering screenshots", "fileKey", m.fileKey, "nodes", m.nodeIDs)

	images, err := m.client.RenderImages(ctx, m.fileKey, m.nodeIDs, renderFormat, renderScale)
	if err != nil {
		return nil, fmt.Errorf("failed to render screenshots: %w", err)
	}

	records := []Record{}
	var downloadErr error
	for _, nodeID := range m.nodeIDs {
		url, ok := images[nodeID]
		if !ok || url == nil {
			m.log.Warn("Design tool could not render node, skipping", "node", nodeID)
			continue
		}

		record, err := m.download(ctx, nodeID, *url)
		if err != nil {
			m.log.Warn("Failed to download screenshot", "node", nodeID, "error", err)
			downloadErr = errors.Join(downloadErr, fmt.Errorf("download failed for node %s: %w", nodeID, err))
			continue
		}
		records = append(records, record)
	}

	return records, downloadErr
}

// download fetches one rendered image and writes it under its deterministic
// filename.
func (m Manager) download(ctx context.Context, nodeID, url string) (Record, error) {
	data, err := m.client.Download(ctx, url)
	if err != nil {
		return Record{}, err
	}

	safeID := SafeID(nodeID)
	fileName := constants.ScreenshotFilePrefix + safeID + constants.ScreenshotFileExt
	if err := os.WriteFile(filepath.Join(m.assetsDir, fileName), data, 0600); err != nil {
		return Record{}, fmt.Errorf("failed to write image file: %v", err)
	}

	return Record{
		NodeID:    nodeID,
		SafeID:    safeID,
		FileName:  fileName,
		PublicURL: m.publicURL(fileName),
	}, nil
}

func (m Manager) publicURL(fileName string) string {
	return "https://raw.githubusercontent.com/" + m.ownerRepo + "/" + path.Join(m.branch, m.publicPath, fileName)
}

// publicAssetPath derives the repository-relative URL segment for the assets
// directory. Raw content URLs address files inside the hosted repository, so
// an absolute assetsDir, which points into a local checkout, maps to the
// canonical assets location instead of leaking the checkout path.
func publicAssetPath(assetsDir string) string {
	if filepath.IsAbs(assetsDir) {
		return constants.DefaultAssetsDir
	}
	return filepath.ToSlash(filepath.Clean(assetsDir))
}

// SafeID converts a node ID into a filesystem and URL safe identifier.
// Colons are reserved in many filesystems and URL paths.
func SafeID(nodeID string) string {
	return strings.ReplaceAll(nodeID, ":", "-")
}
