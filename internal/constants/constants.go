// Package constants is responsible for defining the constants used in the application.
package constants

import (
	"log/slog"
)

var (
	// Version is the version of the application.
	Version = "Dev"
)

const (
	// CmdName is the name of the sync command line tool.
	CmdName = "docs-sync"

	// WebhookCmdName is the name of the webhook service command.
	WebhookCmdName = "figma-webhook-service"

	// DefaultLogLevel is the default log level selected without any verbosity flags.
	DefaultLogLevel = slog.LevelWarn

	// DefaultFigmaAPIURL is the base URL of the Figma REST API.
	DefaultFigmaAPIURL = "https://api.figma.com/v1"

	// DefaultDocsDir is the directory holding the generated documentation fragments.
	DefaultDocsDir = "docs"

	// DefaultTokensDir is the subdirectory of the docs directory for token fragments.
	DefaultTokensDir = "tokens"

	// DefaultAssetsDir is the directory screenshots are downloaded into.
	DefaultAssetsDir = "static/img/figma"

	// TokensFileName is the name of the generated token document.
	TokensFileName = "design-tokens.json"

	// SyncStateFileName is the name of the state file written after each sync run.
	SyncStateFileName = "last-sync.toml"

	// LastSyncMarker is the placeholder replaced with the sync timestamp in docs.
	LastSyncMarker = "{{LAST_SYNC}}"

	// SignatureHeader is the webhook request header carrying the HMAC signature.
	SignatureHeader = "x-figma-signature"

	// DispatchEventType is the repository dispatch event type sent to the forge.
	DispatchEventType = "figma-update"

	// FileUpdateEvent is the only Figma webhook event that triggers a dispatch.
	FileUpdateEvent = "FILE_UPDATE"

	// ScreenshotFilePrefix is the prefix of downloaded screenshot files.
	ScreenshotFilePrefix = "figma-"

	// ScreenshotFileExt is the extension of downloaded screenshot files.
	ScreenshotFileExt = ".png"
)
