// Package tokens implements the token fetcher component.
// The token fetcher maps Figma design variables into a flat token document
// with colors, spacing and typography categories. The on-disk document is
// rebuilt in full on every sync, fully replacing prior content.
package tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/uxforge/figma-docs-sync/internal/figma"
	"github.com/uxforge/figma-docs-sync/internal/fileutils"
)

// Token is a single design token value with its resolved type.
type Token struct {
	Value any    `json:"value"`
	Type  string `json:"type"`
}

// Document is the normalized token document persisted as JSON.
type Document struct {
	Colors     map[string]Token `json:"colors"`
	Spacing    map[string]Token `json:"spacing"`
	Typography map[string]Token `json:"typography"`
	LastSync   string           `json:"lastSync"`

	// Unclassified counts variables matching no category. They are dropped
	// from the document, the count is kept for visibility.
	Unclassified int `json:"-"`
}

type variablesGetter interface {
	LocalVariables(ctx context.Context, fileKey string) (*figma.VariablesResponse, error)
}

type timeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time {
	return time.Now()
}

// Manager is an abstraction of the token fetcher component.
type Manager struct {
	client  variablesGetter
	fileKey string

	timeProvider timeProvider
	log          *slog.Logger
}

type options struct {
	// Private members exported for tests.
	timeProvider timeProvider
	logger       *slog.Logger
}

// Options represents an optional function to override Manager default values.
type Options func(*options)

// New returns a new token fetcher for the given file.
func New(client variablesGetter, fileKey string, args ...Options) Manager {
	opts := options{
		timeProvider: realTimeProvider{},
		logger:       slog.Default(),
	}
	for _, opt := range args {
		opt(&opts)
	}

	return Manager{
		client:  client,
		fileKey: fileKey,

		timeProvider: opts.timeProvider,
		log:          opts.logger,
	}
}

// Fetch retrieves the file's local variables and builds the token document.
//
// Each variable contributes the value of its collection's default mode, and is
// classified into exactly one category by testing the variable name and its
// collection name for category substrings, first match winning. Variables
// matching no category are dropped and counted.
func (m Manager) Fetch(ctx context.Context) (*Document, error) {
	m.log.Debug("Fetching design variables", "fileKey", m.fileKey)

	resp, err := m.client.LocalVariables(ctx, m.fileKey)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch design variables: %w", err)
	}

	doc := &Document{
		Colors:     make(map[string]Token),
		Spacing:    make(map[string]Token),
		Typography: make(map[string]Token),
		LastSync:   m.timeProvider.Now().Format(time.RFC3339),
	}

	for _, v := range resp.Meta.Variables {
		collection, ok := resp.Meta.VariableCollections[v.VariableCollectionID]
		if !ok {
			m.log.Warn("Variable references unknown collection, skipping", "variable", v.Name, "collection", v.VariableCollectionID)
			continue
		}

		value, ok := v.ValuesByMode[collection.DefaultModeID]
		if !ok {
			m.log.Warn("Variable has no value for the collection default mode, skipping", "variable", v.Name, "mode", collection.DefaultModeID)
			continue
		}

		switch classify(v.Name, collection.Name) {
		case categoryColors:
			doc.Colors[v.Name] = Token{Value: value, Type: v.ResolvedType}
		case categorySpacing:
			doc.Spacing[v.Name] = Token{Value: fmt.Sprintf("%vpx", value), Type: v.ResolvedType}
		case categoryTypography:
			doc.Typography[v.Name] = Token{Value: value, Type: v.ResolvedType}
		default:
			doc.Unclassified++
		}
	}

	if doc.Unclassified > 0 {
		m.log.Warn("Some variables matched no token category and were dropped", "count", doc.Unclassified)
	}

	return doc, nil
}

// Write persists the document as indented JSON, atomically replacing any
// previous document at path.
func (d Document) Write(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token document: %v", err)
	}
	data = append(data, '\n')

	if err := fileutils.AtomicWrite(path, data); err != nil {
		return fmt.Errorf("failed to write token document: %v", err)
	}
	return nil
}

type category int

const (
	categoryNone category = iota
	categoryColors
	categorySpacing
	categoryTypography
)

// classify places a variable in the first matching category, testing the
// variable name before its collection name.
func classify(variableName, collectionName string) category {
	name := strings.ToLower(variableName)
	collection := strings.ToLower(collectionName)

	match := func(substrings ...string) bool {
		for _, s := range substrings {
			if strings.Contains(name, s) || strings.Contains(collection, s) {
				return true
			}
		}
		return false
	}

	switch {
	case match("color"):
		return categoryColors
	case match("spacing"):
		return categorySpacing
	case match("font", "typography"):
		return categoryTypography
	default:
		return categoryNone
	}
}
