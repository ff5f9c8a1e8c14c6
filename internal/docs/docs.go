// Package docs implements the documentation updater component.
// The updater rewrites generated documentation fragments from fetched token
// and screenshot data: a sync timestamp in the introduction page, one fragment
// per token category, and the screenshot sections of the component pages.
// The three rewrite operations are independent, each tolerant of the others'
// input being absent.
package docs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ubuntu/decorate"
	"github.com/uxforge/figma-docs-sync/internal/constants"
	"github.com/uxforge/figma-docs-sync/internal/fileutils"
	"github.com/uxforge/figma-docs-sync/internal/screenshots"
	"github.com/uxforge/figma-docs-sync/internal/tokens"
)

const (
	introFileName      = "intro.mdx"
	componentsDirName  = "components"
	screenshotsHeading = "## Component Screenshots"
	timestampLayout    = "2006-01-02 15:04:05"
)

// legacyAlertNodeID is a frame that predates the component naming convention
// and carries a bare numeric ID. It belongs to the alerts page.
const legacyAlertNodeID = "1:236"

var warningCalloutRe = regexp.MustCompile(`(?s):::warning.*?:::\n*`)

type timeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time {
	return time.Now()
}

// Updater rewrites documentation fragments in place.
type Updater struct {
	docsDir   string
	tokensDir string

	timeProvider timeProvider
	log          *slog.Logger
}

type options struct {
	// Private members exported for tests.
	timeProvider timeProvider
	logger       *slog.Logger
}

// Options represents an optional function to override Updater default values.
type Options func(*options)

// New returns a new documentation updater rooted at docsDir.
// Token fragments are written under docsDir/tokensDir.
func New(docsDir, tokensDir string, args ...Options) Updater {
	opts := options{
		timeProvider: realTimeProvider{},
		logger:       slog.Default(),
	}
	for _, opt := range args {
		opt(&opts)
	}

	return Updater{
		docsDir:   docsDir,
		tokensDir: filepath.Join(docsDir, tokensDir),

		timeProvider: opts.timeProvider,
		log:          opts.logger,
	}
}

// Update performs the three rewrite operations. A nil token document skips the
// token fragments, an empty record list skips the component pages. Filesystem
// failures are fatal and abort the remaining operations.
func (u Updater) Update(doc *tokens.Document, records []screenshots.Record) (err error) {
	defer decorate.OnError(&err, "documentation update failed")

	if err := u.updateIntro(); err != nil {
		return err
	}

	if doc == nil {
		u.log.Info("No token document, leaving token fragments untouched")
	} else if err := u.updateTokenFragments(*doc); err != nil {
		return err
	}

	if len(records) == 0 {
		u.log.Info("No screenshots, leaving component pages untouched")
	} else if err := u.updateComponentPages(records); err != nil {
		return err
	}

	return nil
}

// updateIntro replaces every last-sync placeholder in the introduction page
// with the current local timestamp.
func (u Updater) updateIntro() error {
	path := filepath.Join(u.docsDir, introFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			u.log.Warn("Introduction page not found, skipping timestamp update", "file", path)
			return nil
		}
		return fmt.Errorf("failed to read introduction page: %v", err)
	}

	if !strings.Contains(string(data), constants.LastSyncMarker) {
		u.log.Debug("Introduction page has no last-sync marker")
		return nil
	}

	updated := strings.ReplaceAll(string(data), constants.LastSyncMarker, u.now())
	if err := fileutils.AtomicWrite(path, []byte(updated)); err != nil {
		return fmt.Errorf("failed to write introduction page: %v", err)
	}

	u.log.Info("Updated last-sync timestamp", "file", path)
	return nil
}

// updateTokenFragments fully overwrites the three token fragments from the
// document. Each fragment embeds its own render-time timestamp.
func (u Updater) updateTokenFragments(doc tokens.Document) error {
	if err := os.MkdirAll(u.tokensDir, 0750); err != nil {
		return fmt.Errorf("failed to create tokens directory: %v", err)
	}

	fragments := []struct {
		category string
		tokens   map[string]tokens.Token
	}{
		{"colors", doc.Colors},
		{"spacing", doc.Spacing},
		{"typography", doc.Typography},
	}

	for _, f := range fragments {
		path := filepath.Join(u.tokensDir, f.category+".mdx")
		content, err := renderTokenFragment(f.category, f.tokens, u.now())
		if err != nil {
			return fmt.Errorf("failed to render %s fragment: %v", f.category, err)
		}
		if err := fileutils.AtomicWrite(path, content); err != nil {
			return fmt.Errorf("failed to write %s fragment: %v", f.category, err)
		}
		u.log.Info("Regenerated token fragment", "file", path, "tokens", len(f.tokens))
	}

	return nil
}

// updateComponentPages groups the screenshot records by component category and
// rewrites the screenshots section of each matching page. Warning callouts are
// stripped so a stale "no screenshots yet" notice disappears once real
// screenshots are injected.
func (u Updater) updateComponentPages(records []screenshots.Record) error {
	groups := groupByComponent(records)

	var err error
	for _, category := range []string{"alerts", "forms", "cards"} {
		group := groups[category]
		if len(group) == 0 {
			continue
		}
		err = errors.Join(err, u.updateComponentPage(category, group))
	}
	return err
}

func (u Updater) updateComponentPage(category string, records []screenshots.Record) error {
	path := filepath.Join(u.docsDir, componentsDirName, category+".mdx")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			u.log.Warn("Component page not found, skipping", "file", path)
			return nil
		}
		return fmt.Errorf("failed to read component page %s: %v", category, err)
	}

	content := replaceSection(string(data), screenshotsHeading, renderScreenshotSection(records))
	content = warningCalloutRe.ReplaceAllString(content, "")

	if err := fileutils.AtomicWrite(path, []byte(content)); err != nil {
		return fmt.Errorf("failed to write component page %s: %v", category, err)
	}

	u.log.Info("Updated component screenshots", "file", path, "screenshots", len(records))
	return nil
}

func (u Updater) now() string {
	return u.timeProvider.Now().Format(timestampLayout)
}

// groupByComponent buckets records into the fixed component categories by
// substring match on the node ID. Records matching no category land in
// "other" and are not written anywhere.
func groupByComponent(records []screenshots.Record) map[string][]screenshots.Record {
	groups := make(map[string][]screenshots.Record)
	for _, r := range records {
		groups[componentCategory(r.NodeID)] = append(groups[componentCategory(r.NodeID)], r)
	}
	return groups
}

func componentCategory(nodeID string) string {
	id := strings.ToLower(nodeID)
	switch {
	case nodeID == legacyAlertNodeID, strings.Contains(id, "alert"):
		return "alerts"
	case strings.Contains(id, "form"):
		return "forms"
	case strings.Contains(id, "card"):
		return "cards"
	default:
		return "other"
	}
}

// replaceSection swaps the body of the section opened by heading, up to the
// next heading of the same level or the end of the file. If the heading is not
// present the section is appended.
func replaceSection(content, heading, body string) string {
	start := strings.Index(content, heading)
	if start == -1 {
		return strings.TrimRight(content, "\n") + "\n\n" + heading + "\n\n" + body + "\n"
	}

	rest := content[start+len(heading):]
	if next := strings.Index(rest, "\n## "); next != -1 {
		// rest[next:] starts at the newline preceding the next heading.
		return content[:start] + heading + "\n\n" + body + rest[next:]
	}

	return content[:start] + heading + "\n\n" + body + "\n"
}
