package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/uxforge/figma-docs-sync/internal/screenshots"
	"github.com/uxforge/figma-docs-sync/internal/tokens"
)

var titleCaser = cases.Title(language.English)

// frontMatter is the YAML header of a generated MDX fragment.
type frontMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Generated   bool   `yaml:"generated"`
}

// renderTokenFragment renders one token category page. Tokens are listed
// alphabetically so regenerating from identical data is byte-identical apart
// from the embedded timestamp.
func renderTokenFragment(category string, toks map[string]tokens.Token, timestamp string) ([]byte, error) {
	title := titleCaser.String(category)

	header, err := yaml.Marshal(frontMatter{
		Title:       title,
		Description: fmt.Sprintf("%s design tokens synced from Figma.", title),
		Generated:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal front matter: %v", err)
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Last synced: %s\n\n", timestamp)

	if len(toks) == 0 {
		b.WriteString("No tokens in this category.\n")
		return b.Bytes(), nil
	}

	b.WriteString("| Token | Value | Type |\n")
	b.WriteString("| --- | --- | --- |\n")

	names := make([]string, 0, len(toks))
	for name := range toks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		t := toks[name]
		fmt.Fprintf(&b, "| %s | %s | %s |\n", name, renderValue(t.Value), t.Type)
	}

	return b.Bytes(), nil
}

// renderValue formats a token value for a documentation table. Strings pass
// through unchanged, structured values (color objects and the like) are
// rendered as compact JSON.
func renderValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// renderScreenshotSection renders the body of a component screenshots
// section, one sub-heading per screenshot.
func renderScreenshotSection(records []screenshots.Record) string {
	var b bytes.Buffer
	for i, r := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "### %s\n\n", r.NodeID)
		fmt.Fprintf(&b, "![%s](%s)\n", r.SafeID, r.PublicURL)
	}
	return b.String()
}
