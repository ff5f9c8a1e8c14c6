// TiCS: disabled // Test helpers.

package testutils

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var update bool

func init() {
	flag.BoolVar(&update, "update", false, "update golden files")
}

// GoldenPath returns the golden path for the provided test.
func GoldenPath(t *testing.T) string {
	t.Helper()

	path := filepath.Join("testdata", "golden")
	path = filepath.Join(path, normalizeName(t.Name()))

	return path
}

// LoadWithUpdateFromGolden loads the element from a plaintext golden file.
// It will update the file if the update flag is used prior to loading it.
func LoadWithUpdateFromGolden(t *testing.T, data string) string {
	t.Helper()

	goldenPath := GoldenPath(t)

	if update {
		t.Logf("updating golden file %s", goldenPath)
		err := os.MkdirAll(filepath.Dir(goldenPath), 0750)
		require.NoError(t, err, "Cannot create directory for updating golden files")
		err = os.WriteFile(goldenPath, []byte(data), 0600)
		require.NoError(t, err, "Cannot write golden file")
	}

	want, err := os.ReadFile(goldenPath)
	require.NoError(t, err, "Cannot load golden file")

	return string(want)
}

// LoadWithUpdateFromGoldenYAML load the generic element from a YAML serialized golden file.
// It will update the file if the update flag is used prior to deserializing it.
func LoadWithUpdateFromGoldenYAML[E any](t *testing.T, got E) E {
	t.Helper()

	t.Logf("Testing golden file %s", GoldenPath(t))

	if update {
		b, err := yaml.Marshal(got)
		require.NoError(t, err, "Cannot marshal object to YAML")
		LoadWithUpdateFromGolden(t, string(b))
	}

	var want E
	b, err := os.ReadFile(GoldenPath(t))
	require.NoError(t, err, "Cannot read golden file")
	err = yaml.Unmarshal(b, &want)
	require.NoError(t, err, "Cannot deserialize golden file")

	return want
}

// normalizeName returns a path from name with characters unsuitable for file
// names replaced. Subtest separators are kept so each subtest gets its own
// golden file in a subdirectory.
func normalizeName(name string) string {
	name = strings.ReplaceAll(name, ":", "_")
	name = strings.ReplaceAll(name, " ", "_")
	return name
}
