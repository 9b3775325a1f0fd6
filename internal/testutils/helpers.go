// Package testutils holds helpers shared by adapter tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// BundleRepo creates a loam repository in a temp directory, seeds it with
// the given bundle files (name to markdown content) and returns its absolute
// path. Versioning is disabled so no git binary is required.
func BundleRepo(t *testing.T, bundles map[string]string, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err)

	repo, err := loam.Init(dir, append([]loam.Option{loam.WithVersioning(false)}, opts...)...)
	require.NoError(t, err, "init bundle repo")

	for name, content := range bundles {
		WriteBundle(t, dir, name, content)
	}
	return dir, repo
}

// WriteBundle writes one bundle file below dir, creating parent directories.
func WriteBundle(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
