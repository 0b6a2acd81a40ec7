package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgen-dev/buildgen/internal/config"
	"github.com/buildgen-dev/buildgen/internal/pkgfile"
)

func newTestConfig(t *testing.T, root string) *config.Config {
	t.Helper()
	tool := &config.ToolConfig{ProjectRoot: root}
	config.ApplyDefaults(tool)
	cfg, err := config.NewConfig(root, tool, "")
	require.NoError(t, err)
	return cfg
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("name: X\ntype: library\n"), 0644))
}

func TestGetFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "src", "Base", pkgfile.FileName))
	touch(t, filepath.Join(root, "src", "App", pkgfile.FileName))
	touch(t, filepath.Join(root, "build", "ubuntu", pkgfile.FileName))
	touch(t, filepath.Join(root, ".git", "x", pkgfile.FileName))
	touch(t, filepath.Join(root, "third_party", "Old", pkgfile.FileName))
	touch(t, filepath.Join(root, "src", "App", "notes.yaml"))
	require.NoError(t, os.WriteFile(filepath.Join(root, IgnoreFile), []byte("third_party/\n"), 0644))

	files, err := GetFiles(newTestConfig(t, root))
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "src", "App", pkgfile.FileName),
		filepath.Join(root, "src", "Base", pkgfile.FileName),
	}, files)
}

func TestGetFiles_ConfiguredIgnore(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "src", "Base", pkgfile.FileName))
	touch(t, filepath.Join(root, "samples", "Demo", pkgfile.FileName))

	cfg := newTestConfig(t, root)
	cfg.Tool.Ignore = []string{"samples/"}

	files, err := GetFiles(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "src", "Base", pkgfile.FileName)}, files)
}

func TestGetFiles_NoPackages(t *testing.T) {
	root := t.TempDir()
	_, err := GetFiles(newTestConfig(t, root))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPackages))
}

func TestGetFiles_MissingRoot(t *testing.T) {
	root := t.TempDir()
	cfg := newTestConfig(t, root)
	cfg.Tool.PackageRoots = []string{"missing"}

	_, err := GetFiles(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "package root missing")
}

func TestIsBelow(t *testing.T) {
	assert.True(t, IsBelow(filepath.Join("a", "b"), "a"))
	assert.True(t, IsBelow("a", "a"))
	assert.False(t, IsBelow("ab", "a"))
	assert.False(t, IsBelow(filepath.Join("..", "a"), "a"))
}
