package fs

import (
	iofs "io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedAssets(t *testing.T) {
	a := NewAssetReader("")
	require.True(t, a.FileExists("index.html"))
	require.True(t, a.FileExists("main.js"))
	require.False(t, a.FileExists("missing.css"))

	assets, err := a.FS()
	require.NoError(t, err)
	js, err := iofs.ReadFile(assets, "main.js")
	require.NoError(t, err)
	require.Contains(t, string(js), `new WebSocket("/ws")`)
}

func TestDirectoryAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p>custom</p>"), 0o644))

	a := NewAssetReader(dir)
	require.True(t, a.FileExists("index.html"))
	require.False(t, a.FileExists("main.js"))
}

func TestDirectoryAssetsMustExist(t *testing.T) {
	_, err := NewAssetReader(filepath.Join(t.TempDir(), "nope")).FS()
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewAssetReader(file).FS()
	require.Error(t, err)
}
