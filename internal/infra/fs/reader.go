package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"

	"wsconsole/web"
)

// IndexFile is the page served at /assets/.
const IndexFile = "index.html"

var ErrMissingIndex = errors.New("asset tree has no " + IndexFile)

// AssetReader resolves the static page assets, either from a directory on
// disk or from the copy embedded in the binary.
type AssetReader struct {
	BaseDir string
}

// NewAssetReader creates an AssetReader. An empty baseDir selects the
// embedded assets.
func NewAssetReader(baseDir string) *AssetReader {
	return &AssetReader{
		BaseDir: baseDir,
	}
}

// FS returns the asset tree. A configured BaseDir must exist and be a
// directory.
func (a *AssetReader) FS() (iofs.FS, error) {
	if a.BaseDir == "" {
		return web.Assets(), nil
	}

	info, err := os.Stat(a.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open assets dir %s: %w", a.BaseDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("assets path %s is not a directory", a.BaseDir)
	}
	return os.DirFS(filepath.Clean(a.BaseDir)), nil
}

// FileExists checks if a file exists in the asset tree.
func (a *AssetReader) FileExists(name string) bool {
	assets, err := a.FS()
	if err != nil {
		return false
	}
	info, err := iofs.Stat(assets, name)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
