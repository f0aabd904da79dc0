package photolib

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/snaptagapp/snaptag-server/internal/errors"
	"github.com/snaptagapp/snaptag-server/internal/id"
)

// Directory layout under the library root.
const (
	assetsDir = "assets"
	albumsDir = "albums"
)

// FSLibrary is a filesystem-backed photo library.
// Assets live under {root}/assets; albums are directories under
// {root}/albums holding hard links to their assets (copies when the
// filesystem refuses links). Asset IDs are the asset file names.
type FSLibrary struct {
	root   string
	logger *slog.Logger
	mu     sync.Mutex // Protects file operations
}

// NewFSLibrary creates a filesystem library rooted at root.
func NewFSLibrary(root string, logger *slog.Logger) (*FSLibrary, error) {
	if root == "" {
		return nil, fmt.Errorf("library root cannot be empty")
	}

	for _, sub := range []string{assetsDir, albumsDir} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create library directory %s: %w", sub, err)
		}
	}

	return &FSLibrary{root: root, logger: logger}, nil
}

// FindAlbum implements Library.
func (l *FSLibrary) FindAlbum(ctx context.Context, name string) (*Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	dir := filepath.Join(l.root, albumsDir, name)
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, apperrors.NotFoundf("album %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("stat album: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("album path %s is not a directory", dir)
	}

	return &Album{ID: name, Name: name}, nil
}

// CreateAlbum implements Library.
func (l *FSLibrary) CreateAlbum(ctx context.Context, name, seedPath string) (*Album, *Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	asset, err := l.CreateAsset(ctx, seedPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create seed asset: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	dir := filepath.Join(l.root, albumsDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create album directory: %w", err)
	}

	album := &Album{ID: name, Name: name}
	if err := l.attachLocked(album.ID, asset.ID); err != nil {
		return nil, nil, fmt.Errorf("attach seed asset: %w", err)
	}

	l.logger.Info("album created", "album", name, "seed_asset", asset.ID)
	return album, asset, nil
}

// CreateAsset implements Library.
// The staged file keeps its name; a collision with an asset from an
// earlier export gets a generated suffix, since export runs only
// deduplicate names within themselves.
func (l *FSLibrary) CreateAsset(ctx context.Context, stagedPath string) (*Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	name := filepath.Base(stagedPath)
	dst := filepath.Join(l.root, assetsDir, name)
	if _, err := os.Stat(dst); err == nil {
		ext := filepath.Ext(name)
		name = name[:len(name)-len(ext)] + "_" + id.MustGenerate("dup")[4:12] + ext
		dst = filepath.Join(l.root, assetsDir, name)
	}

	if err := copyFile(stagedPath, dst); err != nil {
		return nil, fmt.Errorf("materialize asset: %w", err)
	}

	return &Asset{ID: name, Path: dst}, nil
}

// AddToAlbum implements Library.
// The whole batch fails as a unit: the first attach error aborts and
// is reported for the call.
func (l *FSLibrary) AddToAlbum(ctx context.Context, albumID string, assetIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := os.Stat(filepath.Join(l.root, albumsDir, albumID)); err != nil {
		return fmt.Errorf("album %q not available: %w", albumID, err)
	}

	for _, assetID := range assetIDs {
		if err := l.attachLocked(albumID, assetID); err != nil {
			return fmt.Errorf("attach asset %s: %w", assetID, err)
		}
	}
	return nil
}

// attachLocked links an asset into an album directory.
// Caller holds l.mu.
func (l *FSLibrary) attachLocked(albumID, assetID string) error {
	src := filepath.Join(l.root, assetsDir, assetID)
	dst := filepath.Join(l.root, albumsDir, albumID, assetID)

	if _, err := os.Stat(dst); err == nil {
		// Already attached.
		return nil
	}

	if err := os.Link(src, dst); err != nil {
		// Some filesystems refuse hard links; fall back to a copy.
		return copyFile(src, dst)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //#nosec G304 -- Paths stay inside the library and staging roots
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst) //#nosec G304 -- Paths stay inside the library root
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst) //nolint:errcheck // Best-effort cleanup of a partial copy
		return err
	}
	return out.Close()
}

// DirPermissions grants library write access when the library root is
// writable. It stands in for the platform permission prompt.
type DirPermissions struct {
	root string
}

// NewDirPermissions creates a permission checker for the library root.
func NewDirPermissions(root string) *DirPermissions {
	return &DirPermissions{root: root}
}

// RequestWrite implements Permissions by probing the root with a
// throwaway file.
func (p *DirPermissions) RequestWrite(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	probe := filepath.Join(p.root, ".write-probe")
	f, err := os.Create(probe) //#nosec G304 -- Probe stays inside the library root
	if err != nil {
		if os.IsPermission(err) || os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	f.Close()
	_ = os.Remove(probe) //nolint:errcheck // Probe cleanup is best-effort

	return true, nil
}
