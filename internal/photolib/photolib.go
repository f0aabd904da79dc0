// Package photolib models the device photo library the export pipeline writes into.
//
// The library is a capability contract: album lookup by name, album
// creation seeded by one asset, asset creation from a staged file, and
// bulk add-assets-to-album. The filesystem implementation treats the
// library root as the device library, with albums as directories.
package photolib

import "context"

// Asset is a photo materialized in the library.
type Asset struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// Album is a named grouping of assets.
type Album struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Library is the device photo library write surface.
type Library interface {
	// FindAlbum looks an album up by name. Reports not found via a
	// domain error when the album doesn't exist yet.
	FindAlbum(ctx context.Context, name string) (*Album, error)

	// CreateAlbum creates an album seeded with one asset built from the
	// staged file. Returns the album and its seed asset.
	CreateAlbum(ctx context.Context, name, seedPath string) (*Album, *Asset, error)

	// CreateAsset materializes a staged file as a library asset.
	CreateAsset(ctx context.Context, stagedPath string) (*Asset, error)

	// AddToAlbum bulk-attaches assets to an album in one call.
	AddToAlbum(ctx context.Context, albumID string, assetIDs []string) error
}

// Permissions is the library write-permission prompt.
type Permissions interface {
	// RequestWrite asks for library write access.
	// Denial is reported via granted=false, not an error.
	RequestWrite(ctx context.Context) (bool, error)
}
