package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaptagapp/snaptag-server/internal/domain"
	apperrors "github.com/snaptagapp/snaptag-server/internal/errors"
	"github.com/snaptagapp/snaptag-server/internal/media/images"
	"github.com/snaptagapp/snaptag-server/internal/photolib"
)

type fakePermissions struct {
	granted  bool
	err      error
	requests int
}

func (p *fakePermissions) RequestWrite(context.Context) (bool, error) {
	p.requests++
	return p.granted, p.err
}

type fakeLibrary struct {
	album       *photolib.Album
	created     []string   // asset ids, in creation order
	attachCalls [][]string // asset ids per AddToAlbum call
	createErr   error
	attachErr   error
}

func (l *fakeLibrary) FindAlbum(_ context.Context, name string) (*photolib.Album, error) {
	if l.album == nil {
		return nil, apperrors.NotFoundf("album %q not found", name)
	}
	return l.album, nil
}

func (l *fakeLibrary) CreateAlbum(ctx context.Context, name, seedPath string) (*photolib.Album, *photolib.Asset, error) {
	asset, err := l.CreateAsset(ctx, seedPath)
	if err != nil {
		return nil, nil, err
	}
	l.album = &photolib.Album{ID: "alb-1", Name: name}
	return l.album, asset, nil
}

func (l *fakeLibrary) CreateAsset(_ context.Context, stagedPath string) (*photolib.Asset, error) {
	if l.createErr != nil {
		return nil, l.createErr
	}
	id := filepath.Base(stagedPath)
	l.created = append(l.created, id)
	return &photolib.Asset{ID: id, Path: stagedPath}, nil
}

func (l *fakeLibrary) AddToAlbum(_ context.Context, _ string, assetIDs []string) error {
	l.attachCalls = append(l.attachCalls, assetIDs)
	return l.attachErr
}

type recordingNotifier struct {
	exported, total int
	calls           int
}

func (n *recordingNotifier) ExportFinished(_ context.Context, exported, total int) error {
	n.calls++
	n.exported = exported
	n.total = total
	return nil
}

func setupExporter(t *testing.T, lib photolib.Library, perms photolib.Permissions, batchSize int) (*Exporter, *images.Staging) {
	t.Helper()
	staging, err := images.NewStaging(t.TempDir())
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(lib, perms, staging, nil, "SnapTag", batchSize, logger), staging
}

func makeImages(t *testing.T, tagNames ...string) []domain.ImageItem {
	t.Helper()
	dir := t.TempDir()
	items := make([]domain.ImageItem, len(tagNames))
	for i, name := range tagNames {
		path := filepath.Join(dir, fmt.Sprintf("capture_%d.jpg", i))
		require.NoError(t, os.WriteFile(path, []byte("pixels"), 0644))
		items[i] = domain.ImageItem{
			ID:   fmt.Sprintf("img-%d", i),
			URI:  path,
			Tags: []domain.Tag{{ID: fmt.Sprintf("t%d", i), Name: name}},
		}
	}
	return items
}

func TestExporter_Export(t *testing.T) {
	ctx := context.Background()

	t.Run("empty input short-circuits", func(t *testing.T) {
		lib := &fakeLibrary{}
		perms := &fakePermissions{granted: true}
		exporter, _ := setupExporter(t, lib, perms, 10)

		summary, err := exporter.Export(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, Summary{Exported: 0, Total: 0}, summary)
		assert.Zero(t, perms.requests, "permission must not be requested for an empty export")
		assert.Nil(t, lib.album, "no album may be created for an empty export")
	})

	t.Run("permission denial aborts before side effects", func(t *testing.T) {
		lib := &fakeLibrary{}
		exporter, _ := setupExporter(t, lib, &fakePermissions{granted: false}, 10)

		_, err := exporter.Export(ctx, makeImages(t, "Mom"))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))
		assert.Nil(t, lib.album)
		assert.Empty(t, lib.created)
	})

	t.Run("exports with deduplicated names", func(t *testing.T) {
		lib := &fakeLibrary{}
		exporter, _ := setupExporter(t, lib, &fakePermissions{granted: true}, 10)

		summary, err := exporter.Export(ctx, makeImages(t, "Mom", "Mom", "Mom"))
		require.NoError(t, err)
		assert.Equal(t, Summary{Exported: 3, Total: 3}, summary)
		assert.Equal(t, []string{"Mom.jpg", "Mom_1.jpg", "Mom_2.jpg"}, lib.created)
	})

	t.Run("album created lazily and seeded by first staged image", func(t *testing.T) {
		lib := &fakeLibrary{}
		exporter, _ := setupExporter(t, lib, &fakePermissions{granted: true}, 10)

		_, err := exporter.Export(ctx, makeImages(t, "Mom", "Dad"))
		require.NoError(t, err)
		require.NotNil(t, lib.album)
		assert.Equal(t, "SnapTag", lib.album.Name)

		// The seed asset is attached by album creation; only the rest
		// travel through the batch attach.
		require.Len(t, lib.attachCalls, 1)
		assert.Equal(t, []string{"Dad.jpg"}, lib.attachCalls[0])
	})

	t.Run("existing album is reused", func(t *testing.T) {
		lib := &fakeLibrary{album: &photolib.Album{ID: "alb-1", Name: "SnapTag"}}
		exporter, _ := setupExporter(t, lib, &fakePermissions{granted: true}, 10)

		summary, err := exporter.Export(ctx, makeImages(t, "Mom", "Dad"))
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Exported)
		require.Len(t, lib.attachCalls, 1)
		assert.Equal(t, []string{"Mom.jpg", "Dad.jpg"}, lib.attachCalls[0])
	})

	t.Run("batches attach in sequence", func(t *testing.T) {
		lib := &fakeLibrary{album: &photolib.Album{ID: "alb-1", Name: "SnapTag"}}
		exporter, _ := setupExporter(t, lib, &fakePermissions{granted: true}, 2)

		summary, err := exporter.Export(ctx, makeImages(t, "a", "b", "c", "d", "e"))
		require.NoError(t, err)
		assert.Equal(t, Summary{Exported: 5, Total: 5}, summary)

		require.Len(t, lib.attachCalls, 3)
		assert.Equal(t, []string{"a.jpg", "b.jpg"}, lib.attachCalls[0])
		assert.Equal(t, []string{"c.jpg", "d.jpg"}, lib.attachCalls[1])
		assert.Equal(t, []string{"e.jpg"}, lib.attachCalls[2])
	})

	t.Run("per-image staging failure is skipped", func(t *testing.T) {
		lib := &fakeLibrary{album: &photolib.Album{ID: "alb-1", Name: "SnapTag"}}
		exporter, _ := setupExporter(t, lib, &fakePermissions{granted: true}, 10)

		items := makeImages(t, "Mom", "Dad")
		items[0].URI = filepath.Join(t.TempDir(), "missing.jpg")

		summary, err := exporter.Export(ctx, items)
		require.NoError(t, err)
		assert.Equal(t, Summary{Exported: 1, Total: 2}, summary)
		assert.Equal(t, []string{"Dad.jpg"}, lib.created)
	})

	t.Run("attach failure does not abort later batches", func(t *testing.T) {
		lib := &fakeLibrary{
			album:     &photolib.Album{ID: "alb-1", Name: "SnapTag"},
			attachErr: fmt.Errorf("library busy"),
		}
		exporter, _ := setupExporter(t, lib, &fakePermissions{granted: true}, 1)

		summary, err := exporter.Export(ctx, makeImages(t, "a", "b", "c"))
		require.NoError(t, err)
		// Exported counts staged+created assets even when attach fails.
		assert.Equal(t, Summary{Exported: 3, Total: 3}, summary)
		assert.Len(t, lib.attachCalls, 3)
	})

	t.Run("no stageable image fails the run", func(t *testing.T) {
		lib := &fakeLibrary{}
		exporter, _ := setupExporter(t, lib, &fakePermissions{granted: true}, 10)

		items := makeImages(t, "Mom")
		items[0].URI = filepath.Join(t.TempDir(), "missing.jpg")

		_, err := exporter.Export(ctx, items)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrAlbumCreation))
	})

	t.Run("staging is released regardless of asset creation outcome", func(t *testing.T) {
		lib := &fakeLibrary{
			album:     &photolib.Album{ID: "alb-1", Name: "SnapTag"},
			createErr: fmt.Errorf("library full"),
		}
		exporter, staging := setupExporter(t, lib, &fakePermissions{granted: true}, 10)

		summary, err := exporter.Export(ctx, makeImages(t, "Mom", "Dad"))
		require.NoError(t, err)
		assert.Equal(t, Summary{Exported: 0, Total: 2}, summary)

		entries, err := os.ReadDir(staging.Path())
		require.NoError(t, err)
		assert.Empty(t, entries, "staging area must be clean after the run")
	})

	t.Run("notifies with the final summary", func(t *testing.T) {
		lib := &fakeLibrary{}
		notifier := &recordingNotifier{}
		staging, err := images.NewStaging(t.TempDir())
		require.NoError(t, err)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		exporter := New(lib, &fakePermissions{granted: true}, staging, notifier, "SnapTag", 10, logger)

		_, err = exporter.Export(ctx, makeImages(t, "Mom", "Dad"))
		require.NoError(t, err)
		assert.Equal(t, 1, notifier.calls)
		assert.Equal(t, 2, notifier.exported)
		assert.Equal(t, 2, notifier.total)
	})
}
