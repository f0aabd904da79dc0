package selection

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaptagapp/snaptag-server/internal/collection"
	"github.com/snaptagapp/snaptag-server/internal/domain"
	apperrors "github.com/snaptagapp/snaptag-server/internal/errors"
	"github.com/snaptagapp/snaptag-server/internal/store"
)

// setupTestSelections creates a selection manager over a temp-backed
// collection manager.
func setupTestSelections(t *testing.T) (*Manager, *collection.Manager) {
	t.Helper()

	testStore, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testStore.Close() //nolint:errcheck // Test cleanup
	})

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	images := collection.NewManager(testStore, 80, logger)
	return NewManager(images, "en", logger), images
}

func TestManager_OpenSeedsFromSavedTags(t *testing.T) {
	mgr, images := setupTestSelections(t)
	ctx := context.Background()

	img, err := images.Capture(ctx, "/photos/one.jpg")
	require.NoError(t, err)
	saved := []domain.Tag{{ID: "tag-1", Name: "Mom", GroupID: "grp-1"}}
	require.NoError(t, images.UpdateTags(ctx, img.ID, saved))

	sel, err := mgr.Open(ctx, img.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, sel.Tags())
}

func TestManager_OpenUnknownImageStartsEmpty(t *testing.T) {
	mgr, _ := setupTestSelections(t)

	sel, err := mgr.Open(context.Background(), "img-new")
	require.NoError(t, err)
	assert.Empty(t, sel.Tags())
}

func TestManager_CommitSavesSortedAndCloses(t *testing.T) {
	mgr, images := setupTestSelections(t)
	ctx := context.Background()

	img, err := images.Capture(ctx, "/photos/one.jpg")
	require.NoError(t, err)

	sel, err := mgr.Open(ctx, img.ID)
	require.NoError(t, err)

	// Select a catalog tag, then a time tag: on save the time tag
	// sorts first.
	sel.Toggle("g1", domain.Tag{ID: "t1", Name: "Mom"})
	_, ok := sel.SetTimeTag("2024-06")
	require.True(t, ok)

	sorted, err := mgr.Commit(ctx, img.ID)
	require.NoError(t, err)
	require.Len(t, sorted, 2)
	assert.True(t, sorted[0].IsTimeTag)
	assert.Equal(t, "2024-06", sorted[0].Name)
	assert.Equal(t, "t1", sorted[1].ID)
	assert.Equal(t, "Mom", sorted[1].Name)
	assert.Equal(t, "g1", sorted[1].GroupID)

	// Saved on the photo.
	got, err := images.Get(ctx, img.ID)
	require.NoError(t, err)
	assert.Equal(t, sorted, got.Tags)

	// The selection is closed after commit.
	_, open := mgr.Get(img.ID)
	assert.False(t, open)
}

func TestManager_CommitWithoutOpenSelection(t *testing.T) {
	mgr, _ := setupTestSelections(t)

	_, err := mgr.Commit(context.Background(), "img-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestManager_DropGroupCascadesToOpenSelections(t *testing.T) {
	mgr, _ := setupTestSelections(t)
	ctx := context.Background()

	var sels []*Selection
	for i := 0; i < 3; i++ {
		sel, err := mgr.Open(ctx, fmt.Sprintf("img-%d", i))
		require.NoError(t, err)
		sel.Toggle("g1", domain.Tag{ID: "t1", Name: "Mom"})
		sel.Toggle("g2", domain.Tag{ID: "t2", Name: "Beach"})
		sels = append(sels, sel)
	}

	mgr.DropGroup("g1")

	for _, sel := range sels {
		for _, tag := range sel.Tags() {
			assert.NotEqual(t, "g1", tag.GroupID)
		}
		assert.Len(t, sel.Tags(), 1)
	}
}

func TestManager_DropTagCascadesToOpenSelections(t *testing.T) {
	mgr, _ := setupTestSelections(t)
	ctx := context.Background()

	sel, err := mgr.Open(ctx, "img-1")
	require.NoError(t, err)
	sel.Toggle("g1", domain.Tag{ID: "t1", Name: "Mom"})

	mgr.DropTag("t1")

	assert.Empty(t, sel.Tags())
}

func TestManager_DiscardDropsEdits(t *testing.T) {
	mgr, images := setupTestSelections(t)
	ctx := context.Background()

	img, err := images.Capture(ctx, "/photos/one.jpg")
	require.NoError(t, err)

	sel, err := mgr.Open(ctx, img.ID)
	require.NoError(t, err)
	sel.Toggle("g1", domain.Tag{ID: "t1", Name: "Mom"})

	mgr.Discard(img.ID)

	// Nothing was saved.
	got, err := images.Get(ctx, img.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}
