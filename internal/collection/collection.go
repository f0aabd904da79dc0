// Package collection owns the ordered list of captured photos and their tag assignments.
package collection

import (
	"context"
	"log/slog"
	"time"

	"github.com/snaptagapp/snaptag-server/internal/domain"
	apperrors "github.com/snaptagapp/snaptag-server/internal/errors"
	"github.com/snaptagapp/snaptag-server/internal/id"
	"github.com/snaptagapp/snaptag-server/internal/media/images"
	"github.com/snaptagapp/snaptag-server/internal/store"
)

// Manager orchestrates the photo collection.
// Persistence is delegated to the store as whole-document replaces;
// interleaved mutations race last-write-wins.
type Manager struct {
	store     *store.Store
	logger    *slog.Logger
	maxImages int

	// inspect decodes dimensions and a BlurHash placeholder on capture.
	// Best-effort: failure never rejects a capture.
	inspect func(path string) (images.Info, error)
}

// NewManager creates a new collection manager.
// maxImages is the hard cap enforced before capture.
func NewManager(store *store.Store, maxImages int, logger *slog.Logger) *Manager {
	return &Manager{
		store:     store,
		logger:    logger,
		maxImages: maxImages,
		inspect:   images.Inspect,
	}
}

// List returns a snapshot of the photo collection in capture order.
func (m *Manager) List(ctx context.Context) ([]domain.ImageItem, error) {
	return m.store.LoadImages(ctx)
}

// Get returns one photo by ID.
func (m *Manager) Get(ctx context.Context, imageID string) (*domain.ImageItem, error) {
	items, err := m.store.LoadImages(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == imageID {
			return &items[i], nil
		}
	}
	return nil, apperrors.NotFoundf("image %s not found", imageID)
}

// Count returns the current collection size.
func (m *Manager) Count(ctx context.Context) (int, error) {
	items, err := m.store.LoadImages(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Capture appends a newly captured photo to the collection.
// Rejects with a capacity error when the collection is full, leaving
// it unmodified.
func (m *Manager) Capture(ctx context.Context, uri string) (*domain.ImageItem, error) {
	items, err := m.store.LoadImages(ctx)
	if err != nil {
		return nil, err
	}

	if len(items) >= m.maxImages {
		return nil, apperrors.Capacityf("photo limit reached (%d)", m.maxImages)
	}

	item := domain.ImageItem{
		ID:        id.MustGenerate(id.PrefixImage),
		URI:       uri,
		Tags:      []domain.Tag{},
		CreatedAt: time.Now(),
	}

	if info, err := m.inspect(uri); err != nil {
		m.logger.Debug("could not inspect captured photo", "uri", uri, "error", err)
	} else {
		item.Width = info.Width
		item.Height = info.Height
		item.BlurHash = info.BlurHash
	}

	items = append(items, item)
	if err := m.store.SaveImages(ctx, items); err != nil {
		return nil, err
	}

	m.logger.Info("photo captured", "image_id", item.ID, "uri", uri, "count", len(items))
	return &item, nil
}

// UpdateTags replaces the tags of the matching photo in place.
// An unknown image ID is a silent no-op.
func (m *Manager) UpdateTags(ctx context.Context, imageID string, tags []domain.Tag) error {
	items, err := m.store.LoadImages(ctx)
	if err != nil {
		return err
	}

	for i := range items {
		if items[i].ID != imageID {
			continue
		}

		if tags == nil {
			tags = []domain.Tag{}
		}
		items[i].Tags = tags

		if err := m.store.SaveImages(ctx, items); err != nil {
			return err
		}

		m.logger.Info("photo tags updated", "image_id", imageID, "tag_count", len(tags))
		return nil
	}

	m.logger.Debug("update tags skipped, image not found", "image_id", imageID)
	return nil
}

// Delete removes one photo from the collection.
// Confirmation is the caller's responsibility; unknown IDs are a no-op.
func (m *Manager) Delete(ctx context.Context, imageID string) error {
	items, err := m.store.LoadImages(ctx)
	if err != nil {
		return err
	}

	for i := range items {
		if items[i].ID != imageID {
			continue
		}

		items = append(items[:i], items[i+1:]...)
		if err := m.store.SaveImages(ctx, items); err != nil {
			return err
		}

		m.logger.Info("photo deleted", "image_id", imageID, "count", len(items))
		return nil
	}

	return nil
}

// ClearAll empties the photo collection.
// Confirmation is the caller's responsibility.
func (m *Manager) ClearAll(ctx context.Context) error {
	if err := m.store.SaveImages(ctx, []domain.ImageItem{}); err != nil {
		return err
	}
	m.logger.Info("photo collection cleared")
	return nil
}
