package store

import (
	"context"

	"github.com/snaptagapp/snaptag-server/internal/domain"
)

// LoadImages reads the full image collection.
// A missing document is an empty collection, not an error.
func (s *Store) LoadImages(ctx context.Context) ([]domain.ImageItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var images []domain.ImageItem
	found, err := s.getDocument([]byte(keyImages), &images)
	if err != nil {
		return nil, wrapPersistence(err, "load images")
	}
	if !found {
		return []domain.ImageItem{}, nil
	}
	return images, nil
}

// SaveImages replaces the full image collection.
func (s *Store) SaveImages(ctx context.Context, images []domain.ImageItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if images == nil {
		images = []domain.ImageItem{}
	}
	if err := s.setDocument([]byte(keyImages), images); err != nil {
		return wrapPersistence(err, "save images")
	}
	return nil
}

// LoadTagGroups reads the full tag group collection.
// A missing document is an empty collection, not an error.
func (s *Store) LoadTagGroups(ctx context.Context) ([]domain.TagGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var groups []domain.TagGroup
	found, err := s.getDocument([]byte(keyTagGroups), &groups)
	if err != nil {
		return nil, wrapPersistence(err, "load tag groups")
	}
	if !found {
		return []domain.TagGroup{}, nil
	}
	return groups, nil
}

// SaveTagGroups replaces the full tag group collection.
func (s *Store) SaveTagGroups(ctx context.Context, groups []domain.TagGroup) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if groups == nil {
		groups = []domain.TagGroup{}
	}
	if err := s.setDocument([]byte(keyTagGroups), groups); err != nil {
		return wrapPersistence(err, "save tag groups")
	}
	return nil
}
