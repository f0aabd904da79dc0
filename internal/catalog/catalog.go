// Package catalog provides CRUD over the persisted hierarchy of tag groups and tags.
package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/snaptagapp/snaptag-server/internal/domain"
	apperrors "github.com/snaptagapp/snaptag-server/internal/errors"
	"github.com/snaptagapp/snaptag-server/internal/id"
	"github.com/snaptagapp/snaptag-server/internal/store"
)

// Service orchestrates tag catalog operations.
// Every mutation is a whole-document read-modify-write through the store;
// interleaved mutations race last-write-wins.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

// NewService creates a new catalog service.
func NewService(store *store.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// ListGroups returns all tag groups in creation order.
func (s *Service) ListGroups(ctx context.Context) ([]domain.TagGroup, error) {
	return s.store.LoadTagGroups(ctx)
}

// FilterGroups returns the groups that have at least one tag whose name
// contains the query, case-insensitively, with each surviving group
// narrowed to its matching tags. A read-side projection: nothing is
// mutated or persisted. An empty query returns the full catalog.
func (s *Service) FilterGroups(ctx context.Context, query string) ([]domain.TagGroup, error) {
	groups, err := s.store.LoadTagGroups(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return groups, nil
	}

	filtered := make([]domain.TagGroup, 0, len(groups))
	for _, g := range groups {
		matched := g.MatchingTags(query)
		if len(matched) == 0 {
			continue
		}
		filtered = append(filtered, domain.TagGroup{
			ID:   g.ID,
			Name: g.Name,
			Tags: matched,
		})
	}
	return filtered, nil
}

// AddGroup creates a new empty tag group.
// Blank or whitespace-only names are rejected with a validation error,
// which callers surface as a silent no-op rather than a failure.
func (s *Service) AddGroup(ctx context.Context, name string) (*domain.TagGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("group name is blank")
	}

	groups, err := s.store.LoadTagGroups(ctx)
	if err != nil {
		return nil, err
	}

	group := domain.TagGroup{
		ID:   id.MustGenerate(id.PrefixGroup),
		Name: name,
		Tags: []domain.Tag{},
	}
	groups = append(groups, group)

	if err := s.store.SaveTagGroups(ctx, groups); err != nil {
		return nil, err
	}

	s.logger.Info("tag group created", "group_id", group.ID, "name", name)
	return &group, nil
}

// AddTag appends a new tag to an existing group.
// Blank names are rejected with a validation error; an unknown group
// reports not found.
func (s *Service) AddTag(ctx context.Context, groupID, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("tag name is blank")
	}

	groups, err := s.store.LoadTagGroups(ctx)
	if err != nil {
		return nil, err
	}

	for i := range groups {
		if groups[i].ID != groupID {
			continue
		}

		tag := domain.Tag{
			ID:   id.MustGenerate(id.PrefixTag),
			Name: name,
		}
		groups[i].AddTag(tag)

		if err := s.store.SaveTagGroups(ctx, groups); err != nil {
			return nil, err
		}

		s.logger.Info("tag created", "tag_id", tag.ID, "group_id", groupID, "name", name)
		return &tag, nil
	}

	return nil, apperrors.NotFoundf("tag group %s not found", groupID)
}

// DeleteGroup removes a group and all the tags it owns.
// The removed group is returned so the caller can cascade the deletion
// into any open selections. Tags already saved on images are value
// copies and stay untouched.
func (s *Service) DeleteGroup(ctx context.Context, groupID string) (*domain.TagGroup, error) {
	groups, err := s.store.LoadTagGroups(ctx)
	if err != nil {
		return nil, err
	}

	for i := range groups {
		if groups[i].ID != groupID {
			continue
		}

		removed := groups[i]
		groups = append(groups[:i], groups[i+1:]...)

		if err := s.store.SaveTagGroups(ctx, groups); err != nil {
			return nil, err
		}

		s.logger.Info("tag group deleted", "group_id", groupID, "name", removed.Name, "tag_count", len(removed.Tags))
		return &removed, nil
	}

	return nil, apperrors.NotFoundf("tag group %s not found", groupID)
}

// DeleteTag removes one tag from one group.
// An unknown group reports not found; an unknown tag within a known
// group is a silent no-op. Saved image tags stay untouched.
func (s *Service) DeleteTag(ctx context.Context, groupID, tagID string) error {
	groups, err := s.store.LoadTagGroups(ctx)
	if err != nil {
		return err
	}

	for i := range groups {
		if groups[i].ID != groupID {
			continue
		}

		if !groups[i].RemoveTag(tagID) {
			return nil
		}

		if err := s.store.SaveTagGroups(ctx, groups); err != nil {
			return err
		}

		s.logger.Info("tag deleted", "tag_id", tagID, "group_id", groupID)
		return nil
	}

	return apperrors.NotFoundf("tag group %s not found", groupID)
}
