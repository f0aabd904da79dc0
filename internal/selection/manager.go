package selection

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/snaptagapp/snaptag-server/internal/collection"
	"github.com/snaptagapp/snaptag-server/internal/domain"
	apperrors "github.com/snaptagapp/snaptag-server/internal/errors"
)

// Manager tracks the open selections, one per photo, and propagates
// catalog deletions into them. Selections are purely in-memory; only
// Commit touches persistence, through the collection manager.
type Manager struct {
	mu       sync.Mutex
	open     map[string]*Selection
	images   *collection.Manager
	collator *collate.Collator
	logger   *slog.Logger
}

// NewManager creates a selection manager.
// locale drives the collation used to sort tags on save; unknown
// locales fall back to the undetermined collation rather than failing.
func NewManager(images *collection.Manager, locale string, logger *slog.Logger) *Manager {
	return &Manager{
		open:     make(map[string]*Selection),
		images:   images,
		collator: collate.New(language.Make(locale)),
		logger:   logger,
	}
}

// Open begins editing a photo's tags, seeding the selection from the
// saved tags. A photo missing from the collection starts empty.
// Re-opening discards any in-progress edits and re-seeds.
func (m *Manager) Open(ctx context.Context, imageID string) (*Selection, error) {
	var existing []domain.Tag
	if img, err := m.images.Get(ctx, imageID); err == nil {
		existing = img.Tags
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	sel := New(imageID, existing)

	m.mu.Lock()
	m.open[imageID] = sel
	m.mu.Unlock()

	m.logger.Debug("selection opened", "image_id", imageID, "seed_tags", len(existing))
	return sel, nil
}

// Get returns the open selection for a photo, if any.
func (m *Manager) Get(imageID string) (*Selection, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sel, ok := m.open[imageID]
	return sel, ok
}

// Discard drops an open selection without saving.
func (m *Manager) Discard(imageID string) {
	m.mu.Lock()
	delete(m.open, imageID)
	m.mu.Unlock()
}

// Commit sorts the selection (time tag first, remaining tags by
// locale-aware name order), saves it onto the photo, and closes the
// selection. Returns the sorted tags as saved.
func (m *Manager) Commit(ctx context.Context, imageID string) ([]domain.Tag, error) {
	m.mu.Lock()
	sel, ok := m.open[imageID]
	if !ok {
		m.mu.Unlock()
		return nil, apperrors.NotFoundf("no open selection for image %s", imageID)
	}
	sorted := sel.Sorted(m.collator)
	m.mu.Unlock()

	if err := m.images.UpdateTags(ctx, imageID, sorted); err != nil {
		return nil, err
	}

	m.Discard(imageID)

	m.logger.Info("selection committed", "image_id", imageID, "tag_count", len(sorted))
	return sorted, nil
}

// DropGroup removes tags of a deleted catalog group from every open
// selection. Saved image tags are value copies and stay untouched.
func (m *Manager) DropGroup(groupID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for imageID, sel := range m.open {
		if removed := sel.DropGroup(groupID); removed > 0 {
			m.logger.Debug("group cascade dropped selected tags",
				"group_id", groupID,
				"image_id", imageID,
				"removed", removed,
			)
		}
	}
}

// DropTag removes a deleted catalog tag from every open selection.
func (m *Manager) DropTag(tagID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for imageID, sel := range m.open {
		if sel.DropTag(tagID) {
			m.logger.Debug("tag cascade dropped selected tag", "tag_id", tagID, "image_id", imageID)
		}
	}
}
