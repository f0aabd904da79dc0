// Package selection holds the per-photo tag editing state and its save-time ordering rules.
package selection

import (
	"strings"

	"golang.org/x/text/collate"

	"github.com/snaptagapp/snaptag-server/internal/domain"
	"github.com/snaptagapp/snaptag-server/internal/id"
)

// Selection is the in-memory editing state for one photo's tags.
// It is seeded from the photo's saved tags (or empty for a new photo)
// and holds value copies throughout: committing never links back to
// the catalog.
//
// Invariant: at most one tag with IsTimeTag set is ever held.
type Selection struct {
	imageID string
	tags    []domain.Tag
}

// New creates a selection for the given photo, seeded with copies of
// its existing tags.
func New(imageID string, existing []domain.Tag) *Selection {
	tags := make([]domain.Tag, len(existing))
	copy(tags, existing)
	return &Selection{
		imageID: imageID,
		tags:    tags,
	}
}

// ImageID returns the photo this selection edits.
func (s *Selection) ImageID() string {
	return s.imageID
}

// Tags returns a snapshot of the selected tags in selection order.
func (s *Selection) Tags() []domain.Tag {
	snapshot := make([]domain.Tag, len(s.tags))
	copy(snapshot, s.tags)
	return snapshot
}

// Toggle removes the tag if one with the same ID is selected, otherwise
// appends a copy stamped with the group it was selected through.
// Two toggles of the same tag restore the original membership.
// Returns true if the tag is selected after the call.
func (s *Selection) Toggle(groupID string, tag domain.Tag) bool {
	for i := range s.tags {
		if s.tags[i].ID == tag.ID {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			return false
		}
	}

	tag.GroupID = groupID
	s.tags = append(s.tags, tag)
	return true
}

// SetTimeTag sets the photo's single time tag from raw user input.
// Blank input is a no-op. If a time tag is already selected it is
// replaced in place at the same index; otherwise the new tag is
// appended. The exclusivity invariant holds after every call.
// Returns the tag and true when one was set.
func (s *Selection) SetTimeTag(raw string) (domain.Tag, bool) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return domain.Tag{}, false
	}

	tag := domain.Tag{
		ID:        id.MustGenerate(id.PrefixTimeTag),
		Name:      name,
		IsTimeTag: true,
	}

	for i := range s.tags {
		if s.tags[i].IsTimeTag {
			s.tags[i] = tag
			return tag, true
		}
	}

	s.tags = append(s.tags, tag)
	return tag, true
}

// RemoveTimeTag drops any selected time tag.
// Returns true if one was removed.
func (s *Selection) RemoveTimeTag() bool {
	for i := range s.tags {
		if s.tags[i].IsTimeTag {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			return true
		}
	}
	return false
}

// Clear resets the selection to empty.
// Returns false when it was already empty, which callers surface as an
// informational signal rather than an error. Confirmation is the
// caller's responsibility.
func (s *Selection) Clear() bool {
	if len(s.tags) == 0 {
		return false
	}
	s.tags = s.tags[:0]
	return true
}

// DropGroup removes every selected tag stamped with the given group.
// Called when the group is deleted from the catalog.
// Returns the number of tags removed.
func (s *Selection) DropGroup(groupID string) int {
	kept := s.tags[:0]
	removed := 0
	for _, t := range s.tags {
		if t.GroupID == groupID {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.tags = kept
	return removed
}

// DropTag removes the selected tag with the given ID, if present.
// Called when the tag is deleted from the catalog.
func (s *Selection) DropTag(tagID string) bool {
	for i := range s.tags {
		if s.tags[i].ID == tagID {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			return true
		}
	}
	return false
}

// Sorted returns the selection in save order: the time tag (if present)
// first, remaining tags ascending by locale-aware name comparison.
func (s *Selection) Sorted(c *collate.Collator) []domain.Tag {
	var timeTag *domain.Tag
	rest := make([]domain.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		if t.IsTimeTag && timeTag == nil {
			tt := t
			timeTag = &tt
			continue
		}
		rest = append(rest, t)
	}

	// Insertion sort keeps equal names in selection order; the
	// collator provides locale-appropriate ordering.
	for i := 1; i < len(rest); i++ {
		for j := i; j > 0 && c.CompareString(rest[j].Name, rest[j-1].Name) < 0; j-- {
			rest[j], rest[j-1] = rest[j-1], rest[j]
		}
	}

	if timeTag == nil {
		return rest
	}
	return append([]domain.Tag{*timeTag}, rest...)
}
