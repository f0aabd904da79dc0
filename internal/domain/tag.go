// Package domain contains the core types for the SnapTag photo catalog.
package domain

import "strings"

// Tag is a reusable label attached to photos.
// Tags on an image are value copies of catalog tags, not references:
// renaming or deleting a catalog tag never rewrites tags already saved
// on an image. GroupID records the group the tag was selected through.
type Tag struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	GroupID   string `json:"group_id,omitempty"`
	IsTimeTag bool   `json:"is_time_tag,omitempty"`
}

// Matches reports whether the tag name contains the query,
// case-insensitively. An empty query matches everything.
func (t Tag) Matches(query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Name), strings.ToLower(query))
}

// TagGroup is a named collection of catalog tags.
// The group owns its tags: deleting a group deletes all of them.
type TagGroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tags []Tag  `json:"tags"`
}

// FindTag returns the tag with the given ID, or nil if absent.
func (g *TagGroup) FindTag(tagID string) *Tag {
	for i := range g.Tags {
		if g.Tags[i].ID == tagID {
			return &g.Tags[i]
		}
	}
	return nil
}

// AddTag appends a tag to the group.
func (g *TagGroup) AddTag(t Tag) {
	g.Tags = append(g.Tags, t)
}

// RemoveTag removes the tag with the given ID.
// Returns false if no tag matched.
func (g *TagGroup) RemoveTag(tagID string) bool {
	for i := range g.Tags {
		if g.Tags[i].ID == tagID {
			g.Tags = append(g.Tags[:i], g.Tags[i+1:]...)
			return true
		}
	}
	return false
}

// MatchingTags returns value copies of the tags whose names match the
// query, case-insensitively.
func (g *TagGroup) MatchingTags(query string) []Tag {
	var matched []Tag
	for _, t := range g.Tags {
		if t.Matches(query) {
			matched = append(matched, t)
		}
	}
	return matched
}
