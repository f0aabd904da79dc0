package domain

import "time"

// ImageItem is a captured photo and the tags saved on it.
// Tags are ordered: a time tag, when present, sorts first on save.
type ImageItem struct {
	ID        string    `json:"id"`
	URI       string    `json:"uri"`
	Tags      []Tag     `json:"tags"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	BlurHash  string    `json:"blur_hash,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TimeTag returns the image's time tag, or nil if it has none.
// At most one tag with IsTimeTag set may exist per image.
func (img *ImageItem) TimeTag() *Tag {
	for i := range img.Tags {
		if img.Tags[i].IsTimeTag {
			return &img.Tags[i]
		}
	}
	return nil
}

// HasTimeTag reports whether the image carries a time tag.
func (img *ImageItem) HasTimeTag() bool {
	return img.TimeTag() != nil
}

// TagNames returns the tag names in list order.
func (img *ImageItem) TagNames() []string {
	names := make([]string, len(img.Tags))
	for i, t := range img.Tags {
		names[i] = t.Name
	}
	return names
}
