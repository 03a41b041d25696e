package catalog

import (
	"fmt"

	"marketplace/internal/domain"
)

// MediaCategory partitions the catalog into independent hierarchies.
// Ownership in one category never grants anything in another.
type MediaCategory string

const (
	CategoryTemplate MediaCategory = "template"
	CategoryPicture  MediaCategory = "picture"
	CategoryVideo    MediaCategory = "video"
	CategoryAudio    MediaCategory = "audio"
)

// AllCategories lists every media category in display order
var AllCategories = []MediaCategory{
	CategoryTemplate,
	CategoryPicture,
	CategoryVideo,
	CategoryAudio,
}

// Valid reports whether c is a known category
func (c MediaCategory) Valid() bool {
	switch c {
	case CategoryTemplate, CategoryPicture, CategoryVideo, CategoryAudio:
		return true
	}
	return false
}

// ParseCategory converts a path or query value into a MediaCategory
func ParseCategory(s string) (MediaCategory, error) {
	c := MediaCategory(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown media category %q: %w", s, domain.ErrValidation)
	}
	return c, nil
}
