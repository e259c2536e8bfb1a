package memories

import (
	"fmt"
	"sort"

	"github.com/everkeep/backend/internal/models"
)

// SortOrder is the closed set of gallery sort modes.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// ParseSortOrder maps a query-string value onto the closed sort set. The
// empty string means newest-first.
func ParseSortOrder(value string) (SortOrder, error) {
	switch value {
	case "", string(SortNewest):
		return SortNewest, nil
	case string(SortOldest):
		return SortOldest, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", value)
	}
}

// ParseMediaType maps a query-string value onto the media type filter. The
// empty string means no filtering.
func ParseMediaType(value string) (models.MediaType, error) {
	switch models.MediaType(value) {
	case "", models.MediaPhoto, models.MediaVideo:
		return models.MediaType(value), nil
	default:
		return "", fmt.Errorf("unknown media type %q", value)
	}
}

// Filter narrows and orders a memory list for the gallery. The zero value
// keeps everything, newest first.
type Filter struct {
	Tag       string
	MediaType models.MediaType
	Sort      SortOrder
}

// Apply returns the memories matching the filter in the requested order. The
// input slice is never mutated.
func (f Filter) Apply(items []models.Memory) []models.Memory {
	result := make([]models.Memory, 0, len(items))
	for _, item := range items {
		if f.Tag != "" && !hasTag(item, f.Tag) {
			continue
		}
		if f.MediaType != "" && !hasMediaType(item, f.MediaType) {
			continue
		}
		result = append(result, item)
	}

	order := f.Sort
	if order == "" {
		order = SortNewest
	}
	switch order {
	case SortNewest:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Date > result[j].Date })
	case SortOldest:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	}

	return result
}

// CollectTags returns every tag in use, deduplicated and sorted, for the
// filter UI.
func CollectTags(items []models.Memory) []string {
	seen := make(map[string]struct{})
	for _, item := range items {
		for _, tag := range item.Tags {
			seen[tag] = struct{}{}
		}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func hasTag(item models.Memory, tag string) bool {
	for _, t := range item.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func hasMediaType(item models.Memory, mediaType models.MediaType) bool {
	for _, media := range item.Media {
		if media.Type == mediaType {
			return true
		}
	}
	return false
}
