package feed

import (
	"fmt"
	"strings"
)

var validFilterFields = map[string]bool{
	"title":      true,
	"text":       true,
	"link":       true,
	"authors":    true,
	"categories": true,
}

// Filterer marks imported items that fail a source's include/exclude keyword
// rules. Marked items are never submitted.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

func (f *Filterer) Run(items []Item, config *Config) []Item {
	if len(config.Filters) == 0 {
		return items
	}

	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		item.IsFiltered, item.FilterReason = f.applyFilters(item, config.Filters)
		filtered = append(filtered, item)
	}

	return filtered
}

func (f *Filterer) applyFilters(item Item, filters []ConfigFilter) (bool, string) {
	for _, filter := range filters {
		value := strings.ToLower(f.getFieldValue(item, filter.Field))

		for _, exclude := range filter.Excludes {
			if strings.Contains(value, strings.ToLower(exclude)) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) == 0 {
			continue
		}

		matched := false
		for _, include := range filter.Includes {
			if strings.Contains(value, strings.ToLower(include)) {
				matched = true
				break
			}
		}
		if !matched {
			return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
		}
	}

	return false, ""
}

func (f *Filterer) getFieldValue(item Item, field string) string {
	switch field {
	case "title":
		return item.Title
	case "text":
		return item.Text
	case "link":
		return item.Link
	case "authors":
		return strings.Join(item.Authors, " ")
	case "categories":
		return strings.Join(item.Categories, " ")
	default:
		return ""
	}
}
