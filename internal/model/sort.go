package model

import "fmt"

// SortField selects the primary ordering of a category view.
type SortField string

// Sort fields. SortDate and SortMetric resolve to different columns per view.
const (
	SortTitle     SortField = "title"
	SortPlatform  SortField = "platform"
	SortPublisher SortField = "publisher"
	SortDate      SortField = "date"
	SortMetric    SortField = "metric"
)

// SortOrder is the direction of the primary ordering.
type SortOrder string

// Sort orders.
const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// Sort is a (field, order) selection for a category view.
type Sort struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// DefaultSort is used when a view has no stored preference.
var DefaultSort = Sort{Field: SortTitle, Order: Ascending}

// ParseSort validates a field and order given as strings. Empty values fall
// back to the defaults.
func ParseSort(field, order string) (Sort, error) {
	s := DefaultSort
	if field != "" {
		switch f := SortField(field); f {
		case SortTitle, SortPlatform, SortPublisher, SortDate, SortMetric:
			s.Field = f
		default:
			return Sort{}, fmt.Errorf("unknown sort field %q", field)
		}
	}
	if order != "" {
		switch o := SortOrder(order); o {
		case Ascending, Descending:
			s.Order = o
		default:
			return Sort{}, fmt.Errorf("unknown sort order %q", order)
		}
	}
	return s, nil
}

// Column returns the storage column the sort field resolves to in the view
// of the given category.
func (s Sort) Column(c Category) string {
	switch s.Field {
	case SortPlatform:
		return "platform"
	case SortPublisher:
		return "publisher"
	case SortDate:
		if c == CategoryCompletion {
			return "completion_date"
		}
		return "release_date"
	case SortMetric:
		if c == CategoryBacklog || c == CategoryCompletion {
			return "playtime"
		}
		return "price"
	default:
		return "title"
	}
}

// IsDescending reports whether the order is descending.
func (s Sort) IsDescending() bool {
	return s.Order == Descending
}
