package model

import (
	"encoding/json"
	"fmt"
)

// Category is one of the named lists a game can belong to.
type Category string

// Categories.
const (
	CategoryBacklog    Category = "backlog"
	CategoryCollection Category = "collection"
	CategoryCompletion Category = "completion"
	CategoryWishlist   Category = "wishlist"
)

// AllCategories lists the categories in display order.
var AllCategories = []Category{
	CategoryBacklog,
	CategoryCollection,
	CategoryCompletion,
	CategoryWishlist,
}

// ParseCategory returns the category with the given name.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if c.bit() == 0 {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

func (c Category) bit() CategorySet {
	switch c {
	case CategoryBacklog:
		return 1 << 0
	case CategoryCollection:
		return 1 << 1
	case CategoryCompletion:
		return 1 << 2
	case CategoryWishlist:
		return 1 << 3
	}
	return 0
}

// CategorySet is the set of categories a game belongs to.
// A persisted game always has a non-empty set.
type CategorySet uint8

// NewCategorySet returns a set holding the given categories.
func NewCategorySet(cs ...Category) CategorySet {
	var s CategorySet
	for _, c := range cs {
		s |= c.bit()
	}
	return s
}

// Has reports whether c is in the set.
func (s CategorySet) Has(c Category) bool {
	b := c.bit()
	return b != 0 && s&b != 0
}

// With returns a copy of the set with c added.
func (s CategorySet) With(c Category) CategorySet {
	return s | c.bit()
}

// Without returns a copy of the set with c removed.
func (s CategorySet) Without(c Category) CategorySet {
	return s &^ c.bit()
}

// Set returns a copy of the set with c added or removed.
func (s CategorySet) Set(c Category, value bool) CategorySet {
	if value {
		return s.With(c)
	}
	return s.Without(c)
}

// Len returns the number of categories in the set.
func (s CategorySet) Len() int {
	n := 0
	for _, c := range AllCategories {
		if s.Has(c) {
			n++
		}
	}
	return n
}

// IsEmpty reports whether the set holds no category.
func (s CategorySet) IsEmpty() bool {
	return s&NewCategorySet(AllCategories...) == 0
}

// List returns the categories in the set in display order.
func (s CategorySet) List() []Category {
	list := make([]Category, 0, len(AllCategories))
	for _, c := range AllCategories {
		if s.Has(c) {
			list = append(list, c)
		}
	}
	return list
}

// MarshalJSON encodes the set as an array of category names.
func (s CategorySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

// UnmarshalJSON decodes an array of category names.
func (s *CategorySet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	var set CategorySet
	for _, name := range names {
		c, err := ParseCategory(name)
		if err != nil {
			return err
		}
		set = set.With(c)
	}
	*s = set
	return nil
}
