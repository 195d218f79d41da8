package store

import "github.com/erazemk/playlist/internal/model"

// orderBy builds the ORDER BY clause of a category view. The primary column
// comes from a fixed set resolved by model.Sort.Column; ties are broken by
// title ascending and then by insertion order, so the ordering is total.
func orderBy(c model.Category, s model.Sort) string {
	dir := "ASC"
	if s.IsDescending() {
		dir = "DESC"
	}
	return s.Column(c) + " " + dir + ", title ASC, id ASC"
}
