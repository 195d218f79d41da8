package search

import (
	"testing"

	"github.com/erazemk/playlist/internal/model"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Super Mario!!  Bros", "Super Mario Bros"},
		{"  The Legend of Zelda: Breath of the Wild  ", "The Legend of Zelda Breath of the Wild"},
		{"Pokémon Red", "Pokmon Red"},
		{"Half-Life 2", "HalfLife 2"},
		{"a\tb", "ab"},
		{"!!!", ""},
		{"", ""},
		{"x   -   y", "x y"},
	}

	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		query string
		title string
		want  bool
	}{
		{"super", "Super Mario Bros", true},
		{"mario", "Super Mario Bros", false},
		{"mario", "Super Mario!!  Bros", false},
		{"SUPER   mario", "Super Mario!!  Bros", true},
		{"super mario bros", "Super Mario Bros", true},
		{"super mario bros 3", "Super Mario Bros", false},
		{"", "anything", true},
		{"?!", "anything", true},
		{"zelda", "The Legend of Zelda", false},
		{"half life", "Half-Life", false},
		{"halflife", "Half-Life", true},
	}

	for _, tt := range tests {
		if got := Matches(tt.query, tt.title); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tt.query, tt.title, got, tt.want)
		}
	}
}

func TestFilter(t *testing.T) {
	games := []model.Game{
		{ID: 1, Title: "Metroid Prime"},
		{ID: 2, Title: "Mega Man"},
		{ID: 3, Title: "Metroid Dread"},
	}

	pred := Filter("metroid")
	var ids []int64
	for _, g := range games {
		if pred(g) {
			ids = append(ids, g.ID)
		}
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Errorf("expected [1 3], got %v", ids)
	}
}
