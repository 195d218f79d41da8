package projection

import (
	"testing"

	"github.com/erazemk/playlist/internal/model"
	"github.com/erazemk/playlist/internal/search"
)

func game(id int64, title string, cats ...model.Category) model.Game {
	return model.Game{ID: id, Title: title, Categories: model.NewCategorySet(cats...)}
}

func ids(games []model.Game) []int64 {
	out := make([]int64, len(games))
	for i, g := range games {
		out[i] = g.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func loaded(c model.Category, games ...model.Game) *Projection {
	p := New(c)
	p.Load(games)
	p.Snapshot()
	return p
}

func TestLoadDoesNotTouchWorkingCopy(t *testing.T) {
	p := loaded(model.CategoryBacklog, game(1, "A", model.CategoryBacklog))

	p.Load([]model.Game{game(2, "B", model.CategoryBacklog)})

	if !equalIDs(ids(p.Items()), []int64{2}) {
		t.Errorf("expected authoritative [2], got %v", ids(p.Items()))
	}
	if !equalIDs(ids(p.Working()), []int64{1}) {
		t.Errorf("expected working copy [1] until Snapshot, got %v", ids(p.Working()))
	}

	p.Snapshot()
	if !equalIDs(ids(p.Working()), []int64{2}) {
		t.Errorf("expected working copy [2] after Snapshot, got %v", ids(p.Working()))
	}
}

func TestApplyFilterAndClear(t *testing.T) {
	p := loaded(model.CategoryBacklog,
		game(1, "Metroid Prime", model.CategoryBacklog),
		game(2, "Mega Man", model.CategoryBacklog),
		game(3, "Metroid Dread", model.CategoryBacklog),
		game(4, "Zelda", model.CategoryBacklog),
	)
	full := ids(p.Working())

	got := p.ApplyFilter(search.Filter("me"))
	if !equalIDs(ids(got), []int64{1, 2, 3}) {
		t.Errorf("expected [1 2 3], got %v", ids(got))
	}

	// Filters apply to the working copy, not to the previous result.
	got = p.ApplyFilter(search.Filter("zel"))
	if !equalIDs(ids(got), []int64{4}) {
		t.Errorf("expected [4], got %v", ids(got))
	}
	p.ApplyFilter(search.Filter("metroid p"))
	p.ApplyFilter(search.Filter("nothing"))

	got = p.ApplyFilter(search.Filter(""))
	if !equalIDs(ids(got), full) || !equalIDs(ids(p.Items()), ids(p.Working())) {
		t.Errorf("clearing the query should restore %v, got %v", full, ids(p.Items()))
	}
}

func TestPatchCategoryFlagRemovesFromOwnView(t *testing.T) {
	p := loaded(model.CategoryWishlist,
		game(1, "A", model.CategoryWishlist, model.CategoryBacklog),
		game(2, "B", model.CategoryWishlist),
	)
	var removed []int
	p.OnRemove(func(i int) { removed = append(removed, i) })

	p.PatchCategoryFlag(1, model.CategoryWishlist, false)

	if !equalIDs(ids(p.Items()), []int64{2}) {
		t.Errorf("expected authoritative [2], got %v", ids(p.Items()))
	}
	working := p.Working()
	if !equalIDs(ids(working), []int64{1, 2}) {
		t.Fatalf("expected working copy [1 2], got %v", ids(working))
	}
	if working[0].Categories.Has(model.CategoryWishlist) {
		t.Error("working copy should carry the cleared flag")
	}
	if len(removed) != 1 || removed[0] != 0 {
		t.Errorf("expected removal notification at index 0, got %v", removed)
	}
}

func TestPatchCategoryFlagOtherCategory(t *testing.T) {
	p := loaded(model.CategoryBacklog,
		game(1, "A", model.CategoryBacklog),
		game(2, "B", model.CategoryBacklog),
	)

	p.PatchCategoryFlag(2, model.CategoryWishlist, true)

	items := p.Items()
	if len(items) != 2 || !items[1].Categories.Has(model.CategoryWishlist) {
		t.Errorf("expected flag set in place, got %+v", items)
	}
	if !p.Working()[1].Categories.Has(model.CategoryWishlist) {
		t.Error("expected flag set in working copy")
	}

	p.PatchCategoryFlag(2, model.CategoryWishlist, false)
	if len(p.Items()) != 2 {
		t.Error("clearing another category must not remove the game from this view")
	}
}

func TestPatchCategoryFlagWhileFiltered(t *testing.T) {
	p := loaded(model.CategoryCollection,
		game(1, "Alpha", model.CategoryCollection),
		game(2, "Beta", model.CategoryCollection),
		game(3, "Bravo", model.CategoryCollection),
	)
	p.ApplyFilter(search.Filter("b"))

	// Game 1 is filtered out of the displayed list but still patched in the working copy.
	p.PatchCategoryFlag(1, model.CategoryCompletion, true)
	if !p.Working()[0].Categories.Has(model.CategoryCompletion) {
		t.Error("expected working copy to be patched")
	}

	// Game 3 sits at index 1 of the displayed list and index 2 of the working copy.
	var removed []int
	p.OnRemove(func(i int) { removed = append(removed, i) })
	p.PatchCategoryFlag(3, model.CategoryCollection, false)

	if !equalIDs(ids(p.Items()), []int64{2}) {
		t.Errorf("expected displayed [2], got %v", ids(p.Items()))
	}
	if len(removed) != 1 || removed[0] != 1 {
		t.Errorf("expected removal at index 1, got %v", removed)
	}
	if len(p.Working()) != 3 {
		t.Errorf("working copy should keep all games, got %v", ids(p.Working()))
	}
}

func TestRemoveByID(t *testing.T) {
	games := []model.Game{
		game(1, "Alpha", model.CategoryBacklog),
		game(2, "Beta", model.CategoryBacklog),
		game(3, "Bravo", model.CategoryBacklog),
	}
	p := loaded(model.CategoryBacklog, games...)
	p.ApplyFilter(search.Filter("b"))

	p.RemoveByID(1)
	if !equalIDs(ids(p.Working()), []int64{2, 3}) {
		t.Errorf("expected working [2 3], got %v", ids(p.Working()))
	}
	if !equalIDs(ids(p.Items()), []int64{2, 3}) {
		t.Errorf("expected displayed [2 3], got %v", ids(p.Items()))
	}

	p.RemoveByID(99)

	for _, g := range games {
		p.RemoveByID(g.ID)
	}
	if len(p.Items()) != 0 || len(p.Working()) != 0 {
		t.Errorf("expected both lists empty, got %v and %v", ids(p.Items()), ids(p.Working()))
	}
}

func TestLoadCopiesInput(t *testing.T) {
	games := []model.Game{game(1, "A", model.CategoryBacklog)}
	p := loaded(model.CategoryBacklog, games...)

	games[0].Title = "changed"
	if p.Items()[0].Title != "A" {
		t.Error("projection must not alias the caller's slice")
	}
}
