// Package projection holds the in-memory state of a category view: the
// displayed (possibly search-filtered) list and the unfiltered working copy
// it is filtered from.
package projection

import (
	"sync"

	"github.com/erazemk/playlist/internal/model"
)

// Projection is the list state of one category view.
//
// The working copy always holds the full result of the last load for the
// active sort. The authoritative list is what the view displays: equal to the
// working copy, or a subset of it while a search is active. The two lists are
// correlated by game id only, since positions differ once a filter applies.
type Projection struct {
	mu            sync.Mutex
	category      model.Category
	authoritative []model.Game
	working       []model.Game
	onRemove      func(index int)
}

// New returns an empty projection for the view of category c.
func New(c model.Category) *Projection {
	return &Projection{category: c}
}

// Category returns the category of the view.
func (p *Projection) Category() model.Category {
	return p.category
}

// OnRemove registers fn to be called with the authoritative index of every
// game removed from the displayed list. fn runs with the projection locked
// and must not call back into it.
func (p *Projection) OnRemove(fn func(index int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onRemove = fn
}

// Load replaces the authoritative list. The working copy is left alone until
// Snapshot is called.
func (p *Projection) Load(games []model.Game) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.authoritative = clone(games)
}

// Snapshot copies the authoritative list into the working copy. Call it once
// after every full reload, before any filter is applied.
func (p *Projection) Snapshot() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.working = clone(p.authoritative)
}

// ApplyFilter replaces the authoritative list with the games of the working
// copy that satisfy pred and returns them. The working copy is unchanged, so
// filters do not compound.
func (p *Projection) ApplyFilter(pred func(model.Game) bool) []model.Game {
	p.mu.Lock()
	defer p.mu.Unlock()

	filtered := make([]model.Game, 0, len(p.working))
	for _, g := range p.working {
		if pred(g) {
			filtered = append(filtered, g)
		}
	}
	p.authoritative = filtered
	return clone(filtered)
}

// PatchCategoryFlag updates category membership of the game with the given
// id in both lists. When the game leaves the category of this view it is
// removed from the displayed list but stays in the working copy.
func (p *Projection) PatchCategoryFlag(id int64, c model.Category, value bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i := indexOf(p.working, id); i >= 0 {
		p.working[i].Categories = p.working[i].Categories.Set(c, value)
	}

	i := indexOf(p.authoritative, id)
	if i < 0 {
		return
	}
	p.authoritative[i].Categories = p.authoritative[i].Categories.Set(c, value)
	if !value && c == p.category {
		p.removeAt(i)
	}
}

// RemoveByID removes the game with the given id from both lists.
func (p *Projection) RemoveByID(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i := indexOf(p.working, id); i >= 0 {
		p.working = append(p.working[:i], p.working[i+1:]...)
	}
	if i := indexOf(p.authoritative, id); i >= 0 {
		p.removeAt(i)
	}
}

// Items returns a copy of the displayed list.
func (p *Projection) Items() []model.Game {
	p.mu.Lock()
	defer p.mu.Unlock()
	return clone(p.authoritative)
}

// Working returns a copy of the unfiltered working copy.
func (p *Projection) Working() []model.Game {
	p.mu.Lock()
	defer p.mu.Unlock()
	return clone(p.working)
}

// removeAt drops authoritative[i] and notifies the listener. p.mu must be held.
func (p *Projection) removeAt(i int) {
	p.authoritative = append(p.authoritative[:i], p.authoritative[i+1:]...)
	if p.onRemove != nil {
		p.onRemove(i)
	}
}

func indexOf(games []model.Game, id int64) int {
	for i := range games {
		if games[i].ID == id {
			return i
		}
	}
	return -1
}

func clone(games []model.Game) []model.Game {
	out := make([]model.Game, len(games))
	copy(out, games)
	return out
}
