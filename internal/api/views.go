package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"sync"

	"github.com/erazemk/playlist/internal/model"
	"github.com/erazemk/playlist/internal/projection"
	"github.com/erazemk/playlist/internal/search"
	"github.com/erazemk/playlist/internal/store"
)

// view is the server-side state of one category screen.
type view struct {
	proj   *projection.Projection
	sort   model.Sort
	loaded bool
	stale  bool
}

// Views keeps one projection per category and patches them after mutations,
// so searching an open view does not query the database on every keystroke.
type Views struct {
	mu    sync.Mutex
	views map[model.Category]*view
}

// NewViews returns a registry with an unloaded view per category.
func NewViews() *Views {
	vs := &Views{views: make(map[model.Category]*view, len(model.AllCategories))}
	for _, c := range model.AllCategories {
		p := projection.New(c)
		p.OnRemove(func(index int) {
			slog.Debug("game left view", "view", p.Category(), "index", index)
		})
		vs.views[c] = &view{proj: p}
	}
	return vs
}

// Open returns the games of category c matching query, reloading from the
// database when the view is stale, its sort changed or reload is set.
// The second result is the number of games in the view before filtering.
func (vs *Views) Open(ctx context.Context, db store.DBTX, c model.Category, query string, reload bool) ([]model.Game, int, model.Sort, error) {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	v := vs.views[c]
	sort, err := store.GetSortPreference(ctx, db, c)
	if err != nil {
		return nil, 0, sort, err
	}

	if reload || !v.loaded || v.stale || v.sort != sort {
		games, err := store.ListGamesByCategory(ctx, db, c, sort)
		if err != nil {
			return nil, 0, sort, err
		}
		v.proj.Load(games)
		v.proj.Snapshot()
		v.sort = sort
		v.loaded = true
		v.stale = false
	}

	// The working copy keeps games patched out of this category; hide them.
	match := search.Filter(query)
	games := v.proj.ApplyFilter(func(g model.Game) bool {
		return g.Categories.Has(c) && match(g)
	})

	total := 0
	for _, g := range v.proj.Working() {
		if g.Categories.Has(c) {
			total++
		}
	}
	return games, total, sort, nil
}

// PatchCategory applies a category flag change to every open view.
// The view of c itself is reloaded on its next open when a game was added,
// since the game's position depends on the sort.
func (vs *Views) PatchCategory(id int64, c model.Category, value bool) {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	for cat, v := range vs.views {
		if value && cat == c {
			v.stale = true
			continue
		}
		v.proj.PatchCategoryFlag(id, c, value)
	}
}

// Remove drops a deleted game from every view.
func (vs *Views) Remove(id int64) {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	for _, v := range vs.views {
		v.proj.RemoveByID(id)
	}
}

// Invalidate marks the given views stale, or every view when none are given.
func (vs *Views) Invalidate(cs ...model.Category) {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if len(cs) == 0 {
		cs = model.AllCategories
	}
	for _, c := range cs {
		if v, ok := vs.views[c]; ok {
			v.stale = true
		}
	}
}

// ViewsHandler handles the category view endpoints.
type ViewsHandler struct {
	DB    *sql.DB
	Views *Views
}

type viewResponse struct {
	Category model.Category `json:"category"`
	Sort     model.Sort     `json:"sort"`
	Query    string         `json:"query"`
	Total    int            `json:"total"`
	Games    []model.Game   `json:"games"`
}

type sortRequest struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

// Get handles GET /api/views/{category}.
func (h *ViewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := pathCategory(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "unknown category")
		return
	}

	q := r.URL.Query()
	query := search.Sanitize(q.Get("q"))
	games, total, sort, err := h.Views.Open(r.Context(), h.DB, c, query, q.Get("reload") != "")
	if err != nil {
		storeError(w, err, "failed to load view")
		return
	}
	if games == nil {
		games = []model.Game{}
	}

	h.rememberView(r.Context(), c)

	jsonResponse(w, http.StatusOK, viewResponse{
		Category: c,
		Sort:     sort,
		Query:    query,
		Total:    total,
		Games:    games,
	})
}

// rememberView stores c as the last opened view. Failures only cost the
// preference and are logged.
func (h *ViewsHandler) rememberView(ctx context.Context, c model.Category) {
	prefs, err := store.GetPreferences(ctx, h.DB)
	if err == nil && prefs.LastView != c {
		prefs.LastView = c
		err = store.SetPreferences(ctx, h.DB, prefs)
	}
	if err != nil {
		slog.Warn("storing last view", "view", c, "error", err)
	}
}

// GetSort handles GET /api/views/{category}/sort.
func (h *ViewsHandler) GetSort(w http.ResponseWriter, r *http.Request) {
	c, ok := pathCategory(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "unknown category")
		return
	}

	sort, err := store.GetSortPreference(r.Context(), h.DB, c)
	if err != nil {
		storeError(w, err, "failed to get sort")
		return
	}
	jsonResponse(w, http.StatusOK, sort)
}

// SetSort handles PUT /api/views/{category}/sort.
func (h *ViewsHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	c, ok := pathCategory(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "unknown category")
		return
	}

	var req sortRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sort, err := model.ParseSort(req.Field, req.Order)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetSortPreference(r.Context(), h.DB, c, sort); err != nil {
		storeError(w, err, "failed to set sort")
		return
	}
	h.Views.Invalidate(c)

	jsonResponse(w, http.StatusOK, sort)
}
