package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/playlist/internal/db"
	"github.com/erazemk/playlist/internal/model"
	"github.com/erazemk/playlist/internal/store"
)

// recorder is a Confirmer that answers with err and counts prompts.
type recorder struct {
	err     error
	prompts int
}

func (r *recorder) Confirm(_ context.Context, _ string) error {
	r.prompts++
	return r.err
}

func setup(t *testing.T) (*Engine, context.Context) {
	t.Helper()
	database := db.NewTestDB(t)
	return &Engine{DB: database, Settings: store.Settings{DB: database}}, context.Background()
}

func create(t *testing.T, e *Engine, cats ...model.Category) int64 {
	t.Helper()
	id, err := store.CreateGame(context.Background(), e.DB, model.Game{
		Title:       "Celeste",
		Platform:    "Switch",
		Publisher:   "Maddy Makes Games",
		ReleaseDate: model.NewDate(2018, time.January, 25),
		Playtime:    model.NoPlaytime,
		Price:       19.99,
		Categories:  model.NewCategorySet(cats...),
	})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	return id
}

func categories(t *testing.T, e *Engine, id int64) model.CategorySet {
	t.Helper()
	g, err := store.GetGame(context.Background(), e.DB, id)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	return g.Categories
}

func TestToggleAddsCategory(t *testing.T) {
	e, ctx := setup(t)
	id := create(t, e, model.CategoryBacklog)
	conf := &recorder{}

	outcome, err := e.ToggleCategory(ctx, id, model.CategoryWishlist, conf)
	if err != nil {
		t.Fatalf("ToggleCategory: %v", err)
	}
	if outcome != Added {
		t.Errorf("expected added, got %v", outcome)
	}
	want := model.NewCategorySet(model.CategoryBacklog, model.CategoryWishlist)
	if got := categories(t, e, id); got != want {
		t.Errorf("expected %v, got %v", want.List(), got.List())
	}
	if conf.prompts != 0 {
		t.Errorf("adding should not prompt, got %d prompts", conf.prompts)
	}
}

func TestToggleRemovesOneOfMany(t *testing.T) {
	e, ctx := setup(t)
	id := create(t, e, model.CategoryBacklog, model.CategoryCollection, model.CategoryWishlist)
	conf := &recorder{}

	outcome, err := e.ToggleCategory(ctx, id, model.CategoryCollection, conf)
	if err != nil {
		t.Fatalf("ToggleCategory: %v", err)
	}
	if outcome != Removed {
		t.Errorf("expected removed, got %v", outcome)
	}
	want := model.NewCategorySet(model.CategoryBacklog, model.CategoryWishlist)
	if got := categories(t, e, id); got != want {
		t.Errorf("only the toggled flag should change: expected %v, got %v", want.List(), got.List())
	}
	if conf.prompts != 0 {
		t.Errorf("removing should not prompt, got %d prompts", conf.prompts)
	}
}

func TestToggleLastCategoryConfirmed(t *testing.T) {
	e, ctx := setup(t)
	id := create(t, e, model.CategoryWishlist)
	conf := &recorder{}

	outcome, err := e.ToggleCategory(ctx, id, model.CategoryWishlist, conf)
	if err != nil {
		t.Fatalf("ToggleCategory: %v", err)
	}
	if outcome != Deleted {
		t.Errorf("expected deleted, got %v", outcome)
	}
	if conf.prompts != 1 {
		t.Errorf("expected one prompt, got %d", conf.prompts)
	}
	if _, err := store.GetGame(ctx, e.DB, id); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected game to be gone, got %v", err)
	}
}

func TestToggleLastCategoryDeclined(t *testing.T) {
	e, ctx := setup(t)
	id := create(t, e, model.CategoryBacklog)

	for _, conf := range []Confirmer{&recorder{err: model.ErrCancelled}, nil} {
		outcome, err := e.ToggleCategory(ctx, id, model.CategoryBacklog, conf)
		if err != nil {
			t.Fatalf("declining is not an error, got %v", err)
		}
		if outcome != Cancelled {
			t.Errorf("expected cancelled, got %v", outcome)
		}
		if got := categories(t, e, id); got != model.NewCategorySet(model.CategoryBacklog) {
			t.Errorf("expected game unchanged, got %v", got.List())
		}
	}
}

func TestToggleLastCategoryWithoutConfirmation(t *testing.T) {
	e, ctx := setup(t)
	id := create(t, e, model.CategoryCompletion)

	prefs := model.DefaultPreferences
	prefs.ConfirmDelete = false
	if err := store.SetPreferences(ctx, e.DB, prefs); err != nil {
		t.Fatalf("SetPreferences: %v", err)
	}

	conf := &recorder{err: model.ErrCancelled}
	outcome, err := e.ToggleCategory(ctx, id, model.CategoryCompletion, conf)
	if err != nil {
		t.Fatalf("ToggleCategory: %v", err)
	}
	if outcome != Deleted {
		t.Errorf("expected deleted, got %v", outcome)
	}
	if conf.prompts != 0 {
		t.Errorf("expected no prompt with confirmation off, got %d", conf.prompts)
	}
}

func TestToggleConfirmerFailure(t *testing.T) {
	e, ctx := setup(t)
	id := create(t, e, model.CategoryBacklog)
	boom := errors.New("prompt closed")

	_, err := e.ToggleCategory(ctx, id, model.CategoryBacklog, &recorder{err: boom})
	if !errors.Is(err, boom) {
		t.Errorf("expected confirmer error, got %v", err)
	}
	if got := categories(t, e, id); got.IsEmpty() {
		t.Error("game should be unchanged after a failed prompt")
	}
}

func TestToggleGameChangedDuringPrompt(t *testing.T) {
	e, ctx := setup(t)
	id := create(t, e, model.CategoryBacklog)

	// Another view adds a category while the prompt is open.
	conf := ConfirmFunc(func(ctx context.Context, _ string) error {
		return store.SetCategory(ctx, e.DB, id, model.CategoryWishlist, true)
	})

	outcome, err := e.ToggleCategory(ctx, id, model.CategoryBacklog, conf)
	if err != nil {
		t.Fatalf("ToggleCategory: %v", err)
	}
	if outcome != Removed {
		t.Errorf("expected removed, got %v", outcome)
	}
	if got := categories(t, e, id); got != model.NewCategorySet(model.CategoryWishlist) {
		t.Errorf("expected only wishlist, got %v", got.List())
	}
}

func TestToggleErrors(t *testing.T) {
	e, ctx := setup(t)
	id := create(t, e, model.CategoryBacklog)

	if _, err := e.ToggleCategory(ctx, id+100, model.CategoryBacklog, &recorder{}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	var verr *model.ValidationError
	if _, err := e.ToggleCategory(ctx, id, "favourites", &recorder{}); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestOutcomeString(t *testing.T) {
	tests := map[Outcome]string{
		Added:      "added",
		Removed:    "removed",
		Deleted:    "deleted",
		Cancelled:  "cancelled",
		Outcome(9): "outcome(9)",
	}
	for o, want := range tests {
		if got := o.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", int(o), got, want)
		}
	}
}
