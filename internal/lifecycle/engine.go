// Package lifecycle decides what a category toggle does to a game: add the
// category, remove it, or delete the game when it would be left in none.
package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/playlist/internal/model"
	"github.com/erazemk/playlist/internal/store"
)

// Outcome is the result of a successful toggle.
type Outcome int

const (
	Added Outcome = iota + 1
	Removed
	Deleted
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Deleted:
		return "deleted"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name.
func (o *Outcome) UnmarshalText(text []byte) error {
	for _, candidate := range []Outcome{Added, Removed, Deleted, Cancelled} {
		if candidate.String() == string(text) {
			*o = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Confirmer asks the user to approve a destructive delete. It returns nil when
// approved and model.ErrCancelled when declined.
type Confirmer interface {
	Confirm(ctx context.Context, message string) error
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, message string) error

func (f ConfirmFunc) Confirm(ctx context.Context, message string) error {
	return f(ctx, message)
}

// Settings reports whether deletes need confirmation.
type Settings interface {
	ConfirmDelete(ctx context.Context) (bool, error)
}

// Engine applies category toggles against the database.
type Engine struct {
	DB       *sql.DB
	Settings Settings
}

// ToggleCategory flips category c of game id.
//
// A game that is not in c is added to it. A game in c and at least one other
// category is removed from c. When c is the last category the game is deleted
// instead, after confirmation if the ConfirmDelete preference is on. A declined
// confirmation yields Cancelled with a nil error and no change.
func (e *Engine) ToggleCategory(ctx context.Context, id int64, c model.Category, confirmer Confirmer) (Outcome, error) {
	if _, err := store.CategoryColumn(c); err != nil {
		return 0, model.NewValidationError("category", err.Error())
	}

	outcome, game, err := e.flip(ctx, id, c)
	if err != nil {
		return 0, err
	}
	if outcome != 0 {
		slog.Info("game category toggled", "game", id, "category", c, "outcome", outcome)
		return outcome, nil
	}

	// Last category. The prompt is never awaited with a transaction open.
	confirm, err := e.Settings.ConfirmDelete(ctx)
	if err != nil {
		return 0, err
	}
	if confirm {
		if confirmer == nil {
			return Cancelled, nil
		}
		msg := fmt.Sprintf("%q is only in your %s. Delete it permanently?", game.Title, c)
		if err := confirmer.Confirm(ctx, msg); err != nil {
			if errors.Is(err, model.ErrCancelled) {
				return Cancelled, nil
			}
			return 0, fmt.Errorf("confirming delete: %w", err)
		}
	}

	outcome, err = e.deleteLast(ctx, id, c)
	if err != nil {
		return 0, err
	}
	slog.Info("game category toggled", "game", id, "category", c, "outcome", outcome)
	return outcome, nil
}

// flip adds or removes c in one transaction. It returns a zero outcome and
// the game when c is the game's last category.
func (e *Engine) flip(ctx context.Context, id int64, c model.Category) (Outcome, *model.Game, error) {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, &model.StorageError{Op: "beginning transaction", Err: err}
	}
	defer tx.Rollback()

	game, err := store.GetGame(ctx, tx, id)
	if err != nil {
		return 0, nil, err
	}

	var outcome Outcome
	if !game.Categories.Has(c) {
		if err := store.SetCategory(ctx, tx, id, c, true); err != nil {
			return 0, nil, err
		}
		outcome = Added
	} else {
		count, err := store.CategoryCount(ctx, tx, id)
		if err != nil {
			return 0, nil, err
		}
		if count <= 1 {
			return 0, game, nil
		}
		if err := store.SetCategory(ctx, tx, id, c, false); err != nil {
			return 0, nil, err
		}
		outcome = Removed
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, &model.StorageError{Op: "committing toggle", Err: err}
	}
	return outcome, game, nil
}

// deleteLast deletes the game if c is still its only category. If another
// view changed the game in the meantime it falls back to removing c.
func (e *Engine) deleteLast(ctx context.Context, id int64, c model.Category) (Outcome, error) {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, &model.StorageError{Op: "beginning transaction", Err: err}
	}
	defer tx.Rollback()

	deleted, err := store.DeleteLastCategoryGame(ctx, tx, id, c)
	if err != nil {
		return 0, err
	}
	outcome := Deleted
	if !deleted {
		game, err := store.GetGame(ctx, tx, id)
		if err != nil {
			return 0, err
		}
		if game.Categories.Has(c) {
			if err := store.SetCategory(ctx, tx, id, c, false); err != nil {
				return 0, err
			}
		}
		slog.Warn("game changed before delete, removing category instead", "game", id, "category", c)
		outcome = Removed
	}

	if err := tx.Commit(); err != nil {
		return 0, &model.StorageError{Op: "committing delete", Err: err}
	}
	return outcome, nil
}
