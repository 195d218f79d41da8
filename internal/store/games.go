package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/playlist/internal/model"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const gameColumns = `id, title, platform, publisher, release_date, completion_date, playtime, price,
	is_backlog, is_collection, is_completion, is_wishlist, image_path`

// categorySum is the number of categories a row belongs to.
const categorySum = `(is_backlog + is_collection + is_completion + is_wishlist)`

// categoryColumns maps each category to its flag column.
var categoryColumns = map[model.Category]string{
	model.CategoryBacklog:    "is_backlog",
	model.CategoryCollection: "is_collection",
	model.CategoryCompletion: "is_completion",
	model.CategoryWishlist:   "is_wishlist",
}

// CategoryColumn returns the flag column of a category.
func CategoryColumn(c model.Category) (string, error) {
	col, ok := categoryColumns[c]
	if !ok {
		return "", fmt.Errorf("unknown category %q", c)
	}
	return col, nil
}

func dbErr(op string, err error) error {
	return &model.StorageError{Op: op, Err: err}
}

// gameArgs returns the column values of a game in gameColumns order, without id.
func gameArgs(g *model.Game) []any {
	var completion sql.NullString
	if g.CompletionDate != nil && !g.CompletionDate.IsZero() {
		completion = sql.NullString{String: g.CompletionDate.String(), Valid: true}
	}
	var imagePath sql.NullString
	if g.ImagePath != "" {
		imagePath = sql.NullString{String: g.ImagePath, Valid: true}
	}
	return []any{
		g.Title, g.Platform, g.Publisher, g.ReleaseDate.String(), completion, g.Playtime, g.Price,
		boolInt(g.Categories.Has(model.CategoryBacklog)),
		boolInt(g.Categories.Has(model.CategoryCollection)),
		boolInt(g.Categories.Has(model.CategoryCompletion)),
		boolInt(g.Categories.Has(model.CategoryWishlist)),
		imagePath,
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CreateGame validates and inserts a new game, returning its id.
func CreateGame(ctx context.Context, db DBTX, g model.Game) (int64, error) {
	g.Normalize()
	if err := g.Validate(); err != nil {
		return 0, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO video_games (title, platform, publisher, release_date, completion_date, playtime, price,
		     is_backlog, is_collection, is_completion, is_wishlist, image_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		gameArgs(&g)...,
	)
	if err != nil {
		return 0, dbErr("creating game", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, dbErr("getting game id", err)
	}
	return id, nil
}

// GetGame returns a game by ID.
func GetGame(ctx context.Context, db DBTX, id int64) (*model.Game, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM video_games WHERE id = ?`, id,
	)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, dbErr("getting game", err)
	}
	return g, nil
}

// UpdateGame replaces every field of a game except its id.
func UpdateGame(ctx context.Context, db DBTX, id int64, g model.Game) error {
	g.Normalize()
	if err := g.Validate(); err != nil {
		return err
	}

	args := append(gameArgs(&g), id)
	result, err := db.ExecContext(ctx,
		`UPDATE video_games SET title = ?, platform = ?, publisher = ?, release_date = ?, completion_date = ?,
		     playtime = ?, price = ?, is_backlog = ?, is_collection = ?, is_completion = ?, is_wishlist = ?,
		     image_path = ?
		 WHERE id = ?`,
		args...,
	)
	if err != nil {
		return dbErr("updating game", err)
	}
	return requireAffected(result, "updating game")
}

// SetCategory sets or clears one category flag of a game.
// Clearing the last category of a game is refused with model.ErrLastCategory;
// such a game must be deleted instead.
func SetCategory(ctx context.Context, db DBTX, id int64, c model.Category, value bool) error {
	col, err := CategoryColumn(c)
	if err != nil {
		return err
	}

	var result sql.Result
	if value {
		result, err = db.ExecContext(ctx,
			`UPDATE video_games SET `+col+` = 1 WHERE id = ?`, id,
		)
	} else {
		result, err = db.ExecContext(ctx,
			`UPDATE video_games SET `+col+` = 0
			 WHERE id = ? AND (`+col+` = 0 OR `+categorySum+` > 1)`, id,
		)
	}
	if err != nil {
		return dbErr("setting game category", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return dbErr("setting game category", err)
	}
	if n > 0 {
		return nil
	}

	// Nothing changed: either the game is gone or the flag was its last one.
	if _, err := CategoryCount(ctx, db, id); err != nil {
		return err
	}
	return model.ErrLastCategory
}

// CategoryCount returns the number of categories a game belongs to.
func CategoryCount(ctx context.Context, db DBTX, id int64) (int, error) {
	var total int
	err := db.QueryRowContext(ctx,
		`SELECT `+categorySum+` FROM video_games WHERE id = ?`, id,
	).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrNotFound
	}
	if err != nil {
		return 0, dbErr("counting game categories", err)
	}
	return total, nil
}

// DeleteGame permanently deletes a game.
func DeleteGame(ctx context.Context, db DBTX, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM video_games WHERE id = ?`, id)
	if err != nil {
		return dbErr("deleting game", err)
	}
	return requireAffected(result, "deleting game")
}

// DeleteLastCategoryGame deletes a game only if c is still its single
// category. It reports whether the row was deleted.
func DeleteLastCategoryGame(ctx context.Context, db DBTX, id int64, c model.Category) (bool, error) {
	col, err := CategoryColumn(c)
	if err != nil {
		return false, err
	}

	result, err := db.ExecContext(ctx,
		`DELETE FROM video_games WHERE id = ? AND `+col+` = 1 AND `+categorySum+` = 1`, id,
	)
	if err != nil {
		return false, dbErr("deleting game", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, dbErr("deleting game", err)
	}
	return n > 0, nil
}

// DeleteAllGames deletes every game and verifies the table is empty.
func DeleteAllGames(ctx context.Context, db DBTX) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM video_games`); err != nil {
		return dbErr("deleting all games", err)
	}

	n, err := CountGames(ctx, db)
	if err != nil {
		return err
	}
	if n != 0 {
		return dbErr("deleting all games", fmt.Errorf("%d games remain after delete", n))
	}
	return nil
}

// ListGamesByCategory returns the games of one category in the given order.
func ListGamesByCategory(ctx context.Context, db DBTX, c model.Category, sort model.Sort) ([]model.Game, error) {
	col, err := CategoryColumn(c)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM video_games WHERE `+col+` = 1 ORDER BY `+orderBy(c, sort),
	)
	if err != nil {
		return nil, dbErr("listing games", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, dbErr("scanning game", err)
		}
		games = append(games, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("listing games", err)
	}
	return games, nil
}

// CountGames returns the total number of games regardless of category.
func CountGames(ctx context.Context, db DBTX) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM video_games`).Scan(&n); err != nil {
		return 0, dbErr("counting games", err)
	}
	return n, nil
}

// CountGamesByCategory returns the number of games in each category.
func CountGamesByCategory(ctx context.Context, db DBTX) (map[model.Category]int, error) {
	var backlog, collection, completion, wishlist sql.NullInt64
	err := db.QueryRowContext(ctx,
		`SELECT SUM(is_backlog), SUM(is_collection), SUM(is_completion), SUM(is_wishlist) FROM video_games`,
	).Scan(&backlog, &collection, &completion, &wishlist)
	if err != nil {
		return nil, dbErr("counting games by category", err)
	}
	return map[model.Category]int{
		model.CategoryBacklog:    int(backlog.Int64),
		model.CategoryCollection: int(collection.Int64),
		model.CategoryCompletion: int(completion.Int64),
		model.CategoryWishlist:   int(wishlist.Int64),
	}, nil
}

// SetGameImage sets the cover image path of a game.
func SetGameImage(ctx context.Context, db DBTX, id int64, path string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE video_games SET image_path = NULLIF(?, '') WHERE id = ?`, path, id,
	)
	if err != nil {
		return dbErr("setting game image", err)
	}
	return requireAffected(result, "setting game image")
}

func requireAffected(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return dbErr(op, err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(s rowScanner) (*model.Game, error) {
	g := &model.Game{}
	var releaseDate string
	var completionDate, imagePath sql.NullString
	var backlog, collection, completion, wishlist bool

	err := s.Scan(&g.ID, &g.Title, &g.Platform, &g.Publisher, &releaseDate, &completionDate,
		&g.Playtime, &g.Price, &backlog, &collection, &completion, &wishlist, &imagePath)
	if err != nil {
		return nil, err
	}

	g.ReleaseDate, err = model.ParseDate(releaseDate)
	if err != nil {
		return nil, fmt.Errorf("game %d: %w", g.ID, err)
	}
	if completionDate.Valid {
		d, err := model.ParseDate(completionDate.String)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", g.ID, err)
		}
		g.CompletionDate = &d
	}
	g.Categories = g.Categories.
		Set(model.CategoryBacklog, backlog).
		Set(model.CategoryCollection, collection).
		Set(model.CategoryCompletion, completion).
		Set(model.CategoryWishlist, wishlist)
	g.ImagePath = imagePath.String
	return g, nil
}
