package api

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/playlist/internal/imaging"
	"github.com/erazemk/playlist/internal/lifecycle"
	"github.com/erazemk/playlist/internal/model"
	"github.com/erazemk/playlist/internal/store"
)

// GamesHandler handles game CRUD, category toggles and covers.
type GamesHandler struct {
	DB     *sql.DB
	Engine *lifecycle.Engine
	Covers *imaging.Covers
	Views  *Views
}

type toggleResponse struct {
	Outcome lifecycle.Outcome `json:"outcome"`
	Message string            `json:"message,omitempty"`
}

type statsResponse struct {
	Total      int                    `json:"total"`
	Categories map[model.Category]int `json:"categories"`
}

// queryConfirmer approves a delete when the request carried confirm=true and
// keeps the prompt so it can be returned to the client otherwise.
type queryConfirmer struct {
	approved bool
	message  string
}

func (c *queryConfirmer) Confirm(_ context.Context, message string) error {
	c.message = message
	if !c.approved {
		return model.ErrCancelled
	}
	return nil
}

// Get handles GET /api/games/{id}.
func (h *GamesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	game, err := store.GetGame(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get game")
		return
	}
	jsonResponse(w, http.StatusOK, game)
}

// Create handles POST /api/games.
func (h *GamesHandler) Create(w http.ResponseWriter, r *http.Request) {
	req := model.Game{Playtime: model.NoPlaytime}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := store.CreateGame(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, err, "failed to create game")
		return
	}
	game, err := store.GetGame(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get game")
		return
	}
	h.Views.Invalidate(game.Categories.List()...)

	slog.Info("game created", "game", id, "title", game.Title)
	jsonResponse(w, http.StatusCreated, game)
}

// Update handles PUT /api/games/{id}. The cover is kept unless the request
// names another one; DELETE /api/games/{id}/cover clears it.
func (h *GamesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	req := model.Game{Playtime: model.NoPlaytime}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	old, err := store.GetGame(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get game")
		return
	}
	if req.ImagePath == "" {
		req.ImagePath = old.ImagePath
	}

	if err := store.UpdateGame(r.Context(), h.DB, id, req); err != nil {
		storeError(w, err, "failed to update game")
		return
	}
	game, err := store.GetGame(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get game")
		return
	}
	h.Views.Invalidate()

	jsonResponse(w, http.StatusOK, game)
}

// Delete handles DELETE /api/games/{id}. With the confirm preference on, the
// request must carry confirm=true.
func (h *GamesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	ask, err := h.Engine.Settings.ConfirmDelete(r.Context())
	if err != nil {
		storeError(w, err, "failed to read preferences")
		return
	}
	if ask && !confirmed(r) {
		jsonError(w, http.StatusPreconditionRequired, "confirmation required: repeat with confirm=true")
		return
	}

	game, err := store.GetGame(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get game")
		return
	}
	if err := store.DeleteGame(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to delete game")
		return
	}
	h.Views.Remove(id)
	h.removeCover(game.ImagePath)

	slog.Info("game deleted", "game", id, "title", game.Title)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAll handles DELETE /api/games?confirm=true.
func (h *GamesHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		jsonError(w, http.StatusPreconditionRequired, "confirmation required: repeat with confirm=true")
		return
	}

	if err := store.DeleteAllGames(r.Context(), h.DB); err != nil {
		storeError(w, err, "failed to delete games")
		return
	}
	h.Views.Invalidate()

	slog.Info("all games deleted")
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/stats.
func (h *GamesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	total, err := store.CountGames(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to count games")
		return
	}
	perCategory, err := store.CountGamesByCategory(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to count games")
		return
	}
	jsonResponse(w, http.StatusOK, statsResponse{Total: total, Categories: perCategory})
}

// ToggleCategory handles POST /api/games/{id}/categories/{category}.
// Removing the last category deletes the game; when that needs confirmation
// and the request lacks confirm=true, the outcome is "cancelled" and the
// response carries the prompt.
func (h *GamesHandler) ToggleCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	c, ok := pathCategory(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "unknown category")
		return
	}

	confirmer := &queryConfirmer{approved: confirmed(r)}
	outcome, err := h.Engine.ToggleCategory(r.Context(), id, c, confirmer)
	if err != nil {
		storeError(w, err, "failed to toggle category")
		return
	}

	switch outcome {
	case lifecycle.Added:
		h.Views.PatchCategory(id, c, true)
	case lifecycle.Removed:
		h.Views.PatchCategory(id, c, false)
	case lifecycle.Deleted:
		h.Views.Remove(id)
	}

	resp := toggleResponse{Outcome: outcome}
	if outcome == lifecycle.Cancelled {
		resp.Message = confirmer.message
	}
	jsonResponse(w, http.StatusOK, resp)
}

// UploadCover handles PUT /api/games/{id}/cover.
func (h *GamesHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	game, err := store.GetGame(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get game")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+(64<<10))
	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	name, err := h.Covers.Save(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetGameImage(r.Context(), h.DB, id, name); err != nil {
		h.removeCover(name)
		storeError(w, err, "failed to save cover")
		return
	}
	h.removeCover(game.ImagePath)
	h.Views.Invalidate(game.Categories.List()...)

	jsonResponse(w, http.StatusOK, map[string]string{"image_path": name})
}

// RemoveCover handles DELETE /api/games/{id}/cover.
func (h *GamesHandler) RemoveCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	game, err := store.GetGame(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get game")
		return
	}
	if err := store.SetGameImage(r.Context(), h.DB, id, ""); err != nil {
		storeError(w, err, "failed to remove cover")
		return
	}
	h.removeCover(game.ImagePath)
	h.Views.Invalidate(game.Categories.List()...)

	w.WriteHeader(http.StatusNoContent)
}

// GetCover handles GET /api/games/{id}/cover. Games without a resolvable
// cover get the placeholder image.
func (h *GamesHandler) GetCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	game, err := store.GetGame(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get game")
		return
	}

	data, placeholder := h.Covers.Resolve(game.ImagePath)
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if placeholder {
		w.Header().Set("X-Cover-Placeholder", "true")
		w.Header().Set("Cache-Control", "no-cache")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	}
	w.Write(data)
}

// removeCover deletes a cover file we manage. Paths that are not our own
// file names, such as external URIs, are left alone.
func (h *GamesHandler) removeCover(name string) {
	if name == "" {
		return
	}
	if err := h.Covers.Remove(name); err != nil && !errors.Is(err, imaging.ErrInvalidName) {
		slog.Warn("removing cover", "cover", name, "error", err)
	}
}
