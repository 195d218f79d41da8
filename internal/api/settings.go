package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/playlist/internal/model"
	"github.com/erazemk/playlist/internal/store"
)

// SettingsHandler handles the user preferences.
type SettingsHandler struct {
	DB *sql.DB
}

// settingsRequest uses pointers so omitted fields keep their stored value.
type settingsRequest struct {
	ConfirmDelete *bool           `json:"confirm_delete"`
	ShowImages    *bool           `json:"show_images"`
	LastView      *model.Category `json:"last_view"`
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	prefs, err := store.GetPreferences(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to get settings")
		return
	}
	jsonResponse(w, http.StatusOK, prefs)
}

// Update handles PUT /api/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prefs, err := store.GetPreferences(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to get settings")
		return
	}
	if req.ConfirmDelete != nil {
		prefs.ConfirmDelete = *req.ConfirmDelete
	}
	if req.ShowImages != nil {
		prefs.ShowImages = *req.ShowImages
	}
	if req.LastView != nil {
		prefs.LastView = *req.LastView
	}

	if err := store.SetPreferences(r.Context(), h.DB, prefs); err != nil {
		storeError(w, err, "failed to update settings")
		return
	}
	jsonResponse(w, http.StatusOK, prefs)
}
