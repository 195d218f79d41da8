package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/playlist/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// storeError maps an error from the store or lifecycle packages to a response.
// Unexpected errors are logged and reported as 500 with the given message.
func storeError(w http.ResponseWriter, err error, message string) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, model.ErrNotFound):
		jsonError(w, http.StatusNotFound, "game not found")
	case errors.Is(err, model.ErrLastCategory):
		jsonError(w, http.StatusConflict, err.Error())
	default:
		slog.Error(message, "error", err)
		jsonError(w, http.StatusInternalServerError, message)
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// pathCategory parses the {category} path value.
func pathCategory(r *http.Request) (model.Category, bool) {
	c, err := model.ParseCategory(r.PathValue("category"))
	return c, err == nil
}

// confirmed reports whether the request carries confirm=true.
func confirmed(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return ok
}
