package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/playlist/internal/imaging"
	"github.com/erazemk/playlist/internal/lifecycle"
	"github.com/erazemk/playlist/internal/store"
)

// Options configures the API router.
type Options struct {
	DB          *sql.DB
	JWTSecret   string
	TokenExpiry time.Duration
	Covers      *imaging.Covers
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(opts Options) http.Handler {
	mux := http.NewServeMux()

	views := NewViews()
	engine := &lifecycle.Engine{DB: opts.DB, Settings: store.Settings{DB: opts.DB}}

	authHandler := &AuthHandler{DB: opts.DB, JWTSecret: opts.JWTSecret, TokenExpiry: opts.TokenExpiry}
	gamesHandler := &GamesHandler{DB: opts.DB, Engine: engine, Covers: opts.Covers, Views: views}
	viewsHandler := &ViewsHandler{DB: opts.DB, Views: views}
	settingsHandler := &SettingsHandler{DB: opts.DB}

	authMW := AuthMiddleware(opts.JWTSecret, opts.DB)
	protect := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", protect(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", protect(authHandler.Logout))

	// Games.
	mux.Handle("POST /api/games", protect(gamesHandler.Create))
	mux.Handle("DELETE /api/games", protect(gamesHandler.DeleteAll))
	mux.Handle("GET /api/games/{id}", protect(gamesHandler.Get))
	mux.Handle("PUT /api/games/{id}", protect(gamesHandler.Update))
	mux.Handle("DELETE /api/games/{id}", protect(gamesHandler.Delete))
	mux.Handle("POST /api/games/{id}/categories/{category}", protect(gamesHandler.ToggleCategory))
	mux.Handle("PUT /api/games/{id}/cover", protect(gamesHandler.UploadCover))
	mux.Handle("GET /api/games/{id}/cover", protect(gamesHandler.GetCover))
	mux.Handle("DELETE /api/games/{id}/cover", protect(gamesHandler.RemoveCover))
	mux.Handle("GET /api/stats", protect(gamesHandler.Stats))

	// Category views.
	mux.Handle("GET /api/views/{category}", protect(viewsHandler.Get))
	mux.Handle("GET /api/views/{category}/sort", protect(viewsHandler.GetSort))
	mux.Handle("PUT /api/views/{category}/sort", protect(viewsHandler.SetSort))

	// Preferences.
	mux.Handle("GET /api/settings", protect(settingsHandler.Get))
	mux.Handle("PUT /api/settings", protect(settingsHandler.Update))

	return mux
}
