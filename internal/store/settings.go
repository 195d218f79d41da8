package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/erazemk/playlist/internal/model"
)

// Setting keys.
const (
	keyJWTSecret     = "jwt_secret"
	keyPasswordHash  = "owner_password_hash"
	keyConfirmDelete = "confirm_delete"
	keyShowImages    = "show_images"
	keyLastView      = "last_view"
	keySortPrefix    = "sort."
)

// GetSetting returns the value stored under key and whether it exists.
func GetSetting(ctx context.Context, db DBTX, key string) (string, bool, error) {
	var value string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, dbErr("querying setting "+key, err)
	}
	return value, true, nil
}

// SetSetting stores value under key, replacing any previous value.
func SetSetting(ctx context.Context, db DBTX, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return dbErr("storing setting "+key, err)
	}
	return nil
}

func getBoolSetting(ctx context.Context, db DBTX, key string, fallback bool) (bool, error) {
	value, ok, err := GetSetting(ctx, db, key)
	if err != nil || !ok {
		return fallback, err
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, nil
	}
	return b, nil
}

// GetSortPreference returns the stored sort of a category view, or
// model.DefaultSort when none was stored.
func GetSortPreference(ctx context.Context, db DBTX, view model.Category) (model.Sort, error) {
	field, _, err := GetSetting(ctx, db, keySortPrefix+string(view)+".field")
	if err != nil {
		return model.DefaultSort, err
	}
	order, _, err := GetSetting(ctx, db, keySortPrefix+string(view)+".order")
	if err != nil {
		return model.DefaultSort, err
	}

	s, err := model.ParseSort(field, order)
	if err != nil {
		// Unknown stored values fall back to the default.
		return model.DefaultSort, nil
	}
	return s, nil
}

// SetSortPreference stores the sort of a category view.
func SetSortPreference(ctx context.Context, db DBTX, view model.Category, s model.Sort) error {
	if err := SetSetting(ctx, db, keySortPrefix+string(view)+".field", string(s.Field)); err != nil {
		return err
	}
	return SetSetting(ctx, db, keySortPrefix+string(view)+".order", string(s.Order))
}

// GetPreferences returns the user preferences with defaults for unset values.
func GetPreferences(ctx context.Context, db DBTX) (model.Preferences, error) {
	p := model.DefaultPreferences

	var err error
	if p.ConfirmDelete, err = getBoolSetting(ctx, db, keyConfirmDelete, p.ConfirmDelete); err != nil {
		return p, err
	}
	if p.ShowImages, err = getBoolSetting(ctx, db, keyShowImages, p.ShowImages); err != nil {
		return p, err
	}

	view, ok, err := GetSetting(ctx, db, keyLastView)
	if err != nil {
		return p, err
	}
	if ok {
		if c, err := model.ParseCategory(view); err == nil {
			p.LastView = c
		}
	}
	return p, nil
}

// SetPreferences stores the user preferences.
func SetPreferences(ctx context.Context, db DBTX, p model.Preferences) error {
	if _, err := model.ParseCategory(string(p.LastView)); err != nil {
		return model.NewValidationError("last_view", err.Error())
	}
	if err := SetSetting(ctx, db, keyConfirmDelete, strconv.FormatBool(p.ConfirmDelete)); err != nil {
		return err
	}
	if err := SetSetting(ctx, db, keyShowImages, strconv.FormatBool(p.ShowImages)); err != nil {
		return err
	}
	return SetSetting(ctx, db, keyLastView, string(p.LastView))
}

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, db DBTX) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		keyJWTSecret, candidate,
	)
	if err != nil {
		return "", dbErr("storing jwt_secret", err)
	}

	// Always read back (either our insert or the existing value).
	secret, _, err := GetSetting(ctx, db, keyJWTSecret)
	if err != nil {
		return "", err
	}
	return secret, nil
}

// GetPasswordHash returns the bcrypt hash of the owner password, or "" when
// no password has been set yet.
func GetPasswordHash(ctx context.Context, db DBTX) (string, error) {
	hash, _, err := GetSetting(ctx, db, keyPasswordHash)
	return hash, err
}

// SetPasswordHash stores the bcrypt hash of the owner password.
func SetPasswordHash(ctx context.Context, db DBTX, hash string) error {
	return SetSetting(ctx, db, keyPasswordHash, hash)
}

// Settings adapts the stored preferences to lifecycle.Settings.
type Settings struct {
	DB DBTX
}

// ConfirmDelete reports whether destructive deletes must be confirmed.
func (s Settings) ConfirmDelete(ctx context.Context) (bool, error) {
	return getBoolSetting(ctx, s.DB, keyConfirmDelete, model.DefaultPreferences.ConfirmDelete)
}

