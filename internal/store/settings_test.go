package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/playlist/internal/db"
	"github.com/erazemk/playlist/internal/model"
)

func TestGetJWTSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// First call should generate a secret.
	secret1, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	// Second call should return the same secret.
	secret2, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func TestSettingOverwrite(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, ok, _ := GetSetting(ctx, database, "missing"); ok {
		t.Error("expected missing key to report ok=false")
	}

	SetSetting(ctx, database, "k", "one")
	SetSetting(ctx, database, "k", "two")

	value, ok, err := GetSetting(ctx, database, "k")
	if err != nil || !ok || value != "two" {
		t.Errorf("expected two, got %q %v %v", value, ok, err)
	}
}

func TestSortPreferenceDefaultsAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	s, err := GetSortPreference(ctx, database, model.CategoryBacklog)
	if err != nil {
		t.Fatalf("GetSortPreference: %v", err)
	}
	if s != model.DefaultSort {
		t.Errorf("expected default sort, got %v", s)
	}

	want := model.Sort{Field: model.SortMetric, Order: model.Descending}
	if err := SetSortPreference(ctx, database, model.CategoryBacklog, want); err != nil {
		t.Fatalf("SetSortPreference: %v", err)
	}

	got, _ := GetSortPreference(ctx, database, model.CategoryBacklog)
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}

	// Other views keep their own preference.
	other, _ := GetSortPreference(ctx, database, model.CategoryWishlist)
	if other != model.DefaultSort {
		t.Errorf("expected wishlist to keep default, got %v", other)
	}

	// Unknown stored values fall back to the default.
	SetSetting(ctx, database, "sort.wishlist.field", "rating")
	other, err = GetSortPreference(ctx, database, model.CategoryWishlist)
	if err != nil || other != model.DefaultSort {
		t.Errorf("expected default for unknown field, got %v, %v", other, err)
	}
}

func TestPreferences(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	p, err := GetPreferences(ctx, database)
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}
	if p != model.DefaultPreferences {
		t.Errorf("expected defaults, got %+v", p)
	}

	confirm, _ := Settings{DB: database}.ConfirmDelete(ctx)
	if !confirm {
		t.Error("confirmation should be on by default")
	}

	want := model.Preferences{ConfirmDelete: false, ShowImages: false, LastView: model.CategoryWishlist}
	if err := SetPreferences(ctx, database, want); err != nil {
		t.Fatalf("SetPreferences: %v", err)
	}
	p, _ = GetPreferences(ctx, database)
	if p != want {
		t.Errorf("expected %+v, got %+v", want, p)
	}

	confirm, _ = Settings{DB: database}.ConfirmDelete(ctx)
	if confirm {
		t.Error("confirmation should be off after SetPreferences")
	}

	want.LastView = "favourites"
	var verr *model.ValidationError
	if err := SetPreferences(ctx, database, want); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for unknown view, got %v", err)
	}
}

func TestPasswordHash(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	hash, err := GetPasswordHash(ctx, database)
	if err != nil || hash != "" {
		t.Fatalf("expected empty hash, got %q, %v", hash, err)
	}

	SetPasswordHash(ctx, database, "$2a$10$abc")
	hash, _ = GetPasswordHash(ctx, database)
	if hash != "$2a$10$abc" {
		t.Errorf("expected stored hash, got %q", hash)
	}
}

func TestSettingsStorageErrors(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	database.Close()

	var serr *model.StorageError
	if _, _, err := GetSetting(ctx, database, "k"); !errors.As(err, &serr) {
		t.Errorf("GetSetting: expected StorageError, got %v", err)
	}
	if err := SetSetting(ctx, database, "k", "v"); !errors.As(err, &serr) {
		t.Errorf("SetSetting: expected StorageError, got %v", err)
	}
	if _, err := GetPreferences(ctx, database); !errors.As(err, &serr) {
		t.Errorf("GetPreferences: expected StorageError, got %v", err)
	}
	if _, err := GetJWTSecret(ctx, database); !errors.As(err, &serr) {
		t.Errorf("GetJWTSecret: expected StorageError, got %v", err)
	}
	if _, err := IsTokenRevoked(ctx, database, "jti"); !errors.As(err, &serr) {
		t.Errorf("IsTokenRevoked: expected StorageError, got %v", err)
	}
}
