package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the game against the field constraints. It returns a
// *ValidationError describing the first violation found.
func (g *Game) Validate() error {
	if err := validate.Struct(g); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}

	if g.ReleaseDate.IsZero() {
		return NewValidationError("release_date", "release_date is required")
	}
	if g.CompletionDate != nil && !g.CompletionDate.IsZero() && g.CompletionDate.Before(g.ReleaseDate) {
		return NewValidationError("completion_date", "completion_date must not be before release_date")
	}
	if g.Categories.IsEmpty() {
		return NewValidationError("categories", "at least one category is required")
	}
	return nil
}

// fieldError converts a validator field error into a ValidationError.
func fieldError(e validator.FieldError) error {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return NewValidationError(field, fmt.Sprintf("%s is required", field))
	case "max":
		if e.Kind() == reflect.String {
			return NewValidationError(field, fmt.Sprintf("%s must be at most %s characters", field, e.Param()))
		}
		return NewValidationError(field, fmt.Sprintf("%s must be at most %s", field, e.Param()))
	case "min":
		if field == "playtime" {
			return NewValidationError(field, "playtime must not be negative")
		}
		return NewValidationError(field, fmt.Sprintf("%s must be at least %s", field, e.Param()))
	default:
		return NewValidationError(field, fmt.Sprintf("%s is invalid", field))
	}
}
