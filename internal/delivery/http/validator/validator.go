// Package validator wires go-playground/validator into echo's request binding.
package validator

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// customValidator adapts go-playground/validator to echo.Validator.
type customValidator struct {
	validate *validator.Validate
}

// New creates the echo validator backed by struct tags.
func New() echo.Validator {
	return &customValidator{validate: validator.New()}
}

// Validate implements echo.Validator. Tag failures surface as 400 responses.
func (v *customValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return nil
}
