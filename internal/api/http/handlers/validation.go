package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/vendor-signup-service/pkg/util/errorutil"
)

var validate = validator.New()

// validateStruct runs tag validation and converts failures into a VALIDATION_FAILED error.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return apperrors.NewValidationError("invalid payload", details)
}
