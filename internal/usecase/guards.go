package usecase

import (
	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"
	"alumni-talent-platform/pkg/validation"

	"github.com/go-playground/validator/v10"
)

func requireUser(user *domain.User) error {
	if user == nil {
		return apperror.Unauthorized("Authentication required")
	}
	return nil
}

func requireAdmin(user *domain.User) error {
	if err := requireUser(user); err != nil {
		return err
	}
	if !user.IsAdmin() {
		return apperror.Forbidden("Admin access required")
	}
	return nil
}

// validateInput runs struct validation and reports the first failing field.
func validateInput(v *validator.Validate, in interface{}) error {
	if err := v.Struct(in); err != nil {
		if field, msg, ok := validation.FirstFieldError(err); ok {
			return apperror.Validation(field, msg)
		}
		return apperror.BadRequest("Invalid input")
	}
	return nil
}
