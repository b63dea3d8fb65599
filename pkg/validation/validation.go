package validation

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Domain-specific tags
	_ = validate.RegisterValidation("review_action", validateReviewAction)
	_ = validate.RegisterValidation("completion_status", validateCompletionStatus)
}

// ValidateStruct validates a struct against its validation tags
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

func validateReviewAction(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "approve", "reject":
		return true
	}
	return false
}

func validateCompletionStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pending", "approved", "auto_approved", "rejected", "expired":
		return true
	}
	return false
}
