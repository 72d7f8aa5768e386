// internal/utils/validator.go
package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("account", validateAccount)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// validateAccount accepts lower-case, upper-case or EIP-55 checksummed addresses.
func validateAccount(fl validator.FieldLevel) bool {
	return IsAddress(fl.Field().String())
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "account":
		return e.Field() + " must be a 0x-prefixed 20-byte hex address"
	case "dive":
		return e.Field() + " contains an invalid entry"
	case "unique":
		return e.Field() + " must not contain duplicates"
	default:
		return e.Field() + " is invalid"
	}
}
