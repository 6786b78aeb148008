package utils

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidateStruct validates struct
func ValidateStruct(obj interface{}) error {
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError formats validation error
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, fieldError := range validationErrors {
			messages = append(messages, getFieldErrorMessage(fieldError))
		}
		return NewError(CodeInvalidParam, strings.Join(messages, "; "))
	}
	return NewErrorWithErr(CodeInvalidParam, "validation failed", err)
}

// getFieldErrorMessage gets field error message
func getFieldErrorMessage(fieldError validator.FieldError) string {
	field := fieldError.Field()
	tag := fieldError.Tag()
	param := fieldError.Param()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "nonnegative":
		return fmt.Sprintf("%s must be non-negative", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	default:
		return fmt.Sprintf("%s validation failed", field)
	}
}

// RegisterCustomValidators registers custom validators
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Quantities may legitimately be zero (zero means removal)
		v.RegisterValidation("nonnegative", validateNonNegative)

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// validateNonNegative validates non-negative integer
func validateNonNegative(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fl.Field().Int() >= 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

// ValidateID validates and parses a string ID
func ValidateID(id string) (uint64, error) {
	if id == "" {
		return 0, NewError(CodeInvalidParam, "id cannot be empty")
	}

	parsed, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, NewError(CodeInvalidParam, "invalid id format")
	}

	if parsed == 0 {
		return 0, NewError(CodeInvalidParam, "id must be positive")
	}

	return parsed, nil
}
