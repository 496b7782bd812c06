package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/coursehub/internal/app/models/dto"
)

// HandleBindingError writes a 400 for a failed body binding, listing field errors when the
// body decoded but did not validate.
func HandleBindingError(c *gin.Context, err error, message string) {
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message)

	var validationErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &validationErrs):
		fieldErrs := dto.NewValidationErrors()
		for _, fe := range validationErrs {
			fieldErrs.AddError(jsonFieldName(fe), formatValidationError(fe))
		}
		if len(fieldErrs.Errors) == 1 {
			detail.WithField(fieldErrs.Errors[0].Field)
		}
		detail.WithDetails(fieldErrs.Errors)
	case errors.As(err, &typeErr):
		detail.WithField(typeErr.Field).WithDetails(typeErr.Field + " must be " + typeErr.Type.String())
	default:
		detail.WithDetails(err.Error())
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}

// jsonFieldName lowercases the struct field name to match the json tags of the request DTOs
func jsonFieldName(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns)
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	field := jsonFieldName(e)
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + e.Param() + " characters"
	case "max":
		return field + " must be at most " + e.Param() + " characters"
	case "gt":
		return field + " must be greater than " + e.Param()
	default:
		return field + " validation failed: " + e.Tag()
	}
}
