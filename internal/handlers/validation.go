package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindJSON decodes the body into req and, when binding tags fail,
// responds 400 with a per-field details map. Returns false if the
// request was already answered.
func bindJSON(ctx *gin.Context, req interface{}) bool {
	err := ctx.ShouldBindJSON(req)

	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors

	if errors.As(err, &validationErrors) {
		respondValidationError(ctx, fieldErrors(validationErrors))
		return false
	}

	respondError(ctx, 400, "Invalid request", "Request body must be JSON")
	return false
}

func fieldErrors(validationErrors validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(validationErrors))

	for _, fieldError := range validationErrors {
		field := toSnake(fieldError.Field())

		switch fieldError.Tag() {
		case "required":
			details[field] = field + " is required"
		case "min":
			details[field] = field + " must be at least " + fieldError.Param() + " characters"
		case "max":
			details[field] = field + " must be at most " + fieldError.Param() + " characters"
		case "email":
			details[field] = field + " must be a valid email"
		case "oneof":
			details[field] = field + " must be one of: " + fieldError.Param()
		default:
			details[field] = field + " is invalid"
		}
	}

	return details
}

func toSnake(name string) string {
	out := make([]rune, 0, len(name)+4)

	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				out = append(out, '_')
			}
			r += 'a' - 'A'
		}
		out = append(out, r)
	}

	return string(out)
}
