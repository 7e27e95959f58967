package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// errorBody is the error envelope: {error, message?, details?, status}.
func errorBody(status int, errMsg, message string, details interface{}) gin.H {
	body := gin.H{
		"error":  errMsg,
		"status": status,
	}

	if message != "" {
		body["message"] = message
	}

	if details != nil {
		body["details"] = details
	}

	return body
}

func respondError(ctx *gin.Context, status int, errMsg, message string) {
	ctx.JSON(status, errorBody(status, errMsg, message, nil))
}

func respondValidationError(ctx *gin.Context, details interface{}) {
	ctx.JSON(http.StatusBadRequest, errorBody(http.StatusBadRequest, "Validation failed", "", details))
}

// respondDenied hides resource existence: missing and forbidden both map
// to the same 403.
func respondDenied(ctx *gin.Context) {
	respondError(ctx, http.StatusForbidden, "Permission denied", "")
}

func respondInternal(ctx *gin.Context) {
	respondError(ctx, http.StatusInternalServerError, "Internal server error", "Something went wrong")
}
