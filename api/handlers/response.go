package handlers

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	apperrors "github.com/calcbuilder/adminstack/internal/errors"
	"github.com/calcbuilder/adminstack/internal/tracing"
)

const internalErrorMessage = "Internal server error"

// messages overrides the client facing text of specific sentinels.
var messages = map[error]string{
	apperrors.ErrVerificationExpired:   "Verification expired. Please create a new verification request.",
	apperrors.ErrNoVerificationRequest: "No verification request found",
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, message string, details interface{}) {
	body := gin.H{"success": false, "error": message}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, body)
}

func respondBadRequest(c *gin.Context, span opentracing.Span, err error, message string) {
	tracing.TraceErr(span, err)
	respondError(c, http.StatusBadRequest, message, nil)
}

// respondServiceError maps a service error onto the status code and envelope the clients expect.
// Unknown errors never leak their text.
func respondServiceError(c *gin.Context, span opentracing.Span, err error) {
	tracing.TraceErr(span, err)

	if validationErr, ok := apperrors.AsValidationError(err); ok {
		respondError(c, http.StatusBadRequest, "Validation failed", validationErr.Fields)
		return
	}

	switch {
	case apperrors.IsBadRequest(err):
		respondError(c, http.StatusBadRequest, publicMessage(err), nil)
	case apperrors.IsNotFound(err):
		respondError(c, http.StatusNotFound, publicMessage(err), nil)
	case apperrors.IsConflict(err):
		respondError(c, http.StatusConflict, publicMessage(err), nil)
	default:
		respondError(c, http.StatusInternalServerError, internalErrorMessage, nil)
	}
}

func publicMessage(err error) string {
	sentinel := apperrors.Sentinel(err)
	if sentinel == nil {
		return internalErrorMessage
	}
	if message, ok := messages[sentinel]; ok {
		return message
	}
	return capitalize(sentinel.Error())
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
