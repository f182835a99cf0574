package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error    string      `json:"error"` // code the storefront maps on
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

// RespondWithError writes an error body with the given status and code.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// RespondWithRedirect writes an error body that tells the storefront where to navigate instead.
func RespondWithRedirect(c *gin.Context, statusCode int, errorCode, message, redirect string) {
	c.JSON(statusCode, ErrorResponse{
		Error:    errorCode,
		Message:  message,
		Redirect: redirect,
	})
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Login required"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Something went wrong. Please try again shortly"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// ValidationResponse is the body for input validation failures.
type ValidationResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"` // per-field messages
}

// RespondWithValidation writes a domain ValidationError as 422.
// Any other error falls back to a 500 with the generic message for context.
func RespondWithValidation(c *gin.Context, err error, context string) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, ValidationResponse{
			Error:   verr.Code,
			Message: verr.Message,
			Fields:  verr.Fields,
		})
		return
	}
	ParseAndRespond(c, http.StatusInternalServerError, err, context)
}
