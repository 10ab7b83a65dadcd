package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/echosign/pkg/types"
)

// Response is the JSON envelope of every /api endpoint except /api/reflect.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes a failed request.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeNoTenant         = "NO_TENANT"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Success wraps data in a success envelope.
func Success(data any) *Response {
	return &Response{Success: true, Data: data}
}

// Failure builds an error envelope.
func Failure(code, message string) *Response {
	return &Response{Error: &ErrorInfo{Code: code, Message: message}}
}

// errorStatus maps a directory error to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, types.ErrValidation):
		return http.StatusBadRequest, ErrCodeValidationFailed
	case errors.Is(err, types.ErrForbidden):
		return http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, types.ErrConflict):
		return http.StatusConflict, ErrCodeConflict
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// fail writes err as an error envelope. Internal errors are logged and
// their text is not sent to the client.
func (s *Server) fail(c *gin.Context, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zapRequest(c, err)...)
		msg = "an internal error occurred"
	}
	c.AbortWithStatusJSON(status, Failure(code, msg))
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Failure(ErrCodeBadRequest, msg))
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Success(data))
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Success(data))
}
