// Package response writes the JSON envelope shared by every idgen HTTP
// endpoint: {"success":true,"data":...} or {"success":false,"error":{...}}.
package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Error codes carried in ErrorInfo.Code.
const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidCount        = "INVALID_COUNT"
	CodeUnknownKind         = "UNKNOWN_KIND"
	CodeClockMovedBackwards = "CLOCK_MOVED_BACKWARDS"
	CodeInternal            = "INTERNAL_ERROR"
)

// RetryAfterSeconds is advertised on 503 responses. A Snowflake clock
// regression is normally resolved within a second.
const RetryAfterSeconds = 1

// Response is the envelope around every payload.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo is a machine-readable code plus a human message.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func failure(code, message string) Response {
	return Response{Error: &ErrorInfo{Code: code, Message: message}}
}

// Success writes 200 with data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// Created writes 201 with data; used for freshly issued IDs.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// Error writes an error envelope with an explicit status and code.
func Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, failure(code, message))
}

// Abort writes an error envelope and stops the middleware chain.
func Abort(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, failure(code, message))
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Abort(c, http.StatusUnauthorized, CodeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Abort(c, http.StatusForbidden, CodeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, CodeNotFound, message)
}

// ServiceUnavailable writes 503 with a Retry-After header. The request
// consumed no IDs and can be repeated as-is.
func ServiceUnavailable(c *gin.Context, code, message string) {
	c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds))
	Error(c, http.StatusServiceUnavailable, code, message)
}

// InternalError writes 500. message should not leak internals.
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, CodeInternal, message)
}
