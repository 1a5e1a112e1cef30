package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"scribbles/internal/model"
)

// Error codes used in the error envelope
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error code and message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		// Headers are already sent if this fails
		_ = json.NewEncoder(w).Encode(data)
	}
}

// DefaultMaxBodyBytes bounds JSON request bodies. Cover images arrive inline
// as data URLs, so this is well above the image size limit.
const DefaultMaxBodyBytes = 16 << 20

// ErrInvalidBody is returned by DecodeJSON for malformed or oversized bodies.
var ErrInvalidBody = errors.New("invalid request body")

// DecodeJSON reads a single JSON object from the request body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, DefaultMaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("%w: trailing data", ErrInvalidBody)
	}
	return nil
}

// WriteError writes an error response in the envelope format:
// {"error": {"code": "ERROR_CODE", "message": "Human readable message"}}
func WriteError(w http.ResponseWriter, status int, code string, message string) {
	response := ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
	WriteJSON(w, status, response)
}

// Common error response helpers

// WriteBadRequest writes a 400 Bad Request error
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// WriteBadRequestWithCode writes a 400 Bad Request error with a custom code
func WriteBadRequestWithCode(w http.ResponseWriter, code string, message string) {
	WriteError(w, http.StatusBadRequest, code, message)
}

// WriteUnauthorized writes a 401 Unauthorized error
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// WriteUnauthorizedWithCode writes a 401 Unauthorized error with a custom code
func WriteUnauthorizedWithCode(w http.ResponseWriter, code string, message string) {
	WriteError(w, http.StatusUnauthorized, code, message)
}

// WriteForbidden writes a 403 Forbidden error
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// WriteNotFound writes a 404 Not Found error
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// WriteConflict writes a 409 Conflict error
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, ErrCodeConflict, message)
}

// WriteInternalError writes a 500 Internal Server Error
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// WriteServiceError maps a store error to its HTTP response. Unknown errors
// are logged and reported as 500 without detail.
func WriteServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, ErrInvalidBody):
		WriteBadRequest(w, "Invalid request body")
	case errors.Is(err, model.ErrInvalidCredentials):
		WriteUnauthorized(w, "Invalid username or password")
	case errors.Is(err, model.ErrNotAuthenticated):
		WriteUnauthorizedWithCode(w, model.CodeNoSession, "Not logged in")
	case errors.Is(err, model.ErrUsernameExists):
		WriteConflict(w, "Username already exists")
	case errors.Is(err, model.ErrUserNotFound):
		WriteNotFound(w, "User not found")
	case errors.Is(err, model.ErrPostNotFound):
		WriteNotFound(w, "Post not found")
	case errors.Is(err, model.ErrUsernameRequired):
		WriteBadRequest(w, "Username is required")
	case errors.Is(err, model.ErrPasswordRequired):
		WriteBadRequest(w, "Password is required")
	case errors.Is(err, model.ErrTitleRequired):
		WriteBadRequest(w, "Title is required")
	case errors.Is(err, model.ErrTitleTooLong):
		WriteBadRequest(w, fmt.Sprintf("Title exceeds %d characters", model.MaxPostTitleLength))
	case errors.Is(err, model.ErrContentRequired):
		WriteBadRequest(w, "Content is required")
	case errors.Is(err, model.ErrCommentTextRequired):
		WriteBadRequest(w, "Comment text is required")
	case errors.Is(err, model.ErrCommentTooLong):
		WriteBadRequest(w, fmt.Sprintf("Comment exceeds %d characters", model.MaxCommentLength))
	case errors.Is(err, model.ErrFileTooLarge):
		WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds size limit")
	case errors.Is(err, model.ErrInvalidImageType):
		WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
	default:
		log.Error("Request failed", zap.Error(err))
		WriteInternalError(w, "Internal server error")
	}
}
