package web

// errors.go provides unified error responses for the API.
//
// Every error is:
//   - Logged with full technical details and the request ID
//   - Returned as an ErrorResponse built from core.MapError
//
// The status code comes from statusFor unless the handler already knows it.

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/csv2db/internal/core"
	"github.com/JonMunkholm/csv2db/internal/logging"
)

// ErrorResponse is the JSON body of every API error.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

// respondError logs err and writes its user-facing form. A statusCode of
// zero selects the status with statusFor.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	if statusCode == 0 {
		statusCode = statusFor(err)
	}
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	// Engine errors name the file, row or column at fault; that is what the
	// caller needs to fix the input. Anything unrecognised stays opaque.
	if core.IsUserFacing(err) {
		resp.Detail = err.Error()
	}

	writeJSON(w, statusCode, resp)
}

// statusFor maps an engine error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnsupportedFormat),
		errors.Is(err, core.ErrMissingColumn),
		errors.Is(err, core.ErrConversion),
		errors.Is(err, core.ErrMalformedFile),
		errors.Is(err, core.ErrExtraction),
		errors.Is(err, core.ErrUnsafeEntry):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
