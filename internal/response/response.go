package response

import (
	"net/http"

	"github.com/yourname/exercisetracker/internal"
)

const MsgInternal = "Internal server error"

type ErrorResponse struct {
	Error string `json:"error"`
}

func Error(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// InternalError never exposes the underlying cause.
func InternalError() (int, ErrorResponse) {
	return http.StatusInternalServerError, Error(MsgInternal)
}

// FromAppError renders e as a status and body. Server-side codes always get
// the generic body.
func FromAppError(e *internal.AppError) (int, ErrorResponse) {
	if e.Code >= http.StatusInternalServerError {
		return InternalError()
	}
	return e.Code, Error(e.Message)
}
