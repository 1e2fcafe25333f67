package api

import (
	"net/http"

	"github.com/matzehuels/gridboard/pkg/errors"
)

// ErrorBody is the JSON shape of an error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code and a user message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPosition, errors.ErrCodeInvalidSize,
		errors.ErrCodeInvalidKey, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupportedSize, errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeWidgetNotFound, errors.ErrCodeTypeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeHistoryEmpty, errors.ErrCodePlacement:
		return http.StatusConflict
	case errors.ErrCodeStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request error", "code", code, "err", err)
	}
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: string(code), Message: errors.UserMessage(err)}})
}
