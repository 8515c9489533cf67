package httpx

import (
	"net/http"

	apperr "github.com/missionctl/leadrun-engine/internal/errors"
)

// WriteServiceError maps a service-layer error onto an HTTP status and writes
// the JSON error body. Errors carrying an application code translate directly;
// everything else is treated as an internal failure.
func WriteServiceError(w http.ResponseWriter, err error) {
	code := apperr.GetCode(err)
	if code == "" {
		code = apperr.ErrCodeInternal
	}
	WriteError(w, ErrorParams{
		Code:    statusForCode(code),
		ErrCode: string(code),
		Err:     err,
	})
}

func statusForCode(code apperr.ErrorCode) int {
	switch code {
	case apperr.ErrCodeValidation:
		return http.StatusBadRequest
	case apperr.ErrCodeNotFound:
		return http.StatusNotFound
	case apperr.ErrCodeConflict, apperr.ErrCodeForeignKey:
		return http.StatusConflict
	case apperr.ErrCodeForbidden:
		return http.StatusForbidden
	case apperr.ErrCodeCapacity:
		return http.StatusTooManyRequests
	case apperr.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperr.ErrCodeCanceled:
		// Client went away; 499 is conventional but non-standard.
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
