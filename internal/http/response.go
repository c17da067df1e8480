package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"fatura/internal/auth"
	"fatura/internal/log"
	"fatura/internal/services"
	"fatura/internal/storage"
)

// errBadRequest marks request bodies and parameters that cannot be read at
// all, as opposed to well-formed input that fails validation.
var errBadRequest = errors.New("bad request")

func badRequest(err error) error {
	return fmt.Errorf("%w: %w", errBadRequest, err)
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Detail string `json:"detail"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// writeJSON sends v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error to its HTTP status and the detail shown to the
// caller. Internal errors never leak their message.
func statusFor(err error) (int, string, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "request body too large", log.ErrorTypeValidation
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error(), log.ErrorTypeValidation
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail):
		return http.StatusUnprocessableEntity, err.Error(), log.ErrorTypeValidation
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not found", log.ErrorTypeNotFound
	case errors.Is(err, storage.ErrConflict), errors.Is(err, auth.ErrEmailExists):
		return http.StatusConflict, err.Error(), log.ErrorTypeValidation
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error(), log.ErrorTypeAuth
	default:
		return http.StatusInternalServerError, "internal server error", log.ErrorTypeInternal
	}
}

// writeError logs err and sends the mapped status with a {"detail"} body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail, errType := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Failure(r.Context(), "Request failed", err, r.Method+" "+r.URL.Path, errType, nil)
	} else {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Request rejected",
			"error", err, "error_type", errType, "status_code", status, "path", r.URL.Path)
	}
	writeJSON(w, status, errorResponse{Detail: detail})
}
