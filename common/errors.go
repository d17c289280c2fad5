package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"bank-ledger-api/logger"
	"bank-ledger-api/service"

	"github.com/sirupsen/logrus"
)

type AppError struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// statusByKind maps service error kinds onto HTTP status codes.
var statusByKind = map[service.Kind]int{
	service.KindValidation:        http.StatusBadRequest,
	service.KindNotFound:          http.StatusNotFound,
	service.KindInsufficientFunds: http.StatusConflict,
	service.KindUnauthorized:      http.StatusForbidden,
	service.KindConflict:          http.StatusConflict,
	service.KindStorageFailure:    http.StatusInternalServerError,
}

// FromServiceError converts a service failure into its HTTP form. Storage
// failures keep their cause out of the response body.
func FromServiceError(err error) *AppError {
	kind := service.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := "Internal server error"
	var se *service.Error
	if errors.As(err, &se) && kind != service.KindStorageFailure {
		message = se.Message
	}
	return &AppError{Code: status, Kind: string(kind), Message: message, Err: err}
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		entry := logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Code,
			"internal_error": e.Err.Error(),
		})
		if e.Code >= http.StatusInternalServerError {
			entry.Error(e.Message)
		} else {
			entry.Info(e.Message)
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Code)
	json.NewEncoder(w).Encode(e)
}
