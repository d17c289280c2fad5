package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"bank-ledger-api/service"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// maxBodyBytes caps request bodies; every payload here is a handful of fields.
const maxBodyBytes = 1 << 20

// ValidateAndDecode decodes the JSON body into payload and runs its
// validate tags.
func ValidateAndDecode(w http.ResponseWriter, r *http.Request, payload interface{}) *AppError {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return &AppError{Code: http.StatusBadRequest, Kind: string(service.KindValidation), Message: "Invalid request body", Err: err}
	}

	if err := validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return &AppError{Code: http.StatusBadRequest, Kind: string(service.KindValidation), Message: validationErrors.Error()}
		}
		return &AppError{Code: http.StatusBadRequest, Kind: string(service.KindValidation), Message: "Invalid request body", Err: err}
	}

	return nil
}
