package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/go-playground/validator"
)

// MaxBodyBytes bounds request bodies. Captures arrive as base64 data URLs,
// so this is sized for a full-resolution PNG.
const MaxBodyBytes = 32 << 20

type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{Success: true, Data: data})
}

// DecodeJSON reads a JSON body into dst and runs struct validation on it.
func DecodeJSON(r *http.Request, w http.ResponseWriter, validate *validator.Validate, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return domain.NewValidationError("request body too large")
		case errors.Is(err, io.EOF):
			return domain.NewValidationError("request body is empty")
		default:
			return domain.NewValidationError("invalid JSON body")
		}
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.NewMissingRequiredFieldError(verrs[0].Field())
		}
		return domain.NewValidationError("invalid request")
	}
	return nil
}
