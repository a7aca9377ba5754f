package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"brandforge/internal/domain"
	"brandforge/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error             string              `json:"error"`
	Fields            []domain.FieldError `json:"fields,omitempty"`
	RetryAfterSeconds int                 `json:"retry_after_seconds,omitempty"`
}

// writeError maps domain error kinds onto HTTP statuses. Anything unmapped
// is a 500 with the cause kept out of the response.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var (
		verr       *domain.ValidationError
		rateErr    *domain.RateLimitedError
		notFound   *domain.NotFoundError
		gone       *domain.GoneError
		authzErr   *domain.AuthorizationError
		passErr    *domain.InvalidPasswordError
		genErr     *domain.ExportGenerationError
	)

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation_failed", Fields: verr.Fields})
	case errors.As(err, &rateErr):
		seconds := int(rateErr.RetryAfter.Seconds()) + 1
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate_limited", RetryAfterSeconds: seconds})
	case errors.As(err, &passErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:  "invalid_password",
			Fields: []domain.FieldError{{Field: "password", Message: "Invalid password"}},
		})
	case errors.Is(err, service.ErrPasswordRequired):
		writeJSON(w, http.StatusLocked, errorBody{Error: "password_required"})
	case errors.As(err, &authzErr):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found"})
	case errors.As(err, &gone):
		writeJSON(w, http.StatusGone, errorBody{Error: "gone"})
	case errors.As(err, &genErr):
		log.Error().Err(err).Msg("export generation failed")
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "export_generation_failed"})
	default:
		log.Error().Err(err).Msg("unhandled error")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal_error"})
	}
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewValidationError("body", "invalid request body")
	}
	return nil
}
