package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jensholdgaard/wowtools/internal/combatlog"
	"github.com/jensholdgaard/wowtools/internal/gear"
	"github.com/jensholdgaard/wowtools/internal/gems"
	"github.com/jensholdgaard/wowtools/internal/market"
	"github.com/jensholdgaard/wowtools/internal/roster"
	"github.com/jensholdgaard/wowtools/internal/store"
)

var validate = newValidator()

// newValidator registers the character attribute tags race, gender and
// wowclass, backed by the roster's allowed values.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("race", allowedValues(roster.Races))
	_ = v.RegisterValidation("gender", allowedValues(roster.Genders))
	_ = v.RegisterValidation("wowclass", allowedValues(roster.Classes))
	return v
}

func allowedValues(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(allowed, fl.Field().String())
	}
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, market.ErrNotFound),
		errors.Is(err, gear.ErrNotFound),
		errors.Is(err, gems.ErrNotFound),
		errors.Is(err, combatlog.ErrReportNotFound),
		errors.Is(err, roster.ErrNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, market.ErrQueryTooShort),
		errors.Is(err, gems.ErrSelectionFull),
		errors.Is(err, gems.ErrNoGearSelected),
		errors.Is(err, gems.ErrNoGemsSelected),
		errors.Is(err, gems.ErrAmbiguousSearch),
		errors.Is(err, roster.ErrNoRegion),
		errors.Is(err, roster.ErrInvalidSize):
		return http.StatusBadRequest
	case errors.Is(err, roster.ErrPhaseBounds),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, market.ErrUpstream),
		errors.Is(err, combatlog.ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondServiceError logs err and replies with its mapped status.
// Internal errors are not echoed to the client.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), op+" failed", slog.Any("error", err))
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	respondError(w, status, msg)
}

// decodeAndValidate decodes a JSON body into req and validates it. On
// failure the response has been written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := validate.Struct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "invalid request",
			Fields: validationFields(err),
		})
		return false
	}
	return true
}

func validationFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out[strings.ToLower(fe.Field())] = msg
	}
	return out
}

// intParam reads a positive integer path parameter.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("%s must be a positive integer, got %q", name, raw))
		return 0, false
	}
	return n, true
}

// limitParam reads the optional limit query parameter.
func limitParam(r *http.Request, def int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		return n
	}
	return def
}
