// Package handlers implements the JSON API surface. Handlers decode,
// delegate to the domain services, and translate domain errors into RFC
// 7807 problem responses.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dreamtoapp/smartcrowds-server/internal/api/problem"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/content"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/events"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/guard"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/lookups"
	"github.com/dreamtoapp/smartcrowds-server/internal/validation"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pathParam(r *http.Request, key string) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.PathValue(key))
}

// localeFrom reads the explicit ?locale= parameter; there is no global
// locale state, each request decides for itself.
func localeFrom(r *http.Request, fallback locale.Locale) locale.Locale {
	return locale.Parse(r.URL.Query().Get("locale"), fallback)
}

func queryBool(r *http.Request, key string) *bool {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}

func queryInt(r *http.Request, key string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return value
}

// writeError maps a domain error onto the problem taxonomy. Anything
// unrecognized is a storage or programming fault and stays generic.
func writeError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var fieldErrs validation.FieldErrors
	if errors.As(err, &fieldErrs) {
		errs := make(map[string]any, len(fieldErrs))
		for field, message := range fieldErrs {
			errs[field] = message
		}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env,
			problem.WithErrors(errs))
		return
	}

	var inUse guard.InUseError
	if errors.As(err, &inUse) {
		problem.Write(w, r, http.StatusConflict, problem.TypeEntityInUse, "Entity in use", err, env,
			problem.WithCount(inUse.Count))
		return
	}

	var mismatch events.CrossEntityError
	if errors.As(err, &mismatch) {
		problem.Write(w, r, http.StatusUnprocessableEntity, problem.TypeCrossEntity, "Cross-entity mismatch", err, env,
			problem.WithErrors(map[string]any{mismatch.Field: mismatch.Message}))
		return
	}

	switch {
	case errors.Is(err, events.ErrRegistrationClosed):
		problem.Write(w, r, http.StatusUnprocessableEntity, problem.TypeRegistrationClosed, "Registration closed", err, env)
	case isNotFound(err):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, env)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, events.ErrNotFound) ||
		errors.Is(err, events.ErrJobRequirementNotFound) ||
		errors.Is(err, events.ErrSubscriberNotFound) ||
		errors.Is(err, lookups.ErrNotFound) ||
		errors.Is(err, content.ErrPostNotFound) ||
		errors.Is(err, content.ErrProjectNotFound) ||
		errors.Is(err, content.ErrClientNotFound) ||
		errors.Is(err, content.ErrCategoryNotFound) ||
		errors.Is(err, content.ErrTagNotFound)
}

func decodeBody(w http.ResponseWriter, r *http.Request, env string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env)
		return false
	}
	return true
}
