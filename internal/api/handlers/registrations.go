package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/events"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
	"github.com/dreamtoapp/smartcrowds-server/internal/metrics"
	"github.com/dreamtoapp/smartcrowds-server/internal/validation"
)

type RegistrationsHandler struct {
	Service       *events.RegistrationService
	Env           string
	DefaultLocale locale.Locale
}

func NewRegistrationsHandler(service *events.RegistrationService, env string, defaultLocale locale.Locale) *RegistrationsHandler {
	return &RegistrationsHandler{Service: service, Env: env, DefaultLocale: defaultLocale}
}

type subscriberPayload struct {
	ID                 string    `json:"id"`
	EventID            string    `json:"eventId"`
	Name               string    `json:"name"`
	Mobile             string    `json:"mobile"`
	Email              string    `json:"email"`
	IDNumber           string    `json:"idNumber"`
	Nationality        string    `json:"nationality,omitempty"`
	Age                int       `json:"age"`
	IDImageURL         string    `json:"idImageUrl,omitempty"`
	PersonalImageURL   string    `json:"personalImageUrl,omitempty"`
	JobRequirementID   string    `json:"jobRequirementId,omitempty"`
	JobRequirementName string    `json:"jobRequirementName,omitempty"`
	RegisteredAt       time.Time `json:"registeredAt"`
}

func toSubscriberPayload(subscriber *events.Subscriber, l locale.Locale) subscriberPayload {
	payload := subscriberPayload{
		ID:               subscriber.ULID,
		EventID:          subscriber.EventULID,
		Name:             subscriber.Name,
		Mobile:           subscriber.Mobile,
		Email:            subscriber.Email,
		IDNumber:         subscriber.IDNumber,
		Age:              subscriber.Age,
		IDImageURL:       subscriber.IDImageURL,
		PersonalImageURL: subscriber.PersonalImageURL,
		RegisteredAt:     subscriber.CreatedAt,
	}
	if subscriber.Nationality != nil {
		payload.Nationality = subscriber.Nationality.DisplayName(l)
	}
	if subscriber.JobRequirement != nil {
		payload.JobRequirementID = subscriber.JobRequirement.ULID
		if subscriber.JobRequirement.Job != nil {
			payload.JobRequirementName = subscriber.JobRequirement.Job.DisplayName(l)
		}
	}
	return payload
}

// Register handles the public registration form.
func (h *RegistrationsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input events.RegistrationInput
	if !decodeBody(w, r, h.Env, &input) {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return
	}

	subscriber, err := h.Service.Register(r.Context(), pathParam(r, "id"), input)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registrationOutcome(err)).Inc()
		writeError(w, r, err, h.Env)
		return
	}

	metrics.RegistrationsTotal.WithLabelValues("accepted").Inc()
	l := localeFrom(r, h.DefaultLocale)
	writeJSON(w, http.StatusCreated, toSubscriberPayload(subscriber, l))
}

// ListSubscribers returns the event's registration ledger, newest first.
func (h *RegistrationsHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	l := localeFrom(r, h.DefaultLocale)
	ledger, err := h.Service.ListSubscribers(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	payloads := make([]subscriberPayload, 0, len(ledger))
	for i := range ledger {
		payloads = append(payloads, toSubscriberPayload(&ledger[i], l))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": payloads, "total": len(payloads)})
}

// ExportCSV streams the ledger as a spreadsheet-ready CSV attachment.
func (h *RegistrationsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	l := localeFrom(r, h.DefaultLocale)
	eventULID := pathParam(r, "id")

	out, err := h.Service.ExportCSV(r.Context(), eventULID, l)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	metrics.SubscriberExportsTotal.WithLabelValues(string(l)).Inc()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "subscribers-"+eventULID+".csv"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func registrationOutcome(err error) string {
	var fieldErrs validation.FieldErrors
	var mismatch events.CrossEntityError
	switch {
	case errors.Is(err, events.ErrRegistrationClosed):
		return "closed"
	case errors.As(err, &fieldErrs):
		return "invalid"
	case errors.As(err, &mismatch):
		return "mismatch"
	default:
		return "error"
	}
}
