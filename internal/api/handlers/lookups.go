package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/guard"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/lookups"
	"github.com/dreamtoapp/smartcrowds-server/internal/metrics"
)

type LookupsHandler struct {
	Service       *lookups.Service
	Env           string
	DefaultLocale locale.Locale
}

func NewLookupsHandler(service *lookups.Service, env string, defaultLocale locale.Locale) *LookupsHandler {
	return &LookupsHandler{Service: service, Env: env, DefaultLocale: defaultLocale}
}

type jobPayload struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	NameAr      string    `json:"nameAr,omitempty"`
	DisplayName string    `json:"displayName"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type lookupLocationPayload struct {
	ID             string    `json:"id"`
	City           string    `json:"city"`
	CityAr         string    `json:"cityAr,omitempty"`
	DisplayCity    string    `json:"displayCity"`
	Address        string    `json:"address,omitempty"`
	AddressAr      string    `json:"addressAr,omitempty"`
	DisplayAddress string    `json:"displayAddress,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type nationalityPayload struct {
	ID          string    `json:"id"`
	NameAr      string    `json:"nameAr"`
	NameEn      string    `json:"nameEn"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toJobPayload(job *lookups.Job, l locale.Locale) jobPayload {
	return jobPayload{
		ID:          job.ULID,
		Name:        job.Name,
		NameAr:      job.NameAr,
		DisplayName: job.DisplayName(l),
		Description: job.Description,
		CreatedAt:   job.CreatedAt,
	}
}

func toLocationPayload(location *lookups.Location, l locale.Locale) lookupLocationPayload {
	return lookupLocationPayload{
		ID:             location.ULID,
		City:           location.City,
		CityAr:         location.CityAr,
		DisplayCity:    location.DisplayCity(l),
		Address:        location.Address,
		AddressAr:      location.AddressAr,
		DisplayAddress: location.DisplayAddress(l),
		CreatedAt:      location.CreatedAt,
	}
}

func toNationalityPayload(nationality *lookups.Nationality, l locale.Locale) nationalityPayload {
	return nationalityPayload{
		ID:          nationality.ULID,
		NameAr:      nationality.NameAr,
		NameEn:      nationality.NameEn,
		DisplayName: nationality.DisplayName(l),
		CreatedAt:   nationality.CreatedAt,
	}
}

func (h *LookupsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var params lookups.JobParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}
	job, err := h.Service.CreateJob(r.Context(), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toJobPayload(job, h.DefaultLocale))
}

func (h *LookupsHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	var params lookups.JobParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}
	job, err := h.Service.UpdateJob(r.Context(), pathParam(r, "id"), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toJobPayload(job, h.DefaultLocale))
}

func (h *LookupsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	l := localeFrom(r, h.DefaultLocale)
	items, err := h.Service.ListJobs(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	payloads := make([]jobPayload, 0, len(items))
	for i := range items {
		payloads = append(payloads, toJobPayload(&items[i], l))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": payloads})
}

func (h *LookupsHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var params lookups.LocationParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}
	location, err := h.Service.CreateLocation(r.Context(), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toLocationPayload(location, h.DefaultLocale))
}

func (h *LookupsHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var params lookups.LocationParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}
	location, err := h.Service.UpdateLocation(r.Context(), pathParam(r, "id"), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toLocationPayload(location, h.DefaultLocale))
}

func (h *LookupsHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	l := localeFrom(r, h.DefaultLocale)
	items, err := h.Service.ListLocations(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	payloads := make([]lookupLocationPayload, 0, len(items))
	for i := range items {
		payloads = append(payloads, toLocationPayload(&items[i], l))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": payloads})
}

func (h *LookupsHandler) CreateNationality(w http.ResponseWriter, r *http.Request) {
	var params lookups.NationalityParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}
	nationality, err := h.Service.CreateNationality(r.Context(), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toNationalityPayload(nationality, h.DefaultLocale))
}

func (h *LookupsHandler) UpdateNationality(w http.ResponseWriter, r *http.Request) {
	var params lookups.NationalityParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}
	nationality, err := h.Service.UpdateNationality(r.Context(), pathParam(r, "id"), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toNationalityPayload(nationality, h.DefaultLocale))
}

func (h *LookupsHandler) ListNationalities(w http.ResponseWriter, r *http.Request) {
	l := localeFrom(r, h.DefaultLocale)
	items, err := h.Service.ListNationalities(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	payloads := make([]nationalityPayload, 0, len(items))
	for i := range items {
		payloads = append(payloads, toNationalityPayload(&items[i], l))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": payloads})
}

// Usage reports whether a lookup entity is referenced by dependents.
func (h *LookupsHandler) Usage(kind guard.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.Service.Usage(r.Context(), kind, pathParam(r, "id"))
		if err != nil {
			writeError(w, r, err, h.Env)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":     result.OK,
			"reason": result.Reason,
			"count":  result.Count,
		})
	}
}

// Delete removes a lookup entity. Refused with 409 and the dependent
// count while anything still references it.
func (h *LookupsHandler) Delete(kind guard.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.Service.Delete(r.Context(), kind, pathParam(r, "id")); err != nil {
			var inUse guard.InUseError
			if errors.As(err, &inUse) {
				metrics.GuardRefusalsTotal.WithLabelValues(string(kind)).Inc()
			}
			writeError(w, r, err, h.Env)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
