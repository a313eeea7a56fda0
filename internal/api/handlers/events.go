package handlers

import (
	"net/http"
	"time"

	"github.com/dreamtoapp/smartcrowds-server/internal/api/problem"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/events"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/ids"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
)

type EventsHandler struct {
	Service       *events.Service
	Env           string
	DefaultLocale locale.Locale
}

func NewEventsHandler(service *events.Service, env string, defaultLocale locale.Locale) *EventsHandler {
	return &EventsHandler{Service: service, Env: env, DefaultLocale: defaultLocale}
}

type requirementPayload struct {
	Name    string `json:"name"`
	NameAr  string `json:"nameAr,omitempty"`
	Display string `json:"display"`
}

type locationPayload struct {
	ID      string `json:"id"`
	City    string `json:"city"`
	Address string `json:"address,omitempty"`
}

type jobRequirementPayload struct {
	ID              string  `json:"id"`
	EventID         string  `json:"eventId"`
	JobID           string  `json:"jobId,omitempty"`
	JobName         string  `json:"jobName,omitempty"`
	RatePerDay      float64 `json:"ratePerDay"`
	Headcount       int     `json:"headcount"`
	SubscriberCount int     `json:"subscriberCount,omitempty"`
}

type eventPayload struct {
	ID              string                  `json:"id"`
	Title           string                  `json:"title"`
	TitleAr         string                  `json:"titleAr,omitempty"`
	DisplayTitle    string                  `json:"displayTitle"`
	Description     string                  `json:"description,omitempty"`
	DescriptionAr   string                  `json:"descriptionAr,omitempty"`
	Display         string                  `json:"displayDescription,omitempty"`
	Date            time.Time               `json:"date"`
	Location        *locationPayload        `json:"location,omitempty"`
	ImageURL        string                  `json:"imageUrl,omitempty"`
	Requirements    []requirementPayload    `json:"requirements"`
	JobRequirements []jobRequirementPayload `json:"jobRequirements,omitempty"`
	Published       bool                    `json:"published"`
	AcceptJobs      bool                    `json:"acceptJobs"`
	Completed       bool                    `json:"completed"`
	SubscriberCount int                     `json:"subscriberCount,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

func toEventPayload(event *events.Event, l locale.Locale) eventPayload {
	payload := eventPayload{
		ID:            event.ULID,
		Title:         event.Title,
		TitleAr:       event.TitleAr,
		DisplayTitle:  event.DisplayTitle(l),
		Description:   event.Description,
		DescriptionAr: event.DescriptionAr,
		Display:       event.DisplayDescription(l),
		Date:          event.Date,
		ImageURL:      event.ImageURL,
		Published:     event.Published,
		AcceptJobs:    event.AcceptJobs,
		Completed:     event.Completed,
		Requirements:  make([]requirementPayload, 0, len(event.Requirements)),
		SubscriberCount: event.SubscriberCount,
		CreatedAt:       event.CreatedAt,
		UpdatedAt:       event.UpdatedAt,
	}
	if event.Location != nil {
		payload.Location = &locationPayload{
			ID:      event.Location.ULID,
			City:    event.Location.DisplayCity(l),
			Address: event.Location.DisplayAddress(l),
		}
	}
	for _, requirement := range event.Requirements {
		payload.Requirements = append(payload.Requirements, requirementPayload{
			Name:    requirement.Name,
			NameAr:  requirement.NameAr,
			Display: requirement.Display(l),
		})
	}
	return payload
}

func toJobRequirementPayload(requirement *events.JobRequirement, l locale.Locale) jobRequirementPayload {
	payload := jobRequirementPayload{
		ID:              requirement.ULID,
		EventID:         requirement.EventULID,
		RatePerDay:      requirement.RatePerDay,
		Headcount:       requirement.Headcount,
		SubscriberCount: requirement.SubscriberCount,
	}
	if requirement.Job != nil {
		payload.JobID = requirement.Job.ULID
		payload.JobName = requirement.Job.DisplayName(l)
	}
	return payload
}

// ListPublic returns published events only.
func (h *EventsHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	published := true
	h.list(w, r, events.Filters{Published: &published})
}

// ListAdmin returns every event, with subscriber counts, optionally
// narrowed by ?published= and ?completed=.
func (h *EventsHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, events.Filters{
		Published: queryBool(r, "published"),
		Completed: queryBool(r, "completed"),
	})
}

func (h *EventsHandler) list(w http.ResponseWriter, r *http.Request, filters events.Filters) {
	l := localeFrom(r, h.DefaultLocale)
	items, err := h.Service.List(r.Context(), filters)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	payloads := make([]eventPayload, 0, len(items))
	for i := range items {
		payloads = append(payloads, toEventPayload(&items[i], l))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": payloads})
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ulidValue := pathParam(r, "id")
	if err := ids.ValidateULID(ulidValue); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	l := localeFrom(r, h.DefaultLocale)
	event, err := h.Service.GetByULID(r.Context(), ulidValue)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toEventPayload(event, l))
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params events.CreateParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}

	event, err := h.Service.Create(r.Context(), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toEventPayload(event, h.DefaultLocale))
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var params events.UpdateParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}

	event, err := h.Service.Update(r.Context(), pathParam(r, "id"), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toEventPayload(event, h.DefaultLocale))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), pathParam(r, "id")); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type flagBody struct {
	Value bool `json:"value"`
}

// SetFlag toggles one of the three independent lifecycle flags. The
// flag name comes from the route, the target value from the body.
func (h *EventsHandler) SetFlag(flag events.Flag) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body flagBody
		if !decodeBody(w, r, h.Env, &body) {
			return
		}

		ulidValue := pathParam(r, "id")
		var (
			event *events.Event
			err   error
		)
		switch flag {
		case events.FlagPublished:
			event, err = h.Service.SetPublished(r.Context(), ulidValue, body.Value)
		case events.FlagAcceptJobs:
			event, err = h.Service.SetAcceptJobs(r.Context(), ulidValue, body.Value)
		case events.FlagCompleted:
			event, err = h.Service.SetCompleted(r.Context(), ulidValue, body.Value)
		}
		if err != nil {
			writeError(w, r, err, h.Env)
			return
		}
		writeJSON(w, http.StatusOK, toEventPayload(event, h.DefaultLocale))
	}
}

type requirementsBody struct {
	Requirements []events.Requirement `json:"requirements"`
}

// SetRequirements rewrites the whole ordered requirements list.
func (h *EventsHandler) SetRequirements(w http.ResponseWriter, r *http.Request) {
	var body requirementsBody
	if !decodeBody(w, r, h.Env, &body) {
		return
	}

	event, err := h.Service.SetRequirements(r.Context(), pathParam(r, "id"), body.Requirements)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toEventPayload(event, h.DefaultLocale))
}

func (h *EventsHandler) AddJobRequirement(w http.ResponseWriter, r *http.Request) {
	var params events.JobRequirementParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}

	requirement, err := h.Service.AddJobRequirement(r.Context(), pathParam(r, "id"), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toJobRequirementPayload(requirement, h.DefaultLocale))
}

func (h *EventsHandler) UpdateJobRequirement(w http.ResponseWriter, r *http.Request) {
	var params events.JobRequirementParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}

	requirement, err := h.Service.UpdateJobRequirement(r.Context(), pathParam(r, "id"), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toJobRequirementPayload(requirement, h.DefaultLocale))
}

// RemoveJobRequirement deletes a job slot. Refused with 409 while any
// subscriber still references it.
func (h *EventsHandler) RemoveJobRequirement(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.RemoveJobRequirement(r.Context(), pathParam(r, "id")); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventsHandler) ListJobRequirements(w http.ResponseWriter, r *http.Request) {
	l := localeFrom(r, h.DefaultLocale)
	items, err := h.Service.ListJobRequirements(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	payloads := make([]jobRequirementPayload, 0, len(items))
	for i := range items {
		payloads = append(payloads, toJobRequirementPayload(&items[i], l))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": payloads})
}
