package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/events"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
	"github.com/stretchr/testify/require"
)

// fakeEventsRepo backs the handler tests with in-memory state.
type fakeEventsRepo struct {
	events      map[string]*events.Event
	subscribers []events.Subscriber
	seq         int
}

func newFakeEventsRepo() *fakeEventsRepo {
	return &fakeEventsRepo{events: map[string]*events.Event{}}
}

func (f *fakeEventsRepo) nextULID() string {
	f.seq++
	return "01HANDLERULID0000000000" + strconv.Itoa(100+f.seq)
}

func (f *fakeEventsRepo) Create(_ context.Context, params events.CreateParams) (*events.Event, error) {
	event := &events.Event{
		ULID: f.nextULID(), Title: params.Title, TitleAr: params.TitleAr,
		Date: params.Date, Description: params.Description,
		Requirements: params.Requirements,
		AcceptJobs:   true, CreatedAt: time.Now(),
	}
	f.events[event.ULID] = event
	return event, nil
}

func (f *fakeEventsRepo) Update(_ context.Context, ulid string, params events.UpdateParams) (*events.Event, error) {
	event, ok := f.events[ulid]
	if !ok {
		return nil, events.ErrNotFound
	}
	if params.Title != nil {
		event.Title = *params.Title
	}
	return event, nil
}

func (f *fakeEventsRepo) SetFlag(_ context.Context, ulid string, flag events.Flag, value bool) (*events.Event, error) {
	event, ok := f.events[ulid]
	if !ok {
		return nil, events.ErrNotFound
	}
	switch flag {
	case events.FlagPublished:
		event.Published = value
	case events.FlagAcceptJobs:
		event.AcceptJobs = value
	case events.FlagCompleted:
		event.Completed = value
	}
	return event, nil
}

func (f *fakeEventsRepo) SetRequirements(_ context.Context, ulid string, requirements []events.Requirement) (*events.Event, error) {
	event, ok := f.events[ulid]
	if !ok {
		return nil, events.ErrNotFound
	}
	event.Requirements = requirements
	return event, nil
}

func (f *fakeEventsRepo) GetByULID(_ context.Context, ulid string) (*events.Event, error) {
	event, ok := f.events[ulid]
	if !ok {
		return nil, events.ErrNotFound
	}
	return event, nil
}

func (f *fakeEventsRepo) List(_ context.Context, filters events.Filters) ([]events.Event, error) {
	items := []events.Event{}
	for _, event := range f.events {
		if filters.Published != nil && event.Published != *filters.Published {
			continue
		}
		items = append(items, *event)
	}
	return items, nil
}

func (f *fakeEventsRepo) Delete(_ context.Context, ulid string) error {
	if _, ok := f.events[ulid]; !ok {
		return events.ErrNotFound
	}
	delete(f.events, ulid)
	return nil
}

func (f *fakeEventsRepo) AddJobRequirement(_ context.Context, _ string, _ events.JobRequirementParams) (*events.JobRequirement, error) {
	return nil, events.ErrNotFound
}

func (f *fakeEventsRepo) UpdateJobRequirement(_ context.Context, _ string, _ events.JobRequirementParams) (*events.JobRequirement, error) {
	return nil, events.ErrJobRequirementNotFound
}

func (f *fakeEventsRepo) RemoveJobRequirement(_ context.Context, _ string) error {
	return events.ErrJobRequirementNotFound
}

func (f *fakeEventsRepo) GetJobRequirement(_ context.Context, _ string) (*events.JobRequirement, error) {
	return nil, events.ErrJobRequirementNotFound
}

func (f *fakeEventsRepo) ListJobRequirements(_ context.Context, _ string) ([]events.JobRequirement, error) {
	return nil, nil
}

func (f *fakeEventsRepo) CreateSubscriber(_ context.Context, eventULID string, input events.RegistrationInput) (*events.Subscriber, error) {
	event, ok := f.events[eventULID]
	if !ok {
		return nil, events.ErrNotFound
	}
	if !event.AcceptJobs {
		return nil, events.ErrRegistrationClosed
	}
	subscriber := events.Subscriber{
		ULID: f.nextULID(), EventULID: eventULID,
		Name: input.Name, Mobile: input.Mobile, Email: input.Email,
		IDNumber: input.IDNumber, Age: input.Age, CreatedAt: time.Now(),
	}
	f.subscribers = append(f.subscribers, subscriber)
	return &subscriber, nil
}

func (f *fakeEventsRepo) ListSubscribers(_ context.Context, eventULID string) ([]events.Subscriber, error) {
	items := []events.Subscriber{}
	for _, subscriber := range f.subscribers {
		if subscriber.EventULID == eventULID {
			items = append(items, subscriber)
		}
	}
	return items, nil
}

var _ events.Repository = (*fakeEventsRepo)(nil)

func seedEvent(t *testing.T, repo *fakeEventsRepo) *events.Event {
	t.Helper()
	event, err := events.NewService(repo).Create(context.Background(), events.CreateParams{
		Title:        "Riyadh Season Opening",
		TitleAr:      "افتتاح موسم الرياض",
		Date:         time.Date(2024, 10, 1, 18, 0, 0, 0, time.UTC),
		LocationULID: "01LOCATIONULID000000000000",
	})
	require.NoError(t, err)
	return event
}

func newEventsTestHandler(repo *fakeEventsRepo) *EventsHandler {
	return NewEventsHandler(events.NewService(repo), "test", locale.Arabic)
}

func TestEventsGetResolvesLocale(t *testing.T) {
	repo := newFakeEventsRepo()
	event := seedEvent(t, repo)
	h := newEventsTestHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/"+event.ULID+"?locale=ar", nil)
	req.SetPathValue("id", event.ULID)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "افتتاح موسم الرياض", payload["displayTitle"])
	require.Equal(t, event.ULID, payload["id"])
}

func TestEventsGetUnknownIsProblemNotFound(t *testing.T) {
	h := newEventsTestHandler(newFakeEventsRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/01MISSING00000000000000000", nil)
	req.SetPathValue("id", "01MISSING00000000000000000")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestEventsGetRejectsMalformedID(t *testing.T) {
	h := newEventsTestHandler(newFakeEventsRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/not-a-ulid", nil)
	req.SetPathValue("id", "not-a-ulid")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventsCreateValidationProblem(t *testing.T) {
	h := newEventsTestHandler(newFakeEventsRepo())

	body := strings.NewReader(`{"titleAr":"بدون عنوان"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/events", body)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var problemBody struct {
		Errors map[string]any `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problemBody))
	require.Contains(t, problemBody.Errors, "title")
}

func TestEventsPublicListExcludesDrafts(t *testing.T) {
	repo := newFakeEventsRepo()
	svc := events.NewService(repo)
	h := newEventsTestHandler(repo)

	draft := seedEvent(t, repo)
	published := seedEvent(t, repo)
	_, err := svc.SetPublished(context.Background(), published.ULID, true)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ListPublic(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Items, 1)
	require.Equal(t, published.ULID, payload.Items[0].ID)
	require.NotEqual(t, draft.ULID, payload.Items[0].ID)
}

func TestRegisterClosedEventIs422(t *testing.T) {
	repo := newFakeEventsRepo()
	svc := events.NewService(repo)
	event := seedEvent(t, repo)
	_, err := svc.SetAcceptJobs(context.Background(), event.ULID, false)
	require.NoError(t, err)

	h := NewRegistrationsHandler(events.NewRegistrationService(repo), "test", locale.Arabic)

	body := strings.NewReader(`{
		"name":"Sara","mobile":"+966501234567","email":"sara@example.com",
		"idNumber":"1098765432","nationalityId":"01NATIONALITYULID000000000",
		"age":27,"agreeToRequirements":true
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/"+event.ULID+"/register", body)
	req.SetPathValue("id", event.ULID)
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "registration-closed")
}

func TestRegisterAcceptedReturnsLedgerRow(t *testing.T) {
	repo := newFakeEventsRepo()
	event := seedEvent(t, repo)
	h := NewRegistrationsHandler(events.NewRegistrationService(repo), "test", locale.Arabic)

	body := strings.NewReader(`{
		"name":"Sara","mobile":"+966501234567","email":"sara@example.com",
		"idNumber":"1098765432","nationalityId":"01NATIONALITYULID000000000",
		"age":27,"agreeToRequirements":true
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/"+event.ULID+"/register", body)
	req.SetPathValue("id", event.ULID)
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, event.ULID, payload["eventId"])
	require.Equal(t, "Sara", payload["name"])
}

func TestExportCSVSetsAttachmentHeaders(t *testing.T) {
	repo := newFakeEventsRepo()
	event := seedEvent(t, repo)
	h := NewRegistrationsHandler(events.NewRegistrationService(repo), "test", locale.English)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/events/"+event.ULID+"/subscribers/export", nil)
	req.SetPathValue("id", event.ULID)
	rec := httptest.NewRecorder()
	h.ExportCSV(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	require.True(t, strings.HasPrefix(rec.Body.String(), "\xEF\xBB\xBF"))
}
