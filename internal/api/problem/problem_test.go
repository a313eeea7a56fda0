package problem

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteIncludesFieldErrorsAndInstance(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/events/abc/register", nil)

	Write(rec, req, 400, TypeValidation, "Invalid request", errors.New("bad input"), "test",
		WithErrors(map[string]any{"email": "must be a valid email address"}))

	require.Equal(t, 400, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var body ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, TypeValidation, body.Type)
	require.Equal(t, "/api/v1/events/abc/register", body.Instance)
	require.Equal(t, "bad input", body.Detail)
	require.Equal(t, "must be a valid email address", body.Errors["email"])
}

func TestWriteHidesDetailOutsideDevelopment(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/events", nil)

	Write(rec, req, 500, TypeServerError, "Server error", errors.New("pq: connection refused"), "production")

	var body ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Internal Server Error", body.Detail)
	require.NotContains(t, rec.Body.String(), "connection refused")
}

func TestWriteCarriesDependentCount(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/api/v1/admin/jobs/x", nil)

	Write(rec, req, 409, TypeEntityInUse, "Entity in use", errors.New("in use"), "test", WithCount(7))

	var body ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 7, body.Count)
	require.Equal(t, 409, body.Status)
}
