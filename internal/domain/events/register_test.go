package events

import (
	"context"
	"testing"

	"github.com/dreamtoapp/smartcrowds-server/internal/validation"
	"github.com/stretchr/testify/require"
)

func validRegistrationInput() RegistrationInput {
	return RegistrationInput{
		Name:                "Sara Alqahtani",
		Mobile:              "+966501234567",
		Email:               "sara@example.com",
		IDNumber:            "1098765432",
		NationalityULID:     "01NATIONALITYULID000000000",
		Age:                 27,
		AgreeToRequirements: true,
	}
}

func TestRegisterUnknownEvent(t *testing.T) {
	svc := NewRegistrationService(newFakeRepo())

	_, err := svc.Register(context.Background(), "01MISSING00000000000000000", validRegistrationInput())

	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterClosedEvent(t *testing.T) {
	repo := newFakeRepo()
	events := NewService(repo)
	svc := NewRegistrationService(repo)
	event, err := events.Create(context.Background(), validCreateParams())
	require.NoError(t, err)
	_, err = events.SetAcceptJobs(context.Background(), event.ULID, false)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), event.ULID, validRegistrationInput())

	require.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestRegisterValidatesInput(t *testing.T) {
	repo := newFakeRepo()
	events := NewService(repo)
	svc := NewRegistrationService(repo)
	event, err := events.Create(context.Background(), validCreateParams())
	require.NoError(t, err)

	input := validRegistrationInput()
	input.Email = "not-an-email"
	input.Age = 15
	input.AgreeToRequirements = false

	_, err = svc.Register(context.Background(), event.ULID, input)

	var fields validation.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Contains(t, fields, "email")
	require.Contains(t, fields, "age")
	require.Contains(t, fields, "agreeToRequirements")
}

func TestRegisterRejectsForeignJobRequirement(t *testing.T) {
	repo := newFakeRepo()
	events := NewService(repo)
	svc := NewRegistrationService(repo)

	first, err := events.Create(context.Background(), validCreateParams())
	require.NoError(t, err)
	second, err := events.Create(context.Background(), validCreateParams())
	require.NoError(t, err)
	foreign, err := events.AddJobRequirement(context.Background(), second.ULID, JobRequirementParams{
		JobULID: "01JOBULID000000000000000AA", RatePerDay: 200, Headcount: 2,
	})
	require.NoError(t, err)

	input := validRegistrationInput()
	input.JobRequirementULID = foreign.ULID

	_, err = svc.Register(context.Background(), first.ULID, input)

	var mismatch CrossEntityError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, "jobRequirementId", mismatch.Field)
}

func TestRegisterAppendsExactlyOneRow(t *testing.T) {
	repo := newFakeRepo()
	events := NewService(repo)
	svc := NewRegistrationService(repo)
	event, err := events.Create(context.Background(), validCreateParams())
	require.NoError(t, err)

	subscriber, err := svc.Register(context.Background(), event.ULID, validRegistrationInput())
	require.NoError(t, err)
	require.NotEmpty(t, subscriber.ULID)

	ledger, err := svc.ListSubscribers(context.Background(), event.ULID)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
}

func TestRegisterAllowsDuplicateIdentity(t *testing.T) {
	repo := newFakeRepo()
	events := NewService(repo)
	svc := NewRegistrationService(repo)
	event, err := events.Create(context.Background(), validCreateParams())
	require.NoError(t, err)

	// The source performs no deduplication; the same identity may
	// register twice.
	_, err = svc.Register(context.Background(), event.ULID, validRegistrationInput())
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), event.ULID, validRegistrationInput())
	require.NoError(t, err)

	ledger, err := svc.ListSubscribers(context.Background(), event.ULID)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
}

func TestRegistrationWindowScenario(t *testing.T) {
	repo := newFakeRepo()
	events := NewService(repo)
	svc := NewRegistrationService(repo)
	event, err := events.Create(context.Background(), validCreateParams())
	require.NoError(t, err)

	saudi := validRegistrationInput()
	saudi.NationalityULID = "01NATIONALITYSA00000000000"
	_, err = svc.Register(context.Background(), event.ULID, saudi)
	require.NoError(t, err)

	egyptian := validRegistrationInput()
	egyptian.NationalityULID = "01NATIONALITYEG00000000000"
	_, err = svc.Register(context.Background(), event.ULID, egyptian)
	require.NoError(t, err)

	_, err = events.SetAcceptJobs(context.Background(), event.ULID, false)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), event.ULID, validRegistrationInput())
	require.ErrorIs(t, err, ErrRegistrationClosed)

	ledger, err := svc.ListSubscribers(context.Background(), event.ULID)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
}
