package events

import (
	"context"

	"github.com/dreamtoapp/smartcrowds-server/internal/sanitize"
	"github.com/dreamtoapp/smartcrowds-server/internal/validation"
	"github.com/go-playground/validator/v10"
)

// RegistrationService appends rows to the registration ledger. Rows are
// immutable: there is no update or delete path, only create, list and
// export. No deduplication is performed — the same identity may register
// more than once, matching the consuming site's behavior.
type RegistrationService struct {
	repo      Repository
	validator *validator.Validate
}

func NewRegistrationService(repo Repository) *RegistrationService {
	return &RegistrationService{repo: repo, validator: validation.New()}
}

// Register validates the input and appends exactly one ledger row.
//
// Failure modes, in check order: ErrNotFound when the event does not
// exist, ErrRegistrationClosed when acceptJobs is false, FieldErrors for
// malformed input, CrossEntityError when the selected job requirement
// belongs to a different event.
func (s *RegistrationService) Register(ctx context.Context, eventULID string, input RegistrationInput) (*Subscriber, error) {
	event, err := s.repo.GetByULID(ctx, eventULID)
	if err != nil {
		return nil, err
	}
	if !event.AcceptJobs {
		return nil, ErrRegistrationClosed
	}

	if err := validation.Check(s.validator, input); err != nil {
		return nil, err
	}
	if err := validation.ValidateURL(input.IDImageURL, "idImageUrl"); err != nil {
		return nil, err
	}
	if err := validation.ValidateURL(input.PersonalImageURL, "personalImageUrl"); err != nil {
		return nil, err
	}

	if input.JobRequirementULID != "" {
		requirement, err := s.repo.GetJobRequirement(ctx, input.JobRequirementULID)
		if err != nil {
			return nil, err
		}
		if requirement.EventULID != event.ULID {
			return nil, CrossEntityError{
				Field:   "jobRequirementId",
				Message: "job requirement does not belong to this event",
			}
		}
	}

	input.Name = sanitize.Text(input.Name)
	input.IDNumber = sanitize.Text(input.IDNumber)

	return s.repo.CreateSubscriber(ctx, eventULID, input)
}

// ListSubscribers returns the event's ledger, newest first.
func (s *RegistrationService) ListSubscribers(ctx context.Context, eventULID string) ([]Subscriber, error) {
	if _, err := s.repo.GetByULID(ctx, eventULID); err != nil {
		return nil, err
	}
	return s.repo.ListSubscribers(ctx, eventULID)
}
