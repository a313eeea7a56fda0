package events

import (
	"context"

	"github.com/dreamtoapp/smartcrowds-server/internal/sanitize"
	"github.com/dreamtoapp/smartcrowds-server/internal/validation"
	"github.com/go-playground/validator/v10"
)

// Service manages the event lifecycle and its job-requirement composition.
type Service struct {
	repo      Repository
	validator *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validator: validation.New()}
}

// Create stores a new event. The lifecycle always starts unpublished,
// accepting registrations, and not completed; callers cannot override the
// initial flags.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Event, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	if err := validation.ValidateURL(params.ImageURL, "imageUrl"); err != nil {
		return nil, err
	}
	params.Title = sanitize.Text(params.Title)
	params.TitleAr = sanitize.Text(params.TitleAr)
	params.Description = sanitize.Text(params.Description)
	params.DescriptionAr = sanitize.Text(params.DescriptionAr)
	params.Requirements = sanitizeRequirements(params.Requirements)
	return s.repo.Create(ctx, params)
}

func (s *Service) Update(ctx context.Context, ulid string, params UpdateParams) (*Event, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	if params.ImageURL != nil {
		if err := validation.ValidateURL(*params.ImageURL, "imageUrl"); err != nil {
			return nil, err
		}
	}
	sanitizeField(params.Title)
	sanitizeField(params.TitleAr)
	sanitizeField(params.Description)
	sanitizeField(params.DescriptionAr)
	params.Requirements = sanitizeRequirements(params.Requirements)
	return s.repo.Update(ctx, ulid, params)
}

func (s *Service) GetByULID(ctx context.Context, ulid string) (*Event, error) {
	return s.repo.GetByULID(ctx, ulid)
}

// List returns events matching the filters. Public callers pass
// Published=true; admin listings pass no filter and get every event.
func (s *Service) List(ctx context.Context, filters Filters) ([]Event, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Delete(ctx context.Context, ulid string) error {
	return s.repo.Delete(ctx, ulid)
}

// SetPublished toggles public visibility. Idempotent set, not a toggle.
func (s *Service) SetPublished(ctx context.Context, ulid string, value bool) (*Event, error) {
	return s.repo.SetFlag(ctx, ulid, FlagPublished, value)
}

// SetAcceptJobs opens or closes registration. Independent of the other
// two flags.
func (s *Service) SetAcceptJobs(ctx context.Context, ulid string, value bool) (*Event, error) {
	return s.repo.SetFlag(ctx, ulid, FlagAcceptJobs, value)
}

// SetCompleted marks the event as held. A completed event may remain
// published.
func (s *Service) SetCompleted(ctx context.Context, ulid string, value bool) (*Event, error) {
	return s.repo.SetFlag(ctx, ulid, FlagCompleted, value)
}

// SetRequirements rewrites the whole ordered requirements sequence. The
// admin form appends to the existing list and submits the full sequence.
func (s *Service) SetRequirements(ctx context.Context, ulid string, requirements []Requirement) (*Event, error) {
	for _, requirement := range requirements {
		if err := validation.Check(s.validator, requirement); err != nil {
			return nil, err
		}
	}
	return s.repo.SetRequirements(ctx, ulid, sanitizeRequirements(requirements))
}

func (s *Service) AddJobRequirement(ctx context.Context, eventULID string, params JobRequirementParams) (*JobRequirement, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	return s.repo.AddJobRequirement(ctx, eventULID, params)
}

func (s *Service) UpdateJobRequirement(ctx context.Context, ulid string, params JobRequirementParams) (*JobRequirement, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	return s.repo.UpdateJobRequirement(ctx, ulid, params)
}

// RemoveJobRequirement deletes a job slot. The repository refuses with
// guard.InUseError while subscribers reference it, same contract as the
// lookup delete guard.
func (s *Service) RemoveJobRequirement(ctx context.Context, ulid string) error {
	return s.repo.RemoveJobRequirement(ctx, ulid)
}

func (s *Service) ListJobRequirements(ctx context.Context, eventULID string) ([]JobRequirement, error) {
	return s.repo.ListJobRequirements(ctx, eventULID)
}

func sanitizeRequirements(requirements []Requirement) []Requirement {
	for i := range requirements {
		requirements[i].Name = sanitize.Text(requirements[i].Name)
		requirements[i].NameAr = sanitize.Text(requirements[i].NameAr)
	}
	return requirements
}

func sanitizeField(field *string) {
	if field != nil {
		*field = sanitize.Text(*field)
	}
}
