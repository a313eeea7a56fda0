package lookups

import (
	"context"
	"fmt"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/guard"
	"github.com/dreamtoapp/smartcrowds-server/internal/validation"
	"github.com/go-playground/validator/v10"
)

type Service struct {
	repo      Repository
	validator *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validator: validation.New()}
}

func (s *Service) CreateJob(ctx context.Context, params JobParams) (*Job, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	return s.repo.CreateJob(ctx, params)
}

func (s *Service) UpdateJob(ctx context.Context, ulid string, params JobParams) (*Job, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	return s.repo.UpdateJob(ctx, ulid, params)
}

func (s *Service) GetJob(ctx context.Context, ulid string) (*Job, error) {
	return s.repo.GetJob(ctx, ulid)
}

func (s *Service) ListJobs(ctx context.Context) ([]Job, error) {
	return s.repo.ListJobs(ctx)
}

func (s *Service) CreateLocation(ctx context.Context, params LocationParams) (*Location, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	return s.repo.CreateLocation(ctx, params)
}

func (s *Service) UpdateLocation(ctx context.Context, ulid string, params LocationParams) (*Location, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	return s.repo.UpdateLocation(ctx, ulid, params)
}

func (s *Service) GetLocation(ctx context.Context, ulid string) (*Location, error) {
	return s.repo.GetLocation(ctx, ulid)
}

func (s *Service) ListLocations(ctx context.Context) ([]Location, error) {
	return s.repo.ListLocations(ctx)
}

func (s *Service) CreateNationality(ctx context.Context, params NationalityParams) (*Nationality, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	return s.repo.CreateNationality(ctx, params)
}

func (s *Service) UpdateNationality(ctx context.Context, ulid string, params NationalityParams) (*Nationality, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	return s.repo.UpdateNationality(ctx, ulid, params)
}

func (s *Service) GetNationality(ctx context.Context, ulid string) (*Nationality, error) {
	return s.repo.GetNationality(ctx, ulid)
}

func (s *Service) ListNationalities(ctx context.Context) ([]Nationality, error) {
	return s.repo.ListNationalities(ctx)
}

// Usage reports whether a lookup entity can be deleted right now. The
// answer is advisory; Delete re-checks inside its own transaction.
func (s *Service) Usage(ctx context.Context, kind guard.Kind, ulid string) (guard.Result, error) {
	count, err := s.countUsage(ctx, kind, ulid)
	if err != nil {
		return guard.Result{}, err
	}
	if count > 0 {
		return guard.Blocked(count), nil
	}
	return guard.Allowed(), nil
}

// Delete removes a lookup entity, refusing with guard.InUseError while any
// dependent row references it. The check and the delete run in one
// transaction at the repository.
func (s *Service) Delete(ctx context.Context, kind guard.Kind, ulid string) error {
	switch kind {
	case guard.KindJob:
		return s.repo.DeleteJob(ctx, ulid)
	case guard.KindLocation:
		return s.repo.DeleteLocation(ctx, ulid)
	case guard.KindNationality:
		return s.repo.DeleteNationality(ctx, ulid)
	default:
		return fmt.Errorf("unknown lookup kind %q", kind)
	}
}

func (s *Service) countUsage(ctx context.Context, kind guard.Kind, ulid string) (int, error) {
	switch kind {
	case guard.KindJob:
		return s.repo.CountJobUsage(ctx, ulid)
	case guard.KindLocation:
		return s.repo.CountLocationUsage(ctx, ulid)
	case guard.KindNationality:
		return s.repo.CountNationalityUsage(ctx, ulid)
	default:
		return 0, fmt.Errorf("unknown lookup kind %q", kind)
	}
}
