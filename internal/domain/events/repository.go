package events

import "context"

// Repository is the persistence contract for events, job requirements and
// the registration ledger.
//
// CreateSubscriber is transactional: the implementation re-reads the
// event's accept_jobs flag inside the insert transaction and returns
// ErrRegistrationClosed when it has flipped since the caller's check.
// RemoveJobRequirement refuses with guard.InUseError while subscriber rows
// reference the slot.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Event, error)
	Update(ctx context.Context, ulid string, params UpdateParams) (*Event, error)
	SetFlag(ctx context.Context, ulid string, flag Flag, value bool) (*Event, error)
	SetRequirements(ctx context.Context, ulid string, requirements []Requirement) (*Event, error)
	GetByULID(ctx context.Context, ulid string) (*Event, error)
	List(ctx context.Context, filters Filters) ([]Event, error)
	Delete(ctx context.Context, ulid string) error

	AddJobRequirement(ctx context.Context, eventULID string, params JobRequirementParams) (*JobRequirement, error)
	UpdateJobRequirement(ctx context.Context, ulid string, params JobRequirementParams) (*JobRequirement, error)
	RemoveJobRequirement(ctx context.Context, ulid string) error
	GetJobRequirement(ctx context.Context, ulid string) (*JobRequirement, error)
	ListJobRequirements(ctx context.Context, eventULID string) ([]JobRequirement, error)

	CreateSubscriber(ctx context.Context, eventULID string, input RegistrationInput) (*Subscriber, error)
	ListSubscribers(ctx context.Context, eventULID string) ([]Subscriber, error)
}
