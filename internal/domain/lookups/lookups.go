// Package lookups manages the shared reference entities — jobs, locations
// and nationalities — that events and registrations point at. Deleting a
// lookup row is guarded: a row referenced by any dependent must stay.
package lookups

import (
	"context"
	"errors"
	"time"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
)

var ErrNotFound = errors.New("lookup entity not found")

// Job is a role subscribers can apply for (usher, supervisor, ...).
// Referenced by event job requirements.
type Job struct {
	ID          string
	ULID        string
	Name        string
	NameAr      string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DisplayName resolves the bilingual name for a locale.
func (j Job) DisplayName(l locale.Locale) string {
	return locale.Resolve(l, j.NameAr, j.Name)
}

// Location is a venue referenced by events.
type Location struct {
	ID        string
	ULID      string
	City      string
	CityAr    string
	Address   string
	AddressAr string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l Location) DisplayCity(loc locale.Locale) string {
	return locale.Resolve(loc, l.CityAr, l.City)
}

func (l Location) DisplayAddress(loc locale.Locale) string {
	return locale.Resolve(loc, l.AddressAr, l.Address)
}

// Nationality is referenced by event subscribers.
type Nationality struct {
	ID        string
	ULID      string
	NameAr    string
	NameEn    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (n Nationality) DisplayName(l locale.Locale) string {
	return locale.Resolve(l, n.NameAr, n.NameEn)
}

type JobParams struct {
	Name        string `json:"name" validate:"required,max=120"`
	NameAr      string `json:"nameAr" validate:"max=120"`
	Description string `json:"description" validate:"max=2000"`
}

type LocationParams struct {
	City      string `json:"city" validate:"required,max=120"`
	CityAr    string `json:"cityAr" validate:"max=120"`
	Address   string `json:"address" validate:"max=500"`
	AddressAr string `json:"addressAr" validate:"max=500"`
}

type NationalityParams struct {
	NameAr string `json:"nameAr" validate:"required,max=120"`
	NameEn string `json:"nameEn" validate:"required,max=120"`
}

// Repository is the persistence contract for lookup entities.
//
// The Delete methods are transactional: the implementation counts
// dependents and deletes inside one transaction, returning
// guard.InUseError when dependents exist. A foreign-key violation raised
// by a concurrent insert maps to the same error kind.
type Repository interface {
	CreateJob(ctx context.Context, params JobParams) (*Job, error)
	UpdateJob(ctx context.Context, ulid string, params JobParams) (*Job, error)
	GetJob(ctx context.Context, ulid string) (*Job, error)
	ListJobs(ctx context.Context) ([]Job, error)
	CountJobUsage(ctx context.Context, ulid string) (int, error)
	DeleteJob(ctx context.Context, ulid string) error

	CreateLocation(ctx context.Context, params LocationParams) (*Location, error)
	UpdateLocation(ctx context.Context, ulid string, params LocationParams) (*Location, error)
	GetLocation(ctx context.Context, ulid string) (*Location, error)
	ListLocations(ctx context.Context) ([]Location, error)
	CountLocationUsage(ctx context.Context, ulid string) (int, error)
	DeleteLocation(ctx context.Context, ulid string) error

	CreateNationality(ctx context.Context, params NationalityParams) (*Nationality, error)
	UpdateNationality(ctx context.Context, ulid string, params NationalityParams) (*Nationality, error)
	GetNationality(ctx context.Context, ulid string) (*Nationality, error)
	ListNationalities(ctx context.Context) ([]Nationality, error)
	CountNationalityUsage(ctx context.Context, ulid string) (int, error)
	DeleteNationality(ctx context.Context, ulid string) error
}
