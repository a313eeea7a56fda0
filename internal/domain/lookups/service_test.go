package lookups

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/guard"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
	"github.com/dreamtoapp/smartcrowds-server/internal/validation"
	"github.com/stretchr/testify/require"
)

// fakeRepo keeps lookup rows and dependent counts in memory. Delete
// applies the same guard rule the postgres repository enforces in a
// transaction.
type fakeRepo struct {
	jobs          map[string]*Job
	locations     map[string]*Location
	nationalities map[string]*Nationality
	usage         map[string]int
	seq           int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		jobs:          map[string]*Job{},
		locations:     map[string]*Location{},
		nationalities: map[string]*Nationality{},
		usage:         map[string]int{},
	}
}

func (f *fakeRepo) nextULID() string {
	f.seq++
	return "01TESTULID" + strconv.Itoa(f.seq)
}

func (f *fakeRepo) CreateJob(_ context.Context, params JobParams) (*Job, error) {
	job := &Job{ULID: f.nextULID(), Name: params.Name, NameAr: params.NameAr, Description: params.Description, CreatedAt: time.Now()}
	f.jobs[job.ULID] = job
	return job, nil
}

func (f *fakeRepo) UpdateJob(_ context.Context, ulid string, params JobParams) (*Job, error) {
	job, ok := f.jobs[ulid]
	if !ok {
		return nil, ErrNotFound
	}
	job.Name, job.NameAr, job.Description = params.Name, params.NameAr, params.Description
	return job, nil
}

func (f *fakeRepo) GetJob(_ context.Context, ulid string) (*Job, error) {
	job, ok := f.jobs[ulid]
	if !ok {
		return nil, ErrNotFound
	}
	return job, nil
}

func (f *fakeRepo) ListJobs(_ context.Context) ([]Job, error) {
	items := make([]Job, 0, len(f.jobs))
	for _, job := range f.jobs {
		items = append(items, *job)
	}
	return items, nil
}

func (f *fakeRepo) CountJobUsage(_ context.Context, ulid string) (int, error) {
	return f.usage[ulid], nil
}

func (f *fakeRepo) DeleteJob(_ context.Context, ulid string) error {
	if _, ok := f.jobs[ulid]; !ok {
		return ErrNotFound
	}
	if count := f.usage[ulid]; count > 0 {
		return guard.InUseError{Kind: guard.KindJob, Count: count}
	}
	delete(f.jobs, ulid)
	return nil
}

func (f *fakeRepo) CreateLocation(_ context.Context, params LocationParams) (*Location, error) {
	loc := &Location{ULID: f.nextULID(), City: params.City, CityAr: params.CityAr, Address: params.Address, AddressAr: params.AddressAr}
	f.locations[loc.ULID] = loc
	return loc, nil
}

func (f *fakeRepo) UpdateLocation(_ context.Context, ulid string, params LocationParams) (*Location, error) {
	loc, ok := f.locations[ulid]
	if !ok {
		return nil, ErrNotFound
	}
	loc.City, loc.CityAr, loc.Address, loc.AddressAr = params.City, params.CityAr, params.Address, params.AddressAr
	return loc, nil
}

func (f *fakeRepo) GetLocation(_ context.Context, ulid string) (*Location, error) {
	loc, ok := f.locations[ulid]
	if !ok {
		return nil, ErrNotFound
	}
	return loc, nil
}

func (f *fakeRepo) ListLocations(_ context.Context) ([]Location, error) {
	items := make([]Location, 0, len(f.locations))
	for _, loc := range f.locations {
		items = append(items, *loc)
	}
	return items, nil
}

func (f *fakeRepo) CountLocationUsage(_ context.Context, ulid string) (int, error) {
	return f.usage[ulid], nil
}

func (f *fakeRepo) DeleteLocation(_ context.Context, ulid string) error {
	if _, ok := f.locations[ulid]; !ok {
		return ErrNotFound
	}
	if count := f.usage[ulid]; count > 0 {
		return guard.InUseError{Kind: guard.KindLocation, Count: count}
	}
	delete(f.locations, ulid)
	return nil
}

func (f *fakeRepo) CreateNationality(_ context.Context, params NationalityParams) (*Nationality, error) {
	nat := &Nationality{ULID: f.nextULID(), NameAr: params.NameAr, NameEn: params.NameEn}
	f.nationalities[nat.ULID] = nat
	return nat, nil
}

func (f *fakeRepo) UpdateNationality(_ context.Context, ulid string, params NationalityParams) (*Nationality, error) {
	nat, ok := f.nationalities[ulid]
	if !ok {
		return nil, ErrNotFound
	}
	nat.NameAr, nat.NameEn = params.NameAr, params.NameEn
	return nat, nil
}

func (f *fakeRepo) GetNationality(_ context.Context, ulid string) (*Nationality, error) {
	nat, ok := f.nationalities[ulid]
	if !ok {
		return nil, ErrNotFound
	}
	return nat, nil
}

func (f *fakeRepo) ListNationalities(_ context.Context) ([]Nationality, error) {
	items := make([]Nationality, 0, len(f.nationalities))
	for _, nat := range f.nationalities {
		items = append(items, *nat)
	}
	return items, nil
}

func (f *fakeRepo) CountNationalityUsage(_ context.Context, ulid string) (int, error) {
	return f.usage[ulid], nil
}

func (f *fakeRepo) DeleteNationality(_ context.Context, ulid string) error {
	if _, ok := f.nationalities[ulid]; !ok {
		return ErrNotFound
	}
	if count := f.usage[ulid]; count > 0 {
		return guard.InUseError{Kind: guard.KindNationality, Count: count}
	}
	delete(f.nationalities, ulid)
	return nil
}

var _ Repository = (*fakeRepo)(nil)

func TestCreateJobValidates(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.CreateJob(context.Background(), JobParams{})

	var fields validation.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Contains(t, fields, "name")
}

func TestDeleteRefusedWhileReferenced(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	job, err := svc.CreateJob(context.Background(), JobParams{Name: "Usher", NameAr: "منظم"})
	require.NoError(t, err)
	repo.usage[job.ULID] = 3

	usage, err := svc.Usage(context.Background(), guard.KindJob, job.ULID)
	require.NoError(t, err)
	require.False(t, usage.OK)
	require.Equal(t, guard.ReasonInUse, usage.Reason)
	require.Equal(t, 3, usage.Count)

	err = svc.Delete(context.Background(), guard.KindJob, job.ULID)
	var inUse guard.InUseError
	require.ErrorAs(t, err, &inUse)
	require.Equal(t, guard.KindJob, inUse.Kind)
	require.Equal(t, 3, inUse.Count)
}

func TestDeleteSucceedsAfterDependentsRemoved(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	job, err := svc.CreateJob(context.Background(), JobParams{Name: "Usher"})
	require.NoError(t, err)
	repo.usage[job.ULID] = 2

	require.Error(t, svc.Delete(context.Background(), guard.KindJob, job.ULID))

	repo.usage[job.ULID] = 0
	usage, err := svc.Usage(context.Background(), guard.KindJob, job.ULID)
	require.NoError(t, err)
	require.True(t, usage.OK)

	require.NoError(t, svc.Delete(context.Background(), guard.KindJob, job.ULID))
	_, err = svc.GetJob(context.Background(), job.ULID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUnknownKind(t *testing.T) {
	svc := NewService(newFakeRepo())

	err := svc.Delete(context.Background(), guard.Kind("venue"), "01TESTULID1")

	require.Error(t, err)
}

func TestNationalityGuard(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	nat, err := svc.CreateNationality(context.Background(), NationalityParams{NameAr: "سعودي", NameEn: "Saudi"})
	require.NoError(t, err)
	repo.usage[nat.ULID] = 1

	err = svc.Delete(context.Background(), guard.KindNationality, nat.ULID)

	var inUse guard.InUseError
	require.ErrorAs(t, err, &inUse)
	require.Equal(t, guard.KindNationality, inUse.Kind)
	require.Equal(t, 1, inUse.Count)
}

func TestDisplayNamesResolveByLocale(t *testing.T) {
	job := Job{Name: "Usher", NameAr: "منظم"}
	require.Equal(t, "منظم", job.DisplayName(locale.Arabic))
	require.Equal(t, "Usher", job.DisplayName(locale.English))

	// Missing twin falls back to the sibling.
	nat := Nationality{NameAr: "مصري"}
	require.Equal(t, "مصري", nat.DisplayName(locale.English))
}
