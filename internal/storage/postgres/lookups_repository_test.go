package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/events"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/guard"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/lookups"
)

func TestJobRoundTrip(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	repo, err := NewRepository(pool)
	require.NoError(t, err)

	created, err := repo.Lookups().CreateJob(ctx, lookups.JobParams{
		Name:        "Usher",
		NameAr:      "منظم",
		Description: "Guides guests to their seats",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ULID)
	require.Equal(t, "منظم", created.DisplayName(locale.Arabic))

	fetched, err := repo.Lookups().GetJob(ctx, created.ULID)
	require.NoError(t, err)
	require.Equal(t, created.ID, fetched.ID)
	require.Equal(t, "Usher", fetched.Name)

	jobs, err := repo.Lookups().ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
}

func TestGetJobNotFound(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	repo, err := NewRepository(pool)
	require.NoError(t, err)

	_, err = repo.Lookups().GetJob(ctx, "01JUNKJUNKJUNKJUNKJUNKJUNK")
	require.ErrorIs(t, err, lookups.ErrNotFound)
}

func TestDeleteLocationRefusedWhileReferenced(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	repo, err := NewRepository(pool)
	require.NoError(t, err)

	location, err := repo.Lookups().CreateLocation(ctx, lookups.LocationParams{
		City:   "Riyadh",
		CityAr: "الرياض",
	})
	require.NoError(t, err)

	_, err = repo.Events().Create(ctx, events.CreateParams{
		Title:        "Season Opening",
		Date:         time.Now().Add(48 * time.Hour),
		LocationULID: location.ULID,
	})
	require.NoError(t, err)

	count, err := repo.Lookups().CountLocationUsage(ctx, location.ULID)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	err = repo.Lookups().DeleteLocation(ctx, location.ULID)
	var inUse guard.InUseError
	require.ErrorAs(t, err, &inUse)
	require.Equal(t, guard.KindLocation, inUse.Kind)
	require.Equal(t, 1, inUse.Count)

	// Still there.
	_, err = repo.Lookups().GetLocation(ctx, location.ULID)
	require.NoError(t, err)
}

func TestDeleteUnusedJob(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	repo, err := NewRepository(pool)
	require.NoError(t, err)

	job, err := repo.Lookups().CreateJob(ctx, lookups.JobParams{Name: "Supervisor"})
	require.NoError(t, err)

	require.NoError(t, repo.Lookups().DeleteJob(ctx, job.ULID))

	_, err = repo.Lookups().GetJob(ctx, job.ULID)
	require.ErrorIs(t, err, lookups.ErrNotFound)
}

func TestUpdateNationality(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	repo, err := NewRepository(pool)
	require.NoError(t, err)

	nationality, err := repo.Lookups().CreateNationality(ctx, lookups.NationalityParams{
		NameAr: "سعودي",
		NameEn: "Saudi",
	})
	require.NoError(t, err)

	updated, err := repo.Lookups().UpdateNationality(ctx, nationality.ULID, lookups.NationalityParams{
		NameAr: "سعودية",
		NameEn: "Saudi Arabian",
	})
	require.NoError(t, err)
	require.Equal(t, "Saudi Arabian", updated.NameEn)
	require.Equal(t, "سعودية", updated.DisplayName(locale.Arabic))
}
