package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/guard"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/ids"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/lookups"
)

var _ lookups.Repository = (*LookupRepository)(nil)

func (r *LookupRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

type jobRow struct {
	ID          string
	ULID        string
	Name        string
	NameAr      *string
	Description *string
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

func (row jobRow) toDomain() lookups.Job {
	return lookups.Job{
		ID:          row.ID,
		ULID:        row.ULID,
		Name:        row.Name,
		NameAr:      derefString(row.NameAr),
		Description: derefString(row.Description),
		CreatedAt:   timeOf(row.CreatedAt),
		UpdatedAt:   timeOf(row.UpdatedAt),
	}
}

const jobColumns = `id, ulid, name, name_ar, description, created_at, updated_at`

func scanJob(row pgx.Row) (*lookups.Job, error) {
	var r jobRow
	if err := row.Scan(&r.ID, &r.ULID, &r.Name, &r.NameAr, &r.Description, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	job := r.toDomain()
	return &job, nil
}

func (r *LookupRepository) CreateJob(ctx context.Context, params lookups.JobParams) (*lookups.Job, error) {
	ulid, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint job ulid: %w", err)
	}

	job, err := scanJob(r.queryer().QueryRow(ctx, `
INSERT INTO jobs (ulid, name, name_ar, description)
VALUES ($1, $2, $3, $4)
RETURNING `+jobColumns,
		ulid, params.Name, textOrNil(params.NameAr), textOrNil(params.Description),
	))
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

func (r *LookupRepository) UpdateJob(ctx context.Context, ulid string, params lookups.JobParams) (*lookups.Job, error) {
	job, err := scanJob(r.queryer().QueryRow(ctx, `
UPDATE jobs
   SET name = $2, name_ar = $3, description = $4, updated_at = now()
 WHERE ulid = $1
RETURNING `+jobColumns,
		ulid, params.Name, textOrNil(params.NameAr), textOrNil(params.Description),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, lookups.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	return job, nil
}

func (r *LookupRepository) GetJob(ctx context.Context, ulid string) (*lookups.Job, error) {
	job, err := scanJob(r.queryer().QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE ulid = $1`, ulid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, lookups.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

func (r *LookupRepository) ListJobs(ctx context.Context) ([]lookups.Job, error) {
	rows, err := r.queryer().Query(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	items := make([]lookups.Job, 0)
	for rows.Next() {
		var row jobRow
		if err := rows.Scan(&row.ID, &row.ULID, &row.Name, &row.NameAr, &row.Description, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan jobs: %w", err)
		}
		items = append(items, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return items, nil
}

func (r *LookupRepository) CountJobUsage(ctx context.Context, ulid string) (int, error) {
	return r.countUsage(ctx, `
SELECT count(*) FROM event_job_requirements jr
  JOIN jobs j ON j.id = jr.job_id
 WHERE j.ulid = $1`, ulid, `count job usage`)
}

func (r *LookupRepository) DeleteJob(ctx context.Context, ulid string) error {
	return r.guardedDelete(ctx, guard.KindJob, ulid,
		`SELECT count(*) FROM event_job_requirements jr JOIN jobs j ON j.id = jr.job_id WHERE j.ulid = $1`,
		`DELETE FROM jobs WHERE ulid = $1`,
	)
}

type locationRow struct {
	ID        string
	ULID      string
	City      string
	CityAr    *string
	Address   *string
	AddressAr *string
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

func (row locationRow) toDomain() lookups.Location {
	return lookups.Location{
		ID:        row.ID,
		ULID:      row.ULID,
		City:      row.City,
		CityAr:    derefString(row.CityAr),
		Address:   derefString(row.Address),
		AddressAr: derefString(row.AddressAr),
		CreatedAt: timeOf(row.CreatedAt),
		UpdatedAt: timeOf(row.UpdatedAt),
	}
}

const locationColumns = `id, ulid, city, city_ar, address, address_ar, created_at, updated_at`

func scanLocation(row pgx.Row) (*lookups.Location, error) {
	var r locationRow
	if err := row.Scan(&r.ID, &r.ULID, &r.City, &r.CityAr, &r.Address, &r.AddressAr, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	loc := r.toDomain()
	return &loc, nil
}

func (r *LookupRepository) CreateLocation(ctx context.Context, params lookups.LocationParams) (*lookups.Location, error) {
	ulid, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint location ulid: %w", err)
	}

	loc, err := scanLocation(r.queryer().QueryRow(ctx, `
INSERT INTO locations (ulid, city, city_ar, address, address_ar)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+locationColumns,
		ulid, params.City, textOrNil(params.CityAr), textOrNil(params.Address), textOrNil(params.AddressAr),
	))
	if err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	return loc, nil
}

func (r *LookupRepository) UpdateLocation(ctx context.Context, ulid string, params lookups.LocationParams) (*lookups.Location, error) {
	loc, err := scanLocation(r.queryer().QueryRow(ctx, `
UPDATE locations
   SET city = $2, city_ar = $3, address = $4, address_ar = $5, updated_at = now()
 WHERE ulid = $1
RETURNING `+locationColumns,
		ulid, params.City, textOrNil(params.CityAr), textOrNil(params.Address), textOrNil(params.AddressAr),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, lookups.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	return loc, nil
}

func (r *LookupRepository) GetLocation(ctx context.Context, ulid string) (*lookups.Location, error) {
	loc, err := scanLocation(r.queryer().QueryRow(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE ulid = $1`, ulid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, lookups.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	return loc, nil
}

func (r *LookupRepository) ListLocations(ctx context.Context) ([]lookups.Location, error) {
	rows, err := r.queryer().Query(ctx,
		`SELECT `+locationColumns+` FROM locations ORDER BY city ASC`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	items := make([]lookups.Location, 0)
	for rows.Next() {
		var row locationRow
		if err := rows.Scan(&row.ID, &row.ULID, &row.City, &row.CityAr, &row.Address, &row.AddressAr, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan locations: %w", err)
		}
		items = append(items, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return items, nil
}

func (r *LookupRepository) CountLocationUsage(ctx context.Context, ulid string) (int, error) {
	return r.countUsage(ctx, `
SELECT count(*) FROM events e
  JOIN locations l ON l.id = e.location_id
 WHERE l.ulid = $1`, ulid, `count location usage`)
}

func (r *LookupRepository) DeleteLocation(ctx context.Context, ulid string) error {
	return r.guardedDelete(ctx, guard.KindLocation, ulid,
		`SELECT count(*) FROM events e JOIN locations l ON l.id = e.location_id WHERE l.ulid = $1`,
		`DELETE FROM locations WHERE ulid = $1`,
	)
}

type nationalityRow struct {
	ID        string
	ULID      string
	NameAr    string
	NameEn    string
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

func (row nationalityRow) toDomain() lookups.Nationality {
	return lookups.Nationality{
		ID:        row.ID,
		ULID:      row.ULID,
		NameAr:    row.NameAr,
		NameEn:    row.NameEn,
		CreatedAt: timeOf(row.CreatedAt),
		UpdatedAt: timeOf(row.UpdatedAt),
	}
}

const nationalityColumns = `id, ulid, name_ar, name_en, created_at, updated_at`

func scanNationality(row pgx.Row) (*lookups.Nationality, error) {
	var r nationalityRow
	if err := row.Scan(&r.ID, &r.ULID, &r.NameAr, &r.NameEn, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	nat := r.toDomain()
	return &nat, nil
}

func (r *LookupRepository) CreateNationality(ctx context.Context, params lookups.NationalityParams) (*lookups.Nationality, error) {
	ulid, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint nationality ulid: %w", err)
	}

	nat, err := scanNationality(r.queryer().QueryRow(ctx, `
INSERT INTO nationalities (ulid, name_ar, name_en)
VALUES ($1, $2, $3)
RETURNING `+nationalityColumns,
		ulid, params.NameAr, params.NameEn,
	))
	if err != nil {
		return nil, fmt.Errorf("create nationality: %w", err)
	}
	return nat, nil
}

func (r *LookupRepository) UpdateNationality(ctx context.Context, ulid string, params lookups.NationalityParams) (*lookups.Nationality, error) {
	nat, err := scanNationality(r.queryer().QueryRow(ctx, `
UPDATE nationalities
   SET name_ar = $2, name_en = $3, updated_at = now()
 WHERE ulid = $1
RETURNING `+nationalityColumns,
		ulid, params.NameAr, params.NameEn,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, lookups.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update nationality: %w", err)
	}
	return nat, nil
}

func (r *LookupRepository) GetNationality(ctx context.Context, ulid string) (*lookups.Nationality, error) {
	nat, err := scanNationality(r.queryer().QueryRow(ctx,
		`SELECT `+nationalityColumns+` FROM nationalities WHERE ulid = $1`, ulid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, lookups.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get nationality: %w", err)
	}
	return nat, nil
}

func (r *LookupRepository) ListNationalities(ctx context.Context) ([]lookups.Nationality, error) {
	rows, err := r.queryer().Query(ctx,
		`SELECT `+nationalityColumns+` FROM nationalities ORDER BY name_en ASC`)
	if err != nil {
		return nil, fmt.Errorf("list nationalities: %w", err)
	}
	defer rows.Close()

	items := make([]lookups.Nationality, 0)
	for rows.Next() {
		var row nationalityRow
		if err := rows.Scan(&row.ID, &row.ULID, &row.NameAr, &row.NameEn, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan nationalities: %w", err)
		}
		items = append(items, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nationalities: %w", err)
	}
	return items, nil
}

func (r *LookupRepository) CountNationalityUsage(ctx context.Context, ulid string) (int, error) {
	return r.countUsage(ctx, `
SELECT count(*) FROM event_subscribers s
  JOIN nationalities n ON n.id = s.nationality_id
 WHERE n.ulid = $1`, ulid, `count nationality usage`)
}

func (r *LookupRepository) DeleteNationality(ctx context.Context, ulid string) error {
	return r.guardedDelete(ctx, guard.KindNationality, ulid,
		`SELECT count(*) FROM event_subscribers s JOIN nationalities n ON n.id = s.nationality_id WHERE n.ulid = $1`,
		`DELETE FROM nationalities WHERE ulid = $1`,
	)
}

func (r *LookupRepository) countUsage(ctx context.Context, query string, ulid string, label string) (int, error) {
	var count int
	if err := r.queryer().QueryRow(ctx, query, ulid).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", label, err)
	}
	return count, nil
}

// guardedDelete counts dependents and deletes inside one transaction so a
// registration landing between the check and the delete still refuses. The
// dependent count is re-read when the database raises a foreign-key
// violation anyway.
func (r *LookupRepository) guardedDelete(ctx context.Context, kind guard.Kind, ulid string, countQuery string, deleteQuery string) error {
	run := func(ctx context.Context, tx pgx.Tx) error {
		var count int
		if err := tx.QueryRow(ctx, countQuery, ulid).Scan(&count); err != nil {
			return fmt.Errorf("count %s usage: %w", kind, err)
		}
		if count > 0 {
			return guard.InUseError{Kind: kind, Count: count}
		}

		tag, err := tx.Exec(ctx, deleteQuery, ulid)
		if err != nil {
			if isForeignKeyViolation(err) {
				recount := 1
				_ = tx.QueryRow(ctx, countQuery, ulid).Scan(&recount)
				return guard.InUseError{Kind: kind, Count: recount}
			}
			return fmt.Errorf("delete %s: %w", kind, err)
		}
		if tag.RowsAffected() == 0 {
			return lookups.ErrNotFound
		}
		return nil
	}

	if r.tx != nil {
		return run(ctx, r.tx)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete %s: %w", kind, err)
	}
	if err := run(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete %s: %w", kind, err)
	}
	return nil
}
