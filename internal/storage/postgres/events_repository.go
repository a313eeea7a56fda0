package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/events"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/guard"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/ids"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/lookups"
)

var _ events.Repository = (*EventRepository)(nil)

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

type eventRow struct {
	ID            string
	ULID          string
	Title         string
	TitleAr       *string
	Date          pgtype.Timestamptz
	Description   *string
	DescriptionAr *string
	ImageURL      *string
	Requirements  []byte
	Published     bool
	AcceptJobs    bool
	Completed     bool
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz

	LocationID        string
	LocationULID      string
	LocationCity      string
	LocationCityAr    *string
	LocationAddress   *string
	LocationAddressAr *string

	SubscriberCount int
}

// eventColumns joins the location row in; every read path returns the
// event with its venue resolved.
const eventColumns = `
e.id, e.ulid, e.title, e.title_ar, e.event_date, e.description, e.description_ar,
e.image_url, e.requirements, e.published, e.accept_jobs, e.completed,
e.created_at, e.updated_at,
l.id, l.ulid, l.city, l.city_ar, l.address, l.address_ar,
(SELECT count(*) FROM event_subscribers s WHERE s.event_id = e.id)`

func (row eventRow) toDomain() (events.Event, error) {
	var requirements []events.Requirement
	if len(row.Requirements) > 0 {
		if err := json.Unmarshal(row.Requirements, &requirements); err != nil {
			return events.Event{}, fmt.Errorf("decode event requirements: %w", err)
		}
	}

	return events.Event{
		ID:      row.ID,
		ULID:    row.ULID,
		Title:   row.Title,
		TitleAr: derefString(row.TitleAr),
		Date:    timeOf(row.Date),
		Location: &lookups.Location{
			ID:        row.LocationID,
			ULID:      row.LocationULID,
			City:      row.LocationCity,
			CityAr:    derefString(row.LocationCityAr),
			Address:   derefString(row.LocationAddress),
			AddressAr: derefString(row.LocationAddressAr),
		},
		Description:     derefString(row.Description),
		DescriptionAr:   derefString(row.DescriptionAr),
		ImageURL:        derefString(row.ImageURL),
		Requirements:    requirements,
		Published:       row.Published,
		AcceptJobs:      row.AcceptJobs,
		Completed:       row.Completed,
		SubscriberCount: row.SubscriberCount,
		CreatedAt:       timeOf(row.CreatedAt),
		UpdatedAt:       timeOf(row.UpdatedAt),
	}, nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var r eventRow
	if err := row.Scan(
		&r.ID, &r.ULID, &r.Title, &r.TitleAr, &r.Date, &r.Description, &r.DescriptionAr,
		&r.ImageURL, &r.Requirements, &r.Published, &r.AcceptJobs, &r.Completed,
		&r.CreatedAt, &r.UpdatedAt,
		&r.LocationID, &r.LocationULID, &r.LocationCity, &r.LocationCityAr, &r.LocationAddress, &r.LocationAddressAr,
		&r.SubscriberCount,
	); err != nil {
		return nil, err
	}
	event, err := r.toDomain()
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func encodeRequirements(requirements []events.Requirement) ([]byte, error) {
	if requirements == nil {
		requirements = []events.Requirement{}
	}
	payload, err := json.Marshal(requirements)
	if err != nil {
		return nil, fmt.Errorf("encode event requirements: %w", err)
	}
	return payload, nil
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	ulid, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint event ulid: %w", err)
	}
	requirements, err := encodeRequirements(params.Requirements)
	if err != nil {
		return nil, err
	}

	event, err := scanEvent(r.queryer().QueryRow(ctx, `
WITH inserted AS (
    INSERT INTO events (ulid, title, title_ar, event_date, location_id, description, description_ar, image_url, requirements)
    SELECT $1, $2, $3, $4, l.id, $6, $7, $8, $9
      FROM locations l
     WHERE l.ulid = $5
    RETURNING *
)
SELECT `+eventColumns+`
  FROM inserted e
  JOIN locations l ON l.id = e.location_id`,
		ulid, params.Title, textOrNil(params.TitleAr), params.Date, params.LocationULID,
		textOrNil(params.Description), textOrNil(params.DescriptionAr), textOrNil(params.ImageURL),
		requirements,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		// The location ULID resolved to nothing, so the INSERT ... SELECT
		// inserted zero rows.
		return nil, lookups.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Update(ctx context.Context, ulid string, params events.UpdateParams) (*events.Event, error) {
	var requirements []byte
	if params.Requirements != nil {
		encoded, err := encodeRequirements(params.Requirements)
		if err != nil {
			return nil, err
		}
		requirements = encoded
	}

	event, err := scanEvent(r.queryer().QueryRow(ctx, `
WITH updated AS (
    UPDATE events e
       SET title          = COALESCE($2, e.title),
           title_ar       = COALESCE($3, e.title_ar),
           event_date     = COALESCE($4, e.event_date),
           location_id    = COALESCE((SELECT id FROM locations WHERE ulid = $5), e.location_id),
           description    = COALESCE($6, e.description),
           description_ar = COALESCE($7, e.description_ar),
           image_url      = COALESCE($8, e.image_url),
           requirements   = COALESCE($9::jsonb, e.requirements),
           updated_at     = now()
     WHERE e.ulid = $1
    RETURNING *
)
SELECT `+eventColumns+`
  FROM updated e
  JOIN locations l ON l.id = e.location_id`,
		ulid, params.Title, params.TitleAr, params.Date, params.LocationULID,
		params.Description, params.DescriptionAr, params.ImageURL, requirements,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// flagColumns whitelists the updatable lifecycle columns so the flag name
// is never interpolated from caller input.
var flagColumns = map[events.Flag]string{
	events.FlagPublished:  "published",
	events.FlagAcceptJobs: "accept_jobs",
	events.FlagCompleted:  "completed",
}

func (r *EventRepository) SetFlag(ctx context.Context, ulid string, flag events.Flag, value bool) (*events.Event, error) {
	column, ok := flagColumns[flag]
	if !ok {
		return nil, fmt.Errorf("set event flag: unknown flag %q", flag)
	}

	event, err := scanEvent(r.queryer().QueryRow(ctx, fmt.Sprintf(`
WITH updated AS (
    UPDATE events SET %s = $2, updated_at = now() WHERE ulid = $1 RETURNING *
)
SELECT `+eventColumns+`
  FROM updated e
  JOIN locations l ON l.id = e.location_id`, column),
		ulid, value,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set event %s: %w", column, err)
	}
	return event, nil
}

func (r *EventRepository) SetRequirements(ctx context.Context, ulid string, requirements []events.Requirement) (*events.Event, error) {
	encoded, err := encodeRequirements(requirements)
	if err != nil {
		return nil, err
	}

	event, err := scanEvent(r.queryer().QueryRow(ctx, `
WITH updated AS (
    UPDATE events SET requirements = $2, updated_at = now() WHERE ulid = $1 RETURNING *
)
SELECT `+eventColumns+`
  FROM updated e
  JOIN locations l ON l.id = e.location_id`,
		ulid, encoded,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set event requirements: %w", err)
	}
	return event, nil
}

func (r *EventRepository) GetByULID(ctx context.Context, ulid string) (*events.Event, error) {
	event, err := scanEvent(r.queryer().QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events e
  JOIN locations l ON l.id = e.location_id
 WHERE e.ulid = $1`, ulid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) List(ctx context.Context, filters events.Filters) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events e
  JOIN locations l ON l.id = e.location_id
 WHERE ($1::boolean IS NULL OR e.published = $1)
   AND ($2::boolean IS NULL OR e.completed = $2)
 ORDER BY e.event_date DESC`,
		filters.Published, filters.Completed,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]events.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan events: %w", err)
		}
		items = append(items, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}

func (r *EventRepository) Delete(ctx context.Context, ulid string) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE ulid = $1`, ulid)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

type jobRequirementRow struct {
	ID         string
	ULID       string
	EventULID  string
	RatePerDay float64
	Headcount  int
	CreatedAt  pgtype.Timestamptz

	JobID          string
	JobULID        string
	JobName        string
	JobNameAr      *string
	JobDescription *string

	SubscriberCount int
}

const jobRequirementColumns = `
jr.id, jr.ulid, e.ulid, jr.rate_per_day, jr.headcount, jr.created_at,
j.id, j.ulid, j.name, j.name_ar, j.description,
(SELECT count(*) FROM event_subscribers s WHERE s.job_requirement_id = jr.id)`

func (row jobRequirementRow) toDomain() events.JobRequirement {
	return events.JobRequirement{
		ID:        row.ID,
		ULID:      row.ULID,
		EventULID: row.EventULID,
		Job: &lookups.Job{
			ID:          row.JobID,
			ULID:        row.JobULID,
			Name:        row.JobName,
			NameAr:      derefString(row.JobNameAr),
			Description: derefString(row.JobDescription),
		},
		RatePerDay:      row.RatePerDay,
		Headcount:       row.Headcount,
		SubscriberCount: row.SubscriberCount,
		CreatedAt:       timeOf(row.CreatedAt),
	}
}

func scanJobRequirement(row pgx.Row) (*events.JobRequirement, error) {
	var r jobRequirementRow
	if err := row.Scan(
		&r.ID, &r.ULID, &r.EventULID, &r.RatePerDay, &r.Headcount, &r.CreatedAt,
		&r.JobID, &r.JobULID, &r.JobName, &r.JobNameAr, &r.JobDescription,
		&r.SubscriberCount,
	); err != nil {
		return nil, err
	}
	requirement := r.toDomain()
	return &requirement, nil
}

func (r *EventRepository) AddJobRequirement(ctx context.Context, eventULID string, params events.JobRequirementParams) (*events.JobRequirement, error) {
	ulid, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint job requirement ulid: %w", err)
	}

	requirement, err := scanJobRequirement(r.queryer().QueryRow(ctx, `
WITH inserted AS (
    INSERT INTO event_job_requirements (ulid, event_id, job_id, rate_per_day, headcount)
    SELECT $1, e.id, j.id, $4, $5
      FROM events e, jobs j
     WHERE e.ulid = $2 AND j.ulid = $3
    RETURNING *
)
SELECT `+jobRequirementColumns+`
  FROM inserted jr
  JOIN events e ON e.id = jr.event_id
  JOIN jobs j ON j.id = jr.job_id`,
		ulid, eventULID, params.JobULID, params.RatePerDay, params.Headcount,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the event or the job ULID resolved to nothing. Distinguish
		// so the handler renders the right problem.
		if _, getErr := r.GetByULID(ctx, eventULID); getErr != nil {
			return nil, getErr
		}
		return nil, lookups.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("add job requirement: %w", err)
	}
	return requirement, nil
}

func (r *EventRepository) UpdateJobRequirement(ctx context.Context, ulid string, params events.JobRequirementParams) (*events.JobRequirement, error) {
	requirement, err := scanJobRequirement(r.queryer().QueryRow(ctx, `
WITH updated AS (
    UPDATE event_job_requirements jr
       SET job_id       = COALESCE((SELECT id FROM jobs WHERE ulid = $2), jr.job_id),
           rate_per_day = $3,
           headcount    = $4
     WHERE jr.ulid = $1
    RETURNING *
)
SELECT `+jobRequirementColumns+`
  FROM updated jr
  JOIN events e ON e.id = jr.event_id
  JOIN jobs j ON j.id = jr.job_id`,
		ulid, params.JobULID, params.RatePerDay, params.Headcount,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.ErrJobRequirementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update job requirement: %w", err)
	}
	return requirement, nil
}

// RemoveJobRequirement deletes a job slot inside one transaction, refusing
// while subscriber rows reference it.
func (r *EventRepository) RemoveJobRequirement(ctx context.Context, ulid string) error {
	run := func(ctx context.Context, tx pgx.Tx) error {
		var count int
		if err := tx.QueryRow(ctx, `
SELECT count(*) FROM event_subscribers s
  JOIN event_job_requirements jr ON jr.id = s.job_requirement_id
 WHERE jr.ulid = $1`, ulid).Scan(&count); err != nil {
			return fmt.Errorf("count job requirement usage: %w", err)
		}
		if count > 0 {
			return guard.InUseError{Kind: guard.KindJobRequirement, Count: count}
		}

		tag, err := tx.Exec(ctx, `DELETE FROM event_job_requirements WHERE ulid = $1`, ulid)
		if err != nil {
			if isForeignKeyViolation(err) {
				return guard.InUseError{Kind: guard.KindJobRequirement, Count: 1}
			}
			return fmt.Errorf("remove job requirement: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return events.ErrJobRequirementNotFound
		}
		return nil
	}

	if r.tx != nil {
		return run(ctx, r.tx)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin remove job requirement: %w", err)
	}
	if err := run(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit remove job requirement: %w", err)
	}
	return nil
}

func (r *EventRepository) GetJobRequirement(ctx context.Context, ulid string) (*events.JobRequirement, error) {
	requirement, err := scanJobRequirement(r.queryer().QueryRow(ctx, `
SELECT `+jobRequirementColumns+`
  FROM event_job_requirements jr
  JOIN events e ON e.id = jr.event_id
  JOIN jobs j ON j.id = jr.job_id
 WHERE jr.ulid = $1`, ulid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.ErrJobRequirementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job requirement: %w", err)
	}
	return requirement, nil
}

func (r *EventRepository) ListJobRequirements(ctx context.Context, eventULID string) ([]events.JobRequirement, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+jobRequirementColumns+`
  FROM event_job_requirements jr
  JOIN events e ON e.id = jr.event_id
  JOIN jobs j ON j.id = jr.job_id
 WHERE e.ulid = $1
 ORDER BY jr.created_at ASC`, eventULID)
	if err != nil {
		return nil, fmt.Errorf("list job requirements: %w", err)
	}
	defer rows.Close()

	items := make([]events.JobRequirement, 0)
	for rows.Next() {
		requirement, err := scanJobRequirement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job requirements: %w", err)
		}
		items = append(items, *requirement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job requirements: %w", err)
	}
	return items, nil
}

type subscriberRow struct {
	ID               string
	ULID             string
	EventULID        string
	Name             string
	Mobile           string
	Email            string
	IDNumber         string
	Age              int
	IDImageURL       *string
	PersonalImageURL *string
	CreatedAt        pgtype.Timestamptz

	NationalityID     string
	NationalityULID   string
	NationalityNameAr string
	NationalityNameEn string

	JobRequirementULID *string
	JobName            *string
	JobNameAr          *string
	RatePerDay         *float64
}

func (row subscriberRow) toDomain() events.Subscriber {
	subscriber := events.Subscriber{
		ID:        row.ID,
		ULID:      row.ULID,
		EventULID: row.EventULID,
		Name:      row.Name,
		Mobile:    row.Mobile,
		Email:     row.Email,
		IDNumber:  row.IDNumber,
		Nationality: &lookups.Nationality{
			ID:     row.NationalityID,
			ULID:   row.NationalityULID,
			NameAr: row.NationalityNameAr,
			NameEn: row.NationalityNameEn,
		},
		Age:              row.Age,
		IDImageURL:       derefString(row.IDImageURL),
		PersonalImageURL: derefString(row.PersonalImageURL),
		CreatedAt:        timeOf(row.CreatedAt),
	}
	if row.JobRequirementULID != nil {
		requirement := events.JobRequirement{
			ULID:      *row.JobRequirementULID,
			EventULID: row.EventULID,
			Job: &lookups.Job{
				Name:   derefString(row.JobName),
				NameAr: derefString(row.JobNameAr),
			},
		}
		if row.RatePerDay != nil {
			requirement.RatePerDay = *row.RatePerDay
		}
		subscriber.JobRequirement = &requirement
	}
	return subscriber
}

const subscriberColumns = `
s.id, s.ulid, e.ulid, s.name, s.mobile, s.email, s.id_number, s.age,
s.id_image_url, s.personal_image_url, s.created_at,
n.id, n.ulid, n.name_ar, n.name_en,
jr.ulid, j.name, j.name_ar, jr.rate_per_day`

// CreateSubscriber appends one ledger row. The event's accept_jobs flag is
// re-read inside the transaction so a close that lands after the caller's
// check still refuses the insert.
func (r *EventRepository) CreateSubscriber(ctx context.Context, eventULID string, input events.RegistrationInput) (*events.Subscriber, error) {
	ulid, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint subscriber ulid: %w", err)
	}

	var subscriber *events.Subscriber
	run := func(ctx context.Context, tx pgx.Tx) error {
		var eventID string
		var acceptJobs bool
		err := tx.QueryRow(ctx,
			`SELECT id, accept_jobs FROM events WHERE ulid = $1 FOR UPDATE`, eventULID,
		).Scan(&eventID, &acceptJobs)
		if errors.Is(err, pgx.ErrNoRows) {
			return events.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock event for registration: %w", err)
		}
		if !acceptJobs {
			return events.ErrRegistrationClosed
		}

		subscriber, err = scanSubscriber(tx.QueryRow(ctx, `
WITH inserted AS (
    INSERT INTO event_subscribers
        (ulid, event_id, name, mobile, email, id_number, nationality_id, age,
         id_image_url, personal_image_url, job_requirement_id)
    SELECT $1, $2, $3, $4, $5, $6, n.id, $8, $9, $10,
           (SELECT jr.id FROM event_job_requirements jr WHERE jr.ulid = $11)
      FROM nationalities n
     WHERE n.ulid = $7
    RETURNING *
)
SELECT `+subscriberColumns+`
  FROM inserted s
  JOIN events e ON e.id = s.event_id
  JOIN nationalities n ON n.id = s.nationality_id
  LEFT JOIN event_job_requirements jr ON jr.id = s.job_requirement_id
  LEFT JOIN jobs j ON j.id = jr.job_id`,
			ulid, eventID, input.Name, input.Mobile, input.Email, input.IDNumber,
			input.NationalityULID, input.Age,
			textOrNil(input.IDImageURL), textOrNil(input.PersonalImageURL),
			textOrNil(input.JobRequirementULID),
		))
		if errors.Is(err, pgx.ErrNoRows) {
			return lookups.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("create subscriber: %w", err)
		}
		return nil
	}

	if r.tx != nil {
		if err := run(ctx, r.tx); err != nil {
			return nil, err
		}
		return subscriber, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin registration: %w", err)
	}
	if err := run(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit registration: %w", err)
	}
	return subscriber, nil
}

func scanSubscriber(row pgx.Row) (*events.Subscriber, error) {
	var r subscriberRow
	if err := row.Scan(
		&r.ID, &r.ULID, &r.EventULID, &r.Name, &r.Mobile, &r.Email, &r.IDNumber, &r.Age,
		&r.IDImageURL, &r.PersonalImageURL, &r.CreatedAt,
		&r.NationalityID, &r.NationalityULID, &r.NationalityNameAr, &r.NationalityNameEn,
		&r.JobRequirementULID, &r.JobName, &r.JobNameAr, &r.RatePerDay,
	); err != nil {
		return nil, err
	}
	subscriber := r.toDomain()
	return &subscriber, nil
}

func (r *EventRepository) ListSubscribers(ctx context.Context, eventULID string) ([]events.Subscriber, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+subscriberColumns+`
  FROM event_subscribers s
  JOIN events e ON e.id = s.event_id
  JOIN nationalities n ON n.id = s.nationality_id
  LEFT JOIN event_job_requirements jr ON jr.id = s.job_requirement_id
  LEFT JOIN jobs j ON j.id = jr.job_id
 WHERE e.ulid = $1
 ORDER BY s.created_at DESC`, eventULID)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	items := make([]events.Subscriber, 0)
	for rows.Next() {
		subscriber, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscribers: %w", err)
		}
		items = append(items, *subscriber)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}
	return items, nil
}
