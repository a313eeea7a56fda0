// Package events implements the event lifecycle, its job-requirement
// composition, and the registration ledger.
//
// An event carries three independent booleans: published gates public
// visibility, acceptJobs gates new registrations, completed marks the event
// as held. The flags are set idempotently and never constrain each other —
// a completed event may stay published. Registrations are append-only: a
// subscriber row is written once and never mutated or deleted.
package events

import (
	"time"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/lookups"
)

type Event struct {
	ID            string
	ULID          string
	Title         string
	TitleAr       string
	Date          time.Time
	Location      *lookups.Location
	Description   string
	DescriptionAr string
	ImageURL      string
	Requirements  []Requirement
	Published     bool
	AcceptJobs    bool
	Completed     bool
	// SubscriberCount is populated on admin listings only.
	SubscriberCount int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DisplayTitle resolves the bilingual title for a locale.
func (e Event) DisplayTitle(l locale.Locale) string {
	return locale.Resolve(l, e.TitleAr, e.Title)
}

func (e Event) DisplayDescription(l locale.Locale) string {
	return locale.Resolve(l, e.DescriptionAr, e.Description)
}

// Requirement is one textual item of the event's ordered requirements
// list. The sequence is stored on the event row and rewritten whole on
// every update; the admin form only ever appends.
type Requirement struct {
	Name   string `json:"name" validate:"required,max=300"`
	NameAr string `json:"nameAr" validate:"max=300"`
}

func (r Requirement) Display(l locale.Locale) string {
	return locale.Resolve(l, r.NameAr, r.Name)
}

// JobRequirement links an event to a job with pay and headcount. It is the
// slot a subscriber applies for, independent from the textual requirements.
type JobRequirement struct {
	ID        string
	ULID      string
	EventULID string
	Job       *lookups.Job
	RatePerDay float64
	Headcount  int
	// SubscriberCount is populated on admin listings only.
	SubscriberCount int
	CreatedAt       time.Time
}

// Subscriber is one immutable registration ledger row.
type Subscriber struct {
	ID               string
	ULID             string
	EventULID        string
	Name             string
	Mobile           string
	Email            string
	IDNumber         string
	Nationality      *lookups.Nationality
	Age              int
	IDImageURL       string
	PersonalImageURL string
	JobRequirement   *JobRequirement
	CreatedAt        time.Time
}

type CreateParams struct {
	Title         string        `json:"title" validate:"required,max=200"`
	TitleAr       string        `json:"titleAr" validate:"max=200"`
	Date          time.Time     `json:"date" validate:"required"`
	LocationULID  string        `json:"locationId" validate:"required"`
	Description   string        `json:"description" validate:"max=5000"`
	DescriptionAr string        `json:"descriptionAr" validate:"max=5000"`
	ImageURL      string        `json:"imageUrl"`
	Requirements  []Requirement `json:"requirements" validate:"dive"`
}

// UpdateParams carries optional admin edits. Nil fields are left
// untouched; the lifecycle flags are not editable through update.
type UpdateParams struct {
	Title         *string        `json:"title"`
	TitleAr       *string        `json:"titleAr"`
	Date          *time.Time     `json:"date"`
	LocationULID  *string        `json:"locationId"`
	Description   *string        `json:"description"`
	DescriptionAr *string        `json:"descriptionAr"`
	ImageURL      *string        `json:"imageUrl"`
	Requirements  []Requirement  `json:"requirements" validate:"dive"`
}

type JobRequirementParams struct {
	JobULID    string  `json:"jobId" validate:"required"`
	RatePerDay float64 `json:"ratePerDay" validate:"gte=0"`
	Headcount  int     `json:"headcount" validate:"gte=1"`
}

// RegistrationInput is the public registration form payload.
// AgreeToRequirements is enforced but never persisted; consent is implicit
// in a successful submission.
type RegistrationInput struct {
	Name                string `json:"name" validate:"required,max=120"`
	Mobile              string `json:"mobile" validate:"required,max=20"`
	Email               string `json:"email" validate:"required,email"`
	IDNumber            string `json:"idNumber" validate:"required,max=30"`
	NationalityULID     string `json:"nationalityId" validate:"required"`
	Age                 int    `json:"age" validate:"required,gte=18,lte=65"`
	IDImageURL          string `json:"idImageUrl"`
	PersonalImageURL    string `json:"personalImageUrl"`
	JobRequirementULID  string `json:"jobRequirementId"`
	AgreeToRequirements bool   `json:"agreeToRequirements" validate:"eq=true"`
}

// Flag names one of the three independent lifecycle booleans.
type Flag string

const (
	FlagPublished  Flag = "published"
	FlagAcceptJobs Flag = "accept_jobs"
	FlagCompleted  Flag = "completed"
)

// Filters narrows event listings.
type Filters struct {
	Published *bool
	Completed *bool
}
