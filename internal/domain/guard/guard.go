// Package guard defines the shared delete-guard contract for lookup
// entities. A lookup row referenced by at least one dependent row must not
// be deleted; every guarded path reports refusal through the same
// InUseError so handlers render one consistent failure.
package guard

import "fmt"

// Kind names a guarded entity collection.
type Kind string

const (
	KindJob            Kind = "job"
	KindLocation       Kind = "location"
	KindNationality    Kind = "nationality"
	KindJobRequirement Kind = "job_requirement"
)

// Result is the discriminated outcome of a usage check.
// OK means the entity is safe to delete.
type Result struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
	Count  int    `json:"count,omitempty"`
}

const ReasonInUse = "in_use"

// Allowed builds a passing result.
func Allowed() Result {
	return Result{OK: true}
}

// Blocked builds a refusing result carrying the dependent count.
func Blocked(count int) Result {
	return Result{OK: false, Reason: ReasonInUse, Count: count}
}

// InUseError refuses a delete because dependents still reference the row.
type InUseError struct {
	Kind  Kind
	Count int
}

func (e InUseError) Error() string {
	return fmt.Sprintf("%s is referenced by %d dependent row(s) and cannot be deleted", e.Kind, e.Count)
}

// Result converts the error into the discriminated guard result.
func (e InUseError) Result() Result {
	return Blocked(e.Count)
}
