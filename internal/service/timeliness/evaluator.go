// Package timeliness derives the on-time/late classification of a submission
// relative to its category's current deadline. The classification is never
// persisted: category deadlines are mutable after submission, so every report
// and badge recomputes against the deadline as it stands now.
package timeliness

import "time"

// Timeliness is the derived rating of a submission against a deadline.
type Timeliness string

const (
	OnTime     Timeliness = "on_time"
	Late       Timeliness = "late"
	NoDeadline Timeliness = "no_deadline" // never counted as late
)

// Evaluate classifies a submission time against a deadline. Pure and total:
// no side effects, no error cases. Submitting exactly at the deadline counts
// as on time.
//
// Callers must not cache the result keyed only by document id; either key the
// cache by the deadline value used, or re-run Evaluate on every read.
func Evaluate(submittedAt time.Time, deadline *time.Time) Timeliness {
	if deadline == nil {
		return NoDeadline
	}
	if submittedAt.After(*deadline) {
		return Late
	}
	return OnTime
}
